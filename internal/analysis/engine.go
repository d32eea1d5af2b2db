// Package analysis orchestrates one scam-analysis request: it fans out
// the collaborator, trust, and truth stages concurrently, joins them
// under the request deadline, scores the combined signals, and renders
// the alert.
//
// A missed deadline is not an error. Stages that did not finish in time
// contribute conservative defaults and the output is tagged partial.
package analysis

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/lueurxax/scam-shield/internal/alert"
	"github.com/lueurxax/scam-shield/internal/core/domain"
	coreerrors "github.com/lueurxax/scam-shield/internal/core/errors"
	"github.com/lueurxax/scam-shield/internal/core/reasoning"
	"github.com/lueurxax/scam-shield/internal/platform/observability"
	"github.com/lueurxax/scam-shield/internal/platform/resilience"
	"github.com/lueurxax/scam-shield/internal/scoring"
	"github.com/lueurxax/scam-shield/internal/trust"
	"github.com/lueurxax/scam-shield/internal/truth"
)

// Stage names for metrics and timeout reasons.
const (
	stageIndicators = "indicators"
	stageTrust      = "trust"
	stageTruth      = "truth"
)

const (
	defaultTextDeadline    = 3 * time.Second
	defaultDerivedDeadline = 5 * time.Second

	// recordTimeout bounds the post-analysis pattern write, which runs
	// detached from the request deadline.
	recordTimeout = 2 * time.Second
)

// Request is one analysis request. URLs are extracted upstream.
type Request struct {
	RequestID string
	Content   domain.Content
	District  string
	URLs      []string
}

// Config holds engine settings.
type Config struct {
	TextDeadline    time.Duration
	DerivedDeadline time.Duration
	DefaultLanguage string
	DefaultDistrict string
	Retry           resilience.RetryConfig
}

// Engine runs the full analysis pipeline.
type Engine struct {
	extractor        reasoning.Extractor
	reasoningBreaker *resilience.Breaker
	trust            *trust.Analyzer
	truth            *truth.Engine
	scorer           *scoring.Scorer
	alerts           *alert.Formatter
	cfg              Config
	logger           *zerolog.Logger
}

// New creates an engine. The reasoning breaker is the process-wide
// breaker for the reasoning dependency.
func New(
	extractor reasoning.Extractor,
	reasoningBreaker *resilience.Breaker,
	trustAnalyzer *trust.Analyzer,
	truthEngine *truth.Engine,
	scorer *scoring.Scorer,
	alerts *alert.Formatter,
	cfg Config,
	logger *zerolog.Logger,
) *Engine {
	if cfg.TextDeadline <= 0 {
		cfg.TextDeadline = defaultTextDeadline
	}

	if cfg.DerivedDeadline <= 0 {
		cfg.DerivedDeadline = defaultDerivedDeadline
	}

	if cfg.DefaultLanguage == "" {
		cfg.DefaultLanguage = "en"
	}

	return &Engine{
		extractor:        extractor,
		reasoningBreaker: reasoningBreaker,
		trust:            trustAnalyzer,
		truth:            truthEngine,
		scorer:           scorer,
		alerts:           alerts,
		cfg:              cfg,
		logger:           logger,
	}
}

// indicatorsResult carries the collaborator stage outcome.
type indicatorsResult struct {
	indicators domain.Indicators
	err        error
}

// Analyze runs the pipeline for one request. Validation failures are
// the only fast-fail path; a total failure of every stage is the only
// fatal runtime outcome.
func (e *Engine) Analyze(ctx context.Context, req Request) (domain.AnalysisOutput, error) {
	start := time.Now()

	if strings.TrimSpace(req.Content.Text) == "" {
		return domain.AnalysisOutput{}, fmt.Errorf("%w: %w", coreerrors.ErrInvalidInput, coreerrors.ErrEmptyContent)
	}

	e.applyDefaults(&req)

	ctx, cancel := e.withDeadline(ctx, req.Content.Kind)
	defer cancel()

	patternHash := domain.Fingerprint(req.Content.Text)

	indicatorsCh := make(chan indicatorsResult, 1)
	truthCh := make(chan domain.TruthVerificationResult, 1)
	urlsCh := make(chan []domain.URLFact, 1)

	go func() {
		stageStart := time.Now()

		ind, err := e.extractIndicators(ctx, req.Content)

		observability.StageDuration.WithLabelValues(stageIndicators).Observe(time.Since(stageStart).Seconds())
		indicatorsCh <- indicatorsResult{indicators: ind, err: err}
	}()

	go func() {
		stageStart := time.Now()

		result := e.truth.VerifyClaim(ctx, patternHash, req.District, req.Content.Language)

		observability.StageDuration.WithLabelValues(stageTruth).Observe(time.Since(stageStart).Seconds())
		truthCh <- result
	}()

	go func() {
		stageStart := time.Now()

		facts := e.analyzeURLs(ctx, req.URLs)

		observability.StageDuration.WithLabelValues(stageTrust).Observe(time.Since(stageStart).Seconds())
		urlsCh <- facts
	}()

	joined := e.join(ctx, indicatorsCh, truthCh, urlsCh, len(req.URLs))

	if err := e.checkTotalFailure(joined); err != nil {
		return domain.AnalysisOutput{}, err
	}

	output := e.assemble(req, joined)
	output.ProcessingTimeMs = time.Since(start).Milliseconds()

	observability.AnalysesTotal.WithLabelValues(output.Classification).Inc()
	observability.AnalysisDuration.Observe(time.Since(start).Seconds())

	if output.Partial {
		observability.PartialResults.Inc()
	}

	e.recordObservation(ctx, req, joined, patternHash, output.Classification)

	return output, nil
}

func (e *Engine) applyDefaults(req *Request) {
	if req.RequestID == "" {
		req.RequestID = uuid.NewString()
	}

	if req.Content.Language == "" {
		req.Content.Language = e.cfg.DefaultLanguage
		req.Content.LanguageDetected = false
	}

	if req.District == "" {
		req.District = e.cfg.DefaultDistrict
	}
}

// withDeadline applies the per-kind deadline unless the caller brought a
// tighter one.
func (e *Engine) withDeadline(ctx context.Context, kind domain.ContentKind) (context.Context, context.CancelFunc) {
	budget := e.cfg.TextDeadline
	if kind != domain.ContentText {
		budget = e.cfg.DerivedDeadline
	}

	if deadline, ok := ctx.Deadline(); ok && time.Until(deadline) <= budget {
		return context.WithCancel(ctx)
	}

	return context.WithTimeout(ctx, budget)
}

// extractIndicators wraps the collaborator call with the breaker and
// retry policy.
func (e *Engine) extractIndicators(ctx context.Context, content domain.Content) (domain.Indicators, error) {
	var ind domain.Indicators

	err := e.reasoningBreaker.Do(ctx, func(ctx context.Context) error {
		return resilience.Retry(ctx, e.cfg.Retry, func(ctx context.Context) error {
			var extractErr error
			ind, extractErr = e.extractor.ExtractIndicators(ctx, content)

			if extractErr != nil {
				observability.RetriesTotal.WithLabelValues(resilience.DepReasoning).Inc()
			}

			return extractErr
		})
	})

	return ind, err
}

// analyzeURLs fans out one trust analysis per URL and preserves input
// order. The analyzer itself never errors.
func (e *Engine) analyzeURLs(ctx context.Context, urls []string) []domain.URLFact {
	if len(urls) == 0 {
		return nil
	}

	facts := make([]domain.URLFact, len(urls))
	done := make(chan int, len(urls))

	for i, rawURL := range urls {
		go func(i int, rawURL string) {
			facts[i] = e.trust.Analyze(ctx, rawURL)
			done <- i
		}(i, rawURL)
	}

	for range urls {
		<-done
	}

	return facts
}

// joinedStages is what survived the deadline.
type joinedStages struct {
	indicators    domain.Indicators
	indicatorsErr error
	truth         domain.TruthVerificationResult
	urlFacts      []domain.URLFact

	timedOutStages []string
}

// join collects stage results until all arrive or the deadline elapses.
// Missing stages are recorded and replaced by conservative defaults.
func (e *Engine) join(
	ctx context.Context,
	indicatorsCh <-chan indicatorsResult,
	truthCh <-chan domain.TruthVerificationResult,
	urlsCh <-chan []domain.URLFact,
	urlCount int,
) joinedStages {
	joined := joinedStages{}

	pendingIndicators := true
	pendingTruth := true
	pendingURLs := true

	for pendingIndicators || pendingTruth || pendingURLs {
		select {
		case res := <-indicatorsCh:
			joined.indicators = res.indicators
			joined.indicatorsErr = res.err
			pendingIndicators = false
		case res := <-truthCh:
			joined.truth = res
			pendingTruth = false
		case res := <-urlsCh:
			joined.urlFacts = res
			pendingURLs = false
		case <-ctx.Done():
			if pendingIndicators {
				joined.timedOutStages = append(joined.timedOutStages, stageIndicators)
			}

			if pendingTruth {
				joined.timedOutStages = append(joined.timedOutStages, stageTruth)
				joined.truth = domain.TruthVerificationResult{Degraded: true}
			}

			if pendingURLs {
				joined.timedOutStages = append(joined.timedOutStages, stageTrust)
				joined.urlFacts = conservativeURLFacts(urlCount)
			}

			return joined
		}
	}

	return joined
}

// conservativeURLFacts stands in for URL analyses that missed the
// deadline: unknown but suspicious-leaning.
func conservativeURLFacts(count int) []domain.URLFact {
	if count == 0 {
		return nil
	}

	facts := make([]domain.URLFact, count)
	for i := range facts {
		facts[i] = domain.URLFact{
			ReputationTier: domain.TierSuspicious,
			TrustScore:     0.2,
			Flags:          []string{trust.FlagLookupFailed},
		}
	}

	return facts
}

// checkTotalFailure returns the sole fatal outcome: every stage failed
// outright. A timeout or a degraded store alone never qualifies.
func (e *Engine) checkTotalFailure(joined joinedStages) error {
	if joined.indicatorsErr == nil {
		return nil
	}

	if len(joined.timedOutStages) > 0 {
		return nil
	}

	if !joined.truth.Degraded || joined.truth.HasLocalContext() {
		return nil
	}

	for _, fact := range joined.urlFacts {
		if !hasFlag(fact.Flags, trust.FlagLookupFailed) {
			return nil
		}
	}

	return fmt.Errorf("%w: indicators: %w", coreerrors.ErrAllStagesFailed, joined.indicatorsErr)
}

// assemble scores the joined signals and renders the final output.
func (e *Engine) assemble(req Request, joined joinedStages) domain.AnalysisOutput {
	if joined.indicatorsErr != nil {
		e.logger.Warn().Err(joined.indicatorsErr).
			Str("request_id", req.RequestID).
			Msg("indicators unavailable, scoring without collaborator signals")
	}

	result := e.scorer.Calculate(joined.indicators, joined.truth, joined.urlFacts)

	reasons := result.Reasons
	for _, stage := range joined.timedOutStages {
		reasons = append(reasons, fmt.Sprintf("analysis deadline elapsed before %s completed", stage))
	}

	output := domain.AnalysisOutput{
		RequestID:            req.RequestID,
		ScamProbabilityScore: result.Score,
		Classification:       result.Classification,
		Reasons:              reasons,
		Partial:              len(joined.timedOutStages) > 0,
		Degraded:             stagesDegraded(joined),
	}

	if joined.truth.HasLocalContext() {
		output.LocalContext = &domain.LocalContext{
			District:         req.District,
			LocalFlags:       joined.truth.LocalFlags,
			TrendingLocally:  joined.truth.TrendingLocally,
			CyberCellStatus:  joined.truth.CyberCellStatus,
			OfficialWarnings: joined.truth.OfficialWarnings,
		}
	}

	output.Alert = e.alerts.Generate(alert.Input{
		Score:            output.ScamProbabilityScore,
		Classification:   output.Classification,
		Reasons:          output.Reasons,
		Language:         req.Content.Language,
		LanguageDetected: req.Content.LanguageDetected,
		LocalContext:     output.LocalContext,
	})

	return output
}

// stagesDegraded reports whether any completed stage served a
// conservative default instead of real data: a degraded truth result,
// indicators lost to an open breaker, or URL facts whose domain lookup
// failed. Timed-out stages are Partial, not Degraded.
func stagesDegraded(joined joinedStages) bool {
	if joined.truth.Degraded {
		return true
	}

	if coreerrors.Is(joined.indicatorsErr, coreerrors.ErrCircuitOpen) {
		return true
	}

	if stageTimedOut(joined.timedOutStages, stageTrust) {
		return false
	}

	for _, fact := range joined.urlFacts {
		if hasFlag(fact.Flags, trust.FlagLookupFailed) || hasFlag(fact.Flags, trust.FlagResolveFailed) {
			return true
		}
	}

	return false
}

func stageTimedOut(stages []string, stage string) bool {
	for _, s := range stages {
		if s == stage {
			return true
		}
	}

	return false
}

// recordObservation persists suspicious patterns so the district history
// grows with every analysis. Runs detached from the request deadline.
func (e *Engine) recordObservation(ctx context.Context, req Request, joined joinedStages, patternHash, classification string) {
	if classification == domain.ClassLikelySafe {
		return
	}

	recordCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), recordTimeout)
	defer cancel()

	e.truth.RecordObservation(
		recordCtx,
		patternHash,
		req.District,
		req.Content.Language,
		scamTypeFor(joined.indicators),
		severityFor(classification),
	)
}

// scamTypeFor maps the dominant indicator onto a stored pattern type.
func scamTypeFor(ind domain.Indicators) domain.ScamType {
	switch {
	case ind.CredentialRequest:
		return domain.ScamTypeOTPTheft
	case ind.Impersonation:
		return domain.ScamTypeImpersonation
	case ind.FinancialRequest:
		return domain.ScamTypeFakeOffer
	default:
		return domain.ScamTypeOther
	}
}

func severityFor(classification string) string {
	if classification == domain.ClassHighRisk {
		return domain.SeverityHigh
	}

	return domain.SeverityMedium
}

func hasFlag(flags []string, flag string) bool {
	for _, f := range flags {
		if f == flag {
			return true
		}
	}

	return false
}
