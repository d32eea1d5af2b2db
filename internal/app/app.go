// Package app wires the engine together: breakers, stores, analyzers,
// the scoring pipeline, and the maintenance worker. Everything is
// constructed once per process and dependency-injected; there are no
// ambient singletons.
package app

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/lueurxax/scam-shield/internal/alert"
	"github.com/lueurxax/scam-shield/internal/analysis"
	"github.com/lueurxax/scam-shield/internal/core/domain"
	"github.com/lueurxax/scam-shield/internal/core/reasoning"
	"github.com/lueurxax/scam-shield/internal/platform/config"
	"github.com/lueurxax/scam-shield/internal/platform/observability"
	"github.com/lueurxax/scam-shield/internal/platform/resilience"
	"github.com/lueurxax/scam-shield/internal/process/maintenance"
	"github.com/lueurxax/scam-shield/internal/scoring"
	db "github.com/lueurxax/scam-shield/internal/storage"
	"github.com/lueurxax/scam-shield/internal/trust"
	"github.com/lueurxax/scam-shield/internal/truth"
)

// App holds the wired engine and its background workers.
type App struct {
	cfg         *config.Config
	database    *db.DB
	engine      *analysis.Engine
	maintenance *maintenance.Worker
	logger      *zerolog.Logger
}

// New constructs the full engine. Breakers are created here, one per
// external dependency kind, and live for the process lifetime.
func New(cfg *config.Config, database *db.DB, logger *zerolog.Logger) *App {
	breakerCfg := resilience.BreakerConfig{
		FailureThreshold: cfg.BreakerFailureThreshold,
		OpenTimeout:      cfg.BreakerOpenTimeout,
	}
	retryCfg := resilience.RetryConfig{
		MaxAttempts: cfg.RetryMaxAttempts,
		BaseDelay:   cfg.RetryBaseDelay,
	}

	reasoningBreaker := resilience.NewBreaker(resilience.DepReasoning, breakerCfg, logger)
	patternBreaker := resilience.NewBreaker(resilience.DepPatternStore, breakerCfg, logger)
	lookupBreaker := resilience.NewBreaker(resilience.DepDomainLookup, breakerCfg, logger)

	trustCfg := cfg.TrustCfg()
	resolver := trust.NewResolver(trustCfg.MaxRedirectHops, trustCfg.LookupRPS, trustCfg.LookupTimeout)
	provider := trust.NewHTTPFactProvider(trustCfg.LookupBaseURL, trustCfg.LookupTimeout)

	trustAnalyzer := trust.New(resolver, provider, database, lookupBreaker, trust.Config{
		RecordTTL:        trustCfg.RecordTTL,
		MemoryCacheTTL:   trustCfg.MemoryCacheTTL,
		NewDomainDays:    trustCfg.NewDomainDays,
		TyposquatMaxDist: trustCfg.TyposquatMaxDist,
		HighValueDomains: splitDomains(trustCfg.HighValueDomains),
		Retry:            retryCfg,
	}, logger)

	truthCfg := cfg.TruthCfg()
	truthEngine := truth.New(database, patternBreaker, truth.Config{
		LookbackDays:    truthCfg.LookbackDays,
		TrendWindowDays: truthCfg.TrendWindowDays,
		TrendMinReports: truthCfg.TrendMinReports,
		FallbackTTL:     truthCfg.FallbackCacheTTL,
		PatternTTL:      truthCfg.PatternTTL,
		Retry:           retryCfg,
	}, logger)

	engine := analysis.New(
		newExtractor(cfg, logger),
		reasoningBreaker,
		trustAnalyzer,
		truthEngine,
		scoring.New(),
		alert.New(logger),
		analysis.Config{
			TextDeadline:    cfg.TextDeadline,
			DerivedDeadline: cfg.DerivedDeadline,
			DefaultLanguage: cfg.DefaultLanguage,
			DefaultDistrict: cfg.DefaultDistrict,
			Retry:           retryCfg,
		},
		logger,
	)

	maintenanceWorker := maintenance.New(database, maintenance.Config{
		Interval:     cfg.MaintenanceInterval,
		ActiveWindow: cfg.PatternActiveWindow,
	}, logger)

	return &App{
		cfg:         cfg,
		database:    database,
		engine:      engine,
		maintenance: maintenanceWorker,
		logger:      logger,
	}
}

// Engine exposes the analysis engine for embedding callers.
func (a *App) Engine() *analysis.Engine {
	return a.engine
}

// Analyze runs one analysis request through the engine.
func (a *App) Analyze(ctx context.Context, req analysis.Request) (domain.AnalysisOutput, error) {
	return a.engine.Analyze(ctx, req)
}

// RunWorker runs the pattern maintenance loop until ctx is canceled.
func (a *App) RunWorker(ctx context.Context) error {
	return a.maintenance.Run(ctx)
}

// StartHealthServer starts the health check and metrics server.
func (a *App) StartHealthServer(ctx context.Context) error {
	server := observability.NewServer(a.database, a.cfg.HealthPort, a.logger)

	return server.Start(ctx)
}

// newExtractor picks the production collaborator when a key is present,
// the keyword mock otherwise.
func newExtractor(cfg *config.Config, logger *zerolog.Logger) reasoning.Extractor {
	if cfg.ReasoningAPIKey == "" {
		logger.Warn().Msg("no reasoning API key configured, using keyword mock extractor")

		return reasoning.NewMock()
	}

	return reasoning.NewOpenAI(reasoning.Config{
		APIKey: cfg.ReasoningAPIKey,
		Model:  cfg.ReasoningModel,
		RPS:    cfg.ReasoningRPS,
	}, logger)
}

func splitDomains(csv string) []string {
	if csv == "" {
		return nil
	}

	parts := strings.Split(csv, ",")
	domains := make([]string, 0, len(parts))

	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			domains = append(domains, trimmed)
		}
	}

	return domains
}
