// Package truth implements the regional truth engine: district-scoped
// pattern history, local trend detection, Cyber Cell report lookup, and
// the local-context weight that amplifies regional evidence.
//
// Pattern store unavailability is the designated graceful-degradation
// path: results are then served from a bounded fallback cache and tagged
// degraded, never raised as errors.
package truth

import (
	"context"
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/rs/zerolog"

	"github.com/lueurxax/scam-shield/internal/core/domain"
	"github.com/lueurxax/scam-shield/internal/platform/observability"
	"github.com/lueurxax/scam-shield/internal/platform/resilience"
)

const (
	defaultLookbackDays    = 90
	defaultTrendWindowDays = 7
	defaultTrendMinReports = 3
	defaultFallbackTTL     = time.Hour
	hoursPerDay            = 24
	daysPerWeek            = 7

	// trendBaselineFactor: trending requires the recent window to exceed
	// twice the historical weekly baseline.
	trendBaselineFactor = 2
)

// PatternStore is the narrow, mockable interface over the district
// pattern and cyber cell report store.
type PatternStore interface {
	GetPatterns(ctx context.Context, patternHash, district string) ([]domain.ScamPattern, error)
	UpsertPattern(ctx context.Context, p domain.ScamPattern) error
	QueryTrend(ctx context.Context, district string, since time.Time) (int, error)
	GetCyberCellReport(ctx context.Context, patternHash string) (*domain.CyberCellReport, error)
}

// Config holds truth engine settings.
type Config struct {
	LookbackDays    int
	TrendWindowDays int
	TrendMinReports int
	FallbackTTL     time.Duration
	PatternTTL      time.Duration
	Retry           resilience.RetryConfig
}

// Engine verifies claims against district-scoped history.
type Engine struct {
	store    PatternStore
	breaker  *resilience.Breaker
	fallback *gocache.Cache
	cfg      Config
	now      func() time.Time
	logger   *zerolog.Logger
}

// New creates a truth engine. The breaker is the process-wide
// pattern_store breaker.
func New(store PatternStore, breaker *resilience.Breaker, cfg Config, logger *zerolog.Logger) *Engine {
	if cfg.LookbackDays <= 0 {
		cfg.LookbackDays = defaultLookbackDays
	}

	if cfg.TrendWindowDays <= 0 {
		cfg.TrendWindowDays = defaultTrendWindowDays
	}

	if cfg.TrendMinReports <= 0 {
		cfg.TrendMinReports = defaultTrendMinReports
	}

	if cfg.FallbackTTL <= 0 {
		cfg.FallbackTTL = defaultFallbackTTL
	}

	return &Engine{
		store:    store,
		breaker:  breaker,
		fallback: gocache.New(cfg.FallbackTTL, 2*cfg.FallbackTTL),
		cfg:      cfg,
		now:      time.Now,
		logger:   logger,
	}
}

// VerifyClaim checks a content fingerprint against the district's
// history. On store unavailability it serves the fallback cache with
// Degraded set; it never returns an error.
func (e *Engine) VerifyClaim(ctx context.Context, patternHash, district, language string) domain.TruthVerificationResult {
	result, err := e.verify(ctx, patternHash, district)
	if err != nil {
		e.logger.Warn().Err(err).
			Str("component", "truth").
			Str("district", district).
			Msg("pattern store unavailable, serving degraded result")

		observability.DegradedResults.WithLabelValues(resilience.DepPatternStore).Inc()

		return e.fromFallback(patternHash, district)
	}

	e.fallback.Set(fallbackKey(patternHash, district), result, gocache.DefaultExpiration)

	return result
}

// verify runs the store-backed verification path.
func (e *Engine) verify(ctx context.Context, patternHash, district string) (domain.TruthVerificationResult, error) {
	var result domain.TruthVerificationResult

	err := e.breaker.Do(ctx, func(ctx context.Context) error {
		return resilience.Retry(ctx, e.cfg.Retry, func(ctx context.Context) error {
			var verifyErr error
			result, verifyErr = e.verifyOnce(ctx, patternHash, district)

			if verifyErr != nil {
				observability.RetriesTotal.WithLabelValues(resilience.DepPatternStore).Inc()
			}

			return verifyErr
		})
	})
	if err != nil {
		return domain.TruthVerificationResult{}, err
	}

	return result, nil
}

func (e *Engine) verifyOnce(ctx context.Context, patternHash, district string) (domain.TruthVerificationResult, error) {
	now := e.now()
	lookbackStart := now.Add(-time.Duration(e.cfg.LookbackDays) * hoursPerDay * time.Hour)

	patterns, err := e.store.GetPatterns(ctx, patternHash, district)
	if err != nil {
		return domain.TruthVerificationResult{}, fmt.Errorf("get patterns: %w", err)
	}

	result := domain.TruthVerificationResult{}

	for _, p := range patterns {
		if p.LastSeen.Before(lookbackStart) {
			continue
		}

		result.LocalFlags += p.ReportCount
		result.RelatedPatterns = append(result.RelatedPatterns, p.PatternHash)
	}

	trending, err := e.trendingLocally(ctx, district, patterns, now)
	if err != nil {
		return domain.TruthVerificationResult{}, err
	}

	result.TrendingLocally = trending

	report, err := e.store.GetCyberCellReport(ctx, patternHash)
	if err != nil {
		return domain.TruthVerificationResult{}, fmt.Errorf("get cyber cell report: %w", err)
	}

	if report != nil {
		result.CyberCellStatus = report.OfficialStatus

		if report.PublicWarning != "" {
			result.OfficialWarnings = append(result.OfficialWarnings, report.PublicWarning)
		}
	}

	result.LocalWeight = LocalWeight(result.LocalFlags, result.TrendingLocally, result.CyberCellStatus)

	return result, nil
}

// trendingLocally reports whether recent district activity exceeds the
// pattern's historical weekly baseline.
func (e *Engine) trendingLocally(ctx context.Context, district string, patterns []domain.ScamPattern, now time.Time) (bool, error) {
	windowStart := now.Add(-time.Duration(e.cfg.TrendWindowDays) * hoursPerDay * time.Hour)

	recent, err := e.store.QueryTrend(ctx, district, windowStart)
	if err != nil {
		return false, fmt.Errorf("query trend: %w", err)
	}

	threshold := e.cfg.TrendMinReports
	if baseline := weeklyBaseline(patterns, now); baseline*trendBaselineFactor > threshold {
		threshold = baseline * trendBaselineFactor
	}

	return recent > threshold, nil
}

// weeklyBaseline estimates the average weekly report rate over each
// pattern's lifetime in the district.
func weeklyBaseline(patterns []domain.ScamPattern, now time.Time) int {
	var total, weeks int

	for _, p := range patterns {
		ageDays := int(now.Sub(p.FirstSeen).Hours() / hoursPerDay)
		if ageDays < daysPerWeek {
			ageDays = daysPerWeek
		}

		total += p.ReportCount
		weeks += ageDays / daysPerWeek
	}

	if weeks == 0 {
		return 0
	}

	return total / weeks
}

// RecordObservation upserts the pattern so every analyzed request
// enriches district history. Failures are logged, never surfaced: the
// analysis result does not depend on the write.
func (e *Engine) RecordObservation(ctx context.Context, patternHash, district, language string, scamType domain.ScamType, severity string) {
	if district == "" {
		return
	}

	expiresAt := e.now().Add(e.cfg.PatternTTL)

	err := e.store.UpsertPattern(ctx, domain.ScamPattern{
		PatternHash: patternHash,
		District:    district,
		ScamType:    scamType,
		Language:    language,
		Severity:    severity,
		Status:      domain.PatternStatusActive,
		ExpiresAt:   &expiresAt,
	})
	if err != nil {
		e.logger.Warn().Err(err).Str("district", district).Msg("failed to record pattern observation")

		return
	}

	observability.PatternsRecorded.WithLabelValues(district).Inc()
}

// fromFallback serves the most recently fetched result for the key, or a
// zero-value degraded result when the cache is cold.
func (e *Engine) fromFallback(patternHash, district string) domain.TruthVerificationResult {
	if cached, ok := e.fallback.Get(fallbackKey(patternHash, district)); ok {
		observability.TruthFallbackServed.Inc()

		result := cached.(domain.TruthVerificationResult)
		result.Degraded = true

		return result
	}

	return domain.TruthVerificationResult{Degraded: true}
}

func fallbackKey(patternHash, district string) string {
	return patternHash + ":" + district
}
