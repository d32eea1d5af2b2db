package truth

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lueurxax/scam-shield/internal/core/domain"
	coreerrors "github.com/lueurxax/scam-shield/internal/core/errors"
	"github.com/lueurxax/scam-shield/internal/platform/resilience"
)

const (
	testHash     = "a1b2c3"
	testDistrict = "Pune"
)

type fakePatternStore struct {
	mu         sync.Mutex
	patterns   []domain.ScamPattern
	trendCount int
	report     *domain.CyberCellReport
	failing    bool
	upserts    []domain.ScamPattern
}

func (s *fakePatternStore) GetPatterns(_ context.Context, _, _ string) ([]domain.ScamPattern, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failing {
		return nil, coreerrors.ErrDependencyFatal
	}

	return s.patterns, nil
}

func (s *fakePatternStore) UpsertPattern(_ context.Context, p domain.ScamPattern) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failing {
		return coreerrors.ErrDependencyFatal
	}

	s.upserts = append(s.upserts, p)

	return nil
}

func (s *fakePatternStore) QueryTrend(_ context.Context, _ string, _ time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failing {
		return 0, coreerrors.ErrDependencyFatal
	}

	return s.trendCount, nil
}

func (s *fakePatternStore) GetCyberCellReport(_ context.Context, _ string) (*domain.CyberCellReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failing {
		return nil, coreerrors.ErrDependencyFatal
	}

	return s.report, nil
}

func (s *fakePatternStore) setFailing(failing bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.failing = failing
}

func newTestEngine(store PatternStore) *Engine {
	logger := zerolog.Nop()
	breaker := resilience.NewBreaker(resilience.DepPatternStore, resilience.DefaultBreakerConfig(), &logger)

	return New(store, breaker, Config{
		PatternTTL: time.Hour,
		Retry:      resilience.RetryConfig{MaxAttempts: 1, BaseDelay: time.Millisecond},
	}, &logger)
}

func TestVerifyClaim_SumsRecentDistrictReports(t *testing.T) {
	now := time.Now()
	store := &fakePatternStore{
		patterns: []domain.ScamPattern{
			{PatternHash: testHash, District: testDistrict, ReportCount: 7, FirstSeen: now.Add(-40 * 24 * time.Hour), LastSeen: now.Add(-time.Hour)},
			{PatternHash: testHash, District: testDistrict, ReportCount: 5, FirstSeen: now.Add(-200 * 24 * time.Hour), LastSeen: now.Add(-2 * 24 * time.Hour)},
		},
	}

	engine := newTestEngine(store)

	result := engine.VerifyClaim(context.Background(), testHash, testDistrict, "en")

	assert.Equal(t, 12, result.LocalFlags)
	assert.Len(t, result.RelatedPatterns, 2)
	assert.False(t, result.Degraded)
	assert.Positive(t, result.LocalWeight)
}

func TestVerifyClaim_IgnoresReportsOutsideLookback(t *testing.T) {
	now := time.Now()
	store := &fakePatternStore{
		patterns: []domain.ScamPattern{
			{PatternHash: testHash, District: testDistrict, ReportCount: 9, FirstSeen: now.Add(-400 * 24 * time.Hour), LastSeen: now.Add(-120 * 24 * time.Hour)},
		},
	}

	engine := newTestEngine(store)

	result := engine.VerifyClaim(context.Background(), testHash, testDistrict, "en")

	assert.Zero(t, result.LocalFlags)
	assert.Empty(t, result.RelatedPatterns)
}

func TestVerifyClaim_TrendingWhenRecentSpikeExceedsBaseline(t *testing.T) {
	now := time.Now()
	store := &fakePatternStore{
		patterns: []domain.ScamPattern{
			// About one report per week historically.
			{PatternHash: testHash, District: testDistrict, ReportCount: 10, FirstSeen: now.Add(-70 * 24 * time.Hour), LastSeen: now.Add(-time.Hour)},
		},
		trendCount: 15,
	}

	engine := newTestEngine(store)

	result := engine.VerifyClaim(context.Background(), testHash, testDistrict, "en")

	assert.True(t, result.TrendingLocally)
}

func TestVerifyClaim_NotTrendingAtBaselineRate(t *testing.T) {
	now := time.Now()
	store := &fakePatternStore{
		patterns: []domain.ScamPattern{
			{PatternHash: testHash, District: testDistrict, ReportCount: 10, FirstSeen: now.Add(-70 * 24 * time.Hour), LastSeen: now.Add(-time.Hour)},
		},
		trendCount: 1,
	}

	engine := newTestEngine(store)

	result := engine.VerifyClaim(context.Background(), testHash, testDistrict, "en")

	assert.False(t, result.TrendingLocally)
}

func TestVerifyClaim_SurfacesCyberCellReport(t *testing.T) {
	store := &fakePatternStore{
		report: &domain.CyberCellReport{
			OfficialStatus: domain.CyberCellStatusConfirmed,
			PublicWarning:  "Do not share OTPs with callers claiming to be bank staff.",
		},
	}

	engine := newTestEngine(store)

	result := engine.VerifyClaim(context.Background(), testHash, testDistrict, "en")

	assert.Equal(t, domain.CyberCellStatusConfirmed, result.CyberCellStatus)
	require.Len(t, result.OfficialWarnings, 1)
	assert.Contains(t, result.OfficialWarnings[0], "OTP")
}

func TestVerifyClaim_DegradedFallbackServesLastGoodResult(t *testing.T) {
	now := time.Now()
	store := &fakePatternStore{
		patterns: []domain.ScamPattern{
			{PatternHash: testHash, District: testDistrict, ReportCount: 4, FirstSeen: now.Add(-30 * 24 * time.Hour), LastSeen: now.Add(-time.Hour)},
		},
	}

	engine := newTestEngine(store)

	warm := engine.VerifyClaim(context.Background(), testHash, testDistrict, "en")
	require.Equal(t, 4, warm.LocalFlags)
	require.False(t, warm.Degraded)

	store.setFailing(true)

	degraded := engine.VerifyClaim(context.Background(), testHash, testDistrict, "en")

	assert.True(t, degraded.Degraded)
	assert.Equal(t, 4, degraded.LocalFlags, "fallback serves the last fetched result")
}

func TestVerifyClaim_ColdFallbackIsZeroValueDegraded(t *testing.T) {
	store := &fakePatternStore{}
	store.setFailing(true)

	engine := newTestEngine(store)

	result := engine.VerifyClaim(context.Background(), testHash, testDistrict, "en")

	assert.True(t, result.Degraded)
	assert.Zero(t, result.LocalFlags)
	assert.Zero(t, result.LocalWeight)
}

func TestRecordObservation_UpsertsWithExpiry(t *testing.T) {
	store := &fakePatternStore{}
	engine := newTestEngine(store)

	engine.RecordObservation(context.Background(), testHash, testDistrict, "hi", domain.ScamTypeOTPTheft, domain.SeverityHigh)

	require.Len(t, store.upserts, 1)
	p := store.upserts[0]
	assert.Equal(t, testHash, p.PatternHash)
	assert.Equal(t, testDistrict, p.District)
	assert.Equal(t, domain.PatternStatusActive, p.Status)
	require.NotNil(t, p.ExpiresAt)
	assert.True(t, p.ExpiresAt.After(time.Now()))
}

func TestRecordObservation_NoDistrictIsNoop(t *testing.T) {
	store := &fakePatternStore{}
	engine := newTestEngine(store)

	engine.RecordObservation(context.Background(), testHash, "", "en", domain.ScamTypeOther, domain.SeverityMedium)

	assert.Empty(t, store.upserts)
}
