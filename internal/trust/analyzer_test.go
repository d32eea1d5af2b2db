package trust

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lueurxax/scam-shield/internal/core/domain"
	"github.com/lueurxax/scam-shield/internal/platform/resilience"
)

var errLookupDown = errors.New("lookup service down")

type fakeFactProvider struct {
	mu    sync.Mutex
	facts DomainFacts
	err   error
	delay time.Duration
	calls int
}

func (p *fakeFactProvider) Lookup(_ context.Context, _ string) (DomainFacts, error) {
	p.mu.Lock()
	p.calls++
	p.mu.Unlock()

	if p.delay > 0 {
		time.Sleep(p.delay)
	}

	if p.err != nil {
		return DomainFacts{}, p.err
	}

	return p.facts, nil
}

func (p *fakeFactProvider) callCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.calls
}

type fakeTrustStore struct {
	mu   sync.Mutex
	recs map[string]domain.DomainTrustRecord
	puts int
}

func newFakeTrustStore() *fakeTrustStore {
	return &fakeTrustStore{recs: make(map[string]domain.DomainTrustRecord)}
}

func (s *fakeTrustStore) GetDomainTrust(_ context.Context, domainName string) (*domain.DomainTrustRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if rec, ok := s.recs[domainName]; ok {
		return &rec, nil
	}

	return nil, nil //nolint:nilnil // missing record is not an error
}

func (s *fakeTrustStore) PutDomainTrust(_ context.Context, rec domain.DomainTrustRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.recs[rec.Domain] = rec
	s.puts++

	return nil
}

type failingResolver struct{}

func (failingResolver) Resolve(_ context.Context, rawURL string) (Resolution, error) {
	return Resolution{FinalURL: rawURL}, errors.New("connect: connection refused")
}

func newTestAnalyzer(provider FactProvider, store TrustStore) *Analyzer {
	return newTestAnalyzerWithResolver(NewResolver(5, 100, time.Second), provider, store)
}

func newTestAnalyzerWithResolver(resolver RedirectResolver, provider FactProvider, store TrustStore) *Analyzer {
	logger := zerolog.Nop()
	breaker := resilience.NewBreaker(resilience.DepDomainLookup, resilience.DefaultBreakerConfig(), &logger)

	return New(resolver, provider, store, breaker, Config{
		Retry: resilience.RetryConfig{MaxAttempts: 1, BaseDelay: time.Millisecond},
	}, &logger)
}

func TestAnalyze_NewDomainAlwaysFlagged(t *testing.T) {
	provider := &fakeFactProvider{facts: DomainFacts{AgeDays: 5, ReputationTier: domain.TierTrusted, SSLValid: true}}
	analyzer := newTestAnalyzer(provider, newFakeTrustStore())

	fact := analyzer.Analyze(context.Background(), "https://brand-new-offer.com/claim")

	assert.Contains(t, fact.Flags, FlagNewDomain, "age under threshold flags regardless of reputation tier")
	assert.Equal(t, domain.TierTrusted, fact.ReputationTier)
	assert.Less(t, fact.TrustScore, 1.0)
}

func TestAnalyze_MatureTrustedDomainScoresHigh(t *testing.T) {
	provider := &fakeFactProvider{facts: DomainFacts{AgeDays: 4000, ReputationTier: domain.TierTrusted, SSLValid: true}}
	analyzer := newTestAnalyzer(provider, newFakeTrustStore())

	fact := analyzer.Analyze(context.Background(), "https://wikipedia.org/wiki/Go")

	assert.NotContains(t, fact.Flags, FlagNewDomain)
	assert.Greater(t, fact.TrustScore, 0.9)
}

func TestAnalyze_ConservativeOnLookupFailure(t *testing.T) {
	provider := &fakeFactProvider{err: errLookupDown}
	analyzer := newTestAnalyzer(provider, newFakeTrustStore())

	fact := analyzer.Analyze(context.Background(), "https://unreachable-domain.com/x")

	assert.InDelta(t, conservativeTrustScore, fact.TrustScore, 0.001)
	assert.Equal(t, domain.TierSuspicious, fact.ReputationTier)
	assert.Contains(t, fact.Flags, FlagLookupFailed)
}

func TestAnalyze_MalformedURLConservative(t *testing.T) {
	analyzer := newTestAnalyzer(&fakeFactProvider{}, newFakeTrustStore())

	fact := analyzer.Analyze(context.Background(), "not a url at all")

	assert.Contains(t, fact.Flags, FlagBadURL)
	assert.InDelta(t, conservativeTrustScore, fact.TrustScore, 0.001)
}

func TestAnalyze_TyposquatFlagged(t *testing.T) {
	provider := &fakeFactProvider{facts: DomainFacts{AgeDays: 400, ReputationTier: domain.TierUnknown, SSLValid: true}}
	analyzer := newTestAnalyzer(provider, newFakeTrustStore())

	fact := analyzer.Analyze(context.Background(), "https://paytrn.com/login")

	assert.Contains(t, fact.Flags, FlagTyposquat)
	assert.Equal(t, "paytm.com", fact.TyposquatTarget)
	assert.Equal(t, 2, fact.TyposquatDistance)
}

func TestAnalyze_StoreHitSkipsProvider(t *testing.T) {
	provider := &fakeFactProvider{}
	store := newFakeTrustStore()
	store.recs["cached-domain.com"] = domain.DomainTrustRecord{
		Domain:         "cached-domain.com",
		TrustScore:     0.8,
		ReputationTier: domain.TierTrusted,
		LastChecked:    time.Now(),
		TTL:            time.Hour,
	}

	analyzer := newTestAnalyzer(provider, store)

	fact := analyzer.Analyze(context.Background(), "https://cached-domain.com/page")

	assert.Equal(t, 0, provider.callCount())
	assert.Equal(t, domain.TierTrusted, fact.ReputationTier)
	assert.InDelta(t, 0.8, fact.TrustScore, 0.001, "persisted score is reused, not recomputed")
}

func TestAnalyze_StoreHitReusesPersistedScoreWithoutInferredFlags(t *testing.T) {
	provider := &fakeFactProvider{}
	store := newFakeTrustStore()
	store.recs["seen-before.com"] = domain.DomainTrustRecord{
		Domain:         "seen-before.com",
		TrustScore:     0.42,
		ReputationTier: domain.TierSuspicious,
		LastChecked:    time.Now(),
		TTL:            time.Hour,
	}

	analyzer := newTestAnalyzer(provider, store)

	fact := analyzer.Analyze(context.Background(), "https://seen-before.com/login")

	assert.Equal(t, 0, provider.callCount())
	assert.InDelta(t, 0.42, fact.TrustScore, 0.001)
	assert.Equal(t, domain.TierSuspicious, fact.ReputationTier)
	assert.NotContains(t, fact.Flags, FlagInvalidSSL, "no certificate was observed on a cached record")
	assert.NotContains(t, fact.Flags, FlagNewDomain, "age is unknown on a cached record")
}

func TestAnalyze_ShortenerResolutionFailureIsConservative(t *testing.T) {
	provider := &fakeFactProvider{facts: DomainFacts{AgeDays: 4000, ReputationTier: domain.TierTrusted, SSLValid: true}}
	analyzer := newTestAnalyzerWithResolver(failingResolver{}, provider, newFakeTrustStore())

	fact := analyzer.Analyze(context.Background(), "https://bit.ly/3xk9q")

	assert.InDelta(t, conservativeTrustScore, fact.TrustScore, 0.001)
	assert.Equal(t, domain.TierSuspicious, fact.ReputationTier)
	assert.Contains(t, fact.Flags, FlagShortener)
	assert.Contains(t, fact.Flags, FlagResolveFailed)
	assert.Equal(t, 0, provider.callCount(), "the shortener host itself must not be scored")
}

func TestAnalyze_LookupPersistedWithTTL(t *testing.T) {
	provider := &fakeFactProvider{facts: DomainFacts{AgeDays: 200, ReputationTier: domain.TierUnknown, SSLValid: true}}
	store := newFakeTrustStore()
	analyzer := newTestAnalyzer(provider, store)

	analyzer.Analyze(context.Background(), "https://some-shop.com/item")

	store.mu.Lock()
	rec, ok := store.recs["some-shop.com"]
	store.mu.Unlock()

	require.True(t, ok)
	assert.Positive(t, rec.TTL)
	assert.False(t, rec.LastChecked.IsZero())
}

func TestAnalyze_MemoryCacheServesRepeatLookups(t *testing.T) {
	provider := &fakeFactProvider{facts: DomainFacts{AgeDays: 200, ReputationTier: domain.TierUnknown, SSLValid: true}}
	analyzer := newTestAnalyzer(provider, newFakeTrustStore())

	analyzer.Analyze(context.Background(), "https://repeat.com/a")
	analyzer.Analyze(context.Background(), "https://repeat.com/b")

	assert.Equal(t, 1, provider.callCount())
}

func TestAnalyze_ConcurrentLookupsDeduplicated(t *testing.T) {
	provider := &fakeFactProvider{
		facts: DomainFacts{AgeDays: 200, ReputationTier: domain.TierUnknown, SSLValid: true},
		delay: 50 * time.Millisecond,
	}
	analyzer := newTestAnalyzer(provider, newFakeTrustStore())

	var wg sync.WaitGroup

	for i := 0; i < 2; i++ {
		wg.Add(1)

		go func() {
			defer wg.Done()
			analyzer.Analyze(context.Background(), "https://hot-domain.com/offer")
		}()
	}

	wg.Wait()

	assert.Equal(t, 1, provider.callCount(), "concurrent lookups for one domain must coalesce")
}
