// Package trust implements the domain trust analyzer: shortener
// resolution, typosquat detection, and trust scoring backed by a layered
// DomainTrustRecord cache.
//
// The analyzer never blocks the pipeline: any sub-step failure yields a
// conservative, suspicious-leaning trust score instead of an error.
package trust

import (
	"context"
	"net/url"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/rs/zerolog"
	"golang.org/x/net/publicsuffix"
	"golang.org/x/sync/singleflight"

	"github.com/lueurxax/scam-shield/internal/core/domain"
	"github.com/lueurxax/scam-shield/internal/platform/observability"
	"github.com/lueurxax/scam-shield/internal/platform/resilience"
)

// Trust formula weights. Fixed; tuned against labeled phishing corpora.
const (
	tierWeight      = 0.45
	ageWeight       = 0.25
	sslWeight       = 0.15
	typosquatWeight = 0.15

	ageMaturityDays = 365
	redirectPenalty = 0.2

	conservativeTrustScore = 0.2
)

// Flag strings surfaced on URLFact and folded into reasons.
const (
	FlagNewDomain     = "new domain"
	FlagTyposquat     = "possible typosquat"
	FlagShortener     = "shortened link"
	FlagRedirectCap   = "suspicious redirect chain"
	FlagInvalidSSL    = "invalid ssl certificate"
	FlagLookupFailed  = "domain lookup failed"
	FlagResolveFailed = "shortened link could not be resolved"
	FlagBadURL        = "malformed url"
)

// Tier base scores for the trust formula.
var tierScores = map[domain.ReputationTier]float64{
	domain.TierTrusted:    0.95,
	domain.TierUnknown:    0.50,
	domain.TierSuspicious: 0.20,
	domain.TierMalicious:  0.00,
}

// RedirectResolver follows shortener redirect chains to their final
// destination.
type RedirectResolver interface {
	Resolve(ctx context.Context, rawURL string) (Resolution, error)
}

// TrustStore persists DomainTrustRecords across requests.
type TrustStore interface {
	GetDomainTrust(ctx context.Context, domainName string) (*domain.DomainTrustRecord, error)
	PutDomainTrust(ctx context.Context, rec domain.DomainTrustRecord) error
}

// Config holds analyzer settings.
type Config struct {
	RecordTTL        time.Duration
	MemoryCacheTTL   time.Duration
	NewDomainDays    int
	TyposquatMaxDist int
	HighValueDomains []string
	Retry            resilience.RetryConfig
}

// Analyzer computes trust facts for extracted URLs.
type Analyzer struct {
	resolver RedirectResolver
	provider FactProvider
	store    TrustStore
	breaker  *resilience.Breaker

	memCache *gocache.Cache
	flight   singleflight.Group

	cfg    Config
	now    func() time.Time
	logger *zerolog.Logger
}

// New creates an analyzer. The breaker guards the external fact provider
// and is shared process-wide for the domain_lookup dependency.
func New(resolver RedirectResolver, provider FactProvider, store TrustStore, breaker *resilience.Breaker, cfg Config, logger *zerolog.Logger) *Analyzer {
	if cfg.NewDomainDays <= 0 {
		cfg.NewDomainDays = 30
	}

	if cfg.TyposquatMaxDist <= 0 {
		cfg.TyposquatMaxDist = 2
	}

	if cfg.RecordTTL <= 0 {
		cfg.RecordTTL = 24 * time.Hour
	}

	if cfg.MemoryCacheTTL <= 0 {
		cfg.MemoryCacheTTL = 10 * time.Minute
	}

	return &Analyzer{
		resolver: resolver,
		provider: provider,
		store:    store,
		breaker:  breaker,
		memCache: gocache.New(cfg.MemoryCacheTTL, 2*cfg.MemoryCacheTTL),
		cfg:      cfg,
		now:      time.Now,
		logger:   logger,
	}
}

// Analyze derives trust facts for one URL. It never returns an error:
// failed sub-steps degrade to conservative facts with explanatory flags.
func (a *Analyzer) Analyze(ctx context.Context, rawURL string) domain.URLFact {
	fact := domain.URLFact{URL: rawURL, ReputationTier: domain.TierUnknown}

	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Hostname() == "" {
		fact.TrustScore = conservativeTrustScore
		fact.ReputationTier = domain.TierSuspicious
		fact.Flags = append(fact.Flags, FlagBadURL)

		return fact
	}

	finalURL := rawURL

	if IsShortener(parsed.Hostname()) {
		fact.IsShortener = true
		fact.Flags = append(fact.Flags, FlagShortener)

		resolution, resolveErr := a.resolver.Resolve(ctx, rawURL)
		fact.RedirectHops = resolution.Hops

		if resolveErr != nil {
			a.logger.Warn().Err(resolveErr).Str("url", rawURL).Msg("shortener resolution failed")

			// The destination is unknown; scoring the shortener host itself
			// would inherit its reputation.
			fact.TrustScore = conservativeTrustScore
			fact.ReputationTier = domain.TierSuspicious
			fact.Flags = append(fact.Flags, FlagResolveFailed)

			return fact
		}

		finalURL = resolution.FinalURL

		if resolution.CapExceeded {
			fact.Flags = append(fact.Flags, FlagRedirectCap)
		}
	}

	fact.ResolvedDestination = finalURL
	fact.Domain = registrableDomain(finalURL)

	if fact.Domain == "" {
		fact.TrustScore = conservativeTrustScore
		fact.ReputationTier = domain.TierSuspicious
		fact.Flags = append(fact.Flags, FlagBadURL)

		return fact
	}

	if match := TyposquatCheck(fact.Domain, a.cfg.HighValueDomains, a.cfg.TyposquatMaxDist); match != nil {
		fact.TyposquatDistance = match.Distance
		fact.TyposquatTarget = match.Target
		fact.Flags = append(fact.Flags, FlagTyposquat)
	}

	outcome, lookupErr := a.lookupFacts(ctx, fact.Domain)
	if lookupErr != nil {
		a.logger.Warn().Err(lookupErr).
			Str("component", "trust").
			Str("domain", fact.Domain).
			Msg("domain fact lookup failed, using conservative score")

		fact.TrustScore = conservativeTrustScore
		fact.ReputationTier = domain.TierSuspicious
		fact.Flags = append(fact.Flags, FlagLookupFailed)

		return fact
	}

	if rec := outcome.record; rec != nil {
		// A persisted record carries the score computed at fetch time.
		// No fresh facts were observed, so no fact-derived flags either.
		fact.AgeDays = -1
		fact.ReputationTier = rec.ReputationTier
		fact.TrustScore = rec.TrustScore

		return fact
	}

	facts := outcome.facts

	fact.AgeDays = facts.AgeDays
	fact.ReputationTier = facts.ReputationTier
	fact.SSLValid = facts.SSLValid

	if facts.AgeDays >= 0 && facts.AgeDays < a.cfg.NewDomainDays {
		// Always flagged, regardless of reputation tier.
		fact.Flags = append(fact.Flags, FlagNewDomain)
	}

	if !facts.SSLValid {
		fact.Flags = append(fact.Flags, FlagInvalidSSL)
	}

	fact.TrustScore = a.score(fact)

	return fact
}

// score applies the fixed weighted trust formula and clamps to [0, 1].
func (a *Analyzer) score(fact domain.URLFact) float64 {
	tierScore, ok := tierScores[fact.ReputationTier]
	if !ok {
		tierScore = tierScores[domain.TierUnknown]
	}

	// AgeDays -1 means age is unknown (cache round-trip); treat as neutral.
	ageScore := 0.5
	if fact.AgeDays >= 0 {
		ageScore = float64(fact.AgeDays) / ageMaturityDays
		if ageScore > 1 {
			ageScore = 1
		}
	}

	sslScore := 0.0
	if fact.SSLValid {
		sslScore = 1.0
	}

	typoScore := 1.0
	if fact.TyposquatTarget != "" {
		typoScore = 0.0
	}

	score := tierWeight*tierScore + ageWeight*ageScore + sslWeight*sslScore + typosquatWeight*typoScore

	if fact.RedirectHops > 0 && hasFlag(fact.Flags, FlagRedirectCap) {
		score -= redirectPenalty
	}

	if score < 0 {
		return 0
	}

	if score > 1 {
		return 1
	}

	return score
}

// lookupOutcome is what the cache layers hand back: fresh provider
// facts, or a persisted record whose score is reused as-is.
type lookupOutcome struct {
	facts  DomainFacts
	record *domain.DomainTrustRecord
}

// lookupFacts serves domain facts through the cache layers: in-process
// TTL cache, then the persistent trust store, then a
// singleflight-deduplicated external lookup wrapped by retry and the
// breaker.
func (a *Analyzer) lookupFacts(ctx context.Context, domainName string) (lookupOutcome, error) {
	if cached, ok := a.memCache.Get(domainName); ok {
		observability.TrustCacheHits.WithLabelValues("memory").Inc()

		return cached.(lookupOutcome), nil
	}

	if rec, err := a.store.GetDomainTrust(ctx, domainName); err == nil && rec != nil {
		observability.TrustCacheHits.WithLabelValues("store").Inc()

		outcome := lookupOutcome{record: rec}
		a.memCache.Set(domainName, outcome, gocache.DefaultExpiration)

		return outcome, nil
	}

	observability.TrustCacheMisses.Inc()

	result, err, shared := a.flight.Do(domainName, func() (interface{}, error) {
		return a.fetchAndPersist(ctx, domainName)
	})
	if shared {
		observability.TrustLookupsDeduped.Inc()
	}

	if err != nil {
		return lookupOutcome{}, err
	}

	return result.(lookupOutcome), nil
}

// fetchAndPersist performs the external lookup and writes the derived
// trust record with its TTL.
func (a *Analyzer) fetchAndPersist(ctx context.Context, domainName string) (interface{}, error) {
	var facts DomainFacts

	err := a.breaker.Do(ctx, func(ctx context.Context) error {
		return resilience.Retry(ctx, a.cfg.Retry, func(ctx context.Context) error {
			var lookupErr error
			facts, lookupErr = a.provider.Lookup(ctx, domainName)

			if lookupErr != nil {
				observability.RetriesTotal.WithLabelValues(resilience.DepDomainLookup).Inc()
			}

			return lookupErr
		})
	})
	if err != nil {
		return lookupOutcome{}, err
	}

	a.memCache.Set(domainName, lookupOutcome{facts: facts}, gocache.DefaultExpiration)

	rec := domain.DomainTrustRecord{
		Domain:         domainName,
		TrustScore:     a.score(domain.URLFact{Domain: domainName, AgeDays: facts.AgeDays, ReputationTier: facts.ReputationTier, SSLValid: facts.SSLValid}),
		ReputationTier: facts.ReputationTier,
		LastChecked:    a.now(),
		TTL:            a.cfg.RecordTTL,
	}

	if putErr := a.store.PutDomainTrust(ctx, rec); putErr != nil {
		a.logger.Warn().Err(putErr).Str("domain", domainName).Msg("failed to persist trust record")
	}

	return lookupOutcome{facts: facts}, nil
}

func registrableDomain(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}

	host := strings.ToLower(parsed.Hostname())
	if host == "" {
		return ""
	}

	etld, err := publicsuffix.EffectiveTLDPlusOne(host)
	if err != nil {
		return host
	}

	return etld
}

func hasFlag(flags []string, flag string) bool {
	for _, f := range flags {
		if f == flag {
			return true
		}
	}

	return false
}
