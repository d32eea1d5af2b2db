package trust

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	defaultResolveTimeout = 5 * time.Second
	defaultMaxHops        = 5
	globalLimiterBurst    = 5
	domainLimiterRate     = 1
	domainLimiterBurst    = 2
)

// Known URL shortener hosts. Links through these are always resolved to
// their destination before trust analysis.
var shortenerHosts = map[string]bool{
	"bit.ly":      true,
	"goo.gl":      true,
	"tinyurl.com": true,
	"ow.ly":       true,
	"buff.ly":     true,
	"is.gd":       true,
	"v.gd":        true,
	"cutt.ly":     true,
	"rebrand.ly":  true,
	"t.co":        true,
	"t.ly":        true,
	"rb.gy":       true,
	"shorturl.at": true,
}

// IsShortener reports whether the host is a known URL shortener.
func IsShortener(host string) bool {
	return shortenerHosts[strings.ToLower(strings.TrimPrefix(host, "www."))]
}

// Resolution is the outcome of following a redirect chain.
type Resolution struct {
	FinalURL string
	Hops     int
	// CapExceeded is set when the chain hit the hop cap or looped.
	// Callers treat it as a suspicious signal, not an error.
	CapExceeded bool
}

// Resolver follows shortener redirect chains hop by hop, bounded by a
// fixed cap, with global and per-domain rate limiting on outbound
// requests.
type Resolver struct {
	client         *http.Client
	maxHops        int
	globalLimiter  *rate.Limiter
	domainLimiters map[string]*rate.Limiter
	mu             sync.RWMutex
	userAgent      string
}

// NewResolver creates a resolver with the given hop cap and request rate.
func NewResolver(maxHops int, rps float64, timeout time.Duration) *Resolver {
	if maxHops <= 0 {
		maxHops = defaultMaxHops
	}

	if timeout <= 0 {
		timeout = defaultResolveTimeout
	}

	return &Resolver{
		client: &http.Client{
			Timeout: timeout,
			// Redirects are followed manually so hops can be counted
			// and loops detected.
			CheckRedirect: func(_ *http.Request, _ []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		maxHops:        maxHops,
		globalLimiter:  rate.NewLimiter(rate.Limit(rps), globalLimiterBurst),
		domainLimiters: make(map[string]*rate.Limiter),
		userAgent:      "ScamShield/1.0 (Link Safety Scanner)",
	}
}

// Resolve follows the redirect chain starting at rawURL. A chain that
// exceeds the hop cap or revisits a URL returns the last known URL with
// CapExceeded set instead of failing.
func (r *Resolver) Resolve(ctx context.Context, rawURL string) (Resolution, error) {
	current := rawURL
	seen := map[string]bool{current: true}

	for hop := 0; hop < r.maxHops; hop++ {
		next, redirected, err := r.fetchLocation(ctx, current)
		if err != nil {
			return Resolution{FinalURL: current, Hops: hop}, err
		}

		if !redirected {
			return Resolution{FinalURL: current, Hops: hop}, nil
		}

		if seen[next] {
			return Resolution{FinalURL: current, Hops: hop, CapExceeded: true}, nil
		}

		seen[next] = true
		current = next
	}

	return Resolution{FinalURL: current, Hops: r.maxHops, CapExceeded: true}, nil
}

// fetchLocation issues a single request and returns the redirect target
// if the response is a redirect.
func (r *Resolver) fetchLocation(ctx context.Context, rawURL string) (string, bool, error) {
	if err := r.globalLimiter.Wait(ctx); err != nil {
		return "", false, fmt.Errorf("global rate limiter wait: %w", err)
	}

	host := extractHost(rawURL)
	if err := r.getDomainLimiter(host).Wait(ctx); err != nil {
		return "", false, fmt.Errorf("domain rate limiter wait: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, rawURL, nil)
	if err != nil {
		return "", false, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("User-Agent", r.userAgent)

	resp, err := r.client.Do(req)
	if err != nil {
		return "", false, fmt.Errorf("fetch %s: %w", rawURL, err)
	}

	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < http.StatusMultipleChoices || resp.StatusCode >= http.StatusBadRequest {
		return "", false, nil
	}

	location := resp.Header.Get("Location")
	if location == "" {
		return "", false, nil
	}

	base, err := url.Parse(rawURL)
	if err != nil {
		return "", false, fmt.Errorf("parse url: %w", err)
	}

	target, err := base.Parse(location)
	if err != nil {
		return "", false, fmt.Errorf("parse redirect location: %w", err)
	}

	return target.String(), true, nil
}

func (r *Resolver) getDomainLimiter(host string) *rate.Limiter {
	r.mu.RLock()
	limiter, ok := r.domainLimiters[host]
	r.mu.RUnlock()

	if ok {
		return limiter
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if limiter, ok = r.domainLimiters[host]; ok {
		return limiter
	}

	limiter = rate.NewLimiter(domainLimiterRate, domainLimiterBurst)
	r.domainLimiters[host] = limiter

	return limiter
}

func extractHost(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}

	return parsed.Hostname()
}
