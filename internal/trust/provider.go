package trust

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/araddon/dateparse"

	"github.com/lueurxax/scam-shield/internal/core/domain"
	coreerrors "github.com/lueurxax/scam-shield/internal/core/errors"
)

// DomainFacts are the raw facts a provider reports for a domain.
type DomainFacts struct {
	AgeDays        int
	ReputationTier domain.ReputationTier
	SSLValid       bool
}

// FactProvider looks up age, reputation, and SSL facts for a registrable
// domain. Implementations wrap external services; failures should be
// tagged retryable (ErrDependencyUnavailable) when transient.
type FactProvider interface {
	Lookup(ctx context.Context, domainName string) (DomainFacts, error)
}

const (
	tlsDialTimeout = 5 * time.Second
	httpsPort      = "443"
	hoursPerDay    = 24
)

// registrationResponse is the shape returned by the registration data
// service. Creation date formats vary per registry, so parsing is
// tolerant.
type registrationResponse struct {
	CreatedAt      string `json:"created_at"`
	ReputationTier string `json:"reputation_tier"`
}

// HTTPFactProvider queries a registration-data service for domain age and
// reputation, and validates the domain's TLS certificate directly.
type HTTPFactProvider struct {
	baseURL string
	client  *http.Client
	now     func() time.Time
}

// NewHTTPFactProvider creates a provider against the given lookup service.
func NewHTTPFactProvider(baseURL string, timeout time.Duration) *HTTPFactProvider {
	return &HTTPFactProvider{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
		now:     time.Now,
	}
}

// Lookup fetches registration facts and checks TLS validity.
func (p *HTTPFactProvider) Lookup(ctx context.Context, domainName string) (DomainFacts, error) {
	facts := DomainFacts{ReputationTier: domain.TierUnknown}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		fmt.Sprintf("%s/v1/domains/%s", p.baseURL, domainName), nil)
	if err != nil {
		return facts, fmt.Errorf("create lookup request: %w", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return facts, fmt.Errorf("%w: domain lookup: %w", coreerrors.ErrDependencyUnavailable, err)
	}

	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode >= http.StatusInternalServerError {
		return facts, fmt.Errorf("%w: domain lookup status %d", coreerrors.ErrDependencyUnavailable, resp.StatusCode)
	}

	if resp.StatusCode != http.StatusOK {
		return facts, fmt.Errorf("%w: domain lookup status %d", coreerrors.ErrDependencyFatal, resp.StatusCode)
	}

	var body registrationResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return facts, fmt.Errorf("decode lookup response: %w", err)
	}

	if body.CreatedAt != "" {
		// Registries disagree on date formats; parse whatever arrives.
		createdAt, parseErr := dateparse.ParseAny(body.CreatedAt)
		if parseErr == nil {
			facts.AgeDays = int(p.now().Sub(createdAt).Hours() / hoursPerDay)
		}
	}

	if tier := domain.ReputationTier(body.ReputationTier); tier != "" {
		facts.ReputationTier = tier
	}

	facts.SSLValid = p.checkTLS(ctx, domainName)

	return facts, nil
}

// checkTLS dials the domain's HTTPS port and verifies the certificate
// chain. Any handshake failure counts as invalid.
func (p *HTTPFactProvider) checkTLS(ctx context.Context, domainName string) bool {
	dialer := &tls.Dialer{
		NetDialer: &net.Dialer{Timeout: tlsDialTimeout},
		Config:    &tls.Config{ServerName: domainName, MinVersion: tls.VersionTLS12},
	}

	conn, err := dialer.DialContext(ctx, "tcp", net.JoinHostPort(domainName, httpsPort))
	if err != nil {
		return false
	}

	_ = conn.Close()

	return true
}
