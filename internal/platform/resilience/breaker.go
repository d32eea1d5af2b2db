package resilience

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	coreerrors "github.com/lueurxax/scam-shield/internal/core/errors"
	"github.com/lueurxax/scam-shield/internal/platform/observability"
)

const (
	defaultFailureThreshold = 5
	defaultOpenTimeout      = 60 * time.Second
)

// Dependency kinds with process-lifetime breaker state. One breaker
// instance exists per kind.
const (
	DepLanguageDetection = "language_detection"
	DepOCR               = "ocr"
	DepTranscription     = "transcription"
	DepReasoning         = "reasoning"
	DepPatternStore      = "pattern_store"
	DepDomainLookup      = "domain_lookup"
)

// State is the circuit breaker state.
type State int

const (
	StateClosed State = iota
	StateOpen
	StateHalfOpen
)

func (s State) String() string {
	switch s {
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "closed"
	}
}

// BreakerConfig configures a circuit breaker.
type BreakerConfig struct {
	FailureThreshold int
	OpenTimeout      time.Duration
}

// DefaultBreakerConfig returns the default breaker configuration:
// open after 5 consecutive failures, half-open probe after 60s.
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		FailureThreshold: defaultFailureThreshold,
		OpenTimeout:      defaultOpenTimeout,
	}
}

// Breaker implements the circuit breaker pattern for one external
// dependency. While open, calls fail immediately with ErrCircuitOpen
// without invoking the wrapped operation. Once OpenTimeout elapses since
// the last failure, exactly one half-open probe is allowed: its success
// closes the circuit, its failure reopens it.
type Breaker struct {
	dependency string
	threshold  int
	timeout    time.Duration

	mu                  sync.Mutex
	state               State
	consecutiveFailures int
	lastFailure         time.Time
	probeInFlight       bool

	now    func() time.Time
	logger *zerolog.Logger
}

// NewBreaker creates a breaker for the named dependency.
func NewBreaker(dependency string, cfg BreakerConfig, logger *zerolog.Logger) *Breaker {
	if cfg.FailureThreshold <= 0 {
		cfg.FailureThreshold = defaultFailureThreshold
	}

	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = defaultOpenTimeout
	}

	return &Breaker{
		dependency: dependency,
		threshold:  cfg.FailureThreshold,
		timeout:    cfg.OpenTimeout,
		state:      StateClosed,
		now:        time.Now,
		logger:     logger,
	}
}

// Do runs fn through the breaker. The returned error is either
// ErrCircuitOpen (fast-fail, fn not invoked) or fn's own error.
func (b *Breaker) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := b.acquire(); err != nil {
		return err
	}

	err := fn(ctx)
	b.record(err == nil)

	return err
}

// acquire checks whether a call may proceed, transitioning open ->
// half-open when the open timeout has elapsed. In half-open state only a
// single probe is admitted; concurrent callers fast-fail.
func (b *Breaker) acquire() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case StateClosed:
		return nil
	case StateOpen:
		if b.now().Sub(b.lastFailure) < b.timeout {
			return fmt.Errorf("%w: %s", coreerrors.ErrCircuitOpen, b.dependency)
		}

		b.setState(StateHalfOpen)
		b.probeInFlight = true

		return nil
	default: // StateHalfOpen
		if b.probeInFlight {
			return fmt.Errorf("%w: %s probe in flight", coreerrors.ErrCircuitOpen, b.dependency)
		}

		b.probeInFlight = true

		return nil
	}
}

// record updates breaker state after a call completes.
func (b *Breaker) record(success bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == StateHalfOpen {
		b.probeInFlight = false

		if success {
			b.consecutiveFailures = 0
			b.setState(StateClosed)
		} else {
			b.lastFailure = b.now()
			b.setState(StateOpen)
		}

		return
	}

	if success {
		b.consecutiveFailures = 0

		return
	}

	b.consecutiveFailures++
	b.lastFailure = b.now()

	if b.state == StateClosed && b.consecutiveFailures >= b.threshold {
		b.setState(StateOpen)

		if b.logger != nil {
			b.logger.Warn().
				Str("dependency", b.dependency).
				Int("consecutive_failures", b.consecutiveFailures).
				Dur("open_timeout", b.timeout).
				Msg("circuit breaker opened")
		}
	}
}

// setState transitions state and updates the exported gauge. Callers
// hold b.mu.
func (b *Breaker) setState(s State) {
	b.state = s
	observability.BreakerState.WithLabelValues(b.dependency).Set(float64(s))
}

// State returns the current breaker state.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.state
}

// Reset restores the breaker to its initial closed state.
func (b *Breaker) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.consecutiveFailures = 0
	b.lastFailure = time.Time{}
	b.probeInFlight = false
	b.setState(StateClosed)
}
