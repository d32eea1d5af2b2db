// Package resilience provides retry and circuit breaker primitives that
// wrap every call to an external collaborator or store. Breakers are
// constructed once per process and dependency-injected so tests can
// substitute fresh instances per case.
package resilience

import (
	"context"
	"fmt"
	"time"

	coreerrors "github.com/lueurxax/scam-shield/internal/core/errors"
)

const (
	defaultMaxAttempts = 3
	defaultBaseDelay   = time.Second
)

// RetryConfig configures retry behavior for external calls.
type RetryConfig struct {
	MaxAttempts int
	BaseDelay   time.Duration
}

// DefaultRetryConfig returns the default retry configuration:
// three retries with delays of 1s, 2s, and 4s before them.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts: defaultMaxAttempts,
		BaseDelay:   defaultBaseDelay,
	}
}

// Retry invokes op once and then retries it up to cfg.MaxAttempts more
// times. Only errors reporting retryable (coreerrors.Retryable) are
// retried; the delay before retry k (0-indexed) is BaseDelay * 2^k, so
// the defaults yield 1s, 2s, 4s. Exhausting the budget returns the last
// error wrapped in ErrRetryExhausted so callers can map it to a
// conservative default instead of aborting.
func Retry(ctx context.Context, cfg RetryConfig, op func(ctx context.Context) error) error {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = defaultMaxAttempts
	}

	if cfg.BaseDelay <= 0 {
		cfg.BaseDelay = defaultBaseDelay
	}

	var lastErr error

	delay := cfg.BaseDelay

	for attempt := 0; attempt <= cfg.MaxAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return fmt.Errorf("retry interrupted: %w", ctx.Err())
			case <-timeAfter(delay):
				delay *= 2
			}
		}

		lastErr = op(ctx)
		if lastErr == nil {
			return nil
		}

		if !coreerrors.Retryable(lastErr) {
			return lastErr
		}
	}

	return fmt.Errorf("%w: %w", coreerrors.ErrRetryExhausted, lastErr)
}

// timeAfter is swapped in tests to avoid real sleeps.
var timeAfter = time.After
