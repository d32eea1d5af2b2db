// Package maintenance runs the background pattern hygiene loop: expired
// rows are deleted per their TTL, and active patterns with no recent
// sightings age into historical status. Aging is one-way; nothing here
// ever reactivates a pattern.
package maintenance

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/lueurxax/scam-shield/internal/platform/worker"
)

const (
	defaultInterval     = time.Hour
	defaultActiveWindow = 30 * 24 * time.Hour
)

// PatternMaintainer is the slice of the pattern store the worker needs.
type PatternMaintainer interface {
	ExpirePatterns(ctx context.Context, before time.Time) (int64, error)
	MarkStaleInactive(ctx context.Context, lastSeenBefore time.Time) (int64, error)
}

// Config holds maintenance settings.
type Config struct {
	// Interval between maintenance sweeps.
	Interval time.Duration
	// ActiveWindow is how long a pattern stays active without a new
	// sighting before aging to historical.
	ActiveWindow time.Duration
}

// Worker is the pattern maintenance loop.
type Worker struct {
	store  PatternMaintainer
	cfg    Config
	now    func() time.Time
	logger *zerolog.Logger
}

// New creates a maintenance worker.
func New(store PatternMaintainer, cfg Config, logger *zerolog.Logger) *Worker {
	if cfg.Interval <= 0 {
		cfg.Interval = defaultInterval
	}

	if cfg.ActiveWindow <= 0 {
		cfg.ActiveWindow = defaultActiveWindow
	}

	return &Worker{
		store:  store,
		cfg:    cfg,
		now:    time.Now,
		logger: logger,
	}
}

// Run blocks until the context is canceled, sweeping on each interval.
func (w *Worker) Run(ctx context.Context) error {
	return worker.Loop(ctx, worker.Config{
		Name:         "pattern-maintenance",
		PollInterval: w.cfg.Interval,
		Process:      w.sweep,
		Logger:       w.logger,
	})
}

// sweep runs one maintenance pass. Errors are returned for the loop's
// logging but never stop the worker.
func (w *Worker) sweep(ctx context.Context) error {
	now := w.now()

	expired, err := w.store.ExpirePatterns(ctx, now)
	if err != nil {
		return err
	}

	aged, err := w.store.MarkStaleInactive(ctx, now.Add(-w.cfg.ActiveWindow))
	if err != nil {
		return err
	}

	if expired > 0 || aged > 0 {
		w.logger.Info().
			Int64("expired", expired).
			Int64("aged_to_historical", aged).
			Msg("pattern maintenance sweep completed")
	}

	return nil
}
