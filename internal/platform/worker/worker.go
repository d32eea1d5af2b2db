// Package worker provides the background loop primitive used by the
// pattern maintenance sweeps: poll, process, recover, repeat until the
// context is canceled.
package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

const logFieldWorker = "worker"

// ProcessFunc runs one iteration of work. It should return quickly when
// no work is available.
type ProcessFunc func(ctx context.Context) error

// Config configures a worker loop.
type Config struct {
	// Name identifies the worker for logging.
	Name string

	// PollInterval is the time between process iterations.
	PollInterval time.Duration

	// Process is called each iteration.
	Process ProcessFunc

	Logger *zerolog.Logger
}

// Loop runs the worker until ctx is canceled. Process errors are logged
// and the loop continues; a panicking iteration is recovered so one bad
// sweep cannot kill the worker.
func Loop(ctx context.Context, cfg Config) error {
	logger := cfg.Logger
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}

	logger.Info().Str(logFieldWorker, cfg.Name).Msg("starting worker loop")

	defer func() {
		logger.Info().Str(logFieldWorker, cfg.Name).Msg("worker loop stopped")
	}()

	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("worker loop %s: %w", cfg.Name, ctx.Err())
		default:
		}

		runProcessStep(ctx, cfg, logger)

		if err := Wait(ctx, cfg.PollInterval); err != nil {
			return err
		}
	}
}

// runProcessStep executes one Process call with panic recovery.
func runProcessStep(ctx context.Context, cfg Config, logger *zerolog.Logger) {
	if cfg.Process == nil {
		return
	}

	defer recoverPanic(logger, cfg.Name)

	if err := cfg.Process(ctx); err != nil {
		logger.Error().Err(err).Str(logFieldWorker, cfg.Name).Msg("process error")
	}
}

func recoverPanic(logger *zerolog.Logger, name string) {
	if r := recover(); r != nil {
		logger.Error().
			Interface("panic", r).
			Str(logFieldWorker, name).
			Msg("recovered from panic")
	}
}

// Wait blocks until d elapses or ctx is canceled.
// Returns a wrapped context error if ctx is canceled.
func Wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}

	select {
	case <-ctx.Done():
		return fmt.Errorf("wait interrupted: %w", ctx.Err())
	case <-time.After(d):
		return nil
	}
}
