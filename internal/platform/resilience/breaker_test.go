package resilience

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	coreerrors "github.com/lueurxax/scam-shield/internal/core/errors"
)

var errDependency = errors.New("dependency blew up")

func newTestBreaker(now *time.Time) *Breaker {
	logger := zerolog.Nop()
	b := NewBreaker("test_dependency", BreakerConfig{FailureThreshold: 5, OpenTimeout: time.Minute}, &logger)
	b.now = func() time.Time { return *now }

	return b
}

func failTimes(t *testing.T, b *Breaker, n int) {
	t.Helper()

	for i := 0; i < n; i++ {
		err := b.Do(context.Background(), func(_ context.Context) error {
			return errDependency
		})
		require.ErrorIs(t, err, errDependency)
	}
}

func TestBreaker_OpensAfterThresholdAndFastFails(t *testing.T) {
	now := time.Now()
	b := newTestBreaker(&now)

	failTimes(t, b, 5)
	assert.Equal(t, StateOpen, b.State())

	var invoked atomic.Int32

	err := b.Do(context.Background(), func(_ context.Context) error {
		invoked.Add(1)

		return nil
	})

	require.ErrorIs(t, err, coreerrors.ErrCircuitOpen)
	assert.Equal(t, int32(0), invoked.Load(), "open breaker must not invoke the dependency")
}

func TestBreaker_SuccessResetsFailureCount(t *testing.T) {
	now := time.Now()
	b := newTestBreaker(&now)

	failTimes(t, b, 4)

	err := b.Do(context.Background(), func(_ context.Context) error { return nil })
	require.NoError(t, err)

	// The counter restarted, so four more failures stay below threshold.
	failTimes(t, b, 4)
	assert.Equal(t, StateClosed, b.State())
}

func TestBreaker_HalfOpenProbeSuccessCloses(t *testing.T) {
	now := time.Now()
	b := newTestBreaker(&now)

	failTimes(t, b, 5)
	require.Equal(t, StateOpen, b.State())

	now = now.Add(61 * time.Second)

	var invoked atomic.Int32

	err := b.Do(context.Background(), func(_ context.Context) error {
		invoked.Add(1)

		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, int32(1), invoked.Load())
	assert.Equal(t, StateClosed, b.State())
}

func TestBreaker_HalfOpenProbeFailureReopens(t *testing.T) {
	now := time.Now()
	b := newTestBreaker(&now)

	failTimes(t, b, 5)

	now = now.Add(61 * time.Second)

	err := b.Do(context.Background(), func(_ context.Context) error {
		return errDependency
	})
	require.ErrorIs(t, err, errDependency)
	assert.Equal(t, StateOpen, b.State())

	// Open again: fast-fail until another timeout elapses.
	err = b.Do(context.Background(), func(_ context.Context) error { return nil })
	assert.ErrorIs(t, err, coreerrors.ErrCircuitOpen)
}

func TestBreaker_SingleHalfOpenProbe(t *testing.T) {
	now := time.Now()
	b := newTestBreaker(&now)

	failTimes(t, b, 5)

	now = now.Add(61 * time.Second)

	probeStarted := make(chan struct{})
	release := make(chan struct{})
	probeErr := make(chan error, 1)

	go func() {
		probeErr <- b.Do(context.Background(), func(_ context.Context) error {
			close(probeStarted)
			<-release

			return nil
		})
	}()

	<-probeStarted

	// A second caller while the probe is in flight must fast-fail.
	err := b.Do(context.Background(), func(_ context.Context) error { return nil })
	assert.ErrorIs(t, err, coreerrors.ErrCircuitOpen)

	close(release)
	require.NoError(t, <-probeErr)
	assert.Equal(t, StateClosed, b.State())
}

func TestBreaker_Reset(t *testing.T) {
	now := time.Now()
	b := newTestBreaker(&now)

	failTimes(t, b, 5)
	require.Equal(t, StateOpen, b.State())

	b.Reset()
	assert.Equal(t, StateClosed, b.State())

	err := b.Do(context.Background(), func(_ context.Context) error { return nil })
	assert.NoError(t, err)
}
