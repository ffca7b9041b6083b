package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type noWait struct{}

func (noWait) Next(int) time.Duration { return 0 }

func TestExpoJitter_Caps(t *testing.T) {
	b := ExpoJitter{Base: 100 * time.Millisecond, Max: time.Second}

	assert.Equal(t, 100*time.Millisecond, b.Next(0))
	assert.Equal(t, 400*time.Millisecond, b.Next(2))
	assert.Equal(t, time.Second, b.Next(10))
}

func TestExpoJitter_Bounds(t *testing.T) {
	b := ExpoJitter{Base: time.Second, Jitter: 0.2}
	for i := 0; i < 50; i++ {
		d := b.Next(0)
		assert.GreaterOrEqual(t, d, 800*time.Millisecond)
		assert.LessOrEqual(t, d, 1200*time.Millisecond)
	}
}

func TestDo_SucceedsAfterRetries(t *testing.T) {
	calls := 0
	err := Do(context.Background(), func() error {
		calls++
		if calls < 3 {
			return errors.New("not yet")
		}
		return nil
	}, Policy{Name: "test_ok", Attempts: 5, Backoff: noWait{}})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
	assert.Equal(t, 3.0, testutil.ToFloat64(retryAttempts.WithLabelValues("test_ok")))
}

func TestDo_Exhausts(t *testing.T) {
	boom := errors.New("boom")
	var exhausted error
	err := Do(context.Background(), func() error { return boom }, Policy{
		Name:      "test_exhaust",
		Attempts:  2,
		Backoff:   noWait{},
		OnExhaust: func(err error) { exhausted = err },
	})

	require.ErrorIs(t, err, boom)
	assert.ErrorIs(t, exhausted, boom)
	assert.Equal(t, 1.0, testutil.ToFloat64(retryExhausted.WithLabelValues("test_exhaust")))
}

func TestDo_StopsOnNonRetryable(t *testing.T) {
	calls := 0
	err := Do(context.Background(), func() error {
		calls++
		return context.Canceled
	}, StartupPolicy("test_startup", nil))

	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestDo_ContextCancelDuringBackoff(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Do(ctx, func() error { return errors.New("down") }, Policy{
		Name:     "test_cancel",
		Attempts: 3,
		Backoff:  ExpoJitter{Base: time.Hour},
	})
	require.ErrorIs(t, err, context.Canceled)
}

func TestDo_PermanentStopsImmediately(t *testing.T) {
	calls := 0
	boom := errors.New("bad dsn")
	err := Do(context.Background(), func() error {
		calls++
		return Permanent(boom)
	}, Policy{Name: "test_permanent", Attempts: 5, Backoff: noWait{}})

	require.ErrorIs(t, err, boom)
	assert.True(t, IsPermanent(err))
	assert.Equal(t, 1, calls)
	assert.Nil(t, Permanent(nil))
}
