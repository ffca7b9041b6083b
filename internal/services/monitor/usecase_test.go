package monitor

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/drtz/PiThermServer/internal/domain/notification"
	"github.com/drtz/PiThermServer/internal/domain/reading"
	"github.com/drtz/PiThermServer/internal/repository/memory"
	"github.com/drtz/PiThermServer/internal/sensor"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type scriptedSensor struct {
	values []float64
	clock  *fakeClock
	fail   bool
}

func (s *scriptedSensor) Read(context.Context) (reading.Reading, error) {
	if s.fail || len(s.values) == 0 {
		return reading.Reading{}, &sensor.ReadError{Source: "test", Err: errors.New("no device")}
	}
	v := s.values[0]
	s.values = s.values[1:]
	return reading.Reading{UnixTime: s.clock.Now().UnixMilli(), Celsius: v}, nil
}

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) advance(d time.Duration) { c.now = c.now.Add(d) }

type recordingDispatcher struct {
	msgs []notification.Message
	err  error
}

func (d *recordingDispatcher) Dispatch(msg notification.Message) error {
	if d.err != nil {
		return d.err
	}
	d.msgs = append(d.msgs, msg)
	return nil
}

type failingStates struct{}

func (failingStates) Load(context.Context) (notification.ThrottleState, error) {
	return notification.ThrottleState{}, errors.New("redis down")
}

func (failingStates) Save(context.Context, notification.ThrottleState) error {
	return errors.New("redis down")
}

type fixture struct {
	uc    *Usecase
	clock *fakeClock
	sens  *scriptedSensor
	out   *recordingDispatcher
	repo  *memory.ReadingRepo
}

func newFixture(values ...float64) *fixture {
	clock := &fakeClock{now: t0}
	f := &fixture{
		clock: clock,
		sens:  &scriptedSensor{values: values, clock: clock},
		out:   &recordingDispatcher{},
		repo:  memory.NewReadingRepo(),
	}
	f.uc = &Usecase{
		Sensor:     f.sens,
		Readings:   f.repo,
		States:     memory.NewStateStore(),
		Out:        f.out,
		Throttle:   Throttle{Cooldown: 30 * time.Minute},
		Range:      band,
		Recipients: []string{"ops@example.com"},
		Clock:      clock,
		Log:        zap.NewNop(),
	}
	return f
}

func (f *fixture) tickEvery(t *testing.T, step time.Duration, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		_, err := f.uc.Tick(context.Background())
		require.NoError(t, err)
		f.clock.advance(step)
	}
}

func TestTick_FirstReadingInRange(t *testing.T) {
	f := newFixture(25)

	out, err := f.uc.Tick(context.Background())
	require.NoError(t, err)
	assert.Equal(t, reading.InRange, out.Classification)
	assert.Equal(t, DecisionNone, out.Decision)
	assert.Empty(t, f.out.msgs)
	assert.False(t, f.uc.State().Notified())
	assert.Equal(t, 1, f.repo.Len())
}

func TestTick_FirstFailure(t *testing.T) {
	f := newFixture(30)

	out, err := f.uc.Tick(context.Background())
	require.NoError(t, err)
	assert.Equal(t, DecisionFirstFailure, out.Decision)
	assert.Equal(t, 1, out.RunLength)
	require.Len(t, f.out.msgs, 1)
	assert.Equal(t, "Last temperature reading was out of desired range: 30 C", f.out.msgs[0].Body)
	assert.Equal(t, []string{"ops@example.com"}, f.out.msgs[0].Recipients)
	assert.Equal(t, t0.UnixMilli(), f.uc.State().LastNotification)

	st, err := f.uc.States.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, f.uc.State(), st)
}

func TestTick_FullCycle(t *testing.T) {
	// one in-range reading, eight out five minutes apart, then back in twice
	f := newFixture(20, 30, 30, 30, 30, 30, 30, 30, 30, 22, 23)
	f.tickEvery(t, 5*time.Minute, 9)

	require.Len(t, f.out.msgs, 2)
	assert.Equal(t, notification.KindFirstFailure, f.out.msgs[0].Kind)
	assert.Equal(t, notification.KindStillFailing, f.out.msgs[1].Kind)
	assert.Equal(t, 8, f.out.msgs[1].RunLength)
	assert.Contains(t, f.out.msgs[1].Body, "Last 8 temperature readings")

	f.tickEvery(t, 5*time.Minute, 2)
	require.Len(t, f.out.msgs, 3)
	assert.Equal(t, notification.KindRecovered, f.out.msgs[2].Kind)
	assert.False(t, f.uc.State().Notified())
}

func TestTick_SensorErrorIsNoEvent(t *testing.T) {
	f := newFixture()
	f.sens.fail = true

	_, err := f.uc.Tick(context.Background())
	var re *sensor.ReadError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, 0, f.repo.Len())
	assert.Empty(t, f.out.msgs)
}

type failingAppend struct{ *memory.ReadingRepo }

func (failingAppend) Append(context.Context, reading.Reading) error {
	return reading.NewStorageError("append", errors.New("disk full"))
}

func TestTick_StorageErrorAbortsTick(t *testing.T) {
	f := newFixture(30)
	f.uc.Readings = failingAppend{f.repo}

	_, err := f.uc.Tick(context.Background())
	require.Error(t, err)
	assert.True(t, reading.IsStorageError(err))
	assert.Empty(t, f.out.msgs)
	assert.False(t, f.uc.State().Notified())
}

func TestTick_DispatchFailureKeepsState(t *testing.T) {
	f := newFixture(30, 31)
	f.out.err = notification.ErrQueueFull

	_, err := f.uc.Tick(context.Background())
	require.NoError(t, err)
	assert.True(t, f.uc.State().Notified())

	f.clock.advance(time.Minute)
	out, err := f.uc.Tick(context.Background())
	require.NoError(t, err)
	assert.Equal(t, DecisionNone, out.Decision)
}

func TestTick_StateStoreFailuresAreNotFatal(t *testing.T) {
	f := newFixture(30)
	f.uc.States = failingStates{}

	f.uc.Restore(context.Background())
	out, err := f.uc.Tick(context.Background())
	require.NoError(t, err)
	assert.Equal(t, DecisionFirstFailure, out.Decision)
	assert.True(t, f.uc.State().Notified())
}

func TestRestore_ResumesNotified(t *testing.T) {
	f := newFixture(30)
	require.NoError(t, f.uc.States.Save(context.Background(), notification.ThrottleState{LastNotification: t0.Add(-time.Minute).UnixMilli()}))

	f.uc.Restore(context.Background())
	out, err := f.uc.Tick(context.Background())
	require.NoError(t, err)
	assert.Equal(t, DecisionNone, out.Decision)
}

func TestRunner_TickMetrics(t *testing.T) {
	f := newFixture(30)
	r := New(zap.NewNop(), f.uc, time.Minute)

	before := testutil.ToFloat64(mSamples)
	firsts := testutil.ToFloat64(mDecisions.WithLabelValues("first_failure"))
	r.tick(context.Background())

	assert.Equal(t, before+1, testutil.ToFloat64(mSamples))
	assert.Equal(t, firsts+1, testutil.ToFloat64(mDecisions.WithLabelValues("first_failure")))
	assert.Equal(t, 30.0, testutil.ToFloat64(mLastCelsius))

	sensorErrs := testutil.ToFloat64(mSensorErrors)
	r.tick(context.Background())
	assert.Equal(t, sensorErrs+1, testutil.ToFloat64(mSensorErrors))
}

func TestRunner_StopsOnCancel(t *testing.T) {
	f := newFixture(20)
	r := New(zap.NewNop(), f.uc, time.Hour)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := r.Run(ctx)
	require.ErrorIs(t, err, context.Canceled)
}
