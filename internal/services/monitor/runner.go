package monitor

import (
	"context"
	"errors"
	"time"

	"github.com/drtz/PiThermServer/internal/domain/reading"
	"github.com/drtz/PiThermServer/internal/sensor"
	"go.uber.org/zap"
)

type Runner struct {
	Log      *zap.Logger
	UC       *Usecase
	Interval time.Duration
}

func New(log *zap.Logger, uc *Usecase, interval time.Duration) *Runner {
	return &Runner{Log: log, UC: uc, Interval: interval}
}

func (r *Runner) tick(ctx context.Context) {
	start := time.Now()
	defer func() { mLoopDur.Observe(time.Since(start).Seconds()) }()

	out, err := r.UC.Tick(ctx)
	if err != nil {
		var re *sensor.ReadError
		switch {
		case errors.As(err, &re):
			mSensorErrors.Inc()
			r.Log.Warn("sensor read failed; skipping tick", zap.Error(err))
		case reading.IsStorageError(err):
			mStorageErrors.Inc()
			r.Log.Error("storage error; skipping tick", zap.Error(err))
		case ctx.Err() != nil:
		default:
			r.Log.Error("tick error", zap.Error(err))
		}
		return
	}

	mSamples.Inc()
	mLastCelsius.Set(out.Reading.Celsius)
	if out.Classification == reading.OutOfRange {
		mOutOfRange.Inc()
	}
	if out.Decision != DecisionNone {
		mDecisions.WithLabelValues(out.Decision.String()).Inc()
	}
	r.Log.Debug("sampled",
		zap.Int64("unix_time", out.Reading.UnixTime),
		zap.Float64("celsius", out.Reading.Celsius),
		zap.Stringer("class", out.Classification),
		zap.Int("run_length", out.RunLength),
		zap.Stringer("decision", out.Decision),
	)
}

func (r *Runner) Run(ctx context.Context) error {
	r.UC.Restore(ctx)

	ticker := time.NewTicker(r.Interval)
	defer ticker.Stop()

	r.tick(ctx)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			r.tick(ctx)
		}
	}
}
