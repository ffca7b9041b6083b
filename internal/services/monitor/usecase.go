package monitor

import (
	"context"
	"errors"
	"fmt"

	"github.com/drtz/PiThermServer/internal/domain/notification"
	"github.com/drtz/PiThermServer/internal/domain/reading"
	"github.com/drtz/PiThermServer/internal/obs"
	"github.com/drtz/PiThermServer/internal/sensor"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

type Dispatcher interface {
	Dispatch(msg notification.Message) error
}

// Outcome describes what one tick did.
type Outcome struct {
	Reading        reading.Reading
	Classification reading.Classification
	RunLength      int
	Decision       Decision
}

// Usecase is one sampling step. It is the sole owner of the throttle state and
// must only be driven from a single goroutine.
type Usecase struct {
	Sensor     sensor.Source
	Readings   reading.Repo
	States     notification.StateStore
	Out        Dispatcher
	Throttle   Throttle
	Range      reading.Range
	Recipients []string
	Clock      notification.Clock
	Log        *zap.Logger

	state notification.ThrottleState
}

func (u *Usecase) State() notification.ThrottleState { return u.state }

// Restore loads throttle state persisted by a previous run. Failure leaves the
// throttle idle.
func (u *Usecase) Restore(ctx context.Context) {
	if u.States == nil {
		return
	}
	st, err := u.States.Load(ctx)
	if err != nil {
		u.Log.Warn("throttle state load failed; starting idle", zap.Error(err))
		return
	}
	u.state = st
	if st.Notified() {
		u.Log.Info("throttle state restored", zap.Int64("last_notification", st.LastNotification))
	}
}

func (u *Usecase) Tick(ctx context.Context) (Outcome, error) {
	tr := otel.Tracer("monitor.uc")
	ctx, span := tr.Start(ctx, "monitor.tick")
	defer span.End()

	var out Outcome

	rd, err := u.Sensor.Read(ctx)
	if err != nil {
		return out, obs.Fail(span, err, "sensor read")
	}
	out.Reading = rd
	span.SetAttributes(attribute.Float64("reading.celsius", rd.Celsius), attribute.Int64("reading.unix_time", rd.UnixTime))

	if err := u.Readings.Append(ctx, rd); err != nil {
		return out, obs.Fail(span, fmt.Errorf("append reading: %w", err), "append")
	}

	out.Classification = Classify(rd, u.Range)
	span.SetAttributes(attribute.String("reading.class", out.Classification.String()))

	var run reading.FailureRun
	if out.Classification == reading.OutOfRange {
		run, err = DetectRun(ctx, u.Readings, u.Range)
		if err != nil {
			return out, obs.Fail(span, fmt.Errorf("detect failure run: %w", err), "detect run")
		}
		out.RunLength = run.Len()
	}

	now := u.Clock.Now()
	decision, next := u.Throttle.Evaluate(u.state, out.Classification, now)
	out.Decision = decision
	span.SetAttributes(attribute.String("throttle.decision", decision.String()))

	if next != u.state {
		u.state = next
		u.persist(ctx)
	}

	if decision != DecisionNone {
		msg := BuildMessage(decision, rd, run, u.Recipients, now)
		if err := u.Out.Dispatch(msg); err != nil {
			obs.WithTrace(ctx, u.Log).Warn("alert not queued",
				zap.String("kind", string(msg.Kind)), zap.Error(err))
		}
	}
	return out, nil
}

func (u *Usecase) persist(ctx context.Context) {
	if u.States == nil {
		return
	}
	if err := u.States.Save(ctx, u.state); err != nil && !errors.Is(err, context.Canceled) {
		obs.WithTrace(ctx, u.Log).Warn("throttle state save failed", zap.Error(err))
	}
}
