package notifier

import (
	"context"
	"errors"

	kafkax "github.com/drtz/PiThermServer/internal/repository/kafka"
	"github.com/drtz/PiThermServer/internal/obs"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

var (
	mConsumed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "email_notifier_messages_consumed_total",
		Help: "Alert events consumed",
	})
	mSent = promauto.NewCounter(prometheus.CounterOpts{
		Name: "email_notifier_emails_sent_total",
		Help: "Emails sent",
	})
	mErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "email_notifier_errors_total",
		Help: "Alert events not delivered, by reason",
	}, []string{"reason"})
)

type Controller struct {
	Log *zap.Logger
	Sub *kafkax.Consumer
	UC  *Handler
}

func (c *Controller) Run(ctx context.Context) error {
	return c.Sub.Consume(ctx, kafkax.JSONHandler(c.handle))
}

// handle never returns an error so every event is committed: alerts are
// delivered at most once.
func (c *Controller) handle(ctx context.Context, _ []byte, ev *kafkax.AlertEvent) error {
	mConsumed.Inc()
	log := obs.WithTrace(ctx, c.Log)

	err := c.UC.HandleAlert(ctx, *ev)
	switch {
	case err == nil:
		mSent.Inc()
	case errors.Is(err, ErrInvalidEvent):
		mErrors.WithLabelValues("invalid").Inc()
		log.Warn("alert event ignored", zap.Error(err))
	default:
		mErrors.WithLabelValues("send").Inc()
		log.Error("alert delivery failed", zap.String("kind", string(ev.Kind)), zap.Error(err))
	}
	return nil
}
