package notifier

import (
	"context"
	"errors"
	"fmt"

	"github.com/drtz/PiThermServer/internal/domain/notification"
	kafkax "github.com/drtz/PiThermServer/internal/repository/kafka"
	"github.com/drtz/PiThermServer/internal/obs"
	"go.uber.org/zap"
)

var ErrInvalidEvent = errors.New("invalid alert event")

type Handler struct {
	Store notification.Repo
	Out   notification.Sender
	Clock notification.Clock
	Log   *zap.Logger
}

func validKind(k notification.Kind) bool {
	switch k {
	case notification.KindFirstFailure, notification.KindStillFailing, notification.KindRecovered:
		return true
	}
	return false
}

// HandleAlert mails one alert. Delivery is attempted once; a failed send is
// reported to the caller but never retried here.
func (h *Handler) HandleAlert(ctx context.Context, ev kafkax.AlertEvent) error {
	if !validKind(ev.Kind) || ev.Subject == "" {
		return fmt.Errorf("%w: kind=%q", ErrInvalidEvent, ev.Kind)
	}
	if len(ev.Recipients) == 0 {
		return fmt.Errorf("%w: no recipients", ErrInvalidEvent)
	}

	msg := ev.Message()
	if err := h.Out.Send(ctx, msg); err != nil {
		return fmt.Errorf("send email: %w", err)
	}

	if h.Store == nil {
		return nil
	}
	if err := h.Store.Create(ctx, &notification.Notification{
		Kind:       msg.Kind,
		Transport:  "smtp",
		Subject:    msg.Subject,
		Payload:    msg.Body,
		Recipients: msg.Recipients,
		SentAt:     h.Clock.Now().UTC(),
	}); err != nil {
		obs.WithTrace(ctx, h.Log).Warn("notification log write failed", zap.Error(err))
	}
	return nil
}
