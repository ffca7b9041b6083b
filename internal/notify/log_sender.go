package notify

import (
	"context"

	"github.com/drtz/PiThermServer/internal/domain/notification"
	"go.uber.org/zap"
)

// LogSender writes alerts to the log instead of delivering them.
type LogSender struct {
	Log    *zap.Logger
	Reason string
}

var _ notification.Sender = LogSender{}

func (s LogSender) Send(_ context.Context, msg notification.Message) error {
	s.Log.Info("not sending notification",
		zap.String("reason", s.Reason),
		zap.String("kind", string(msg.Kind)),
		zap.String("subject", msg.Subject),
		zap.String("body", msg.Body),
	)
	return nil
}
