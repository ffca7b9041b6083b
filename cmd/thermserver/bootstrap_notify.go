package main

import (
	"context"

	config "github.com/drtz/PiThermServer/internal/config/thermserver"
	"github.com/drtz/PiThermServer/internal/domain/notification"
	"github.com/drtz/PiThermServer/internal/notify"
	kafkax "github.com/drtz/PiThermServer/internal/repository/kafka"
	notifier "github.com/drtz/PiThermServer/internal/services/email-notifier"
	"go.uber.org/zap"
)

// initSender picks the notification transport. It returns the transport name
// actually in use and a closer for any connection it opened.
func initSender(ctx context.Context, cfg *config.Config, l *zap.Logger) (notification.Sender, string, func()) {
	noop := func() {}
	recipients := cfg.Notification.Recipients()

	switch {
	case cfg.Notification.Transport == config.TransportLog:
		return notify.LogSender{Log: l, Reason: "log transport configured"}, config.TransportLog, noop
	case len(recipients) == 0:
		l.Warn("no notification recipients configured; alerts will only be logged")
		return notify.LogSender{Log: l, Reason: "notification email not specified"}, config.TransportLog, noop
	case cfg.Notification.Transport == config.TransportKafka:
		prod := kafkax.BootstrapProducer(ctx, cfg.Kafka.Brokers, cfg.Kafka.Topic, l)
		l.Info("alerts published to kafka", zap.Strings("brokers", cfg.Kafka.Brokers), zap.String("topic", cfg.Kafka.Topic))
		return kafkax.NewAlertEventsKafka(prod), config.TransportKafka, func() { _ = prod.Close() }
	default:
		if cfg.SMTP.From == "" {
			l.Warn("no sender address configured; alerts will only be logged")
			return notify.LogSender{Log: l, Reason: "notification from address not specified"}, config.TransportLog, noop
		}
		l.Info("alerts mailed", zap.String("smtp_addr", cfg.SMTP.Addr), zap.Strings("to", recipients))
		return notifier.New(cfg.SMTP).WithLogger(l), config.TransportSMTP, noop
	}
}
