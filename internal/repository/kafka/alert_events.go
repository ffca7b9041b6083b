package kafka

import (
	"context"
	"time"

	"github.com/drtz/PiThermServer/internal/domain/notification"
)

// AlertEvent is the wire form of a notification.Message on the alerts topic.
type AlertEvent struct {
	Kind       notification.Kind `json:"kind"`
	Subject    string            `json:"subject"`
	Body       string            `json:"body"`
	Recipients []string          `json:"recipients"`
	Celsius    float64           `json:"celsius"`
	RunLength  int               `json:"run_length"`
	At         time.Time         `json:"at"`
}

func AlertEventFromMessage(m notification.Message) AlertEvent {
	return AlertEvent{
		Kind:       m.Kind,
		Subject:    m.Subject,
		Body:       m.Body,
		Recipients: m.Recipients,
		Celsius:    m.Celsius,
		RunLength:  m.RunLength,
		At:         m.At.UTC(),
	}
}

func (e AlertEvent) Message() notification.Message {
	return notification.Message{
		Kind:       e.Kind,
		Subject:    e.Subject,
		Body:       e.Body,
		Recipients: e.Recipients,
		Celsius:    e.Celsius,
		RunLength:  e.RunLength,
		At:         e.At,
	}
}

type AlertEventsKafka struct {
	p *Producer
}

func NewAlertEventsKafka(p *Producer) *AlertEventsKafka { return &AlertEventsKafka{p: p} }

var _ notification.Sender = (*AlertEventsKafka)(nil)

func (e *AlertEventsKafka) Send(ctx context.Context, msg notification.Message) error {
	return e.p.PublishJSON(ctx, []byte(msg.Kind), AlertEventFromMessage(msg))
}
