package notification

import (
	"context"
	"errors"
	"time"
)

type Kind string

const (
	KindFirstFailure Kind = "first_failure"
	KindStillFailing Kind = "still_failing"
	KindRecovered    Kind = "recovered"
)

// Message is one outbound alert, already rendered.
type Message struct {
	Kind       Kind      `json:"kind"`
	Subject    string    `json:"subject"`
	Body       string    `json:"body"`
	Recipients []string  `json:"recipients"`
	Celsius    float64   `json:"celsius"`
	RunLength  int       `json:"run_length"`
	At         time.Time `json:"at"`
}

// Notification is a delivered message as kept in the notification log.
type Notification struct {
	ID         int64     `json:"id"`
	Kind       Kind      `json:"kind"`
	Transport  string    `json:"transport"` // smtp, kafka, log
	Subject    string    `json:"subject"`
	Payload    string    `json:"payload"`
	Recipients []string  `json:"recipients"`
	SentAt     time.Time `json:"sent_at"`
}

// ThrottleState is the last time a notification was sent. Zero means none
// has been sent since the last recovery.
type ThrottleState struct {
	LastNotification int64 `json:"last_notification"` // ms since epoch
}

func (s ThrottleState) Notified() bool { return s.LastNotification != 0 }

type Sender interface {
	Send(ctx context.Context, msg Message) error
}

type Clock interface {
	Now() time.Time
}

var ErrQueueFull = errors.New("notification queue full")
