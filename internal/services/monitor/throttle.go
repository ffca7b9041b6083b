package monitor

import (
	"time"

	"github.com/drtz/PiThermServer/internal/domain/notification"
	"github.com/drtz/PiThermServer/internal/domain/reading"
)

type Decision int

const (
	DecisionNone Decision = iota
	DecisionFirstFailure
	DecisionStillFailing
	DecisionRecovered
)

func (d Decision) String() string {
	switch d {
	case DecisionFirstFailure:
		return string(notification.KindFirstFailure)
	case DecisionStillFailing:
		return string(notification.KindStillFailing)
	case DecisionRecovered:
		return string(notification.KindRecovered)
	default:
		return "none"
	}
}

func (d Decision) Kind() notification.Kind { return notification.Kind(d.String()) }

// Throttle is the Idle/Notified state machine. It holds no state of its own;
// callers thread ThrottleState through Evaluate.
type Throttle struct {
	Cooldown time.Duration
}

func (t Throttle) Evaluate(st notification.ThrottleState, c reading.Classification, now time.Time) (Decision, notification.ThrottleState) {
	nowMs := now.UnixMilli()

	if c == reading.InRange {
		if st.Notified() {
			return DecisionRecovered, notification.ThrottleState{}
		}
		return DecisionNone, st
	}

	if !st.Notified() {
		return DecisionFirstFailure, notification.ThrottleState{LastNotification: nowMs}
	}
	if nowMs > st.LastNotification+t.Cooldown.Milliseconds() {
		return DecisionStillFailing, notification.ThrottleState{LastNotification: nowMs}
	}
	return DecisionNone, st
}
