package monitor

import (
	"strconv"
	"time"

	"github.com/drtz/PiThermServer/internal/domain/notification"
	"github.com/drtz/PiThermServer/internal/domain/reading"
)

const (
	subjectFirstFailure = "Temperature has gone out of desired range"
	subjectStillFailing = "Temperature is still out of desired range"
	subjectRecovered    = "Temperature is back within desired range"
)

func formatCelsius(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) + " C" }

// BuildMessage renders the alert for d. current is the reading that triggered
// it; run is only consulted for still-failing alerts.
func BuildMessage(d Decision, current reading.Reading, run reading.FailureRun, recipients []string, at time.Time) notification.Message {
	msg := notification.Message{
		Kind:       d.Kind(),
		Recipients: recipients,
		Celsius:    current.Celsius,
		RunLength:  run.Len(),
		At:         at.UTC(),
	}
	temp := formatCelsius(current.Celsius)

	switch d {
	case DecisionFirstFailure:
		msg.Subject = subjectFirstFailure
		msg.Body = "Last temperature reading was out of desired range: " + temp
	case DecisionStillFailing:
		n := run.Len()
		if n == 0 {
			n = 1
		}
		msg.RunLength = n
		msg.Subject = subjectStillFailing
		msg.Body = "Last " + strconv.Itoa(n) + " temperature readings were out of range \nCurrent temperature is " + temp
	case DecisionRecovered:
		msg.Subject = subjectRecovered
		msg.Body = "Current temperature is " + temp
		msg.RunLength = 0
	}
	return msg
}
