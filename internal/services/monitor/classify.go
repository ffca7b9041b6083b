package monitor

import "github.com/drtz/PiThermServer/internal/domain/reading"

// Classify places r inside or outside the inclusive band.
func Classify(r reading.Reading, band reading.Range) reading.Classification {
	if band.Contains(r.Celsius) {
		return reading.InRange
	}
	return reading.OutOfRange
}
