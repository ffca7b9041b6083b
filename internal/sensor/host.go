package sensor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/drtz/PiThermServer/internal/domain/reading"
	"github.com/shirou/gopsutil/v4/sensors"
)

var ErrNoHostSensor = errors.New("no matching host sensor")

// Host reads one of the machine's thermal sensors. An empty key picks the
// first sensor reported.
type Host struct {
	key  string
	list func(ctx context.Context) ([]sensors.TemperatureStat, error)
	now  func() time.Time
}

func NewHost(key string) *Host {
	return &Host{key: key, list: sensors.TemperaturesWithContext, now: time.Now}
}

func (s *Host) Read(ctx context.Context) (reading.Reading, error) {
	stats, err := s.list(ctx)
	if err != nil && len(stats) == 0 {
		return reading.Reading{}, &ReadError{Source: SourceHost, Err: err}
	}
	for _, st := range stats {
		if s.key == "" || st.SensorKey == s.key {
			return reading.Reading{UnixTime: nowMillis(s.now), Celsius: round1(st.Temperature)}, nil
		}
	}
	return reading.Reading{}, &ReadError{Source: SourceHost, Err: fmt.Errorf("%w: %q", ErrNoHostSensor, s.key)}
}
