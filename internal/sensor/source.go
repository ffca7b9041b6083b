package sensor

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/drtz/PiThermServer/internal/domain/reading"
)

const (
	SourceW1   = "w1"
	SourceHost = "host"
)

type Source interface {
	Read(ctx context.Context) (reading.Reading, error)
}

type Config struct {
	Source    string `mapstructure:"source"`
	ID        string `mapstructure:"id"`
	DeviceDir string `mapstructure:"device_dir"`
	HostKey   string `mapstructure:"host_key"`
}

// ReadError means the sensor produced no usable value this time.
type ReadError struct {
	Source string
	Err    error
}

func (e *ReadError) Error() string { return "sensor " + e.Source + ": " + e.Err.Error() }

func (e *ReadError) Unwrap() error { return e.Err }

func New(cfg Config) (Source, error) {
	switch cfg.Source {
	case "", SourceW1:
		return NewW1(cfg.DeviceDir, cfg.ID), nil
	case SourceHost:
		return NewHost(cfg.HostKey), nil
	default:
		return nil, fmt.Errorf("unknown sensor source %q", cfg.Source)
	}
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }

func nowMillis(now func() time.Time) int64 {
	if now == nil {
		now = time.Now
	}
	return now().UnixMilli()
}
