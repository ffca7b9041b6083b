package sensor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/drtz/PiThermServer/internal/domain/reading"
)

const DefaultDeviceDir = "/sys/bus/w1/devices"

var (
	ErrBadCRC    = errors.New("crc check failed")
	ErrMalformed = errors.New("malformed w1_slave output")
)

// W1 reads a DS18B20 through the kernel 1-wire driver.
type W1 struct {
	path string
	now  func() time.Time
}

func NewW1(deviceDir, id string) *W1 {
	if deviceDir == "" {
		deviceDir = DefaultDeviceDir
	}
	return &W1{path: filepath.Join(deviceDir, id, "w1_slave"), now: time.Now}
}

func (s *W1) Path() string { return s.path }

func (s *W1) Read(ctx context.Context) (reading.Reading, error) {
	if err := ctx.Err(); err != nil {
		return reading.Reading{}, &ReadError{Source: SourceW1, Err: err}
	}
	raw, err := os.ReadFile(s.path)
	if err != nil {
		return reading.Reading{}, &ReadError{Source: SourceW1, Err: err}
	}
	c, err := ParseW1(raw)
	if err != nil {
		return reading.Reading{}, &ReadError{Source: SourceW1, Err: fmt.Errorf("%s: %w", s.path, err)}
	}
	return reading.Reading{UnixTime: nowMillis(s.now), Celsius: c}, nil
}

// ParseW1 extracts degrees Celsius from w1_slave contents, e.g.
//
//	72 01 4b 46 7f ff 0e 10 57 : crc=57 YES
//	72 01 4b 46 7f ff 0e 10 57 t=23125
func ParseW1(raw []byte) (float64, error) {
	lines := bytes.Split(bytes.TrimSpace(raw), []byte("\n"))
	if len(lines) < 2 {
		return 0, ErrMalformed
	}
	if !bytes.HasSuffix(bytes.TrimSpace(lines[0]), []byte("YES")) {
		return 0, ErrBadCRC
	}
	i := bytes.LastIndex(lines[1], []byte("t="))
	if i < 0 {
		return 0, ErrMalformed
	}
	milli, err := strconv.ParseFloat(string(bytes.TrimSpace(lines[1][i+2:])), 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return round1(milli / 1000), nil
}
