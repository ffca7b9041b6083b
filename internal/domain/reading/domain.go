package reading

import "time"

type Reading struct {
	UnixTime int64   `json:"unix_time"` // ms since epoch
	Celsius  float64 `json:"celsius"`
}

func (r Reading) Time() time.Time { return time.UnixMilli(r.UnixTime).UTC() }

// Range is an inclusive [Min, Max] band of acceptable values.
type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

func (r Range) Contains(v float64) bool { return v >= r.Min && v <= r.Max }

type Classification int

const (
	InRange Classification = iota
	OutOfRange
)

func (c Classification) String() string {
	if c == InRange {
		return "in_range"
	}
	return "out_of_range"
}

// FailureRun is the contiguous out-of-range tail of the history, oldest first.
type FailureRun []Reading

func (f FailureRun) Len() int { return len(f) }

func (f FailureRun) Last() (Reading, bool) {
	if len(f) == 0 {
		return Reading{}, false
	}
	return f[len(f)-1], true
}

// Unbounded is the limit sentinel meaning "no cap".
const Unbounded = -1
