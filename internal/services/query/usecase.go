package query

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/drtz/PiThermServer/internal/domain/reading"
	"github.com/drtz/PiThermServer/internal/obs"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04Z07:00",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04Z07:00",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// ParseStartDate returns the start date in ms since epoch. Empty or
// unparsable input is the epoch. Dates without a zone are UTC.
func ParseStartDate(s string) int64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t.Unix() * 1000
		}
	}
	return 0
}

type Usecase struct {
	Readings reading.Repo
}

func NewUC(repo reading.Repo) *Usecase { return &Usecase{Readings: repo} }

// QueryTemperatures returns up to numRecords of the most recent readings after
// startDate, oldest first. A negative numRecords means no cap.
func (u *Usecase) QueryTemperatures(ctx context.Context, numRecords int, startDate string) ([]reading.Reading, error) {
	since := ParseStartDate(startDate)
	limit := numRecords
	if limit < 0 {
		limit = reading.Unbounded
	}

	ctx, span := otel.Tracer("query.uc").Start(ctx, "query.temperatures",
		trace.WithAttributes(
			attribute.Int("query.limit", limit),
			attribute.Int64("query.since", since),
		),
	)
	defer span.End()

	rows, err := u.Readings.QueryLatest(ctx, since, limit)
	if err != nil {
		return nil, obs.Fail(span, fmt.Errorf("query latest: %w", err), "query latest")
	}
	if rows == nil {
		rows = []reading.Reading{}
	}
	span.SetAttributes(attribute.Int("query.rows", len(rows)))
	return rows, nil
}
