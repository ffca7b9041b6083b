package monitor

import (
	"context"
	"errors"
	"fmt"

	"github.com/drtz/PiThermServer/internal/domain/reading"
)

// DetectRun returns every reading newer than the last in-range one. With no
// in-range reading on record the whole history is the run.
func DetectRun(ctx context.Context, repo reading.Repo, band reading.Range) (reading.FailureRun, error) {
	var since int64
	last, err := repo.MostRecentMatching(ctx, band)
	switch {
	case err == nil:
		since = last.UnixTime
	case errors.Is(err, reading.ErrNotFound):
		since = 0
	default:
		return nil, fmt.Errorf("last in-range reading: %w", err)
	}

	rows, err := repo.QueryRange(ctx, since, reading.Unbounded)
	if err != nil {
		return nil, fmt.Errorf("readings since %d: %w", since, err)
	}
	return reading.FailureRun(rows), nil
}
