package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/drtz/PiThermServer/internal/domain/reading"
)

var _ reading.Repo = (*ReadingRepo)(nil)

// ReadingRepo keeps readings in a slice ordered by timestamp. Readers never
// observe a partially appended reading because every access holds mu.
type ReadingRepo struct {
	mu   sync.RWMutex
	rows []reading.Reading
}

func NewReadingRepo() *ReadingRepo { return &ReadingRepo{} }

func (r *ReadingRepo) Append(ctx context.Context, rd reading.Reading) error {
	if err := ctx.Err(); err != nil {
		return reading.NewStorageError("append", err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	// equal timestamps keep insertion order
	i := sort.Search(len(r.rows), func(i int) bool { return r.rows[i].UnixTime > rd.UnixTime })
	if i == len(r.rows) {
		r.rows = append(r.rows, rd)
		return nil
	}
	r.rows = append(r.rows, reading.Reading{})
	copy(r.rows[i+1:], r.rows[i:])
	r.rows[i] = rd
	return nil
}

func (r *ReadingRepo) QueryRange(ctx context.Context, since int64, limit int) ([]reading.Reading, error) {
	if err := ctx.Err(); err != nil {
		return nil, reading.NewStorageError("query range", err)
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	tail := r.rows[r.after(since):]
	if limit >= 0 && limit < len(tail) {
		tail = tail[:limit]
	}
	out := make([]reading.Reading, len(tail))
	copy(out, tail)
	return out, nil
}

func (r *ReadingRepo) QueryLatest(ctx context.Context, since int64, limit int) ([]reading.Reading, error) {
	if err := ctx.Err(); err != nil {
		return nil, reading.NewStorageError("query latest", err)
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	tail := r.rows[r.after(since):]
	if limit >= 0 && limit < len(tail) {
		tail = tail[len(tail)-limit:]
	}
	out := make([]reading.Reading, len(tail))
	copy(out, tail)
	return out, nil
}

func (r *ReadingRepo) MostRecentMatching(ctx context.Context, band reading.Range) (reading.Reading, error) {
	if err := ctx.Err(); err != nil {
		return reading.Reading{}, reading.NewStorageError("most recent matching", err)
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	for i := len(r.rows) - 1; i >= 0; i-- {
		if band.Contains(r.rows[i].Celsius) {
			return r.rows[i], nil
		}
	}
	return reading.Reading{}, reading.ErrNotFound
}

func (r *ReadingRepo) Ping(ctx context.Context) error { return ctx.Err() }

func (r *ReadingRepo) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rows)
}

// after returns the index of the first row with UnixTime > since.
func (r *ReadingRepo) after(since int64) int {
	return sort.Search(len(r.rows), func(i int) bool { return r.rows[i].UnixTime > since })
}
