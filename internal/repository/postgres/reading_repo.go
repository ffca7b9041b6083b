package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/drtz/PiThermServer/internal/domain/reading"
	"github.com/jackc/pgx/v5"
)

var _ reading.Repo = (*ReadingRepoImpl)(nil)

type ReadingRepoImpl struct{ db *DB }

func NewReadingRepo(db *DB) *ReadingRepoImpl { return &ReadingRepoImpl{db: db} }

const (
	qReadingInsert = `
INSERT INTO temperature_records (unix_time, celsius)
VALUES ($1, $2);
`
	qReadingsSince = `
SELECT unix_time, celsius
FROM temperature_records
WHERE unix_time > $1
ORDER BY unix_time ASC, id ASC
LIMIT $2;
`
	qReadingsLatest = `
SELECT unix_time, celsius
FROM (
    SELECT id, unix_time, celsius
    FROM temperature_records
    WHERE unix_time > $1
    ORDER BY unix_time DESC, id DESC
    LIMIT $2
) latest
ORDER BY unix_time ASC, id ASC;
`
	qReadingLastWithin = `
SELECT unix_time, celsius
FROM temperature_records
WHERE celsius >= $1 AND celsius <= $2
ORDER BY unix_time DESC, id DESC
LIMIT 1;
`
)

func (r *ReadingRepoImpl) Append(ctx context.Context, rd reading.Reading) error {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	if _, err := r.db.Pool.Exec(ctx, qReadingInsert, rd.UnixTime, rd.Celsius); err != nil {
		return reading.NewStorageError("insert reading", err)
	}
	return nil
}

func (r *ReadingRepoImpl) QueryRange(ctx context.Context, since int64, limit int) ([]reading.Reading, error) {
	return r.list(ctx, "query range", qReadingsSince, since, limit)
}

func (r *ReadingRepoImpl) QueryLatest(ctx context.Context, since int64, limit int) ([]reading.Reading, error) {
	return r.list(ctx, "query latest", qReadingsLatest, since, limit)
}

func (r *ReadingRepoImpl) MostRecentMatching(ctx context.Context, band reading.Range) (reading.Reading, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	var rd reading.Reading
	if err := r.db.Pool.QueryRow(ctx, qReadingLastWithin, band.Min, band.Max).Scan(&rd.UnixTime, &rd.Celsius); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return reading.Reading{}, reading.ErrNotFound
		}
		return reading.Reading{}, reading.NewStorageError("most recent matching", err)
	}
	return rd, nil
}

func (r *ReadingRepoImpl) Ping(ctx context.Context) error {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()
	return r.db.Pool.Ping(ctx)
}

func (r *ReadingRepoImpl) list(ctx context.Context, op, q string, since int64, limit int) ([]reading.Reading, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	rows, err := r.db.Pool.Query(ctx, q, since, nullLimit(limit))
	if err != nil {
		return nil, reading.NewStorageError(op, err)
	}
	defer rows.Close()

	out := make([]reading.Reading, 0)
	for rows.Next() {
		var rd reading.Reading
		if err := rows.Scan(&rd.UnixTime, &rd.Celsius); err != nil {
			return nil, reading.NewStorageError(op, fmt.Errorf("scan reading: %w", err))
		}
		out = append(out, rd)
	}
	if err := rows.Err(); err != nil {
		return nil, reading.NewStorageError(op, fmt.Errorf("rows: %w", err))
	}
	return out, nil
}
