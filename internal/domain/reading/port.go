package reading

import "context"

type Repo interface {
	Append(ctx context.Context, r Reading) error
	QueryRange(ctx context.Context, sinceExclusive int64, limit int) ([]Reading, error)
	QueryLatest(ctx context.Context, sinceExclusive int64, limit int) ([]Reading, error)
	MostRecentMatching(ctx context.Context, band Range) (Reading, error)
	Ping(ctx context.Context) error
}
