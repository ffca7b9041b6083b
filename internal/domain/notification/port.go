package notification

import "context"

type Repo interface {
	Create(ctx context.Context, n *Notification) error
	ListRecent(ctx context.Context, limit int) ([]*Notification, error)
}

type StateStore interface {
	Load(ctx context.Context) (ThrottleState, error)
	Save(ctx context.Context, st ThrottleState) error
}
