package memory

import (
	"context"
	"sync"
	"time"

	"github.com/drtz/PiThermServer/internal/domain/notification"
)

var _ notification.Repo = (*NotificationRepo)(nil)

type NotificationRepo struct {
	mu     sync.Mutex
	nextID int64
	rows   []notification.Notification
}

func NewNotificationRepo() *NotificationRepo { return &NotificationRepo{} }

func (r *NotificationRepo) Create(_ context.Context, n *notification.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	n.ID = r.nextID
	if n.SentAt.IsZero() {
		n.SentAt = time.Now().UTC()
	}
	cp := *n
	cp.Recipients = append([]string(nil), n.Recipients...)
	r.rows = append(r.rows, cp)
	return nil
}

func (r *NotificationRepo) ListRecent(_ context.Context, limit int) ([]*notification.Notification, error) {
	if limit <= 0 {
		limit = 50
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]*notification.Notification, 0, min(limit, len(r.rows)))
	for i := len(r.rows) - 1; i >= 0 && len(out) < limit; i-- {
		n := r.rows[i]
		out = append(out, &n)
	}
	return out, nil
}
