package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/drtz/PiThermServer/internal/domain/notification"
)

var _ notification.Repo = (*NotificationRepoImpl)(nil)

type NotificationRepoImpl struct{ db *DB }

func NewNotificationRepo(db *DB) *NotificationRepoImpl { return &NotificationRepoImpl{db: db} }

const (
	qNotifInsert = `
INSERT INTO notifications (kind, transport, subject, payload, recipients, sent_at)
VALUES ($1, $2, $3, $4, $5, COALESCE($6, now()))
RETURNING id, sent_at;
`
	qNotifRecent = `
SELECT id, kind, transport, subject, payload, recipients, sent_at
FROM notifications
ORDER BY sent_at DESC, id DESC
LIMIT $1;
`
)

func (r *NotificationRepoImpl) Create(ctx context.Context, n *notification.Notification) error {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	recipients := n.Recipients
	if recipients == nil {
		recipients = []string{}
	}
	if err := r.db.Pool.QueryRow(ctx, qNotifInsert,
		string(n.Kind),
		n.Transport,
		n.Subject,
		n.Payload,
		recipients,
		nullTime(n.SentAt),
	).Scan(&n.ID, &n.SentAt); err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}
	return nil
}

func (r *NotificationRepoImpl) ListRecent(ctx context.Context, limit int) ([]*notification.Notification, error) {
	if limit <= 0 {
		limit = 50
	}

	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	rows, err := r.db.Pool.Query(ctx, qNotifRecent, limit)
	if err != nil {
		return nil, fmt.Errorf("query notifications: %w", err)
	}
	defer rows.Close()

	out := make([]*notification.Notification, 0, limit)
	for rows.Next() {
		var (
			n    notification.Notification
			kind string
		)
		if err := rows.Scan(&n.ID, &kind, &n.Transport, &n.Subject, &n.Payload, &n.Recipients, &n.SentAt); err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		n.Kind = notification.Kind(kind)
		nc := n
		out = append(out, &nc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return out, nil
}

func nullTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
