package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/drtz/PiThermServer/internal/domain/notification"
	"github.com/redis/go-redis/v9"
)

const DefaultStateKey = "thermserver:throttle:last_notification"

// kv is the subset of *redis.Client the state store needs.
type kv interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

var _ notification.StateStore = (*StateStore)(nil)

// StateStore keeps the throttle's last notification time under a single key.
// An absent key is the idle state.
type StateStore struct {
	kv      kv
	key     string
	timeout time.Duration
}

func NewStateStore(c *Client, key string) *StateStore {
	return newStateStore(c.rdb, key, c.timeout)
}

func newStateStore(kv kv, key string, timeout time.Duration) *StateStore {
	if key == "" {
		key = DefaultStateKey
	}
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &StateStore{kv: kv, key: key, timeout: timeout}
}

func (s *StateStore) Load(ctx context.Context) (notification.ThrottleState, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	raw, err := s.kv.Get(ctx, s.key).Result()
	if errors.Is(err, redis.Nil) {
		return notification.ThrottleState{}, nil
	}
	if err != nil {
		return notification.ThrottleState{}, fmt.Errorf("redis get %s: %w", s.key, err)
	}
	last, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return notification.ThrottleState{}, fmt.Errorf("parse throttle state %q: %w", raw, err)
	}
	return notification.ThrottleState{LastNotification: last}, nil
}

func (s *StateStore) Save(ctx context.Context, st notification.ThrottleState) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if !st.Notified() {
		if err := s.kv.Del(ctx, s.key).Err(); err != nil {
			return fmt.Errorf("redis del %s: %w", s.key, err)
		}
		return nil
	}
	if err := s.kv.Set(ctx, s.key, strconv.FormatInt(st.LastNotification, 10), 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", s.key, err)
	}
	return nil
}
