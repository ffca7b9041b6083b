package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/drtz/PiThermServer/internal/domain/notification"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeKV struct {
	data   map[string]string
	getErr error
}

func (f *fakeKV) Get(_ context.Context, key string) *redis.StringCmd {
	if f.getErr != nil {
		return redis.NewStringResult("", f.getErr)
	}
	v, ok := f.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (f *fakeKV) Set(_ context.Context, key string, value any, _ time.Duration) *redis.StatusCmd {
	f.data[key] = value.(string)
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeKV) Del(_ context.Context, keys ...string) *redis.IntCmd {
	var n int64
	for _, k := range keys {
		if _, ok := f.data[k]; ok {
			delete(f.data, k)
			n++
		}
	}
	return redis.NewIntResult(n, nil)
}

func TestStateStore_MissingKeyIsIdle(t *testing.T) {
	s := newStateStore(&fakeKV{data: map[string]string{}}, "", 0)

	st, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.False(t, st.Notified())
}

func TestStateStore_SaveAndReset(t *testing.T) {
	kv := &fakeKV{data: map[string]string{}}
	s := newStateStore(kv, "k", time.Second)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, notification.ThrottleState{LastNotification: 1_700_000_000_000}))
	assert.Equal(t, "1700000000000", kv.data["k"])

	st, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1_700_000_000_000), st.LastNotification)

	require.NoError(t, s.Save(ctx, notification.ThrottleState{}))
	_, ok := kv.data["k"]
	assert.False(t, ok)
}

func TestStateStore_Errors(t *testing.T) {
	s := newStateStore(&fakeKV{data: map[string]string{}, getErr: errors.New("conn refused")}, "k", time.Second)
	_, err := s.Load(context.Background())
	require.Error(t, err)

	s = newStateStore(&fakeKV{data: map[string]string{"k": "garbage"}}, "k", time.Second)
	_, err = s.Load(context.Background())
	require.Error(t, err)
}
