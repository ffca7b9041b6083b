package memory

import (
	"context"
	"testing"

	"github.com/drtz/PiThermServer/internal/domain/notification"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotificationRepo_ListRecent(t *testing.T) {
	repo := NewNotificationRepo()
	ctx := context.Background()
	for _, k := range []notification.Kind{notification.KindFirstFailure, notification.KindStillFailing, notification.KindRecovered} {
		require.NoError(t, repo.Create(ctx, &notification.Notification{Kind: k, Transport: "log"}))
	}

	got, err := repo.ListRecent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, notification.KindRecovered, got[0].Kind)
	assert.Equal(t, int64(3), got[0].ID)
	assert.False(t, got[0].SentAt.IsZero())
	assert.Equal(t, notification.KindStillFailing, got[1].Kind)
}

func TestStateStore(t *testing.T) {
	s := NewStateStore()
	ctx := context.Background()

	st, err := s.Load(ctx)
	require.NoError(t, err)
	assert.False(t, st.Notified())

	require.NoError(t, s.Save(ctx, notification.ThrottleState{LastNotification: 5}))
	st, err = s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(5), st.LastNotification)
}
