package notifier

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/drtz/PiThermServer/internal/domain/notification"
	kafkax "github.com/drtz/PiThermServer/internal/repository/kafka"
	"github.com/drtz/PiThermServer/internal/repository/memory"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

type captureSender struct {
	got []notification.Message
	err error
}

func (s *captureSender) Send(_ context.Context, msg notification.Message) error {
	if s.err != nil {
		return s.err
	}
	s.got = append(s.got, msg)
	return nil
}

func event() kafkax.AlertEvent {
	return kafkax.AlertEvent{
		Kind:       notification.KindFirstFailure,
		Subject:    "Temperature has gone out of desired range",
		Body:       "Last temperature reading was out of desired range: 30 C",
		Recipients: []string{"ops@example.com"},
		Celsius:    30,
		RunLength:  1,
		At:         time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func newHandler(out *captureSender) (*Handler, *memory.NotificationRepo) {
	store := memory.NewNotificationRepo()
	return &Handler{
		Store: store,
		Out:   out,
		Clock: fixedClock{t: time.Date(2024, 1, 1, 0, 0, 1, 0, time.UTC)},
		Log:   zap.NewNop(),
	}, store
}

func TestHandleAlert_HappyPath(t *testing.T) {
	out := &captureSender{}
	h, store := newHandler(out)

	require.NoError(t, h.HandleAlert(context.Background(), event()))
	require.Len(t, out.got, 1)
	assert.Equal(t, event().Message(), out.got[0])

	list, err := store.ListRecent(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "smtp", list[0].Transport)
	assert.Equal(t, event().Body, list[0].Payload)
}

func TestHandleAlert_Invalid(t *testing.T) {
	h, _ := newHandler(&captureSender{})

	ev := event()
	ev.Kind = "bogus"
	require.ErrorIs(t, h.HandleAlert(context.Background(), ev), ErrInvalidEvent)

	ev = event()
	ev.Recipients = nil
	require.ErrorIs(t, h.HandleAlert(context.Background(), ev), ErrInvalidEvent)
}

func TestHandleAlert_SendFailureNotStored(t *testing.T) {
	h, store := newHandler(&captureSender{err: errors.New("421 try later")})

	require.Error(t, h.HandleAlert(context.Background(), event()))
	list, err := store.ListRecent(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestController_HandleSwallowsErrors(t *testing.T) {
	h, _ := newHandler(&captureSender{err: errors.New("421 try later")})
	c := &Controller{Log: zap.NewNop(), UC: h}
	before := testutil.ToFloat64(mErrors.WithLabelValues("send"))

	ev := event()
	require.NoError(t, c.handle(context.Background(), nil, &ev))
	assert.Equal(t, before+1, testutil.ToFloat64(mErrors.WithLabelValues("send")))
}
