package kafka

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/drtz/PiThermServer/internal/domain/notification"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONHandler(t *testing.T) {
	msg := notification.Message{
		Kind:       notification.KindStillFailing,
		Subject:    "Temperature is still out of desired range",
		Body:       "Last 3 temperature readings were out of range \nCurrent temperature is 31 C",
		Recipients: []string{"a@example.com"},
		Celsius:    31,
		RunLength:  3,
		At:         time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC),
	}
	raw, err := json.Marshal(AlertEventFromMessage(msg))
	require.NoError(t, err)

	var got AlertEvent
	h := JSONHandler(func(_ context.Context, key []byte, ev *AlertEvent) error {
		assert.Equal(t, "still_failing", string(key))
		got = *ev
		return nil
	})
	require.NoError(t, h(context.Background(), []byte(msg.Kind), raw))
	assert.Equal(t, msg, got.Message())
}

func TestJSONHandler_BadPayload(t *testing.T) {
	called := false
	h := JSONHandler(func(context.Context, []byte, *AlertEvent) error {
		called = true
		return nil
	})
	require.Error(t, h(context.Background(), nil, []byte("{not json")))
	assert.False(t, called)
}

func TestHeaderCarrier(t *testing.T) {
	var hs []kafka.Header
	c := newHeaderCarrier(&hs)
	c.Set("traceparent", "00-abc-def-01")
	c.Set("traceparent", "00-abc-fed-01")
	hs = append(hs, kafka.Header{Key: "x", Value: []byte("y")})

	require.Len(t, hs, 2)
	assert.Equal(t, "00-abc-fed-01", c.Get("traceparent"))
	assert.Equal(t, "", c.Get("missing"))
	assert.ElementsMatch(t, []string{"traceparent", "x"}, c.Keys())
}

func TestEnsureTopic_NoBrokers(t *testing.T) {
	require.Error(t, EnsureTopic(context.Background(), nil, TopicSpec{Name: "t"}, nil))
}

func TestSleep_RespectsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.False(t, sleep(ctx, time.Hour))
	assert.True(t, sleep(context.Background(), time.Millisecond))
}

func TestTopicSpecDefaults(t *testing.T) {
	s := TopicSpec{Name: "alerts"}.withDefaults()
	assert.Equal(t, 1, s.NumPartitions)
	assert.Equal(t, 1, s.ReplicationFactor)
	assert.Equal(t, 5*time.Second, s.MaxWait)
}

type fakeWriter struct {
	msgs []kafka.Message
	err  error
}

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, msgs...)
	return nil
}

func (f *fakeWriter) Close() error { return nil }

func TestAlertEventsKafka_Send(t *testing.T) {
	w := &fakeWriter{}
	sender := NewAlertEventsKafka(newProducer(w, "alerts-test"))

	msg := notification.Message{
		Kind:       notification.KindRecovered,
		Subject:    "Temperature back in range",
		Body:       "Current temperature is 21.5 C",
		Recipients: []string{"a@example.com"},
		Celsius:    21.5,
		At:         time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC),
	}
	require.NoError(t, sender.Send(context.Background(), msg))

	require.Len(t, w.msgs, 1)
	assert.Equal(t, "recovered", string(w.msgs[0].Key))
	assert.Equal(t, "application/json", newHeaderCarrier(&w.msgs[0].Headers).Get("content-type"))

	var ev AlertEvent
	require.NoError(t, json.Unmarshal(w.msgs[0].Value, &ev))
	assert.Equal(t, msg, ev.Message())
	assert.Equal(t, 1.0, testutil.ToFloat64(mPublished.WithLabelValues("alerts-test", "ok")))
}

func TestPublishJSON_WriteError(t *testing.T) {
	p := newProducer(&fakeWriter{err: kafka.LeaderNotAvailable}, "alerts-err")

	err := p.PublishJSON(context.Background(), []byte("k"), map[string]int{"a": 1})
	require.ErrorIs(t, err, kafka.LeaderNotAvailable)
	assert.Equal(t, 1.0, testutil.ToFloat64(mPublished.WithLabelValues("alerts-err", "error")))
}
