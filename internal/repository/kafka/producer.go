package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/drtz/PiThermServer/internal/obs"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

var mPublished = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "kafka_messages_published_total",
	Help: "Messages written to kafka by topic and result.",
}, []string{"topic", "result"})

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type Producer struct {
	w     messageWriter
	topic string
	log   *zap.Logger
}

func NewProducer(brokers []string, topic string) *Producer {
	return newProducer(&kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		WriteTimeout:           5 * time.Second,
		AllowAutoTopicCreation: true,
	}, topic)
}

func newProducer(w messageWriter, topic string) *Producer {
	return &Producer{
		w:     w,
		topic: topic,
		log:   zap.L().With(zap.String("component", "kafka.producer"), zap.String("topic", topic)),
	}
}

func (p *Producer) WithLogger(l *zap.Logger) *Producer {
	if l == nil {
		return p
	}
	cp := *p
	cp.log = l.With(zap.String("component", "kafka.producer"), zap.String("topic", p.topic))
	return &cp
}

// PublishJSON writes m as one JSON message and waits for the leader ack.
// The active trace context is carried in the message headers.
func (p *Producer) PublishJSON(ctx context.Context, key []byte, m any) error {
	value, err := json.Marshal(m)
	if err != nil {
		mPublished.WithLabelValues(p.topic, "encode_error").Inc()
		return fmt.Errorf("encode %T: %w", m, err)
	}

	ctx, span := otel.Tracer("kafka.producer").Start(ctx, "kafka.produce "+p.topic,
		trace.WithSpanKind(trace.SpanKindProducer),
		trace.WithAttributes(
			semconv.MessagingSystemKafka,
			semconv.MessagingDestinationName(p.topic),
			semconv.MessagingOperationPublish,
		),
	)
	defer span.End()

	msg := kafka.Message{
		Key:     key,
		Value:   value,
		Headers: []kafka.Header{{Key: "content-type", Value: []byte("application/json")}},
	}
	otel.GetTextMapPropagator().Inject(ctx, newHeaderCarrier(&msg.Headers))

	if err := p.w.WriteMessages(ctx, msg); err != nil {
		mPublished.WithLabelValues(p.topic, "error").Inc()
		p.log.Error("kafka write failed", zap.Error(err))
		return obs.Fail(span, fmt.Errorf("kafka write: %w", err), "write failed")
	}
	mPublished.WithLabelValues(p.topic, "ok").Inc()
	p.log.Debug("message published",
		zap.ByteString("key", key),
		zap.Int("value_len", len(value)),
	)
	return nil
}

func (p *Producer) Close() error { return p.w.Close() }
