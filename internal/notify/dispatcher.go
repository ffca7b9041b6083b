package notify

import (
	"context"
	"time"

	"github.com/drtz/PiThermServer/internal/domain/notification"
	"github.com/drtz/PiThermServer/internal/obs"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

var (
	mSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "thermserver_notifications_sent_total", Help: "Notifications delivered",
	}, []string{"kind", "transport"})
	mFailed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "thermserver_notifications_failed_total", Help: "Notification deliveries that failed",
	}, []string{"kind", "transport"})
	mDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "thermserver_notifications_dropped_total", Help: "Notifications dropped on a full queue",
	})
)

type Config struct {
	Transport   string
	QueueSize   int
	SendTimeout time.Duration
	// Record writes each delivered message to the notification log. Off for
	// transports that hand the message to another service which logs it.
	Record bool
	Clock  notification.Clock
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// Dispatcher hands messages to a Sender on its own goroutine so the sampling
// loop never waits on a mail server. Failed sends are logged and not retried.
type Dispatcher struct {
	log       *zap.Logger
	out       notification.Sender
	store     notification.Repo
	transport string
	timeout   time.Duration
	clock     notification.Clock
	queue     chan notification.Message
}

func NewDispatcher(cfg Config, out notification.Sender, store notification.Repo, log *zap.Logger) *Dispatcher {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 16
	}
	if cfg.SendTimeout <= 0 {
		cfg.SendTimeout = 15 * time.Second
	}
	if cfg.Clock == nil {
		cfg.Clock = systemClock{}
	}
	if !cfg.Record {
		store = nil
	}
	return &Dispatcher{
		log:       log.With(zap.String("component", "notify.dispatcher"), zap.String("transport", cfg.Transport)),
		out:       out,
		store:     store,
		transport: cfg.Transport,
		timeout:   cfg.SendTimeout,
		clock:     cfg.Clock,
		queue:     make(chan notification.Message, cfg.QueueSize),
	}
}

// Dispatch enqueues msg without blocking.
func (d *Dispatcher) Dispatch(msg notification.Message) error {
	select {
	case d.queue <- msg:
		return nil
	default:
		mDropped.Inc()
		d.log.Warn("notification dropped: queue full", zap.String("kind", string(msg.Kind)))
		return notification.ErrQueueFull
	}
}

// Run delivers queued messages until ctx is done, then flushes what is left.
func (d *Dispatcher) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			d.drain()
			return nil
		case msg := <-d.queue:
			d.deliver(ctx, msg)
		}
	}
}

// RunWith runs producer and delivers what it dispatches. The queue is drained
// only after producer has returned, so messages dispatched while the producer
// winds down are still delivered.
func (d *Dispatcher) RunWith(ctx context.Context, producer func(context.Context) error) error {
	dctx, stop := context.WithCancel(context.WithoutCancel(ctx))
	done := make(chan error, 1)
	go func() { done <- d.Run(dctx) }()

	err := producer(ctx)
	stop()
	<-done
	return err
}

func (d *Dispatcher) drain() {
	for {
		select {
		case msg := <-d.queue:
			d.deliver(context.Background(), msg)
		default:
			return
		}
	}
}

func (d *Dispatcher) deliver(ctx context.Context, msg notification.Message) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), d.timeout)
	defer cancel()

	ctx, span := otel.Tracer("notify").Start(ctx, "notify.deliver",
		trace.WithAttributes(
			attribute.String("notification.kind", string(msg.Kind)),
			attribute.String("notification.transport", d.transport),
			attribute.Int("notification.recipients", len(msg.Recipients)),
		),
	)
	defer span.End()

	kind := string(msg.Kind)
	if err := d.out.Send(ctx, msg); err != nil {
		_ = obs.Fail(span, err, "send")
		mFailed.WithLabelValues(kind, d.transport).Inc()
		d.log.Error("notification send failed", zap.String("kind", kind), zap.Error(err))
		return
	}
	mSent.WithLabelValues(kind, d.transport).Inc()

	if d.store == nil {
		return
	}
	rec := &notification.Notification{
		Kind:       msg.Kind,
		Transport:  d.transport,
		Subject:    msg.Subject,
		Payload:    msg.Body,
		Recipients: msg.Recipients,
		SentAt:     d.clock.Now().UTC(),
	}
	if err := d.store.Create(ctx, rec); err != nil {
		d.log.Warn("notification log write failed", zap.String("kind", kind), zap.Error(err))
	}
}
