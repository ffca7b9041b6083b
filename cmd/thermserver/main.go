package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	config "github.com/drtz/PiThermServer/internal/config/thermserver"
	"github.com/drtz/PiThermServer/internal/domain/reading"
	"github.com/drtz/PiThermServer/internal/notify"
	"github.com/drtz/PiThermServer/internal/obs"
	"github.com/drtz/PiThermServer/internal/sensor"
	"github.com/drtz/PiThermServer/internal/services/api"
	"github.com/drtz/PiThermServer/internal/services/monitor"
	"github.com/drtz/PiThermServer/internal/services/query"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }

func main() {
	cfgPath := flag.String("config", os.Getenv("THERMSERVER_CONFIG"), "path to yaml config")
	flag.Parse()

	rootCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	l, err := obs.NewLogger(cfg.LoggerConfig())
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = l.Sync() }()
	l.Info("starting thermserver",
		zap.String("sensor_source", cfg.Sensor.Source),
		zap.String("sensor_id", cfg.Sensor.ID),
		zap.Float64("range_min", *cfg.Range.Min),
		zap.Float64("range_max", *cfg.Range.Max),
		zap.Duration("interval", cfg.Sampler.Interval()),
		zap.Duration("throttle", cfg.Notification.Cooldown()),
		zap.String("storage", cfg.Storage.Driver),
	)

	// otel
	otelCloser, err := obs.SetupOTel(rootCtx, cfg.TracingConfig())
	if err != nil {
		l.Fatal("otel init", zap.Error(err))
	}
	defer func() { _ = otelCloser.Shutdown(context.Background()) }()

	// sensor
	src, err := sensor.New(cfg.Sensor)
	if err != nil {
		l.Fatal("sensor init", zap.Error(err))
	}

	// storage
	st, err := initStores(rootCtx, cfg, l)
	if err != nil {
		l.Fatal("storage init", zap.Error(err))
	}
	defer st.Close()

	// notifications
	sender, transport, closeSender := initSender(rootCtx, cfg, l)
	defer closeSender()
	dispatcher := notify.NewDispatcher(notify.Config{
		Transport:   transport,
		QueueSize:   cfg.Notification.QueueSize,
		SendTimeout: cfg.Notification.SendTimeout,
		Record:      transport != config.TransportKafka,
		Clock:       systemClock{},
	}, sender, st.Notifications, l)

	// sampling loop
	uc := &monitor.Usecase{
		Sensor:     src,
		Readings:   st.Readings,
		States:     st.States,
		Out:        dispatcher,
		Throttle:   monitor.Throttle{Cooldown: cfg.Notification.Cooldown()},
		Range:      reading.Range{Min: *cfg.Range.Min, Max: *cfg.Range.Max},
		Recipients: cfg.Notification.Recipients(),
		Clock:      systemClock{},
		Log:        obs.Component(l, "monitor"),
	}
	runner := monitor.New(obs.Component(l, "monitor.runner"), uc, cfg.Sampler.Interval())

	// http
	httpSrv := buildHTTPServer(cfg, l, &api.Server{
		Log:           obs.Component(l, "api"),
		Sensor:        src,
		Query:         query.NewUC(st.Readings),
		Notifications: st.Notifications,
		DefaultNumObs: cfg.Server.DefaultNumObs,
	})
	ms := obs.BootstrapMetricsServer(cfg.Server.MetricsAddr, st.Health, l)

	g, ctx := errgroup.WithContext(rootCtx)
	g.Go(func() error { return dispatcher.RunWith(ctx, runner.Run) })
	g.Go(func() error {
		l.Info("http listening", zap.String("addr", httpSrv.Addr))
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.GracefulTimeout)
		defer cancel()
		_ = ms.Shutdown(shCtx)
		return httpSrv.Shutdown(shCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		l.Error("thermserver stopped", zap.Error(err))
	}
	l.Info("bye")
}
