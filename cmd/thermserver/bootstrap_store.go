package main

import (
	"context"
	"errors"
	"fmt"

	config "github.com/drtz/PiThermServer/internal/config/thermserver"
	"github.com/drtz/PiThermServer/internal/domain/notification"
	"github.com/drtz/PiThermServer/internal/domain/reading"
	"github.com/drtz/PiThermServer/internal/obs"
	"github.com/drtz/PiThermServer/internal/obs/retry"
	"github.com/drtz/PiThermServer/internal/repository/memory"
	pg "github.com/drtz/PiThermServer/internal/repository/postgres"
	redisrepo "github.com/drtz/PiThermServer/internal/repository/redis"
	"go.uber.org/zap"
)

type stores struct {
	Readings      reading.Repo
	Notifications notification.Repo
	States        notification.StateStore
	Health        map[string]obs.HealthCheck
	closers       []func()
}

func (s *stores) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
}

func initStores(ctx context.Context, cfg *config.Config, l *zap.Logger) (*stores, error) {
	s := &stores{Health: map[string]obs.HealthCheck{}}

	switch cfg.Storage.Driver {
	case config.DriverMemory:
		readings := memory.NewReadingRepo()
		s.Readings = readings
		s.Notifications = memory.NewNotificationRepo()
		s.Health["store"] = readings.Ping
		l.Warn("using in-memory storage; readings are lost on restart")
	default:
		if cfg.DB.AutoMigrate {
			if err := retry.Do(ctx, func() error { return pg.Migrate(ctx, cfg.DB.DSN) }, retry.StartupPolicy("postgres_migrate", l)); err != nil {
				return nil, fmt.Errorf("migrate: %w", err)
			}
			l.Info("migrations applied")
		}
		var db *pg.DB
		err := retry.Do(ctx, func() error {
			var err error
			db, err = pg.NewDB(ctx, cfg.DB)
			if errors.Is(err, pg.ErrInvalidConfig) {
				return retry.Permanent(err)
			}
			return err
		}, retry.StartupPolicy("postgres", l))
		if err != nil {
			return nil, fmt.Errorf("db connect: %w", err)
		}
		s.closers = append(s.closers, db.Close)
		readings := pg.NewReadingRepo(db)
		s.Readings = readings
		s.Notifications = pg.NewNotificationRepo(db)
		s.Health["store"] = readings.Ping
		l.Info("db connected")
	}

	switch cfg.Throttle.Store {
	case config.StoreRedis:
		var rc *redisrepo.Client
		err := retry.Do(ctx, func() error {
			var err error
			rc, err = redisrepo.NewClient(ctx, cfg.Redis)
			return err
		}, retry.StartupPolicy("redis", l))
		if err != nil {
			s.Close()
			return nil, fmt.Errorf("redis connect: %w", err)
		}
		s.closers = append(s.closers, func() { _ = rc.Close() })
		s.States = redisrepo.NewStateStore(rc, cfg.Redis.Key)
		s.Health["redis"] = rc.Ping
		l.Info("redis connected", zap.String("addr", cfg.Redis.Addr))
	default:
		s.States = memory.NewStateStore()
	}
	return s, nil
}
