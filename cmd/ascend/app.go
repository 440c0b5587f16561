package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"ascend/internal/access"
	"ascend/internal/api"
	"ascend/internal/availability"
	"ascend/internal/calendar"
	"ascend/internal/config"
	"ascend/internal/contracts"
	"ascend/internal/dashboard"
	"ascend/internal/directory"
	"ascend/internal/events"
	"ascend/internal/notifications"
	"ascend/internal/storage"
	"ascend/internal/tasks"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// app holds everything a command needs after startup.
type app struct {
	cfg    *config.Config
	logger zerolog.Logger
	db     *storage.SQLiteStore
	rdb    *redis.Client
	relay  *events.RedisRelay
	svc    api.Services
}

func openApp(ctx context.Context, cfg *config.Config) (*app, error) {
	logger := newLogger(cfg)
	a := &app{cfg: cfg, logger: logger}

	db, err := storage.OpenSQLite(cfg.Database.Path)
	if err != nil {
		return nil, err
	}
	a.db = db

	var store storage.Store = db
	bus := events.NewBus(&a.logger)
	notifiers := []storage.Notifier{bus}

	if cfg.Redis.Address != "" {
		a.rdb = redis.NewClient(&redis.Options{Addr: cfg.Redis.Address, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		if ttl := cfg.CacheTTL(); ttl > 0 {
			store = storage.NewCachedStore(db, a.rdb, ttl)
		}
		a.relay = events.NewRedisRelay(a.rdb, cfg.Redis.Channel, bus, &a.logger)
		notifiers = append(notifiers, a.relay)
	}

	slots := storage.NewSlots(store, &a.logger, notifiers...)
	dir := directory.NewService(slots, &a.logger)
	notes := notifications.NewService(slots, dir, &a.logger)
	loc := cfg.Location()

	a.svc = api.Services{
		Slots:         slots,
		Availability:  availability.NewService(slots, cfg.Availability.DefaultStartTime, cfg.Availability.DefaultEndTime, loc, &a.logger),
		Calendar:      calendar.NewService(slots, notes, loc, &a.logger),
		Tasks:         tasks.NewService(slots, notes, &a.logger),
		Contracts:     contracts.NewService(slots, dir, &a.logger),
		Notifications: notes,
		Directory:     dir,
		Access:        access.NewService(dir, dir, a.logger),
		Dashboard:     dashboard.NewService(slots),
		Bus:           bus,
	}

	seed, err := config.LoadDirectoryConfig(cfg.Directory.Path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		a.logger.Warn().Str("path", cfg.Directory.Path).Msg("directory seed not found, starting with stored directory")
	case err != nil:
		a.close()
		return nil, err
	default:
		if err := dir.Seed(ctx, seed); err != nil {
			a.close()
			return nil, fmt.Errorf("seed directory: %w", err)
		}
	}
	return a, nil
}

func (a *app) close() {
	if a.rdb != nil {
		_ = a.rdb.Close()
	}
	if a.db != nil {
		_ = a.db.Close()
	}
}
