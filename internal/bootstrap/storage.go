package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/green-harvest/harvest-backend/config"
	"github.com/green-harvest/harvest-backend/internal/marketplace/events"
	"github.com/green-harvest/harvest-backend/internal/storage/kv"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Storage bundles the configured key-value backend with the event bus that
// goes with it. Redis deployments get Pub/Sub events; Postgres deployments
// get a no-op bus.
type Storage struct {
	KV     kv.Store
	Events events.Bus

	redis *redis.Client
	db    *sql.DB
}

func OpenStorage(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*Storage, error) {
	switch cfg.Storage.Backend {
	case config.BackendRedis:
		client, err := OpenRedis(ctx, RedisOptions{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return nil, err
		}
		return &Storage{
			KV:     kv.NewRedisStore(client, cfg.Redis.Prefix),
			Events: events.NewRedisBus(client, cfg.Redis.Prefix, log),
			redis:  client,
		}, nil

	case config.BackendPostgres:
		db, err := OpenDB(ctx, DBOptions{Driver: cfg.Database.Driver, DSN: cfg.Database.DSN})
		if err != nil {
			return nil, err
		}
		store := kv.NewPostgresStore(db)
		if err := store.EnsureSchema(ctx); err != nil {
			db.Close()
			return nil, err
		}
		return &Storage{KV: store, Events: events.Nop{}, db: db}, nil

	default:
		return nil, fmt.Errorf("unsupported STORAGE_BACKEND %q", cfg.Storage.Backend)
	}
}

func (s *Storage) Close() error {
	var errs []error
	if s.redis != nil {
		errs = append(errs, s.redis.Close())
	}
	if s.db != nil {
		errs = append(errs, s.db.Close())
	}
	return errors.Join(errs...)
}
