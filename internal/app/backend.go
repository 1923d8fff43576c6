// Package app wires the configured ledger store, reference generator and
// health checks for the CLI and the server.
package app

import (
	"context"
	"fmt"

	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/antscrawling/cpfsim/internal/adapter/http/handler"
	"github.com/antscrawling/cpfsim/internal/adapter/repository/memory"
	postgresRepo "github.com/antscrawling/cpfsim/internal/adapter/repository/postgres"
	redisRepo "github.com/antscrawling/cpfsim/internal/adapter/repository/redis"
	"github.com/antscrawling/cpfsim/internal/adapter/repository/sqlite"
	"github.com/antscrawling/cpfsim/internal/infrastructure/config"
	"github.com/antscrawling/cpfsim/internal/infrastructure/postgres"
	"github.com/antscrawling/cpfsim/internal/infrastructure/redis"
	"github.com/antscrawling/cpfsim/internal/usecase"
)

// Backend is an opened store plus everything that depends on it.
type Backend struct {
	Repo   usecase.LedgerRepository
	Refs   usecase.ReferenceGenerator
	Checks map[string]handler.Pinger

	closers []func()
}

// Close releases every connection the backend opened, newest first.
func (b *Backend) Close() {
	for i := len(b.closers) - 1; i >= 0; i-- {
		b.closers[i]()
	}
}

// referenceHolder reports the highest reference a store already holds.
type referenceHolder interface {
	MaxReference(ctx context.Context) (int64, error)
}

// Open connects the store named by cfg.StoreDriver. When REDIS_URL is set the
// shared Redis counter replaces the store's own reference generator, raised
// first past every reference the store already holds.
func Open(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*Backend, error) {
	b := &Backend{Checks: make(map[string]handler.Pinger)}

	switch cfg.StoreDriver {
	case config.StoreMemory:
		store := memory.New()
		b.Repo, b.Refs = store, store

	case config.StoreSQLite:
		store, err := sqlite.New(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		b.closers = append(b.closers, func() { store.Close() })
		b.Repo, b.Refs = store, store
		logger.Info().Str("path", cfg.SQLitePath).Msg("opened sqlite store")

	case config.StorePostgres:
		if err := postgres.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath, logger); err != nil {
			return nil, err
		}
		pool, err := postgres.NewPoolWithConfig(ctx, postgres.PoolConfig{
			DatabaseURL:    cfg.DatabaseURL,
			MaxConns:       cfg.DatabaseMaxConns,
			MinConns:       cfg.DatabaseMinConns,
			ConnectTimeout: cfg.DatabaseConnectTimeout,
			Logger:         logger,
		})
		if err != nil {
			return nil, err
		}
		b.closers = append(b.closers, pool.Close)
		b.Repo = postgresRepo.NewLedgerRepository(pool, logger)
		b.Refs = postgresRepo.NewSequenceGenerator(pool)
		b.Checks["postgres"] = handler.PingFunc(pool.Ping)
		logger.Info().Msg("connected to postgres")

	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}

	if cfg.RedisURL != "" {
		client, err := redis.NewClientWithConfig(ctx, redis.ClientConfig{
			URL:            cfg.RedisURL,
			ConnectTimeout: cfg.DatabaseConnectTimeout,
			Logger:         logger,
		})
		if err != nil {
			b.Close()
			return nil, err
		}
		b.closers = append(b.closers, func() { client.Close() })

		refs := redisRepo.NewReferenceGenerator(client, cfg.RedisReferenceKey)
		if holder, ok := b.Repo.(referenceHolder); ok {
			held, err := holder.MaxReference(ctx)
			if err != nil {
				b.Close()
				return nil, err
			}
			if err := refs.Floor(ctx, held); err != nil {
				b.Close()
				return nil, err
			}
			logger.Debug().Int64("floor", held).Msg("raised redis reference counter")
		}
		b.Refs = refs
		b.Checks["redis"] = pingRedis(client)
		logger.Info().Str("key", cfg.RedisReferenceKey).Msg("using redis reference counter")
	}

	return b, nil
}

func pingRedis(client *goredis.Client) handler.Pinger {
	return handler.PingFunc(func(ctx context.Context) error {
		return client.Ping(ctx).Err()
	})
}
