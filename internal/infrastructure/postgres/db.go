package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// PoolConfig holds connection pool settings.
type PoolConfig struct {
	DatabaseURL string
	MaxConns    int
	MinConns    int
	// ConnectTimeout bounds the retries of the initial ping. Zero disables retrying.
	ConnectTimeout time.Duration
	Logger         zerolog.Logger
}

// NewPoolWithConfig creates a pool and pings it, retrying with exponential
// backoff until ConnectTimeout elapses.
func NewPoolWithConfig(ctx context.Context, cfg PoolConfig) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}

	if cfg.MaxConns > 0 {
		config.MaxConns = int32(cfg.MaxConns)
	}
	if cfg.MinConns > 0 {
		config.MinConns = int32(cfg.MinConns)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	ping := func() error {
		return pool.Ping(ctx)
	}

	var b backoff.BackOff = &backoff.StopBackOff{}
	if cfg.ConnectTimeout > 0 {
		eb := backoff.NewExponentialBackOff()
		eb.InitialInterval = 200 * time.Millisecond
		eb.MaxElapsedTime = cfg.ConnectTimeout
		b = eb
	}

	notify := func(err error, wait time.Duration) {
		cfg.Logger.Warn().Err(err).Dur("retry_in", wait).Msg("postgres not ready")
	}

	if err := backoff.RetryNotify(ping, backoff.WithContext(b, ctx), notify); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return pool, nil
}
