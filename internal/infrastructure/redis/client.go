package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// ClientConfig holds Redis connection settings.
type ClientConfig struct {
	URL            string
	ConnectTimeout time.Duration
	Logger         zerolog.Logger
}

// NewClient creates a new Redis client and verifies it with a single ping.
func NewClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	return NewClientWithConfig(ctx, ClientConfig{URL: redisURL, Logger: zerolog.Nop()})
}

// NewClientWithConfig creates a Redis client, retrying the initial ping with
// exponential backoff until ConnectTimeout elapses. A zero ConnectTimeout
// pings once.
func NewClientWithConfig(ctx context.Context, cfg ClientConfig) (*redis.Client, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	var policy backoff.BackOff = &backoff.StopBackOff{}
	if cfg.ConnectTimeout > 0 {
		eb := backoff.NewExponentialBackOff()
		eb.InitialInterval = 100 * time.Millisecond
		eb.MaxElapsedTime = cfg.ConnectTimeout
		policy = eb
	}

	ping := func() error {
		return client.Ping(ctx).Err()
	}
	notify := func(err error, wait time.Duration) {
		cfg.Logger.Warn().Err(err).Dur("retry_in", wait).Msg("redis not ready")
	}

	if err := backoff.RetryNotify(ping, backoff.WithContext(policy, ctx), notify); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return client, nil
}
