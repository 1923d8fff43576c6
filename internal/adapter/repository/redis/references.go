package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// DefaultReferenceKey is the counter shared by every run against one Redis.
const DefaultReferenceKey = "cpfsim:ledger:reference"

// ReferenceGenerator hands out ledger references with INCR, so several
// simulator processes can share one reference space.
type ReferenceGenerator struct {
	client *redis.Client
	key    string
}

// NewReferenceGenerator creates a ReferenceGenerator on key, or on
// DefaultReferenceKey when key is empty.
func NewReferenceGenerator(client *redis.Client, key string) *ReferenceGenerator {
	if key == "" {
		key = DefaultReferenceKey
	}
	return &ReferenceGenerator{
		client: client,
		key:    key,
	}
}

// Next returns the next reference.
func (g *ReferenceGenerator) Next(ctx context.Context) (int64, error) {
	ref, err := g.client.Incr(ctx, g.key).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to increment %s: %w", g.key, err)
	}
	return ref, nil
}

// Floor raises the counter to at least floor, so references already held by a
// store are never handed out again. It never lowers the counter.
func (g *ReferenceGenerator) Floor(ctx context.Context, floor int64) error {
	err := g.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, g.key).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if current >= floor {
			return nil
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, g.key, floor, 0)
			return nil
		})
		return err
	}, g.key)
	if err != nil {
		return fmt.Errorf("failed to raise %s to %d: %w", g.key, floor, err)
	}
	return nil
}
