package app

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/fairyhunter13/agent-recruitment/internal/config"
)

// Pinger is the minimal interface for a database pool capable of Ping.
type Pinger interface {
	Ping(ctx context.Context) error
}

// RedisClient is the minimal interface for a Redis client needed for readiness.
type RedisClient interface {
	Ping(ctx context.Context) *redis.StatusCmd
}

// BucketChecker is the minimal interface for an object store needed for readiness.
type BucketChecker interface {
	BucketExists(ctx context.Context, bucket string) (bool, error)
}

// BuildReadinessChecks returns three readiness checks: db, redis, and object store.
func BuildReadinessChecks(cfg config.Config, pool Pinger, rdb RedisClient, store BucketChecker) (
	func(ctx context.Context) error,
	func(ctx context.Context) error,
	func(ctx context.Context) error,
) {
	dbCheck := func(ctx context.Context) error {
		if pool == nil {
			return fmt.Errorf("db not configured")
		}
		return pool.Ping(ctx)
	}
	redisCheck := func(ctx context.Context) error {
		if rdb == nil {
			return fmt.Errorf("redis not configured")
		}
		return rdb.Ping(ctx).Err()
	}
	storeCheck := func(ctx context.Context) error {
		if store == nil {
			return fmt.Errorf("object store not configured")
		}
		ok, err := store.BucketExists(ctx, cfg.MinioBucket)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("bucket %q missing", cfg.MinioBucket)
		}
		return nil
	}
	return dbCheck, redisCheck, storeCheck
}
