// Package inflight prevents duplicate pipeline runs for the same target.
//
// A guard key is taken with SETNX before a task is enqueued and released by
// the worker when the task reaches a terminal state. The TTL bounds how long
// a key can outlive a worker that died without releasing it.
package inflight

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/fairyhunter13/agent-recruitment/internal/domain"
)

// Guard implements the duplicate-run guard on Redis.
type Guard struct {
	rdb *redis.Client
	ttl time.Duration
}

// New constructs a Guard. ttl bounds orphaned keys.
func New(rdb *redis.Client, ttl time.Duration) *Guard {
	return &Guard{rdb: rdb, ttl: ttl}
}

// ExtractKey names the guard for one candidate's extraction.
func ExtractKey(candidateID int64) string {
	return fmt.Sprintf("inflight:extract:%d", candidateID)
}

// EvaluateKey names the guard for one job's batch evaluation.
func EvaluateKey(jobID int64) string {
	return fmt.Sprintf("inflight:evaluate:%d", jobID)
}

// AcquireExtract guards one candidate's extraction run.
func (g *Guard) AcquireExtract(ctx context.Context, candidateID int64) error {
	return g.Acquire(ctx, ExtractKey(candidateID))
}

// ReleaseExtract frees the extraction guard.
func (g *Guard) ReleaseExtract(ctx context.Context, candidateID int64) error {
	return g.Release(ctx, ExtractKey(candidateID))
}

// AcquireEvaluate guards one job's batch evaluation run.
func (g *Guard) AcquireEvaluate(ctx context.Context, jobID int64) error {
	return g.Acquire(ctx, EvaluateKey(jobID))
}

// ReleaseEvaluate frees the evaluation guard.
func (g *Guard) ReleaseEvaluate(ctx context.Context, jobID int64) error {
	return g.Release(ctx, EvaluateKey(jobID))
}

// Acquire takes the guard key. Returns ErrConflict when a run is already in
// flight for the same key.
func (g *Guard) Acquire(ctx context.Context, key string) error {
	ok, err := g.rdb.SetNX(ctx, key, "1", g.ttl).Result()
	if err != nil {
		return fmt.Errorf("op=inflight.acquire key=%s: %w", key, err)
	}
	if !ok {
		return fmt.Errorf("op=inflight.acquire key=%s: already in flight: %w", key, domain.ErrConflict)
	}
	return nil
}

// Release frees the guard key. Releasing a missing key is a no-op.
func (g *Guard) Release(ctx context.Context, key string) error {
	if err := g.rdb.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("op=inflight.release key=%s: %w", key, err)
	}
	return nil
}
