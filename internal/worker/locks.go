package worker

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Redis-backed advisory locks so only one process expands a given payment
// plan or recurring template at a time. They complement, not replace, the
// optimistic version checks on the cursors: the lock avoids wasted work, the
// version check guarantees correctness when the lock is bypassed or expires.

const lockTTL = 2 * time.Minute

// AcquireLock takes a best-effort exclusive lock. A nil client (tests,
// degraded mode) always acquires: correctness falls back to the cursors.
func AcquireLock(ctx context.Context, rdb *redis.Client, key string) (bool, error) {
	if rdb == nil {
		return true, nil
	}
	return rdb.SetNX(ctx, key, "1", lockTTL).Result()
}

// ReleaseLock drops the lock. Expiry covers the crash case.
func ReleaseLock(ctx context.Context, rdb *redis.Client, key string) {
	if rdb == nil {
		return
	}
	rdb.Del(ctx, key)
}

func LockPlan(proyectoID uuid.UUID) string {
	return "lock:plan:" + proyectoID.String()
}

func LockRecurrente(recurrenteID uuid.UUID) string {
	return "lock:recurrente:" + recurrenteID.String()
}
