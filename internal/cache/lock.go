package cache

import (
	"context"
	"fmt"
	"time"

	"wetmill-backend/internal/apperr"
	"wetmill-backend/internal/logging"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"
)

const sweepLockTTL = 5 * time.Minute

// SweepLocker keeps two replicas from running the same backfill sweep at
// once. Without Redis every sweep runs unlocked.
type SweepLocker struct {
	locker *redislock.Client
}

func NewSweepLocker(client *redis.Client) *SweepLocker {
	if client == nil {
		return &SweepLocker{}
	}
	return &SweepLocker{locker: redislock.New(client)}
}

// Acquire takes the lock for a sweep. The returned release func is always
// safe to call.
func (l *SweepLocker) Acquire(ctx context.Context, name string) (func(), error) {
	if l == nil || l.locker == nil {
		return func() {}, nil
	}

	key := fmt.Sprintf("lock:backfill:%s", name)
	lock, err := l.locker.Obtain(ctx, key, sweepLockTTL, nil)
	if err == redislock.ErrNotObtained {
		return nil, apperr.Conflict("the %s sweep is already running", name)
	} else if err != nil {
		logging.LogError("cache", "Acquire", "Error obtaining sweep lock", key, err)
		return nil, apperr.Internal(err, "could not obtain sweep lock")
	}

	return func() {
		_ = lock.Release(context.Background())
	}, nil
}
