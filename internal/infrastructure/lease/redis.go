package lease

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bsm/redislock"
	"github.com/erp/marketsync/internal/domain/report"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisLeaser grants reconciliation leases backed by Redis so that several
// processes sharing one database never reconcile the same seller at once
type RedisLeaser struct {
	locker *redislock.Client
	logger *zap.Logger
}

// NewRedisLeaser creates a leaser on an existing client
func NewRedisLeaser(client redis.UniversalClient, logger *zap.Logger) *RedisLeaser {
	return &RedisLeaser{
		locker: redislock.New(client),
		logger: logger,
	}
}

// Acquire obtains the lease without retrying. A lease held elsewhere yields
// report.ErrAlreadyRunning.
func (l *RedisLeaser) Acquire(ctx context.Context, key string, ttl time.Duration) (report.Lease, error) {
	lock, err := l.locker.Obtain(ctx, key, ttl, nil)
	if errors.Is(err, redislock.ErrNotObtained) {
		return nil, report.ErrAlreadyRunning
	}
	if err != nil {
		return nil, fmt.Errorf("obtain lease %s: %w", key, err)
	}
	l.logger.Debug("Lease obtained", zap.String("key", key), zap.Duration("ttl", ttl))
	return &redisLease{lock: lock, key: key, logger: l.logger}, nil
}

type redisLease struct {
	lock   *redislock.Lock
	key    string
	logger *zap.Logger
}

// Release frees the lease. A lease that already expired is not an error.
func (r *redisLease) Release(ctx context.Context) error {
	err := r.lock.Release(ctx)
	if errors.Is(err, redislock.ErrLockNotHeld) {
		r.logger.Warn("Lease expired before release", zap.String("key", r.key))
		return nil
	}
	return err
}

var _ report.Leaser = (*RedisLeaser)(nil)
