package cache

import (
	"errors"
	"time"

	"github.com/go-redsync/redsync/v4"
	"github.com/go-redsync/redsync/v4/redis/goredis/v9"
)

// ErrLockNotAcquired is returned when the mutex is held elsewhere.
var ErrLockNotAcquired = errors.New("could not acquire distributed lock")

// DistributedLockService wraps redsync for cross-instance mutual
// exclusion. Only the expiry sweeper uses it; vote admission relies on
// the storage uniqueness constraint instead of any lock.
type DistributedLockService struct {
	rs *redsync.Redsync
}

// NewLockService builds a lock service on the shared Redis client.
func NewLockService() (*DistributedLockService, error) {
	client, err := GetClient()
	if err != nil {
		return nil, err
	}
	pool := goredis.NewPool(client)
	return &DistributedLockService{rs: redsync.New(pool)}, nil
}

// WithLock runs action while holding the named mutex. If the mutex is
// held by another instance the action is skipped and ErrLockNotAcquired
// is returned.
func (s *DistributedLockService) WithLock(lockName string, expiry time.Duration, action func() error) error {
	mutex := s.rs.NewMutex(lockName,
		redsync.WithExpiry(expiry),
		redsync.WithTries(1),
	)

	if err := mutex.Lock(); err != nil {
		return ErrLockNotAcquired
	}
	defer func() {
		_, _ = mutex.Unlock()
	}()

	return action()
}
