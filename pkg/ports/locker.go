package ports

import (
	"context"
	"time"
)

// UnlockFunc releases a held lock.
type UnlockFunc func(ctx context.Context) error

// DistributedLocker serializes writers of a shared test data file across
// runner instances. Lock blocks until the lock is acquired or the context
// is canceled; the returned UnlockFunc MUST be called to release it.
type DistributedLocker interface {
	Lock(ctx context.Context, key string, ttl time.Duration) (UnlockFunc, error)
}
