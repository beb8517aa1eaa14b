// Package redis provides a distributed lock over a shared test data file,
// serializing runner instances that target the same data.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	backend "github.com/redis/go-redis/v9"

	"github.com/aretw0/stateline/pkg/ports"
)

// ErrNotHeld is returned on unlock when the lock expired or was taken over.
var ErrNotHeld = errors.New("lock no longer held")

// unlockScript deletes the lock only when the stored token matches, so an
// expired lock taken over by another runner is never released by us.
const unlockScript = `
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
else
	return 0
end
`

// Locker implements ports.DistributedLocker using Redis SET NX PX.
type Locker struct {
	client *backend.Client
	prefix string
	retry  time.Duration
}

// LockerOption configures the locker.
type LockerOption func(*Locker)

// WithRetryInterval overrides the acquisition polling interval.
func WithRetryInterval(d time.Duration) LockerOption {
	return func(l *Locker) { l.retry = d }
}

// NewLocker creates a Redis-backed locker. Keys are namespaced under the
// given prefix.
func NewLocker(client *backend.Client, prefix string, opts ...LockerOption) *Locker {
	l := &Locker{
		client: client,
		prefix: prefix,
		retry:  100 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Lock blocks until the data-file lock is acquired or the context is
// canceled. The returned UnlockFunc releases only our own token.
func (l *Locker) Lock(ctx context.Context, key string, ttl time.Duration) (ports.UnlockFunc, error) {
	lockKey := l.prefix + "lock:" + key
	token := uuid.NewString()

	ticker := time.NewTicker(l.retry)
	defer ticker.Stop()

	for {
		ok, err := l.client.SetNX(ctx, lockKey, token, ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("redis error acquiring lock: %w", err)
		}
		if ok {
			return func(ctx context.Context) error {
				n, err := l.client.Eval(ctx, unlockScript, []string{lockKey}, token).Int()
				if err != nil {
					return fmt.Errorf("redis error releasing lock: %w", err)
				}
				if n == 0 {
					return ErrNotHeld
				}
				return nil
			}, nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}
