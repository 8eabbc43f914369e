package ports

import (
	"context"
	"time"
)

// UnlockFunc releases an acquired lock.
type UnlockFunc func(ctx context.Context) error

// Locker coordinates session access across replicas of the host. A single
// embedded host does not need one; the HTTP host uses it when more than one
// instance shares a snapshot store.
type Locker interface {
	// Lock blocks until the lock for key is acquired, the context is
	// canceled, or the TTL expires. The returned UnlockFunc MUST be called.
	Lock(ctx context.Context, key string, ttl time.Duration) (UnlockFunc, error)
}
