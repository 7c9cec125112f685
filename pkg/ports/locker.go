package ports

import (
	"context"
	"time"
)

// UnlockFunc is a function that releases a distributed lock.
type UnlockFunc func(ctx context.Context) error

// DistributedLocker serializes runs that drive the same application.
// The UI under test is single-threaded, so two runs against one target must
// never interleave, even when issued from different processes.
type DistributedLocker interface {
	// Lock acquires the lock for key, blocking until it is acquired or ctx is done.
	// Returns an UnlockFunc that MUST be called to release the lock.
	Lock(ctx context.Context, key string, ttl time.Duration) (UnlockFunc, error)
}
