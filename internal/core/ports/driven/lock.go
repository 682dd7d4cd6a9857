package driven

import "context"

// KeyedLocker provides mutual exclusion per key.
type KeyedLocker interface {
	// Lock blocks until the lock for key is held or ctx is done.
	// The returned function releases the lock and must be called exactly once.
	Lock(ctx context.Context, key string) (unlock func(), err error)
}
