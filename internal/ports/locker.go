package ports

import "context"

// Locker is the distributed mutual-exclusion primitive that keeps cycles
// from overlapping. Acquire must be an atomic create-if-absent against a
// shared store: concurrent invocations may come from independent processes,
// so an in-process mutex is not enough.
type Locker interface {
	// Acquire tries to take the lease. (false, nil) means another holder
	// owns it — the caller skips the cycle, it is not an error. The lease
	// carries an expiry so a crashed holder is recovered by the store's
	// TTL mechanism.
	Acquire(ctx context.Context) (bool, error)

	// Release unconditionally deletes the lease. Must run on every exit
	// path of a cycle.
	Release(ctx context.Context) error
}
