package sqlite

// lock.go — execution lock on the local database.
//
// Same contract as the DynamoDB lock: an atomic create-if-absent with a
// lease expiry. SQLite has no TTL reaper, so Acquire purges an expired
// lease row before attempting the insert — that purge is the crash-recovery
// path.

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

const lockID = "main_execution"

// Lock implements ports.Locker on the execution_locks table.
type Lock struct {
	store *Store
	lease time.Duration
	log   zerolog.Logger
}

// NewLock creates the lock with the given lease duration.
func NewLock(store *Store, lease time.Duration, log zerolog.Logger) *Lock {
	return &Lock{
		store: store,
		lease: lease,
		log:   log.With().Str("component", "lock").Logger(),
	}
}

// Acquire reaps an expired lease, then inserts if absent. The INSERT's
// conflict clause makes the create atomic: zero rows affected means another
// holder owns the lease.
func (l *Lock) Acquire(ctx context.Context) (bool, error) {
	now := time.Now().UTC()

	if _, err := l.store.db.ExecContext(ctx,
		`DELETE FROM execution_locks WHERE lock_id = ? AND expires_at < ?`,
		lockID, now.Unix()); err != nil {
		return false, fmt.Errorf("sqlite.Lock.Acquire: purge expired: %w", err)
	}

	res, err := l.store.db.ExecContext(ctx, `
		INSERT INTO execution_locks (lock_id, locked_at, expires_at)
		VALUES (?, ?, ?)
		ON CONFLICT (lock_id) DO NOTHING`,
		lockID, now.Format(time.RFC3339), now.Add(l.lease).Unix())
	if err != nil {
		return false, fmt.Errorf("sqlite.Lock.Acquire: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("sqlite.Lock.Acquire: rows affected: %w", err)
	}
	if n == 0 {
		l.log.Warn().Msg("lock already held, skipping execution")
		return false, nil
	}

	l.log.Info().Msg("lock acquired")
	return true, nil
}

// Release deletes the lease unconditionally.
func (l *Lock) Release(ctx context.Context) error {
	if _, err := l.store.db.ExecContext(ctx,
		`DELETE FROM execution_locks WHERE lock_id = ?`, lockID); err != nil {
		return fmt.Errorf("sqlite.Lock.Release: %w", err)
	}
	l.log.Info().Msg("lock released")
	return nil
}
