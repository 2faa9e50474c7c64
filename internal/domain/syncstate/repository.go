package syncstate

import (
	"context"
	"time"
)

// LockRepository is a TTL mutex in the shared store.
type LockRepository interface {
	// Acquire atomically claims key when it is free or expired. It
	// returns false, without mutating anything, while another holder's
	// lease is live.
	Acquire(ctx context.Context, key, holder string, ttl time.Duration, now time.Time) (bool, error)
	// Release clears the lease fields but keeps the row. It is a no-op
	// when holder no longer owns the lease.
	Release(ctx context.Context, key, holder string) error
	Get(ctx context.Context, key string) (Lock, bool, error)
}

type StatusRepository interface {
	Merge(ctx context.Context, tournamentID string, patch StatusPatch) error
	Get(ctx context.Context, tournamentID string) (Status, bool, error)
}
