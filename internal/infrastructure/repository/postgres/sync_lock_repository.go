package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/fixture-sync/internal/domain/syncstate"
	qb "github.com/riskibarqy/fixture-sync/internal/platform/querybuilder"
)

const syncLocksTable = "sync_locks"

type SyncLockRepository struct {
	db *sqlx.DB
}

func NewSyncLockRepository(db *sqlx.DB) *SyncLockRepository {
	return &SyncLockRepository{db: db}
}

// Acquire makes sure the row exists, locks it and claims the lease only
// when the stored expiry is in the past.
func (r *SyncLockRepository) Acquire(ctx context.Context, key, holder string, ttl time.Duration, now time.Time) (bool, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin tx acquire sync lock: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	ensureQuery, ensureArgs, err := qb.InsertInto(syncLocksTable).
		Columns("lock_key").
		Values(key).
		OnConflict("lock_key").
		DoNothing().
		ToSQL()
	if err != nil {
		return false, fmt.Errorf("build ensure sync lock query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, ensureQuery, ensureArgs...); err != nil {
		return false, fmt.Errorf("ensure sync lock: %w", err)
	}

	selectQuery, selectArgs, err := qb.Select("lock_key", "locked_at", "expires_at", "locked_by").
		From(syncLocksTable).
		Where(qb.Eq("lock_key", key)).
		ForUpdate().
		ToSQL()
	if err != nil {
		return false, fmt.Errorf("build select sync lock query: %w", err)
	}
	var row syncLockTableModel
	if err := tx.GetContext(ctx, &row, selectQuery, selectArgs...); err != nil {
		return false, fmt.Errorf("select sync lock: %w", err)
	}

	now = now.UTC()
	if lockFromRow(row).Held(now) {
		return false, nil
	}

	updateQuery, updateArgs, err := qb.Update(syncLocksTable).
		Set("locked_at", now).
		Set("expires_at", now.Add(ttl)).
		Set("locked_by", holder).
		Where(qb.Eq("lock_key", key)).
		ToSQL()
	if err != nil {
		return false, fmt.Errorf("build claim sync lock query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, updateQuery, updateArgs...); err != nil {
		return false, fmt.Errorf("claim sync lock: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit acquire sync lock tx: %w", err)
	}
	return true, nil
}

// Release only clears a lease still owned by holder, so a run that outlived
// its TTL cannot drop a lock another holder has since claimed.
func (r *SyncLockRepository) Release(ctx context.Context, key, holder string) error {
	query, args, err := qb.Update(syncLocksTable).
		Set("locked_at", nil).
		Set("expires_at", nil).
		Set("locked_by", nil).
		Where(qb.Eq("lock_key", key), qb.Eq("locked_by", holder)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build release sync lock query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("release sync lock: %w", err)
	}
	return nil
}

func (r *SyncLockRepository) Get(ctx context.Context, key string) (syncstate.Lock, bool, error) {
	query, args, err := qb.Select("lock_key", "locked_at", "expires_at", "locked_by").
		From(syncLocksTable).
		Where(qb.Eq("lock_key", key)).
		ToSQL()
	if err != nil {
		return syncstate.Lock{}, false, fmt.Errorf("build get sync lock query: %w", err)
	}
	var row syncLockTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return syncstate.Lock{}, false, nil
		}
		return syncstate.Lock{}, false, fmt.Errorf("get sync lock: %w", err)
	}
	return lockFromRow(row), true, nil
}

func lockFromRow(row syncLockTableModel) syncstate.Lock {
	return syncstate.Lock{
		Key:       row.Key,
		LockedAt:  nullTimePtr(row.LockedAt),
		ExpiresAt: nullTimePtr(row.ExpiresAt),
		LockedBy:  row.LockedBy.String,
	}
}
