package postgres

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()

	raw, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = raw.Close() })
	return sqlx.NewDb(raw, "postgres"), mock
}

const (
	ensureLockSQL = "INSERT INTO sync_locks (lock_key) VALUES ($1) ON CONFLICT (lock_key) DO NOTHING"
	selectLockSQL = "SELECT lock_key, locked_at, expires_at, locked_by FROM sync_locks WHERE lock_key = $1 FOR UPDATE"
	claimLockSQL  = "UPDATE sync_locks SET locked_at = $1, expires_at = $2, locked_by = $3 WHERE lock_key = $4"
)

var lockColumns = []string{"lock_key", "locked_at", "expires_at", "locked_by"}

func TestSyncLockRepository_AcquireClaimsFreeLockInOneTx(t *testing.T) {
	t.Parallel()

	sqlxDB, mock := newMockDB(t)
	repo := NewSyncLockRepository(sqlxDB)
	now := time.Date(2026, 6, 11, 18, 0, 0, 0, time.UTC)
	key := "FIFA2026_football-data"

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(ensureLockSQL)).
		WithArgs(key).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta(selectLockSQL)).
		WithArgs(key).
		WillReturnRows(sqlmock.NewRows(lockColumns).AddRow(key, nil, nil, nil))
	mock.ExpectExec(regexp.QuoteMeta(claimLockSQL)).
		WithArgs(now, now.Add(10*time.Minute), "host-a/1", key).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	ok, err := repo.Acquire(context.Background(), key, "host-a/1", 10*time.Minute, now)
	require.NoError(t, err)
	require.True(t, ok)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSyncLockRepository_AcquireLeavesLiveLeaseUntouched(t *testing.T) {
	t.Parallel()

	sqlxDB, mock := newMockDB(t)
	repo := NewSyncLockRepository(sqlxDB)
	now := time.Date(2026, 6, 11, 18, 0, 0, 0, time.UTC)
	key := "FIFA2026_football-data"

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(ensureLockSQL)).
		WithArgs(key).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta(selectLockSQL)).
		WithArgs(key).
		WillReturnRows(sqlmock.NewRows(lockColumns).
			AddRow(key, now.Add(-time.Minute), now.Add(9*time.Minute), "host-b/2"))
	mock.ExpectRollback()

	ok, err := repo.Acquire(context.Background(), key, "host-a/1", 10*time.Minute, now)
	require.NoError(t, err)
	require.False(t, ok)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSyncLockRepository_ReleaseIsScopedToHolder(t *testing.T) {
	t.Parallel()

	sqlxDB, mock := newMockDB(t)
	repo := NewSyncLockRepository(sqlxDB)
	key := "FIFA2026_football-data"

	mock.ExpectExec(regexp.QuoteMeta("UPDATE sync_locks SET locked_at = $1, expires_at = $2, locked_by = $3 WHERE lock_key = $4 AND locked_by = $5")).
		WithArgs(nil, nil, nil, key, "host-a/1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.Release(context.Background(), key, "host-a/1"))
	require.NoError(t, mock.ExpectationsWereMet())
}
