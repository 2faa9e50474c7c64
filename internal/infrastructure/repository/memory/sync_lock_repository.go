package memory

import (
	"context"
	"sync"
	"time"

	"github.com/riskibarqy/fixture-sync/internal/domain/syncstate"
)

type SyncLockRepository struct {
	mu    sync.Mutex
	locks map[string]syncstate.Lock
}

func NewSyncLockRepository() *SyncLockRepository {
	return &SyncLockRepository{locks: make(map[string]syncstate.Lock)}
}

func (r *SyncLockRepository) Acquire(_ context.Context, key, holder string, ttl time.Duration, now time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now = now.UTC()
	if r.locks[key].Held(now) {
		return false, nil
	}
	expires := now.Add(ttl)
	r.locks[key] = syncstate.Lock{
		Key:       key,
		LockedAt:  &now,
		ExpiresAt: &expires,
		LockedBy:  holder,
	}
	return true, nil
}

func (r *SyncLockRepository) Release(_ context.Context, key, holder string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	lock, ok := r.locks[key]
	if !ok || lock.LockedBy != holder {
		return nil
	}
	r.locks[key] = syncstate.Lock{Key: key}
	return nil
}

func (r *SyncLockRepository) Get(_ context.Context, key string) (syncstate.Lock, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	lock, ok := r.locks[key]
	return lock, ok, nil
}
