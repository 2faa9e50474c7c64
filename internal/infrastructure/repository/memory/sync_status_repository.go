package memory

import (
	"context"
	"sync"
	"time"

	"github.com/riskibarqy/fixture-sync/internal/domain/syncstate"
)

type SyncStatusRepository struct {
	mu       sync.RWMutex
	statuses map[string]syncstate.Status
	now      func() time.Time
}

func NewSyncStatusRepository() *SyncStatusRepository {
	return &SyncStatusRepository{
		statuses: make(map[string]syncstate.Status),
		now:      time.Now,
	}
}

func (r *SyncStatusRepository) Merge(_ context.Context, tournamentID string, patch syncstate.StatusPatch) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.statuses[tournamentID]
	if !ok {
		current = syncstate.Status{TournamentID: tournamentID}
	}
	next := patch.Apply(current)
	next.UpdatedAt = r.now().UTC()
	r.statuses[tournamentID] = next
	return nil
}

func (r *SyncStatusRepository) Get(_ context.Context, tournamentID string) (syncstate.Status, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	status, ok := r.statuses[tournamentID]
	return status, ok, nil
}
