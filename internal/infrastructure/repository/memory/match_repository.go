package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/riskibarqy/fixture-sync/internal/domain/match"
)

// MatchRepository keeps canonical matches in process memory. Every batch
// is applied to a copy and swapped in, so a failing batch changes nothing.
type MatchRepository struct {
	mu      sync.RWMutex
	byID    map[string]match.Match
	order   []string
	applied int
	now     func() time.Time
}

func NewMatchRepository(seed []match.Match) *MatchRepository {
	r := &MatchRepository{
		byID: make(map[string]match.Match, len(seed)),
		now:  time.Now,
	}
	for _, item := range seed {
		if _, ok := r.byID[item.ID]; !ok {
			r.order = append(r.order, item.ID)
		}
		r.byID[item.ID] = item
	}
	return r
}

func (r *MatchRepository) ListByTournament(_ context.Context, tournamentID string) ([]match.Match, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]match.Match, 0, len(r.order))
	for _, id := range r.order {
		if item := r.byID[id]; item.TournamentID == tournamentID {
			out = append(out, item)
		}
	}
	return out, nil
}

func (r *MatchRepository) CommitBatch(_ context.Context, tournamentID string, writes []match.Write) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now().UTC()
	next := make(map[string]match.Match, len(r.byID)+len(writes))
	for id, item := range r.byID {
		next[id] = item
	}
	order := append([]string(nil), r.order...)

	for _, w := range writes {
		current, exists := next[w.MatchID]
		switch w.Kind {
		case match.WriteCreate:
			if !exists {
				current = match.Match{ID: w.MatchID, TournamentID: tournamentID, CreatedAt: now}
				order = append(order, w.MatchID)
			}
		case match.WriteUpdate, match.WriteSkipManual:
			if !exists {
				return fmt.Errorf("%s write for unknown match %q", w.Kind, w.MatchID)
			}
		default:
			continue
		}
		updated := w.Patch.Apply(current)
		updated.UpdatedAt = now
		if err := checkProvenance(next, updated); err != nil {
			return err
		}
		next[w.MatchID] = updated
	}

	r.byID = next
	r.order = order
	r.applied += len(writes)
	return nil
}

// checkProvenance mirrors the unique (external_provider, external_match_id)
// index of the SQL schema.
func checkProvenance(all map[string]match.Match, candidate match.Match) error {
	if candidate.ExternalMatchID == "" {
		return nil
	}
	for id, item := range all {
		if id != candidate.ID &&
			item.ExternalProvider == candidate.ExternalProvider &&
			item.ExternalMatchID == candidate.ExternalMatchID {
			return fmt.Errorf("duplicate provenance %s/%s on %q and %q",
				candidate.ExternalProvider, candidate.ExternalMatchID, id, candidate.ID)
		}
	}
	return nil
}

func (r *MatchRepository) ListKickoffsBetween(_ context.Context, tournamentID string, from, to time.Time) ([]time.Time, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []time.Time
	for _, item := range r.byID {
		if item.TournamentID != tournamentID || item.Status.IsFinished() || item.KickOffTime == nil {
			continue
		}
		k := *item.KickOffTime
		if k.Before(from) || k.After(to) {
			continue
		}
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out, nil
}

func (r *MatchRepository) Get(id string) (match.Match, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.byID[id]
	return item, ok
}

// Applied counts the writes committed since construction.
func (r *MatchRepository) Applied() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.applied
}
