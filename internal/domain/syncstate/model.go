package syncstate

import (
	"strings"
	"time"
)

type RunStatus string

const (
	RunStatusOK        RunStatus = "ok"
	RunStatusError     RunStatus = "error"
	RunStatusRateLimit RunStatus = "rate_limit"
)

// Lock guards one tournament/provider pair. A released lock keeps its row
// with every field zeroed.
type Lock struct {
	Key       string
	LockedAt  *time.Time
	ExpiresAt *time.Time
	LockedBy  string
}

// Held reports whether the lock is still active at now.
func (l Lock) Held(now time.Time) bool {
	return l.ExpiresAt != nil && l.ExpiresAt.After(now)
}

// LockKey is "<tournament>_<provider>".
func LockKey(tournamentID, provider string) string {
	return strings.TrimSpace(tournamentID) + "_" + strings.TrimSpace(provider)
}

// Counters summarise one reconciliation run.
type Counters struct {
	Created          int
	Updated          int
	SkippedManual    int
	SkippedUnchanged int
	Rejected         int
	Total            int
}

// Status is the per-tournament observability record.
type Status struct {
	TournamentID  string
	LastRunAt     *time.Time
	LastSuccessAt *time.Time
	Status        RunStatus
	LastError     string
	Provider      string
	Mode          string
	DateFrom      string
	DateTo        string
	Counters      Counters
	UpdatedAt     time.Time
}

// StatusPatch is a merge write; nil fields are left untouched. LastError
// set to a pointer to "" clears the stored error.
type StatusPatch struct {
	LastRunAt     *time.Time
	LastSuccessAt *time.Time
	Status        *RunStatus
	LastError     *string
	Provider      *string
	Mode          *string
	DateFrom      *string
	DateTo        *string
	Counters      *Counters
}

// Apply merges p into s.
func (p StatusPatch) Apply(s Status) Status {
	if p.LastRunAt != nil {
		s.LastRunAt = p.LastRunAt
	}
	if p.LastSuccessAt != nil {
		s.LastSuccessAt = p.LastSuccessAt
	}
	if p.Status != nil {
		s.Status = *p.Status
	}
	if p.LastError != nil {
		s.LastError = *p.LastError
	}
	if p.Provider != nil {
		s.Provider = *p.Provider
	}
	if p.Mode != nil {
		s.Mode = *p.Mode
	}
	if p.DateFrom != nil {
		s.DateFrom = *p.DateFrom
	}
	if p.DateTo != nil {
		s.DateTo = *p.DateTo
	}
	if p.Counters != nil {
		s.Counters = *p.Counters
	}
	return s
}
