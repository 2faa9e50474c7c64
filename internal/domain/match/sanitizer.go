package match

import (
	"strings"
	"time"
)

type WriteKind string

const (
	WriteCreate        WriteKind = "create"
	WriteUpdate        WriteKind = "update"
	WriteSkipManual    WriteKind = "skipped_manual"
	WriteSkipUnchanged WriteKind = "skipped_unchanged"
	WriteReject        WriteKind = "rejected"
)

// Persists reports whether the store must receive the write.
func (k WriteKind) Persists() bool {
	return k == WriteCreate || k == WriteUpdate || k == WriteSkipManual
}

type PlanOptions struct {
	TournamentID        string
	AllowManualOverride bool
	Now                 time.Time
}

// Write is the planned outcome for one draft.
type Write struct {
	Kind    WriteKind
	MatchID string
	Patch   Patch
	// Changed lists the comparable columns that differ, for updates.
	Changed []string
	Reason  string
}

// Plan decides what reconciling d against existing (nil when no record
// matched) may write:
//
//  1. a FINISHED record keeps its status, and its scores, when the draft
//     is not finished;
//  2. score columns are written only for FINISHED results;
//  3. when no comparable column differs the write is dropped;
//  4. manually edited records only get sync bookkeeping unless
//     AllowManualOverride is set.
func Plan(d Draft, existing *Match, opts PlanOptions) Write {
	if strings.TrimSpace(d.ExternalMatchID) == "" || strings.TrimSpace(d.Provider) == "" {
		return Write{Kind: WriteReject, Reason: "missing external match id"}
	}

	now := opts.Now.UTC()
	p := proposal(d, opts.TournamentID)

	if existing == nil {
		if s, _ := p.Status(); !s.IsFinished() {
			p.OmitScores()
		}
		p.LastSyncedAt = Some(now)
		p.SyncStatus = Some(SyncStatusOK)
		p.SyncError = None[string]()
		p.IsManuallyEdited = Some(false)
		return Write{
			Kind:    WriteCreate,
			MatchID: DocID(strings.TrimSpace(d.Provider), strings.TrimSpace(d.ExternalMatchID)),
			Patch:   p,
		}
	}

	if s, _ := p.Status(); existing.Status.IsFinished() && !s.IsFinished() {
		p.SetStatus(existing.Status)
		p.OmitScores()
	}
	if s, _ := p.Status(); !s.IsFinished() {
		p.OmitScores()
	}

	changed := p.Changes(*existing)
	if len(changed) == 0 {
		return Write{Kind: WriteSkipUnchanged, MatchID: existing.ID}
	}

	if existing.IsManuallyEdited && !opts.AllowManualOverride {
		return Write{
			Kind:    WriteSkipManual,
			MatchID: existing.ID,
			Patch: Patch{
				LastSyncedAt: Some(now),
				SyncStatus:   Some(SyncStatusSkippedManual),
			},
			Changed: changed,
		}
	}

	p.LastSyncedAt = Some(now)
	p.SyncStatus = Some(SyncStatusOK)
	p.SyncError = None[string]()
	return Write{Kind: WriteUpdate, MatchID: existing.ID, Patch: p, Changed: changed}
}

// proposal is the full upstream view of d as a patch.
func proposal(d Draft, tournamentID string) Patch {
	p := Patch{
		HomeTeam:         Some(strings.TrimSpace(d.HomeTeam)),
		AwayTeam:         Some(strings.TrimSpace(d.AwayTeam)),
		KickOffTime:      FromPtr(d.KickOffTime),
		Stage:            Optional(d.Stage),
		ExternalProvider: Some(strings.TrimSpace(d.Provider)),
		ExternalMatchID:  Some(strings.TrimSpace(d.ExternalMatchID)),
	}
	if tournamentID != "" {
		p.TournamentID = Some(tournamentID)
	}
	p.SetStatus(d.Status)

	if d.Stage == StageGroup {
		p.Group = Optional(d.Group)
		p.Matchday = Optional(d.Matchday)
	} else {
		p.Group = None[string]()
		p.Matchday = None[int]()
	}
	p.StageKey = Optional(d.StageKey())

	if d.Score != nil {
		p.HomeScore = FromPtr(d.Score.Home)
		p.AwayScore = FromPtr(d.Score.Away)
		p.Score = Some(*d.Score)
	} else {
		p.HomeScore = None[int]()
		p.AwayScore = None[int]()
		p.Score = None[Score]()
	}
	return p
}
