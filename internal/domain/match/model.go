package match

import "time"

const (
	SyncStatusOK            = "ok"
	SyncStatusSkippedManual = "skipped_manual"
)

// Draft is one upstream fixture after mapping, before reconciliation.
type Draft struct {
	Provider        string
	ExternalMatchID string
	HomeTeam        string
	AwayTeam        string
	KickOffTime     *time.Time
	Status          Status
	// Score is nil when the upstream reported nothing usable.
	Score    *Score
	Stage    Stage
	Group    string
	Matchday int
}

func (d Draft) LegacyStatus() LegacyStatus {
	return d.Status.Legacy()
}

func (d Draft) StageKey() string {
	return BuildStageKey(d.Stage, d.Group, d.Matchday)
}

// Match is the canonical persisted record.
type Match struct {
	ID               string
	TournamentID     string
	HomeTeam         string
	AwayTeam         string
	KickOffTime      *time.Time
	Status           Status
	LegacyStatus     LegacyStatus
	HomeScore        *int
	AwayScore        *int
	Score            *Score
	Stage            Stage
	Group            string
	Matchday         int
	StageKey         string
	ExternalProvider string
	ExternalMatchID  string
	LastSyncedAt     *time.Time
	SyncStatus       string
	SyncError        string
	IsManuallyEdited bool
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// DocID is the stable identity of a record created from provenance.
func DocID(provider, externalMatchID string) string {
	return provider + "_" + externalMatchID
}
