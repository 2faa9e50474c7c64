package postgres

import (
	"database/sql"
	"time"
)

const matchSelectColumns = "id, tournament_id, home_team, away_team, kickoff_time, status, legacy_status, " +
	"home_score, away_score, score, stage, group_name, matchday, stage_key, external_provider, " +
	"external_match_id, last_synced_at, sync_status, sync_error, is_manually_edited, created_at, updated_at"

type matchTableModel struct {
	ID               string         `db:"id"`
	TournamentID     string         `db:"tournament_id"`
	HomeTeam         string         `db:"home_team"`
	AwayTeam         string         `db:"away_team"`
	KickOffTime      sql.NullTime   `db:"kickoff_time"`
	Status           string         `db:"status"`
	LegacyStatus     string         `db:"legacy_status"`
	HomeScore        sql.NullInt64  `db:"home_score"`
	AwayScore        sql.NullInt64  `db:"away_score"`
	Score            []byte         `db:"score"`
	Stage            sql.NullString `db:"stage"`
	Group            sql.NullString `db:"group_name"`
	Matchday         sql.NullInt64  `db:"matchday"`
	StageKey         sql.NullString `db:"stage_key"`
	ExternalProvider sql.NullString `db:"external_provider"`
	ExternalMatchID  sql.NullString `db:"external_match_id"`
	LastSyncedAt     sql.NullTime   `db:"last_synced_at"`
	SyncStatus       sql.NullString `db:"sync_status"`
	SyncError        sql.NullString `db:"sync_error"`
	IsManuallyEdited bool           `db:"is_manually_edited"`
	CreatedAt        time.Time      `db:"created_at"`
	UpdatedAt        time.Time      `db:"updated_at"`
}

type syncLockTableModel struct {
	Key       string         `db:"lock_key"`
	LockedAt  sql.NullTime   `db:"locked_at"`
	ExpiresAt sql.NullTime   `db:"expires_at"`
	LockedBy  sql.NullString `db:"locked_by"`
}

type syncStatusTableModel struct {
	TournamentID     string         `db:"tournament_id"`
	LastRunAt        sql.NullTime   `db:"last_run_at"`
	LastSuccessAt    sql.NullTime   `db:"last_success_at"`
	Status           sql.NullString `db:"status"`
	LastError        sql.NullString `db:"last_error"`
	Provider         sql.NullString `db:"provider"`
	Mode             sql.NullString `db:"mode"`
	DateFrom         sql.NullString `db:"date_from"`
	DateTo           sql.NullString `db:"date_to"`
	Created          int            `db:"created_count"`
	Updated          int            `db:"updated_count"`
	SkippedManual    int            `db:"skipped_manual"`
	SkippedUnchanged int            `db:"skipped_unchanged"`
	Rejected         int            `db:"rejected_count"`
	Total            int            `db:"total_count"`
	UpdatedAt        time.Time      `db:"updated_at"`
}
