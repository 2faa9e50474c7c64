package postgres

import (
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/riskibarqy/fixture-sync/internal/domain/match"
	"github.com/riskibarqy/fixture-sync/internal/domain/syncstate"
	qb "github.com/riskibarqy/fixture-sync/internal/platform/querybuilder"
)

func TestIsNotFound(t *testing.T) {
	t.Parallel()

	if !isNotFound(fmt.Errorf("get sync lock: %w", sql.ErrNoRows)) {
		t.Fatalf("expected wrapped sql.ErrNoRows to be not found")
	}
	if isNotFound(fmt.Errorf("pq: relation sync_locks does not exist")) {
		t.Fatalf("expected unrelated error to not be not found")
	}
}

func TestMatchAssignments(t *testing.T) {
	t.Parallel()

	kickoff := time.Date(2026, 6, 11, 19, 0, 0, 0, time.FixedZone("CST", -6*3600))
	var patch match.Patch
	patch.HomeTeam = match.Some("Mexico")
	patch.KickOffTime = match.Some(kickoff)
	patch.SetStatus(match.StatusFinished)
	patch.Score = match.Some(match.Score{Home: match.Int(2), Away: match.Int(1)})
	patch.Group = match.None[string]()
	patch.IsManuallyEdited = match.Some(false)

	got, err := matchAssignments(patch.Columns())
	if err != nil {
		t.Fatalf("matchAssignments: %v", err)
	}

	byColumn := make(map[string]any, len(got))
	for _, item := range got {
		byColumn[item.Column] = item.Value
	}
	if byColumn[match.ColumnHomeTeam] != "Mexico" {
		t.Fatalf("unexpected home_team: %v", byColumn[match.ColumnHomeTeam])
	}
	if ts, ok := byColumn[match.ColumnKickOffTime].(time.Time); !ok || ts.Location() != time.UTC || !ts.Equal(kickoff) {
		t.Fatalf("expected UTC kickoff, got %v", byColumn[match.ColumnKickOffTime])
	}
	if byColumn[match.ColumnStatus] != "FINISHED" || byColumn[match.ColumnLegacyStatus] != "finished" {
		t.Fatalf("unexpected status columns: %v %v", byColumn[match.ColumnStatus], byColumn[match.ColumnLegacyStatus])
	}
	raw, ok := byColumn[match.ColumnScore].(string)
	if !ok || raw != `{"home":2,"away":1,"fullTime":{"home":null,"away":null},"halfTime":{"home":null,"away":null}}` {
		t.Fatalf("unexpected score json: %v", byColumn[match.ColumnScore])
	}
	if v, ok := byColumn[match.ColumnGroup]; !ok || v != nil {
		t.Fatalf("expected explicit NULL group_name, got %v (present=%t)", v, ok)
	}
	if byColumn[match.ColumnIsManuallyEdited] != false {
		t.Fatalf("unexpected is_manually_edited: %v", byColumn[match.ColumnIsManuallyEdited])
	}
}

func TestMatchColumnValueRejectsUnknownType(t *testing.T) {
	t.Parallel()

	if _, err := matchColumnValue(match.Column{Name: "home_team", Value: 1.5}); err == nil {
		t.Fatalf("expected error for float value")
	}
}

func TestMatchFromRow(t *testing.T) {
	t.Parallel()

	kickoff := time.Date(2026, 6, 11, 19, 0, 0, 0, time.UTC)
	row := matchTableModel{
		ID:               "football-data_537327",
		TournamentID:     "FIFA2026",
		HomeTeam:         "Mexico",
		AwayTeam:         "South Africa",
		KickOffTime:      sql.NullTime{Time: kickoff, Valid: true},
		Status:           "FINISHED",
		LegacyStatus:     "finished",
		HomeScore:        sql.NullInt64{Int64: 2, Valid: true},
		Score:            []byte(`{"home":2,"away":0,"fullTime":{"home":2,"away":0},"halfTime":{"home":1,"away":null}}`),
		Stage:            sql.NullString{String: "GROUP", Valid: true},
		Group:            sql.NullString{String: "A", Valid: true},
		Matchday:         sql.NullInt64{Int64: 1, Valid: true},
		StageKey:         sql.NullString{String: "GROUP_A_MD1", Valid: true},
		ExternalProvider: sql.NullString{String: "football-data", Valid: true},
		ExternalMatchID:  sql.NullString{String: "537327", Valid: true},
	}

	got, err := matchFromRow(row)
	if err != nil {
		t.Fatalf("matchFromRow: %v", err)
	}
	if got.KickOffTime == nil || !got.KickOffTime.Equal(kickoff) {
		t.Fatalf("unexpected kickoff: %v", got.KickOffTime)
	}
	if got.HomeScore == nil || *got.HomeScore != 2 || got.AwayScore != nil {
		t.Fatalf("unexpected scores: %v %v", got.HomeScore, got.AwayScore)
	}
	if got.Score == nil || got.Score.HalfTime.Away != nil || *got.Score.FullTime.Home != 2 {
		t.Fatalf("unexpected score object: %+v", got.Score)
	}
	if got.Stage != match.Stage("GROUP") || got.Group != "A" || got.Matchday != 1 {
		t.Fatalf("unexpected stage fields: %+v", got)
	}

	row.Score = []byte("null")
	got, err = matchFromRow(row)
	if err != nil || got.Score != nil {
		t.Fatalf("expected nil score for json null, got %+v err=%v", got.Score, err)
	}

	row.Score = []byte("{")
	if _, err := matchFromRow(row); err == nil {
		t.Fatalf("expected decode error for broken score")
	}
}

func TestStatusAssignments(t *testing.T) {
	t.Parallel()

	runAt := time.Date(2026, 6, 12, 4, 0, 0, 0, time.UTC)
	status := syncstate.RunStatusOK
	cleared := ""
	got := statusAssignments(syncstate.StatusPatch{
		LastRunAt: &runAt,
		Status:    &status,
		LastError: &cleared,
		Counters:  &syncstate.Counters{Created: 3, Total: 5},
	})

	want := []string{
		"last_run_at", "status", "last_error",
		"created_count", "updated_count", "skipped_manual", "skipped_unchanged", "rejected_count", "total_count",
	}
	cols := assignmentColumns(got)
	if len(cols) != len(want) {
		t.Fatalf("unexpected columns: %v", cols)
	}
	for i := range want {
		if cols[i] != want[i] {
			t.Fatalf("column %d: got %s want %s", i, cols[i], want[i])
		}
	}
	if got[2].Value != nil {
		t.Fatalf("expected cleared last_error to be NULL, got %v", got[2].Value)
	}
	if got[3].Value != 3 {
		t.Fatalf("unexpected created_count: %v", got[3].Value)
	}
}

func TestStatusMergeQueryOnlyTouchesSetColumns(t *testing.T) {
	t.Parallel()

	mode := "live"
	assignments := statusAssignments(syncstate.StatusPatch{Mode: &mode})
	row := append([]qb.Assignment{{Column: "tournament_id", Value: "FIFA2026"}}, assignments...)
	query, args, err := qb.InsertInto(syncStatusTable).
		Row(row).
		OnConflict("tournament_id").
		DoUpdate(assignmentColumns(assignments)...).
		ToSQL()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	wantQuery := "INSERT INTO sync_status (tournament_id, mode) VALUES ($1, $2) ON CONFLICT (tournament_id) DO UPDATE SET mode = EXCLUDED.mode"
	if query != wantQuery {
		t.Fatalf("unexpected query:\n%s", query)
	}
	if len(args) != 2 || args[1] != "live" {
		t.Fatalf("unexpected args: %v", args)
	}
}

func TestHasColumn(t *testing.T) {
	t.Parallel()

	items := []qb.Assignment{{Column: match.ColumnTournamentID, Value: "FIFA2026"}}
	if !hasColumn(items, match.ColumnTournamentID) || hasColumn(items, match.ColumnStage) {
		t.Fatalf("unexpected hasColumn result")
	}
}
