package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	jsoniter "github.com/json-iterator/go"
	"github.com/riskibarqy/fixture-sync/internal/domain/match"
	qb "github.com/riskibarqy/fixture-sync/internal/platform/querybuilder"
)

const matchesTable = "matches"

type MatchRepository struct {
	db  *sqlx.DB
	now func() time.Time
}

func NewMatchRepository(db *sqlx.DB) *MatchRepository {
	return &MatchRepository{db: db, now: time.Now}
}

func (r *MatchRepository) ListByTournament(ctx context.Context, tournamentID string) ([]match.Match, error) {
	query, args, err := qb.Select(matchSelectColumns).From(matchesTable).
		Where(qb.Eq("tournament_id", tournamentID)).
		OrderBy("created_at", "id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select matches by tournament query: %w", err)
	}

	var rows []matchTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select matches by tournament: %w", err)
	}

	out := make([]match.Match, 0, len(rows))
	for _, row := range rows {
		item, err := matchFromRow(row)
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, nil
}

// CommitBatch runs every persisting write in one transaction.
func (r *MatchRepository) CommitBatch(ctx context.Context, tournamentID string, writes []match.Write) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx commit match batch: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	now := r.now().UTC()
	for _, w := range writes {
		if !w.Kind.Persists() {
			continue
		}
		assignments, err := matchAssignments(w.Patch.Columns())
		if err != nil {
			return fmt.Errorf("serialize match %s: %w", w.MatchID, err)
		}

		switch w.Kind {
		case match.WriteCreate:
			err = r.insert(ctx, tx, tournamentID, w.MatchID, assignments, now)
		default:
			err = r.update(ctx, tx, tournamentID, w.MatchID, assignments, now)
		}
		if err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit match batch tx: %w", err)
	}
	return nil
}

func (r *MatchRepository) insert(ctx context.Context, tx *sqlx.Tx, tournamentID, id string, assignments []qb.Assignment, now time.Time) error {
	overwrite := append(assignmentColumns(assignments), "updated_at")

	row := make([]qb.Assignment, 0, len(assignments)+4)
	row = append(row, qb.Assignment{Column: "id", Value: id})
	if !hasColumn(assignments, match.ColumnTournamentID) {
		row = append(row, qb.Assignment{Column: match.ColumnTournamentID, Value: tournamentID})
	}
	row = append(row, assignments...)
	row = append(row,
		qb.Assignment{Column: "created_at", Value: now},
		qb.Assignment{Column: "updated_at", Value: now},
	)

	query, args, err := qb.InsertInto(matchesTable).
		Row(row).
		OnConflict("id").
		DoUpdate(overwrite...).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build insert match query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert match %s: %w", id, err)
	}
	return nil
}

func (r *MatchRepository) update(ctx context.Context, tx *sqlx.Tx, tournamentID, id string, assignments []qb.Assignment, now time.Time) error {
	query, args, err := qb.Update(matchesTable).
		SetAll(assignments).
		Set("updated_at", now).
		Where(
			qb.Eq("id", id),
			qb.Eq("tournament_id", tournamentID),
		).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build update match query: %w", err)
	}
	result, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update match %s: %w", id, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected update match %s: %w", id, err)
	}
	if affected == 0 {
		return fmt.Errorf("update match %s: not found", id)
	}
	return nil
}

func (r *MatchRepository) ListKickoffsBetween(ctx context.Context, tournamentID string, from, to time.Time) ([]time.Time, error) {
	query, args, err := qb.Select("kickoff_time").From(matchesTable).
		Where(
			qb.Eq("tournament_id", tournamentID),
			qb.Neq("status", string(match.StatusFinished)),
			qb.Gte("kickoff_time", from.UTC()),
			qb.Lte("kickoff_time", to.UTC()),
		).
		OrderBy("kickoff_time").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select kickoffs query: %w", err)
	}

	var rows []time.Time
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select kickoffs: %w", err)
	}
	for i := range rows {
		rows[i] = rows[i].UTC()
	}
	return rows, nil
}

func matchFromRow(row matchTableModel) (match.Match, error) {
	out := match.Match{
		ID:               row.ID,
		TournamentID:     row.TournamentID,
		HomeTeam:         row.HomeTeam,
		AwayTeam:         row.AwayTeam,
		KickOffTime:      nullTimePtr(row.KickOffTime),
		Status:           match.Status(row.Status),
		LegacyStatus:     match.LegacyStatus(row.LegacyStatus),
		HomeScore:        nullIntPtr(row.HomeScore),
		AwayScore:        nullIntPtr(row.AwayScore),
		Stage:            match.Stage(row.Stage.String),
		Group:            row.Group.String,
		Matchday:         int(row.Matchday.Int64),
		StageKey:         row.StageKey.String,
		ExternalProvider: row.ExternalProvider.String,
		ExternalMatchID:  row.ExternalMatchID.String,
		LastSyncedAt:     nullTimePtr(row.LastSyncedAt),
		SyncStatus:       row.SyncStatus.String,
		SyncError:        row.SyncError.String,
		IsManuallyEdited: row.IsManuallyEdited,
		CreatedAt:        row.CreatedAt.UTC(),
		UpdatedAt:        row.UpdatedAt.UTC(),
	}
	if len(row.Score) > 0 && string(row.Score) != "null" {
		var score match.Score
		if err := jsoniter.Unmarshal(row.Score, &score); err != nil {
			return match.Match{}, fmt.Errorf("decode score of match %s: %w", row.ID, err)
		}
		out.Score = &score
	}
	return out, nil
}
