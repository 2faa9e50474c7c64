package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/fixture-sync/internal/domain/syncstate"
	qb "github.com/riskibarqy/fixture-sync/internal/platform/querybuilder"
)

const syncStatusTable = "sync_status"

type SyncStatusRepository struct {
	db  *sqlx.DB
	now func() time.Time
}

func NewSyncStatusRepository(db *sqlx.DB) *SyncStatusRepository {
	return &SyncStatusRepository{db: db, now: time.Now}
}

// Merge upserts only the columns the patch sets.
func (r *SyncStatusRepository) Merge(ctx context.Context, tournamentID string, patch syncstate.StatusPatch) error {
	assignments := statusAssignments(patch)
	assignments = append(assignments, qb.Assignment{Column: "updated_at", Value: r.now().UTC()})

	row := append([]qb.Assignment{{Column: "tournament_id", Value: tournamentID}}, assignments...)
	query, args, err := qb.InsertInto(syncStatusTable).
		Row(row).
		OnConflict("tournament_id").
		DoUpdate(assignmentColumns(assignments)...).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build merge sync status query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("merge sync status: %w", err)
	}
	return nil
}

func (r *SyncStatusRepository) Get(ctx context.Context, tournamentID string) (syncstate.Status, bool, error) {
	query, args, err := qb.Select("*").From(syncStatusTable).
		Where(qb.Eq("tournament_id", tournamentID)).
		ToSQL()
	if err != nil {
		return syncstate.Status{}, false, fmt.Errorf("build get sync status query: %w", err)
	}
	var row syncStatusTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return syncstate.Status{}, false, nil
		}
		return syncstate.Status{}, false, fmt.Errorf("get sync status: %w", err)
	}

	return syncstate.Status{
		TournamentID:  row.TournamentID,
		LastRunAt:     nullTimePtr(row.LastRunAt),
		LastSuccessAt: nullTimePtr(row.LastSuccessAt),
		Status:        syncstate.RunStatus(row.Status.String),
		LastError:     row.LastError.String,
		Provider:      row.Provider.String,
		Mode:          row.Mode.String,
		DateFrom:      row.DateFrom.String,
		DateTo:        row.DateTo.String,
		Counters: syncstate.Counters{
			Created:          row.Created,
			Updated:          row.Updated,
			SkippedManual:    row.SkippedManual,
			SkippedUnchanged: row.SkippedUnchanged,
			Rejected:         row.Rejected,
			Total:            row.Total,
		},
		UpdatedAt: row.UpdatedAt.UTC(),
	}, true, nil
}

// statusAssignments lists the set fields of p. An empty LastError is
// stored as NULL.
func statusAssignments(p syncstate.StatusPatch) []qb.Assignment {
	var out []qb.Assignment
	if p.LastRunAt != nil {
		out = append(out, qb.Assignment{Column: "last_run_at", Value: nullTime(p.LastRunAt)})
	}
	if p.LastSuccessAt != nil {
		out = append(out, qb.Assignment{Column: "last_success_at", Value: nullTime(p.LastSuccessAt)})
	}
	if p.Status != nil {
		out = append(out, qb.Assignment{Column: "status", Value: string(*p.Status)})
	}
	if p.LastError != nil {
		var v any
		if *p.LastError != "" {
			v = *p.LastError
		}
		out = append(out, qb.Assignment{Column: "last_error", Value: v})
	}
	if p.Provider != nil {
		out = append(out, qb.Assignment{Column: "provider", Value: *p.Provider})
	}
	if p.Mode != nil {
		out = append(out, qb.Assignment{Column: "mode", Value: *p.Mode})
	}
	if p.DateFrom != nil {
		out = append(out, qb.Assignment{Column: "date_from", Value: *p.DateFrom})
	}
	if p.DateTo != nil {
		out = append(out, qb.Assignment{Column: "date_to", Value: *p.DateTo})
	}
	if c := p.Counters; c != nil {
		out = append(out,
			qb.Assignment{Column: "created_count", Value: c.Created},
			qb.Assignment{Column: "updated_count", Value: c.Updated},
			qb.Assignment{Column: "skipped_manual", Value: c.SkippedManual},
			qb.Assignment{Column: "skipped_unchanged", Value: c.SkippedUnchanged},
			qb.Assignment{Column: "rejected_count", Value: c.Rejected},
			qb.Assignment{Column: "total_count", Value: c.Total},
		)
	}
	return out
}
