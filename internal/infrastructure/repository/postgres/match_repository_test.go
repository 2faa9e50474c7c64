package postgres

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/riskibarqy/fixture-sync/internal/domain/match"
)

func TestMatchRepository_CommitBatchWritesOneTransaction(t *testing.T) {
	t.Parallel()

	sqlxDB, mock := newMockDB(t)
	repo := NewMatchRepository(sqlxDB)
	now := time.Date(2026, 6, 12, 4, 0, 0, 0, time.UTC)
	repo.now = func() time.Time { return now }

	opts := match.PlanOptions{TournamentID: "FIFA2026", Now: now}
	create := match.Plan(match.Draft{
		Provider: "football-data", ExternalMatchID: "9",
		HomeTeam: "TBD", AwayTeam: "TBD",
		Status: match.StatusScheduled,
	}, nil, opts)
	existing := match.Match{ID: "football-data_10", TournamentID: "FIFA2026", HomeTeam: "Mexico", AwayTeam: "TBD"}
	update := match.Plan(match.Draft{
		Provider: "football-data", ExternalMatchID: "10",
		HomeTeam: "Mexico", AwayTeam: "South Africa",
		Status: match.StatusScheduled,
	}, &existing, opts)
	skipped := match.Write{Kind: match.WriteSkipUnchanged, MatchID: "football-data_11"}
	require.Equal(t, match.WriteCreate, create.Kind)
	require.Equal(t, match.WriteUpdate, update.Kind)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO matches (id, tournament_id,")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE matches SET")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.CommitBatch(context.Background(), "FIFA2026", []match.Write{create, skipped, update})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMatchRepository_CommitBatchRollsBackMissingRow(t *testing.T) {
	t.Parallel()

	sqlxDB, mock := newMockDB(t)
	repo := NewMatchRepository(sqlxDB)

	var patch match.Patch
	patch.SetStatus(match.StatusFinished)
	write := match.Write{Kind: match.WriteUpdate, MatchID: "football-data_404", Patch: patch}

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE matches SET status = $1, legacy_status = $2, updated_at = $3 WHERE id = $4 AND tournament_id = $5")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := repo.CommitBatch(context.Background(), "FIFA2026", []match.Write{write})
	require.ErrorContains(t, err, "not found")
	require.NoError(t, mock.ExpectationsWereMet())
}
