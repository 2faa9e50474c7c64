package match

import (
	"context"
	"time"
)

// Repository is the canonical record store used by reconciliation.
type Repository interface {
	ListByTournament(ctx context.Context, tournamentID string) ([]Match, error)
	// CommitBatch applies creates, updates and bookkeeping writes. Each
	// call is atomic on its own; separate calls are not.
	CommitBatch(ctx context.Context, tournamentID string, writes []Write) error
	// ListKickoffsBetween returns kickoffs of non-finished matches in [from, to].
	ListKickoffsBetween(ctx context.Context, tournamentID string, from, to time.Time) ([]time.Time, error)
}
