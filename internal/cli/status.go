package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/riskibarqy/fixture-sync/internal/domain/syncstate"
)

type statusView struct {
	TournamentID  string              `json:"tournament_id"`
	Found         bool                `json:"found"`
	Status        syncstate.RunStatus `json:"status,omitempty"`
	LastRunAt     *time.Time          `json:"last_run_at,omitempty"`
	LastSuccessAt *time.Time          `json:"last_success_at,omitempty"`
	LastError     string              `json:"last_error,omitempty"`
	Provider      string              `json:"provider,omitempty"`
	Mode          string              `json:"mode,omitempty"`
	DateFrom      string              `json:"date_from,omitempty"`
	DateTo        string              `json:"date_to,omitempty"`
	Counters      *countersView       `json:"counters,omitempty"`
	UpdatedAt     *time.Time          `json:"updated_at,omitempty"`
}

type countersView struct {
	Created          int `json:"created"`
	Updated          int `json:"updated"`
	SkippedManual    int `json:"skipped_manual"`
	SkippedUnchanged int `json:"skipped_unchanged"`
	Rejected         int `json:"rejected"`
	Total            int `json:"total"`
}

func newStatusView(tournamentID string, s syncstate.Status, found bool) statusView {
	if !found {
		return statusView{TournamentID: tournamentID}
	}
	updatedAt := s.UpdatedAt
	return statusView{
		TournamentID:  tournamentID,
		Found:         true,
		Status:        s.Status,
		LastRunAt:     s.LastRunAt,
		LastSuccessAt: s.LastSuccessAt,
		LastError:     s.LastError,
		Provider:      s.Provider,
		Mode:          s.Mode,
		DateFrom:      s.DateFrom,
		DateTo:        s.DateTo,
		Counters: &countersView{
			Created:          s.Counters.Created,
			Updated:          s.Counters.Updated,
			SkippedManual:    s.Counters.SkippedManual,
			SkippedUnchanged: s.Counters.SkippedUnchanged,
			Rejected:         s.Counters.Rejected,
			Total:            s.Counters.Total,
		},
		UpdatedAt: &updatedAt,
	}
}

func (c *cli) statusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Print the last sync status of the tournament",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			engine, err := c.start(cmd.Context())
			if err != nil {
				return err
			}
			ctx, span := startSpan(cmd.Context(), "syncd.status")
			defer span.End()

			status, found, err := engine.Sync.Status(ctx)
			if err != nil {
				return err
			}
			return writeSuccess(c.stdout, newStatusView(c.cfg.TournamentID, status, found))
		},
	}
}
