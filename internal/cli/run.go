package cli

import (
	"context"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/riskibarqy/fixture-sync/internal/usecase"
)

func (c *cli) runCommand() *cobra.Command {
	var (
		mode           string
		from, to       string
		allowOverwrite bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run one sync now",
		Example: `  syncd run --mode manual --from 2026-06-11 --to 2026-06-14
  syncd run --mode live
  syncd run --mode manual --from 2026-07-19 --to 2026-07-19 --allow-manual-overwrite`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			syncMode := usecase.SyncMode(strings.ToLower(strings.TrimSpace(mode)))
			dateFrom, dateTo, err := resolveWindow(c.cfg, syncMode, from, to, time.Now())
			if err != nil {
				return err
			}

			engine, err := c.start(cmd.Context())
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), c.cfg.LockTTL)
			defer cancel()
			ctx, span := startSpan(ctx, "syncd.run")
			defer span.End()

			result, err := engine.Sync.Synchronize(ctx, usecase.SyncInput{
				Mode:                syncMode,
				DateFrom:            dateFrom,
				DateTo:              dateTo,
				AllowManualOverride: allowOverwrite,
			})
			if err != nil {
				return err
			}
			return writeSuccess(c.stdout, result)
		},
	}

	cmd.Flags().StringVar(&mode, "mode", string(usecase.SyncModeManual), "sync mode: fixtures, live or manual")
	cmd.Flags().StringVar(&from, "from", "", "window start, YYYY-MM-DD or RFC 3339")
	cmd.Flags().StringVar(&to, "to", "", "window end, YYYY-MM-DD (inclusive) or RFC 3339")
	cmd.Flags().BoolVar(&allowOverwrite, "allow-manual-overwrite", false, "let upstream data replace manually edited matches")
	return cmd
}
