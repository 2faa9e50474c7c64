package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/riskibarqy/fixture-sync/internal/observability"
	"github.com/riskibarqy/fixture-sync/internal/scheduler"
)

const shutdownTimeout = 30 * time.Second

func (c *cli) scheduleCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "schedule",
		Short: "Run the daily fixture and live sync jobs until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			engine, err := c.start(ctx)
			if err != nil {
				return err
			}

			sched, err := scheduler.New(engine.Sync, scheduler.Config{
				DailyCron:        c.cfg.DailyCron,
				LiveCron:         c.cfg.LiveCron,
				LookbackDays:     c.cfg.LookbackDays,
				FixtureDaysAhead: c.cfg.FixtureDaysAhead,
				LiveDaysAhead:    c.cfg.LiveDaysAhead,
				RunTimeout:       c.cfg.LockTTL,
			}, c.logger)
			if err != nil {
				return fmt.Errorf("build scheduler: %w", err)
			}

			pprofSrv, err := observability.StartPprofServer(c.cfg, c.logger)
			if err != nil {
				return fmt.Errorf("start pprof: %w", err)
			}

			sched.Start()
			<-ctx.Done()
			c.logger.Info("shutdown requested", "cause", context.Cause(ctx))

			stopCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
			defer cancel()
			if err := observability.StopPprofServer(pprofSrv, c.logger, shutdownTimeout); err != nil {
				c.logger.Warn("stop pprof server", "error", err)
			}
			return sched.Stop(stopCtx)
		},
	}
}
