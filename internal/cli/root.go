// Package cli is the syncd command tree.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/riskibarqy/fixture-sync/internal/app"
	"github.com/riskibarqy/fixture-sync/internal/config"
	"github.com/riskibarqy/fixture-sync/internal/observability"
	"github.com/riskibarqy/fixture-sync/internal/platform/logging"
	"github.com/riskibarqy/fixture-sync/internal/usecase"
)

var cliTracer = otel.Tracer("fixture-sync/internal/cli")

// startSpan roots the trace of one command invocation.
func startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return cliTracer.Start(ctx, name)
}

type cli struct {
	stdout   io.Writer
	stderr   io.Writer
	envFiles []string

	cfg     config.Config
	logger  *logging.Logger
	engine  *app.App
	closers []func(context.Context) error
}

// Execute runs syncd with args and returns the process exit code.
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	c := &cli{stdout: stdout, stderr: stderr}
	root := c.rootCommand()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.ExecuteContext(ctx)
	if closeErr := c.shutdown(context.WithoutCancel(ctx)); closeErr != nil {
		c.logger.Warn("shutdown", "error", closeErr)
	}
	if err != nil {
		return writeError(stderr, err)
	}
	return exitOK
}

func (c *cli) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "syncd",
		Short: "Synchronize tournament fixtures from an upstream provider",
		Long: `syncd pulls fixtures and live scores from the configured provider and
reconciles them into the canonical match store without regressing
finished results or overwriting manual edits.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: c.setup,
	}
	root.PersistentFlags().StringSliceVar(&c.envFiles, "env-file", []string{".env"}, "dotenv files loaded before reading the environment")
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return fmt.Errorf("%w: %w", usecase.ErrInvalidInput, err)
	})

	root.AddCommand(
		c.runCommand(),
		c.scheduleCommand(),
		c.statusCommand(),
		c.migrateCommand(),
	)
	return root
}

func (c *cli) setup(_ *cobra.Command, _ []string) error {
	if err := config.LoadDotEnv(c.envFiles...); err != nil {
		return fmt.Errorf("%w: %w", usecase.ErrInvalidConfig, err)
	}
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("%w: %w", usecase.ErrInvalidConfig, err)
	}
	c.cfg = cfg
	c.logger = logging.New(cfg.LogLevel, c.stderr).With("service", cfg.ServiceName, "env", cfg.AppEnv)
	logging.SetDefault(c.logger)
	return nil
}

// start brings up telemetry and the sync engine for commands that sync.
func (c *cli) start(ctx context.Context) (*app.App, error) {
	if c.engine != nil {
		return c.engine, nil
	}

	shutdownTracing, err := observability.InitUptrace(c.cfg, c.logger)
	if err != nil {
		return nil, fmt.Errorf("init uptrace: %w", err)
	}
	c.closers = append(c.closers, shutdownTracing)

	stopProfiler, err := observability.InitPyroscope(c.cfg, c.logger)
	if err != nil {
		return nil, fmt.Errorf("init pyroscope: %w", err)
	}
	c.closers = append(c.closers, func(context.Context) error { return stopProfiler() })

	engine, err := app.New(ctx, c.cfg, c.logger)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", usecase.ErrDependencyUnavailable, err)
	}
	c.engine = engine
	c.closers = append(c.closers, func(context.Context) error { return engine.Close() })
	return engine, nil
}

// shutdown runs closers in reverse start order.
func (c *cli) shutdown(ctx context.Context) error {
	var errs []error
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	c.closers = nil
	if c.logger != nil {
		_ = c.logger.Sync()
	}
	return errors.Join(errs...)
}
