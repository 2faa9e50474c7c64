package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/riskibarqy/fixture-sync/internal/config"
	"github.com/riskibarqy/fixture-sync/internal/domain/match"
	"github.com/riskibarqy/fixture-sync/internal/domain/syncstate"
	"github.com/riskibarqy/fixture-sync/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/fixture-sync/internal/infrastructure/repository/postgres"
	idgen "github.com/riskibarqy/fixture-sync/internal/platform/id"
	"github.com/riskibarqy/fixture-sync/internal/platform/logging"
	"github.com/riskibarqy/fixture-sync/internal/usecase"
)

// App is the wired sync engine shared by every CLI command.
type App struct {
	Config config.Config
	Logger *logging.Logger
	Sync   *usecase.MatchSyncService

	db *sqlx.DB
}

type stores struct {
	matches  match.Repository
	locks    syncstate.LockRepository
	statuses syncstate.StatusRepository
}

// New wires the configured provider against Postgres, or against the
// in-memory stores when DB_URL is empty.
func New(ctx context.Context, cfg config.Config, logger *logging.Logger) (*App, error) {
	if logger == nil {
		logger = logging.Default()
	}

	a := &App{Config: cfg, Logger: logger}

	var st stores
	if cfg.DBURL == "" {
		logger.Warn("DB_URL empty, using in-memory stores")
		st = stores{
			matches:  memory.NewMatchRepository(nil),
			locks:    memory.NewSyncLockRepository(),
			statuses: memory.NewSyncStatusRepository(),
		}
	} else {
		db, err := openDB(ctx, cfg)
		if err != nil {
			return nil, err
		}
		a.db = db
		st = stores{
			matches:  postgres.NewMatchRepository(db),
			locks:    postgres.NewSyncLockRepository(db),
			statuses: postgres.NewSyncStatusRepository(db),
		}
	}

	provider, err := NewProvider(cfg, NewFetcher(cfg, logger), logger)
	if err != nil {
		return nil, errors.Join(err, a.Close())
	}

	holder, err := idgen.Holder(idgen.NewUUIDGenerator())
	if err != nil {
		return nil, errors.Join(fmt.Errorf("build lock holder: %w", err), a.Close())
	}

	a.Sync = usecase.NewMatchSyncService(provider, st.matches, st.locks, st.statuses, usecase.MatchSyncConfig{
		TournamentID: cfg.TournamentID,
		Holder:       holder,
		LockTTL:      cfg.LockTTL,
		BatchSize:    cfg.BatchSize,
	}, logger)

	logger.Info("sync engine ready",
		"provider", provider.Name(),
		"tournament_id", cfg.TournamentID,
		"holder", holder,
		"postgres", a.db != nil,
	)
	return a, nil
}

func (a *App) Close() error {
	if a == nil || a.db == nil {
		return nil
	}
	if err := a.db.Close(); err != nil {
		return fmt.Errorf("close postgres: %w", err)
	}
	return nil
}
