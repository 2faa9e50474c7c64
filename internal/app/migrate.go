package app

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/riskibarqy/fixture-sync/db"
	"github.com/riskibarqy/fixture-sync/internal/config"
	"github.com/riskibarqy/fixture-sync/internal/platform/logging"
	"github.com/riskibarqy/fixture-sync/internal/usecase"
)

// MigrationVersion is reported by the "version" action.
type MigrationVersion struct {
	Version uint `json:"version"`
	Dirty   bool `json:"dirty"`
	None    bool `json:"none"`
}

// Migrate runs one golang-migrate action (up, down, version, force, goto)
// against DB_URL using the embedded schema.
func Migrate(cfg config.Config, logger *logging.Logger, action string, args []string) (MigrationVersion, error) {
	if logger == nil {
		logger = logging.Default()
	}
	if strings.TrimSpace(cfg.DBURL) == "" {
		return MigrationVersion{}, fmt.Errorf("%w: DB_URL is required", usecase.ErrInvalidConfig)
	}

	src, err := iofs.New(db.Migrations, "migrations")
	if err != nil {
		return MigrationVersion{}, fmt.Errorf("open embedded migrations: %w", err)
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, normalizeDBURL(cfg.DBURL, cfg.DBDisablePreparedBinaryResult))
	if err != nil {
		return MigrationVersion{}, fmt.Errorf("create migrator: %w", err)
	}
	defer closeMigrator(m, logger)

	switch strings.ToLower(strings.TrimSpace(action)) {
	case "up":
		if err := ignoreNoChange(m.Up(), logger); err != nil {
			return MigrationVersion{}, err
		}
		logger.Info("migrations applied")
	case "down":
		steps, err := parseSteps(args)
		if err != nil {
			return MigrationVersion{}, err
		}
		if err := ignoreNoChange(m.Steps(-steps), logger); err != nil {
			return MigrationVersion{}, err
		}
		logger.Info("migrations rolled back", "steps", steps)
	case "force":
		if len(args) == 0 {
			return MigrationVersion{}, errors.New("force requires a version argument")
		}
		version, err := parseVersion(args[0])
		if err != nil {
			return MigrationVersion{}, err
		}
		if err := m.Force(version); err != nil {
			return MigrationVersion{}, fmt.Errorf("force version %d: %w", version, err)
		}
		logger.Info("migration version forced", "version", version)
	case "goto":
		if len(args) == 0 {
			return MigrationVersion{}, errors.New("goto requires a target version argument")
		}
		target, err := parseTarget(args[0])
		if err != nil {
			return MigrationVersion{}, err
		}
		if err := ignoreNoChange(m.Migrate(target), logger); err != nil {
			return MigrationVersion{}, err
		}
		logger.Info("migrated", "version", target)
	case "version":
	default:
		return MigrationVersion{}, fmt.Errorf("%w: unknown migrate action %q (want up, down, version, force or goto)", usecase.ErrInvalidInput, action)
	}

	version, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return MigrationVersion{None: true}, nil
	}
	if err != nil {
		return MigrationVersion{}, fmt.Errorf("read version: %w", err)
	}
	return MigrationVersion{Version: version, Dirty: dirty}, nil
}

func parseSteps(args []string) (int, error) {
	if len(args) == 0 {
		return 1, nil
	}

	steps, err := strconv.Atoi(strings.TrimSpace(args[0]))
	if err != nil {
		return 0, fmt.Errorf("invalid down steps %q: %w", args[0], err)
	}
	if steps <= 0 {
		return 0, fmt.Errorf("down steps must be > 0")
	}

	return steps, nil
}

func parseVersion(raw string) (int, error) {
	value, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid version %q: %w", raw, err)
	}
	if value < 0 {
		return 0, fmt.Errorf("version must be >= 0")
	}
	if value > int64(^uint(0)>>1) {
		return 0, fmt.Errorf("version is too large for this platform")
	}

	return int(value), nil
}

func parseTarget(raw string) (uint, error) {
	value, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid target version %q: %w", raw, err)
	}
	return uint(value), nil
}

func ignoreNoChange(err error, logger *logging.Logger) error {
	if errors.Is(err, migrate.ErrNoChange) {
		logger.Info("no migration changes")
		return nil
	}
	return err
}

func closeMigrator(m *migrate.Migrate, logger *logging.Logger) {
	srcErr, dbErr := m.Close()
	if srcErr != nil {
		logger.Warn("close migration source", "error", srcErr)
	}
	if dbErr != nil {
		logger.Warn("close migration db", "error", dbErr)
	}
}
