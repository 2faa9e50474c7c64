package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_AppEnvValidation(t *testing.T) {
	t.Setenv("APP_ENV", "invalid")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for invalid APP_ENV")
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")
	t.Setenv("SYNC_PROVIDER", "")
	t.Setenv("SYNC_TOURNAMENT_ID", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.TournamentID != "FIFA2026" {
		t.Fatalf("unexpected TournamentID: %q", cfg.TournamentID)
	}
	if cfg.Provider != ProviderFootballData {
		t.Fatalf("unexpected Provider: %q", cfg.Provider)
	}
	if cfg.LockTTL != 10*time.Minute {
		t.Fatalf("unexpected LockTTL: %s", cfg.LockTTL)
	}
	if cfg.BatchSize != MaxBatchSize {
		t.Fatalf("unexpected BatchSize: %d", cfg.BatchSize)
	}
	if cfg.Upstream.CacheTTL != 20*time.Second {
		t.Fatalf("unexpected CacheTTL: %s", cfg.Upstream.CacheTTL)
	}
	if cfg.Upstream.MaxRetries != 2 || cfg.Upstream.RetryBase != 500*time.Millisecond {
		t.Fatalf("unexpected retry config: %+v", cfg.Upstream)
	}
	if cfg.Upstream.Timeout != 15*time.Second {
		t.Fatalf("unexpected Timeout: %s", cfg.Upstream.Timeout)
	}
	if cfg.DailyCron != "0 4 * * *" || cfg.LiveCron != "* * * * *" {
		t.Fatalf("unexpected cron specs: %q %q", cfg.DailyCron, cfg.LiveCron)
	}
	if cfg.LiveDaysAhead != 3 || cfg.FixtureDaysAhead != 200 || cfg.LookbackDays != 2 {
		t.Fatalf("unexpected windows: live=%d fixtures=%d lookback=%d", cfg.LiveDaysAhead, cfg.FixtureDaysAhead, cfg.LookbackDays)
	}
	if cfg.TheSportsDB.LeagueID != "4429" {
		t.Fatalf("unexpected TheSportsDB league: %q", cfg.TheSportsDB.LeagueID)
	}
}

func TestLoad_ProviderValidation(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("SYNC_PROVIDER", "espn")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error for unknown provider")
	}
}

func TestLoad_BatchSizeCapped(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("SYNC_BATCH_SIZE", "451")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error for batch size above %d", MaxBatchSize)
	}
}

func TestLoad_RetryBounds(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPSTREAM_MAX_RETRIES", "5")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error for too many retries")
	}
}

func TestLoad_UptraceRequiresDSNWhenEnabled(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "true")
	t.Setenv("UPTRACE_DSN", "")
	t.Setenv("OTEL_EXPORTER_OTLP_HEADERS", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when UPTRACE_ENABLED=true without UPTRACE_DSN")
	}
}

func TestLoad_UptraceDSNFromOTLPHeaders(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "true")
	t.Setenv("UPTRACE_DSN", "")
	t.Setenv("OTEL_EXPORTER_OTLP_HEADERS", "x-a=b, uptrace-dsn='https://token@api.uptrace.dev?grpc=4317'")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.UptraceDSN != "https://token@api.uptrace.dev?grpc=4317" {
		t.Fatalf("unexpected UptraceDSN: %q", cfg.UptraceDSN)
	}
}

func TestLoad_TheSportsDBRounds(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("SYNC_PROVIDER", "TheSportsDB")
	t.Setenv("THESPORTSDB_ROUNDS", "1, 2,,3")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Provider != ProviderTheSportsDB {
		t.Fatalf("unexpected provider: %q", cfg.Provider)
	}
	if len(cfg.TheSportsDB.Rounds) != 3 || cfg.TheSportsDB.Rounds[2] != "3" {
		t.Fatalf("unexpected rounds: %v", cfg.TheSportsDB.Rounds)
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sync.env")
	if err := os.WriteFile(path, []byte("FIXTURE_SYNC_DOTENV_MARKER=loaded\n"), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}
	t.Setenv("FIXTURE_SYNC_DOTENV_MARKER", "")
	os.Unsetenv("FIXTURE_SYNC_DOTENV_MARKER")

	if err := LoadDotEnv(filepath.Join(dir, "missing.env"), path); err != nil {
		t.Fatalf("LoadDotEnv: %v", err)
	}
	if got := os.Getenv("FIXTURE_SYNC_DOTENV_MARKER"); got != "loaded" {
		t.Fatalf("expected dotenv value, got %q", got)
	}
}
