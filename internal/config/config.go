package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/riskibarqy/fixture-sync/internal/platform/logging"
)

const (
	ProviderFootballData = "football-data"
	ProviderTheSportsDB  = "thesportsdb"

	// MaxBatchSize is the largest write batch the match store accepts.
	MaxBatchSize = 450
)

// Config stores runtime configuration for the sync daemon and CLI.
type Config struct {
	AppEnv         string
	ServiceName    string
	ServiceVersion string
	LogLevel       logging.Level

	DBURL                         string
	DBDisablePreparedBinaryResult bool
	DBMaxOpenConns                int
	DBMaxIdleConns                int
	DBConnMaxLifetime             time.Duration

	TournamentID string
	Provider     string
	FootballData FootballDataConfig
	TheSportsDB  TheSportsDBConfig

	LockTTL   time.Duration
	BatchSize int

	Upstream UpstreamConfig

	DailyCron        string
	LiveCron         string
	LiveDaysAhead    int
	FixtureDaysAhead int
	LookbackDays     int

	UptraceEnabled     bool
	UptraceDSN         string
	UptraceLogsEnabled bool

	PprofEnabled bool
	PprofAddr    string

	PyroscopeEnabled       bool
	PyroscopeServerAddress string
	PyroscopeAppName       string
	PyroscopeAuthToken     string
	PyroscopeUploadRate    time.Duration
}

type FootballDataConfig struct {
	BaseURL     string
	APIKey      string
	Competition string
}

type TheSportsDBConfig struct {
	BaseURL  string
	APIKey   string
	LeagueID string
	Season   string
	Rounds   []string
}

// UpstreamConfig tunes the shared provider fetcher.
type UpstreamConfig struct {
	CacheTTL              time.Duration
	Timeout               time.Duration
	MaxRetries            int
	RetryBase             time.Duration
	RatePerMinute         int
	CircuitEnabled        bool
	CircuitFailureCount   int
	CircuitOpenTimeout    time.Duration
	CircuitHalfOpenMaxReq int
}

// LoadDotEnv populates the process environment from the given files.
// Missing files are ignored; variables already set win.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, path := range paths {
		if err := godotenv.Load(path); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("load %s: %w", path, err)
		}
	}
	return nil
}

func Load() (Config, error) {
	appEnv, err := parseAppEnv(getEnv("APP_ENV", EnvDev))
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		AppEnv:         appEnv,
		ServiceName:    getEnv("SERVICE_NAME", "fixture-sync"),
		ServiceVersion: getEnv("SERVICE_VERSION", "dev"),
		LogLevel:       logging.ParseLevel(getEnv("LOG_LEVEL", "info")),
		DBURL:          strings.TrimSpace(getEnv("DB_URL", "")),
		TournamentID:   strings.TrimSpace(getEnv("SYNC_TOURNAMENT_ID", "FIFA2026")),
		DailyCron:      strings.TrimSpace(getEnv("SYNC_DAILY_CRON", "0 4 * * *")),
		LiveCron:       strings.TrimSpace(getEnv("SYNC_LIVE_CRON", "* * * * *")),
		FootballData: FootballDataConfig{
			BaseURL:     strings.TrimRight(strings.TrimSpace(getEnv("FOOTBALL_DATA_BASE_URL", "https://api.football-data.org/v4")), "/"),
			APIKey:      strings.TrimSpace(getEnv("FOOTBALL_DATA_API_KEY", "")),
			Competition: strings.TrimSpace(getEnv("FOOTBALL_DATA_COMPETITION", "WC")),
		},
		TheSportsDB: TheSportsDBConfig{
			BaseURL:  strings.TrimRight(strings.TrimSpace(getEnv("THESPORTSDB_BASE_URL", "https://www.thesportsdb.com/api/v1/json")), "/"),
			APIKey:   strings.TrimSpace(getEnv("THESPORTSDB_API_KEY", "3")),
			LeagueID: strings.TrimSpace(getEnv("THESPORTSDB_LEAGUE_ID", "4429")),
			Season:   strings.TrimSpace(getEnv("THESPORTSDB_SEASON", "2026")),
			Rounds:   splitCSV(getEnv("THESPORTSDB_ROUNDS", "")),
		},
	}

	cfg.Provider, err = parseProvider(getEnv("SYNC_PROVIDER", ProviderFootballData))
	if err != nil {
		return Config{}, err
	}
	if cfg.TournamentID == "" {
		return Config{}, fmt.Errorf("SYNC_TOURNAMENT_ID cannot be empty")
	}

	cfg.DBDisablePreparedBinaryResult, err = strconv.ParseBool(getEnv("DB_DISABLE_PREPARED_BINARY_RESULT", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse DB_DISABLE_PREPARED_BINARY_RESULT: %w", err)
	}
	if cfg.DBMaxOpenConns, err = positiveInt("DB_MAX_OPEN_CONNS", 10); err != nil {
		return Config{}, err
	}
	if cfg.DBMaxIdleConns, err = positiveInt("DB_MAX_IDLE_CONNS", 5); err != nil {
		return Config{}, err
	}
	if cfg.DBConnMaxLifetime, err = positiveDuration("DB_CONN_MAX_LIFETIME", "30m"); err != nil {
		return Config{}, err
	}

	if cfg.LockTTL, err = positiveDuration("SYNC_LOCK_TTL", "10m"); err != nil {
		return Config{}, err
	}
	if cfg.BatchSize, err = positiveInt("SYNC_BATCH_SIZE", MaxBatchSize); err != nil {
		return Config{}, err
	}
	if cfg.BatchSize > MaxBatchSize {
		return Config{}, fmt.Errorf("SYNC_BATCH_SIZE must be <= %d", MaxBatchSize)
	}

	if cfg.Upstream, err = loadUpstream(); err != nil {
		return Config{}, err
	}

	if cfg.LiveDaysAhead, err = positiveInt("SYNC_LIVE_DAYS_AHEAD", 3); err != nil {
		return Config{}, err
	}
	if cfg.FixtureDaysAhead, err = positiveInt("SYNC_FIXTURE_DAYS_AHEAD", 200); err != nil {
		return Config{}, err
	}
	if cfg.LookbackDays, err = getEnvAsInt("SYNC_LOOKBACK_DAYS", 2); err != nil {
		return Config{}, fmt.Errorf("parse SYNC_LOOKBACK_DAYS: %w", err)
	}
	if cfg.LookbackDays < 0 {
		return Config{}, fmt.Errorf("SYNC_LOOKBACK_DAYS must be >= 0")
	}
	if cfg.DailyCron == "" || cfg.LiveCron == "" {
		return Config{}, fmt.Errorf("SYNC_DAILY_CRON and SYNC_LIVE_CRON cannot be empty")
	}

	cfg.UptraceEnabled, err = strconv.ParseBool(getEnv("UPTRACE_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse UPTRACE_ENABLED: %w", err)
	}
	cfg.UptraceDSN = strings.TrimSpace(getEnv("UPTRACE_DSN", ""))
	if cfg.UptraceDSN == "" {
		cfg.UptraceDSN = parseUptraceDSNFromOTLPHeaders(getEnv("OTEL_EXPORTER_OTLP_HEADERS", ""))
	}
	if cfg.UptraceEnabled && cfg.UptraceDSN == "" {
		return Config{}, fmt.Errorf("UPTRACE_DSN is required when UPTRACE_ENABLED=true")
	}
	cfg.UptraceLogsEnabled, err = strconv.ParseBool(getEnv("UPTRACE_LOGS_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse UPTRACE_LOGS_ENABLED: %w", err)
	}

	cfg.PprofEnabled, err = strconv.ParseBool(getEnv("PPROF_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PPROF_ENABLED: %w", err)
	}
	cfg.PprofAddr = strings.TrimSpace(getEnv("PPROF_ADDR", "127.0.0.1:6060"))

	cfg.PyroscopeEnabled, err = strconv.ParseBool(getEnv("PYROSCOPE_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PYROSCOPE_ENABLED: %w", err)
	}
	cfg.PyroscopeServerAddress = strings.TrimSpace(getEnv("PYROSCOPE_SERVER_ADDRESS", ""))
	cfg.PyroscopeAppName = strings.TrimSpace(getEnv("PYROSCOPE_APP_NAME", cfg.ServiceName))
	cfg.PyroscopeAuthToken = strings.TrimSpace(getEnv("PYROSCOPE_AUTH_TOKEN", ""))
	if cfg.PyroscopeUploadRate, err = positiveDuration("PYROSCOPE_UPLOAD_RATE", "15s"); err != nil {
		return Config{}, err
	}
	if cfg.PyroscopeEnabled && cfg.PyroscopeServerAddress == "" {
		return Config{}, fmt.Errorf("PYROSCOPE_SERVER_ADDRESS is required when PYROSCOPE_ENABLED=true")
	}

	return cfg, nil
}

func loadUpstream() (UpstreamConfig, error) {
	var (
		out UpstreamConfig
		err error
	)
	if out.CacheTTL, err = positiveDuration("UPSTREAM_CACHE_TTL", "20s"); err != nil {
		return UpstreamConfig{}, err
	}
	if out.Timeout, err = positiveDuration("UPSTREAM_TIMEOUT", "15s"); err != nil {
		return UpstreamConfig{}, err
	}
	if out.RetryBase, err = positiveDuration("UPSTREAM_RETRY_BASE", "500ms"); err != nil {
		return UpstreamConfig{}, err
	}
	if out.MaxRetries, err = getEnvAsInt("UPSTREAM_MAX_RETRIES", 2); err != nil {
		return UpstreamConfig{}, fmt.Errorf("parse UPSTREAM_MAX_RETRIES: %w", err)
	}
	if out.MaxRetries < 0 || out.MaxRetries > 3 {
		return UpstreamConfig{}, fmt.Errorf("UPSTREAM_MAX_RETRIES must be between 0 and 3")
	}
	if out.RatePerMinute, err = getEnvAsInt("UPSTREAM_RATE_PER_MINUTE", 30); err != nil {
		return UpstreamConfig{}, fmt.Errorf("parse UPSTREAM_RATE_PER_MINUTE: %w", err)
	}
	if out.RatePerMinute < 0 {
		return UpstreamConfig{}, fmt.Errorf("UPSTREAM_RATE_PER_MINUTE must be >= 0")
	}
	if out.CircuitEnabled, err = strconv.ParseBool(getEnv("UPSTREAM_CIRCUIT_ENABLED", "true")); err != nil {
		return UpstreamConfig{}, fmt.Errorf("parse UPSTREAM_CIRCUIT_ENABLED: %w", err)
	}
	if out.CircuitFailureCount, err = positiveInt("UPSTREAM_CIRCUIT_FAILURE_COUNT", 5); err != nil {
		return UpstreamConfig{}, err
	}
	if out.CircuitOpenTimeout, err = positiveDuration("UPSTREAM_CIRCUIT_OPEN_TIMEOUT", "30s"); err != nil {
		return UpstreamConfig{}, err
	}
	if out.CircuitHalfOpenMaxReq, err = positiveInt("UPSTREAM_CIRCUIT_HALF_OPEN_MAX_REQ", 1); err != nil {
		return UpstreamConfig{}, err
	}
	return out, nil
}

func positiveDuration(key, fallback string) (time.Duration, error) {
	out, err := time.ParseDuration(getEnv(key, fallback))
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	if out <= 0 {
		return 0, fmt.Errorf("%s must be > 0", key)
	}
	return out, nil
}

func positiveInt(key string, fallback int) (int, error) {
	out, err := getEnvAsInt(key, fallback)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	if out < 1 {
		return 0, fmt.Errorf("%s must be >= 1", key)
	}
	return out, nil
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if strings.TrimSpace(value) == "" {
		return fallback
	}

	return value
}

func getEnvAsInt(key string, fallback int) (int, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}

	return strconv.Atoi(value)
}

func splitCSV(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		item := strings.TrimSpace(part)
		if item == "" {
			continue
		}
		out = append(out, item)
	}

	return out
}

func parseUptraceDSNFromOTLPHeaders(raw string) string {
	for _, item := range strings.Split(raw, ",") {
		parts := strings.SplitN(strings.TrimSpace(item), "=", 2)
		if len(parts) != 2 {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(parts[0]), "uptrace-dsn") {
			return strings.Trim(strings.TrimSpace(parts[1]), "\"'")
		}
	}

	return ""
}

func parseProvider(v string) (string, error) {
	value := strings.ToLower(strings.TrimSpace(v))
	switch value {
	case ProviderFootballData, ProviderTheSportsDB:
		return value, nil
	default:
		return "", fmt.Errorf("invalid SYNC_PROVIDER %q: valid values are %s, %s", v, ProviderFootballData, ProviderTheSportsDB)
	}
}

const (
	EnvDev   = "dev"
	EnvStage = "stage"
	EnvProd  = "prod"
)

func parseAppEnv(v string) (string, error) {
	value := strings.ToLower(strings.TrimSpace(v))
	switch value {
	case EnvDev, EnvStage, EnvProd:
		return value, nil
	default:
		return "", fmt.Errorf("invalid APP_ENV %q: valid values are %s, %s, %s", v, EnvDev, EnvStage, EnvProd)
	}
}
