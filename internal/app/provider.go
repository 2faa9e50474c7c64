package app

import (
	"fmt"
	"net/http"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/riskibarqy/fixture-sync/external/footballdata"
	"github.com/riskibarqy/fixture-sync/external/thesportsdb"
	"github.com/riskibarqy/fixture-sync/internal/config"
	"github.com/riskibarqy/fixture-sync/internal/platform/logging"
	"github.com/riskibarqy/fixture-sync/internal/platform/resilience"
	"github.com/riskibarqy/fixture-sync/internal/platform/upstream"
	"github.com/riskibarqy/fixture-sync/internal/usecase"
)

// NewFetcher builds the shared upstream accessor. API keys are passed as
// secrets so they never reach logs or stored errors.
func NewFetcher(cfg config.Config, logger *logging.Logger) *upstream.Fetcher {
	up := cfg.Upstream
	return upstream.NewFetcher(upstream.Config{
		HTTPClient: &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)},
		CacheTTL:   up.CacheTTL,
		Timeout:    up.Timeout,
		Backoff: resilience.Backoff{
			Base:       up.RetryBase,
			MaxRetries: up.MaxRetries,
		},
		RatePerMinute: up.RatePerMinute,
		Breaker: resilience.BreakerConfig{
			Enabled:          up.CircuitEnabled,
			FailureThreshold: up.CircuitFailureCount,
			OpenTimeout:      up.CircuitOpenTimeout,
			HalfOpenMaxReq:   up.CircuitHalfOpenMaxReq,
		},
		Logger:  logger,
		Secrets: []string{cfg.FootballData.APIKey, cfg.TheSportsDB.APIKey},
	})
}

// NewProvider picks the upstream named by SYNC_PROVIDER.
func NewProvider(cfg config.Config, fetcher *upstream.Fetcher, logger *logging.Logger) (usecase.FixtureProvider, error) {
	switch cfg.Provider {
	case config.ProviderFootballData:
		return footballdata.NewClient(footballdata.ClientConfig{
			BaseURL:     cfg.FootballData.BaseURL,
			APIKey:      cfg.FootballData.APIKey,
			Competition: cfg.FootballData.Competition,
			Fetcher:     fetcher,
			Logger:      logger,
		}), nil
	case config.ProviderTheSportsDB:
		return thesportsdb.NewClient(thesportsdb.ClientConfig{
			BaseURL:  cfg.TheSportsDB.BaseURL,
			APIKey:   cfg.TheSportsDB.APIKey,
			LeagueID: cfg.TheSportsDB.LeagueID,
			Season:   cfg.TheSportsDB.Season,
			Rounds:   cfg.TheSportsDB.Rounds,
			Fetcher:  fetcher,
			Logger:   logger,
		}), nil
	default:
		return nil, fmt.Errorf("%w: unknown provider %q", usecase.ErrInvalidConfig, cfg.Provider)
	}
}
