package footballdata

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"

	crerr "github.com/cockroachdb/errors"

	"github.com/riskibarqy/fixture-sync/internal/domain/match"
	"github.com/riskibarqy/fixture-sync/internal/platform/logging"
	"github.com/riskibarqy/fixture-sync/internal/platform/upstream"
)

const (
	ProviderName       = "football-data"
	defaultBaseURL     = "https://api.football-data.org/v4"
	defaultCompetition = "WC"
	authHeader         = "X-Auth-Token"
	dateLayout         = "2006-01-02"
)

var (
	errMissingAPIKey      = crerr.New("football-data api key is required")
	errMissingCompetition = crerr.New("football-data competition is required")
)

type ClientConfig struct {
	BaseURL     string
	APIKey      string
	Competition string
	Fetcher     *upstream.Fetcher
	Logger      *logging.Logger
}

// Client reads competition fixtures from football-data.org.
type Client struct {
	baseURL     string
	apiKey      string
	competition string
	fetcher     *upstream.Fetcher
	logger      *logging.Logger
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	competition := strings.TrimSpace(cfg.Competition)
	if competition == "" {
		competition = defaultCompetition
	}
	fetcher := cfg.Fetcher
	if fetcher == nil {
		fetcher = upstream.NewFetcher(upstream.Config{Logger: logger, Secrets: []string{cfg.APIKey}})
	}

	return &Client{
		baseURL:     baseURL,
		apiKey:      strings.TrimSpace(cfg.APIKey),
		competition: competition,
		fetcher:     fetcher,
		logger:      logger.Named(ProviderName),
	}
}

func (c *Client) Name() string {
	return ProviderName
}

// Validate reports configuration the upstream would reject anyway.
func (c *Client) Validate() error {
	if c.apiKey == "" {
		return errMissingAPIKey
	}
	if c.competition == "" {
		return errMissingCompetition
	}
	return nil
}

// FetchMatches lists the competition's matches with a UTC date in
// [from, to], both days inclusive.
func (c *Client) FetchMatches(ctx context.Context, from, to time.Time) upstream.Result {
	query := url.Values{}
	if !from.IsZero() {
		query.Set("dateFrom", from.UTC().Format(dateLayout))
	}
	if !to.IsZero() {
		query.Set("dateTo", to.UTC().Format(dateLayout))
	}

	result := c.fetcher.Fetch(ctx, upstream.Request{
		URL:          c.baseURL + "/competitions/" + url.PathEscape(c.competition) + "/matches",
		Query:        query,
		Header:       http.Header{authHeader: {c.apiKey}},
		RecordsField: "matches",
	})
	if result.Outcome == upstream.OutcomeOK {
		c.logger.DebugContext(ctx, "fetched football-data matches",
			"competition", c.competition,
			"date_from", query.Get("dateFrom"),
			"date_to", query.Get("dateTo"),
			"count", len(result.Records),
		)
	}
	return result
}

// Map never fails: an undecodable record yields a draft without an
// external id, which reconciliation rejects.
func (c *Client) Map(raw json.RawMessage) match.Draft {
	return MapMatch(raw)
}
