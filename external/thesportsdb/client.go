package thesportsdb

import (
	"context"
	"encoding/json"
	"net/url"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/sourcegraph/conc/pool"

	"github.com/riskibarqy/fixture-sync/internal/domain/match"
	"github.com/riskibarqy/fixture-sync/internal/platform/logging"
	"github.com/riskibarqy/fixture-sync/internal/platform/upstream"
)

const (
	ProviderName       = "thesportsdb"
	defaultBaseURL     = "https://www.thesportsdb.com/api/v1/json"
	defaultAPIKey      = "3"
	maxRoundFetches    = 4
	dateLayout         = "2006-01-02"
	eventsRecordsField = "events"
)

var (
	errMissingLeague = crerr.New("thesportsdb league id is required")
	errMissingSeason = crerr.New("thesportsdb season is required when rounds are configured")
)

type ClientConfig struct {
	BaseURL  string
	APIKey   string
	LeagueID string
	Season   string
	Rounds   []string
	Fetcher  *upstream.Fetcher
	Logger   *logging.Logger
}

type Client struct {
	baseURL  string
	apiKey   string
	leagueID string
	season   string
	rounds   []string
	fetcher  *upstream.Fetcher
	logger   *logging.Logger
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
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		apiKey = defaultAPIKey
	}
	fetcher := cfg.Fetcher
	if fetcher == nil {
		fetcher = upstream.NewFetcher(upstream.Config{Logger: logger, Secrets: []string{apiKey}})
	}
	rounds := make([]string, 0, len(cfg.Rounds))
	for _, r := range cfg.Rounds {
		if r = strings.TrimSpace(r); r != "" {
			rounds = append(rounds, r)
		}
	}

	return &Client{
		baseURL:  baseURL,
		apiKey:   apiKey,
		leagueID: strings.TrimSpace(cfg.LeagueID),
		season:   strings.TrimSpace(cfg.Season),
		rounds:   rounds,
		fetcher:  fetcher,
		logger:   logger.Named(ProviderName),
	}
}

func (c *Client) Name() string {
	return ProviderName
}

func (c *Client) Validate() error {
	if c.leagueID == "" {
		return errMissingLeague
	}
	if len(c.rounds) > 0 && c.season == "" {
		return errMissingSeason
	}
	return nil
}

func (c *Client) Map(raw json.RawMessage) match.Draft {
	return MapEvent(raw)
}

// FetchMatches lists league events dated within [from, to]. Configured
// rounds are fetched one request per round; otherwise the season listing
// is used, falling back to the past and next endpoints when it is empty.
func (c *Client) FetchMatches(ctx context.Context, from, to time.Time) upstream.Result {
	var result upstream.Result
	switch {
	case len(c.rounds) > 0:
		requests := make([]upstream.Request, 0, len(c.rounds))
		for _, round := range c.rounds {
			requests = append(requests, c.request("eventsround.php", url.Values{
				"id": {c.leagueID},
				"s":  {c.season},
				"r":  {round},
			}))
		}
		result = c.fetchAll(ctx, requests)
	default:
		if c.season != "" {
			result = c.fetcher.Fetch(ctx, c.request("eventsseason.php", url.Values{
				"id": {c.leagueID},
				"s":  {c.season},
			}))
			if result.Outcome != upstream.OutcomeOK || len(result.Records) > 0 {
				break
			}
			c.logger.WarnContext(ctx, "no season events returned, falling back to past/next endpoints", "season", c.season)
		}
		result = c.fetchAll(ctx, []upstream.Request{
			c.request("eventspastleague.php", url.Values{"id": {c.leagueID}}),
			c.request("eventsnextleague.php", url.Values{"id": {c.leagueID}}),
		})
	}
	if result.Outcome != upstream.OutcomeOK {
		return result
	}

	records := filterByDate(mergeEvents(result.Records), from, to)
	c.logger.DebugContext(ctx, "fetched thesportsdb events",
		"league_id", c.leagueID,
		"season", c.season,
		"rounds", len(c.rounds),
		"fetched", len(result.Records),
		"in_range", len(records),
	)
	return upstream.OK(records)
}

func (c *Client) request(endpoint string, query url.Values) upstream.Request {
	return upstream.Request{
		URL:          c.baseURL + "/" + url.PathEscape(c.apiKey) + "/" + endpoint,
		Query:        query,
		RecordsField: eventsRecordsField,
	}
}

// fetchAll runs requests concurrently and concatenates records in request
// order. The first non-OK result, in request order, wins.
func (c *Client) fetchAll(ctx context.Context, requests []upstream.Request) upstream.Result {
	results := make([]upstream.Result, len(requests))
	p := pool.New().WithMaxGoroutines(maxRoundFetches)
	for i, req := range requests {
		p.Go(func() {
			results[i] = c.fetcher.Fetch(ctx, req)
		})
	}
	p.Wait()

	var records []json.RawMessage
	for _, r := range results {
		if r.Outcome != upstream.OutcomeOK {
			return r
		}
		records = append(records, r.Records...)
	}
	return upstream.OK(records)
}

type eventKey struct {
	IDEvent   text `json:"idEvent"`
	DateEvent text `json:"dateEvent"`
}

func peek(raw json.RawMessage) eventKey {
	var key eventKey
	_ = sonic.Unmarshal(raw, &key)
	return key
}

// mergeEvents drops repeated idEvent rows; the last copy wins and keeps
// the first copy's position. Rows without an id pass through untouched.
func mergeEvents(records []json.RawMessage) []json.RawMessage {
	out := make([]json.RawMessage, 0, len(records))
	position := make(map[string]int, len(records))
	for _, raw := range records {
		id := peek(raw).IDEvent.String()
		if id == "" {
			out = append(out, raw)
			continue
		}
		if i, ok := position[id]; ok {
			out[i] = raw
			continue
		}
		position[id] = len(out)
		out = append(out, raw)
	}
	return out
}

// filterByDate keeps events whose dateEvent falls in [from, to] by
// calendar day. Undated events are kept.
func filterByDate(records []json.RawMessage, from, to time.Time) []json.RawMessage {
	var fromDay, toDay string
	if !from.IsZero() {
		fromDay = from.UTC().Format(dateLayout)
	}
	if !to.IsZero() {
		toDay = to.UTC().Format(dateLayout)
	}

	out := make([]json.RawMessage, 0, len(records))
	for _, raw := range records {
		day := peek(raw).DateEvent.String()
		if day != "" {
			if fromDay != "" && day < fromDay {
				continue
			}
			if toDay != "" && day > toDay {
				continue
			}
		}
		out = append(out, raw)
	}
	return out
}
