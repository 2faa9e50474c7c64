package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/valyala/bytebufferpool"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/time/rate"

	"github.com/riskibarqy/fixture-sync/internal/platform/cache"
	"github.com/riskibarqy/fixture-sync/internal/platform/logging"
	"github.com/riskibarqy/fixture-sync/internal/platform/resilience"
)

const maxBodyBytes = 8 << 20

type Config struct {
	HTTPClient    *http.Client
	CacheTTL      time.Duration
	Timeout       time.Duration
	Backoff       resilience.Backoff
	RatePerMinute int
	Breaker       resilience.BreakerConfig
	Logger        *logging.Logger
	// Secrets are scrubbed from logged URLs and error text.
	Secrets []string
}

// Request is one GET against a provider. RecordsField names the top-level
// array holding the records; empty means the body itself is the array.
type Request struct {
	URL          string
	Query        url.Values
	Header       http.Header
	RecordsField string
}

// Resolve renders the full request URL, which is also the cache key.
func (r Request) Resolve() string {
	if len(r.Query) == 0 {
		return r.URL
	}
	sep := "?"
	if strings.Contains(r.URL, "?") {
		sep = "&"
	}
	return r.URL + sep + r.Query.Encode()
}

// Fetcher is the shared provider HTTP accessor. Each instance owns its
// response cache; nothing is shared across instances.
type Fetcher struct {
	httpClient *http.Client
	timeout    time.Duration
	backoff    resilience.Backoff
	cache      *cache.Store[[]byte]
	limiter    *rate.Limiter
	breaker    *resilience.Breaker
	logger     *logging.Logger
	secrets    []string
}

func NewFetcher(cfg Config) *Fetcher {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)}
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	backoff := cfg.Backoff
	if backoff.Base <= 0 {
		backoff.Base = 500 * time.Millisecond
	}
	if backoff.MaxRetries < 0 {
		backoff.MaxRetries = 0
	}

	var limiter *rate.Limiter
	if cfg.RatePerMinute > 0 {
		limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(cfg.RatePerMinute)), 1)
	}

	secrets := make([]string, 0, len(cfg.Secrets))
	for _, s := range cfg.Secrets {
		if strings.TrimSpace(s) != "" {
			secrets = append(secrets, s)
		}
	}

	return &Fetcher{
		httpClient: httpClient,
		timeout:    timeout,
		backoff:    backoff,
		cache:      cache.NewStore[[]byte](cfg.CacheTTL),
		limiter:    limiter,
		breaker:    resilience.NewBreaker(cfg.Breaker),
		logger:     logger.Named("upstream"),
		secrets:    secrets,
	}
}

// Get returns the response body for req. Bodies are served from the
// cache within its TTL, and concurrent identical requests share one call.
// Errors are classified by IsRateLimited and IsTransient.
func (f *Fetcher) Get(ctx context.Context, req Request) ([]byte, error) {
	fullURL := req.Resolve()
	body, hit, err := f.cache.GetOrLoad(ctx, fullURL, func(ctx context.Context) ([]byte, error) {
		return f.load(ctx, fullURL, req.Header)
	})
	if err != nil {
		return nil, err
	}
	if hit {
		f.logger.DebugContext(ctx, "upstream cache hit", "url", f.redact(fullURL))
	}
	return body, nil
}

// Fetch runs Get and decodes the record array. A missing or null array is
// an empty OK result.
func (f *Fetcher) Fetch(ctx context.Context, req Request) Result {
	body, err := f.Get(ctx, req)
	if err != nil {
		return FromError(err)
	}
	records, err := DecodeRecords(body, req.RecordsField)
	if err != nil {
		return Failed(err)
	}
	return OK(records)
}

// DecodeRecords extracts the record array from a provider body.
func DecodeRecords(body []byte, field string) ([]json.RawMessage, error) {
	raw := json.RawMessage(body)
	if field != "" {
		var envelope map[string]json.RawMessage
		if err := sonic.Unmarshal(body, &envelope); err != nil {
			return nil, fmt.Errorf("decode upstream envelope: %w", err)
		}
		raw = envelope[field]
	}
	if len(raw) == 0 || string(raw) == "null" {
		return []json.RawMessage{}, nil
	}
	var records []json.RawMessage
	if err := sonic.Unmarshal(raw, &records); err != nil {
		return nil, fmt.Errorf("decode upstream records %q: %w", field, err)
	}
	return records, nil
}

func (f *Fetcher) load(ctx context.Context, fullURL string, header http.Header) ([]byte, error) {
	if err := f.breaker.Allow(); err != nil {
		f.logger.WarnContext(ctx, "upstream circuit breaker rejected request", "state", f.breaker.State())
		return nil, fmt.Errorf("provider temporarily unavailable: %w", err)
	}

	var body []byte
	err := f.backoff.Retry(ctx, IsTransient, func(ctx context.Context, attempt int) error {
		if f.limiter != nil {
			if err := f.limiter.Wait(ctx); err != nil {
				return fmt.Errorf("wait for rate limiter: %w", err)
			}
		}
		raw, err := f.attempt(ctx, fullURL, header)
		if err != nil {
			if IsTransient(err) && attempt < f.backoff.MaxRetries {
				f.logger.WarnContext(ctx, "upstream attempt failed, retrying",
					"url", f.redact(fullURL),
					"attempt", attempt+1,
					"backoff", f.backoff.Delay(attempt),
					"error", err,
				)
			}
			return err
		}
		body = raw
		return nil
	})

	switch {
	case err == nil:
		f.breaker.RecordSuccess()
		return body, nil
	case IsTransient(err):
		f.breaker.RecordFailure()
	default:
		f.breaker.RecordSuccess()
	}
	f.logger.WarnContext(ctx, "upstream request failed", "url", f.redact(fullURL), "rate_limited", IsRateLimited(err), "error", err)
	return nil, err
}

func (f *Fetcher) attempt(ctx context.Context, fullURL string, header http.Header) ([]byte, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(attemptCtx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	for key, values := range header {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, crerr.Mark(fmt.Errorf("send request: %s", f.redact(err.Error())), errTransient)
	}
	defer resp.Body.Close()

	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)
	if _, err := buf.ReadFrom(io.LimitReader(resp.Body, maxBodyBytes)); err != nil {
		return nil, crerr.Mark(fmt.Errorf("read response body: %s", f.redact(err.Error())), errTransient)
	}

	switch code := resp.StatusCode; {
	case code >= 200 && code < 300:
		return append([]byte(nil), buf.B...), nil
	case code == http.StatusTooManyRequests:
		return nil, crerr.Mark(&StatusError{Code: code, Body: abbreviateBody(buf.B)}, ErrRateLimited)
	case code >= http.StatusInternalServerError:
		return nil, crerr.Mark(&StatusError{Code: code, Body: abbreviateBody(buf.B)}, errTransient)
	default:
		return nil, &StatusError{Code: code, Body: abbreviateBody(buf.B)}
	}
}

func (f *Fetcher) redact(value string) string {
	for _, secret := range f.secrets {
		value = strings.ReplaceAll(value, secret, "REDACTED")
	}
	return value
}

func abbreviateBody(body []byte) string {
	text := strings.TrimSpace(string(body))
	if len(text) <= 240 {
		return text
	}
	return text[:240] + "..."
}
