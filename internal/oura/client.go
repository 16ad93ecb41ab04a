// ABOUTME: Oura API v2 client: bearer auth, rate limiting, and bounded
// ABOUTME: retries with exponential backoff.
package oura

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	json "github.com/goccy/go-json"
	"golang.org/x/time/rate"
)

const defaultBaseURL = "https://api.ouraring.com/v2/usercollection"

const maxAttempts = 3

// Client talks to the Oura API for a single user token.
type Client struct {
	baseURL      string
	httpClient   *http.Client
	limiter      *rate.Limiter
	logger       *slog.Logger
	retryWaitMin time.Duration
	retryWaitMax time.Duration
}

type clientConfig struct {
	baseURL      string
	logger       *slog.Logger
	timeout      time.Duration
	retryWaitMin time.Duration
	retryWaitMax time.Duration
	ratePerSec   float64
	rateBurst    int
}

// Option configures the client.
type Option func(*clientConfig)

// WithBaseURL overrides the API base URL.
func WithBaseURL(baseURL string) Option {
	return func(cfg *clientConfig) { cfg.baseURL = baseURL }
}

// WithLogger overrides the client logger.
func WithLogger(logger *slog.Logger) Option {
	return func(cfg *clientConfig) { cfg.logger = logger }
}

// WithTimeout overrides the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(cfg *clientConfig) { cfg.timeout = d }
}

// WithRetryWait overrides the backoff bounds between retry attempts.
func WithRetryWait(min, max time.Duration) Option {
	return func(cfg *clientConfig) {
		cfg.retryWaitMin = min
		cfg.retryWaitMax = max
	}
}

// WithRateLimit overrides the request rate limit.
func WithRateLimit(perSec float64, burst int) Option {
	return func(cfg *clientConfig) {
		cfg.ratePerSec = perSec
		cfg.rateBurst = burst
	}
}

// New builds a client for the given personal access token.
func New(token string, opts ...Option) *Client {
	cfg := &clientConfig{
		baseURL:      defaultBaseURL,
		logger:       slog.Default(),
		timeout:      30 * time.Second,
		retryWaitMin: 2 * time.Second,
		retryWaitMax: 10 * time.Second,
		ratePerSec:   5,
		rateBurst:    10,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	transport := &ouraTransport{
		base:  http.DefaultTransport,
		token: token,
	}

	return &Client{
		baseURL:      cfg.baseURL,
		httpClient:   &http.Client{Transport: transport, Timeout: cfg.timeout},
		limiter:      rate.NewLimiter(rate.Limit(cfg.ratePerSec), cfg.rateBurst),
		logger:       cfg.logger,
		retryWaitMin: cfg.retryWaitMin,
		retryWaitMax: cfg.retryWaitMax,
	}
}

type ouraTransport struct {
	base  http.RoundTripper
	token string
}

var _ http.RoundTripper = (*ouraTransport)(nil)

func (t *ouraTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req.Header.Set("Authorization", "Bearer "+t.token)
	req.Header.Set("Accept", "application/json")

	resp, err := t.base.RoundTrip(req)
	if err != nil {
		return nil, fmt.Errorf("round trip: %w", err)
	}
	return resp, nil
}

type listEnvelope struct {
	Data []map[string]any `json:"data"`
}

// fetchList requests an endpoint's data list, retrying transient failures
// and error statuses with exponential backoff.
func (c *Client) fetchList(ctx context.Context, endpoint string, query url.Values) ([]map[string]any, error) {
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if attempt > 1 {
			wait := c.retryWaitMin << uint(attempt-2)
			if wait > c.retryWaitMax {
				wait = c.retryWaitMax
			}
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(wait):
			}
		}

		items, err := c.doList(ctx, endpoint, query)
		if err == nil {
			return items, nil
		}
		lastErr = err

		// 4xx responses are request problems; retrying cannot change them.
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode < 500 {
			return nil, err
		}
		c.logger.Warn("oura request failed", "endpoint", endpoint, "attempt", attempt, "error", err)
	}
	return nil, lastErr
}

func (c *Client) doList(ctx context.Context, endpoint string, query url.Values) ([]map[string]any, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	u := c.baseURL + "/" + endpoint
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		return nil, parseAPIError(resp)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	var envelope listEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}
	return envelope.Data, nil
}

// fetchTolerant degrades an endpoint failure to an empty list so one broken
// endpoint never aborts a whole morning run.
func (c *Client) fetchTolerant(ctx context.Context, endpoint string, query url.Values) []map[string]any {
	items, err := c.fetchList(ctx, endpoint, query)
	if err != nil {
		c.logger.Warn("failed to fetch endpoint", "endpoint", endpoint, "error", err)
		return []map[string]any{}
	}
	if items == nil {
		items = []map[string]any{}
	}
	return items
}
