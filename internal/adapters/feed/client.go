// Package feed adapts the upstream game-state provider into the internal
// Situation/Workload/Action value objects.
//
// The provider is an external collaborator: the client pulls a read-only
// snapshot keyed by event id, rate-limits its own requests, carries a
// per-request timeout, and retries once on transport errors before giving
// up with ErrUpstreamUnavailable.
package feed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/okian/crux/pkg/logger"
	"github.com/okian/crux/pkg/metrics"
)

// Default client configuration constants.
const (
	defaultTimeout        = 3 * time.Second
	defaultRequestsPerMin = 600
	maxBodyBytes          = 1 << 20
)

// Source is the read surface the engine consumes.
type Source interface {
	// GameState fetches the current snapshot for an event.
	GameState(ctx context.Context, eventID string) (GameState, error)
	// LiveGames lists event ids with a game in progress.
	LiveGames(ctx context.Context) ([]string, error)
}

// Client is the HTTP implementation of Source.
type Client struct {
	httpClient *http.Client
	baseURL    string
	limiter    *rate.Limiter
	timeout    time.Duration
	logger     logger.Logger
}

// Option applies a configuration option to the Client.
type Option func(*Client)

// WithTimeout sets the per-request timeout budget.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.timeout = timeout
		}
	}
}

// WithRequestsPerMinute sets the token-bucket rate limit.
func WithRequestsPerMinute(rpm int) Option {
	return func(c *Client) {
		if rpm > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(float64(rpm)/60.0), 1)
		}
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewClient creates a feed client for the provider at baseURL.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{},
		baseURL:    baseURL,
		limiter:    rate.NewLimiter(rate.Limit(float64(defaultRequestsPerMin)/60.0), 1),
		timeout:    defaultTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GameState fetches and adapts the snapshot for one event.
func (c *Client) GameState(ctx context.Context, eventID string) (GameState, error) {
	var dto snapshotDTO
	if err := c.getJSON(ctx, "/games/"+eventID+"/state", &dto); err != nil {
		return GameState{}, err
	}
	if !dto.InProgress || dto.PitcherID == "" {
		return GameState{}, fmt.Errorf("%w: event %s", ErrNoActiveSituation, eventID)
	}
	return dto.toGameState(), nil
}

// LiveGames lists in-progress event ids.
func (c *Client) LiveGames(ctx context.Context) ([]string, error) {
	var dto liveGamesDTO
	if err := c.getJSON(ctx, "/games/live", &dto); err != nil {
		return nil, err
	}
	return dto.EventIDs, nil
}

// getJSON performs a rate-limited GET with the timeout budget, retrying
// once on transport errors.
func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%w: rate limit wait: %w", ErrUpstreamUnavailable, err)
	}

	body, err := c.do(ctx, path)
	if err != nil {
		if errors.Is(err, ErrNoActiveSituation) {
			return err
		}
		// Retry once, then fail.
		metrics.RecordFeedRetry()
		if c.logger != nil {
			c.logger.Debug(ctx, "retrying feed request", logger.String("path", path), logger.Error(err))
		}
		body, err = c.do(ctx, path)
		if err != nil {
			return err
		}
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: decode %s: %w", ErrUpstreamUnavailable, path, err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, path string) ([]byte, error) {
	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: create request: %w", ErrUpstreamUnavailable, err)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	metrics.RecordFeedRequest(float64(time.Since(start).Milliseconds()))
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || reqCtx.Err() != nil {
			metrics.RecordFeedTimeout()
		}
		return nil, fmt.Errorf("%w: %s: %w", ErrUpstreamUnavailable, path, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%w: %s", ErrNoActiveSituation, path)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("%w: %s returned %d", ErrUpstreamUnavailable, path, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %w", ErrUpstreamUnavailable, path, err)
	}
	return body, nil
}
