// Package indodax provides a client for the Indodax public market data API.
package indodax

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"github.com/tokoquant/idxradar/internal/models"
)

// Client provides access to the summaries and depth endpoints.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	maxRetries int
	retryDelay time.Duration
	userAgent  string
}

// ClientConfig holds the HTTP behavior knobs.
type ClientConfig struct {
	Timeout           time.Duration
	MaxRetries        int
	RetryDelay        time.Duration
	RequestsPerSecond float64
	UserAgent         string
}

// NewClient creates a new Indodax API client.
func NewClient(baseURL string, cfg ClientConfig) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 6 * time.Second
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = 300 * time.Millisecond
	}
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = 8
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = "Mozilla/5.0 (compatible; IndodaxScanner/2.0)"
	}

	burst := int(cfg.RequestsPerSecond)
	if burst < 1 {
		burst = 1
	}

	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		limiter:    rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst),
		maxRetries: cfg.MaxRetries,
		retryDelay: cfg.RetryDelay,
		userAgent:  cfg.UserAgent,
	}
}

// summariesResponse mirrors the /summaries payload. Only the tickers map is
// consumed; the price change sections are ignored.
type summariesResponse struct {
	Tickers map[string]models.RawTicker `json:"tickers"`
}

// Summaries fetches the full per-instrument ticker map.
func (c *Client) Summaries(ctx context.Context) (map[string]models.RawTicker, error) {
	resp, err := c.doRequest(ctx, c.baseURL+"/summaries")
	if err != nil {
		return nil, fmt.Errorf("failed to fetch summaries: %w", err)
	}
	defer resp.Body.Close()

	var sr summariesResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return nil, fmt.Errorf("failed to decode summaries: %w", err)
	}
	return sr.Tickers, nil
}

// depthResponse mirrors the /depth/{pair} payload. Levels arrive as
// [price, quantity] pairs where either element may be a number or a string.
type depthResponse struct {
	Buy  [][2]any `json:"buy"`
	Sell [][2]any `json:"sell"`
}

// Depth fetches the order book for one instrument, best price first.
func (c *Client) Depth(ctx context.Context, pair string) (models.OrderBook, error) {
	resp, err := c.doRequest(ctx, c.baseURL+"/depth/"+url.PathEscape(pair))
	if err != nil {
		return models.OrderBook{}, fmt.Errorf("failed to fetch depth for %s: %w", pair, err)
	}
	defer resp.Body.Close()

	var dr depthResponse
	if err := json.NewDecoder(resp.Body).Decode(&dr); err != nil {
		return models.OrderBook{}, fmt.Errorf("failed to decode depth for %s: %w", pair, err)
	}
	return models.OrderBook{
		Buy:  parseLevels(dr.Buy),
		Sell: parseLevels(dr.Sell),
	}, nil
}

// parseLevels coerces raw [price, quantity] pairs, dropping malformed levels.
func parseLevels(raw [][2]any) []models.Level {
	levels := make([]models.Level, 0, len(raw))
	for _, entry := range raw {
		price, ok := models.AsFloat(entry[0])
		if !ok {
			continue
		}
		qty, ok := models.AsFloat(entry[1])
		if !ok {
			continue
		}
		levels = append(levels, models.Level{Price: price, Quantity: qty})
	}
	return levels
}

// doRequest performs a GET with rate limiting and bounded retries. Server
// errors and transport errors are retried after a fixed delay; other non-200
// statuses fail immediately.
func (c *Client) doRequest(ctx context.Context, urlStr string) (*http.Response, error) {
	var lastErr error

	for i := 0; i < c.maxRetries; i++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, urlStr, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("User-Agent", c.userAgent)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			time.Sleep(c.retryDelay)
			continue
		}

		if resp.StatusCode >= 500 {
			resp.Body.Close()
			lastErr = fmt.Errorf("server error: %d", resp.StatusCode)
			time.Sleep(c.retryDelay)
			continue
		}

		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			return nil, fmt.Errorf("unexpected status: %d", resp.StatusCode)
		}

		return resp, nil
	}

	return nil, fmt.Errorf("max retries exceeded: %w", lastErr)
}
