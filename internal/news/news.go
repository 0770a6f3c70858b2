// Package news fetches per-instrument news flags from an optional HTTP
// source. Alerts for flagged instruments get a priority boost; anything that
// goes wrong here degrades to "no news" rather than an error.
package news

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/tokoquant/idxradar/internal/logger"
)

// Client pulls the flag map from a JSON feed.
type Client struct {
	feedURL    string
	httpClient *http.Client
}

// NewClient creates a news client for the given feed URL.
func NewClient(feedURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{
		feedURL: feedURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// flagsResponse mirrors the feed payload: {"pairs": {"btc_idr": true}}.
type flagsResponse struct {
	Pairs map[string]bool `json:"pairs"`
}

// Flags returns the instruments currently flagged with news. It never fails:
// a nil client, an unreachable feed, or a malformed payload all yield an
// empty map.
func (c *Client) Flags(ctx context.Context) map[string]bool {
	if c == nil {
		return nil
	}

	flags, err := c.fetch(ctx)
	if err != nil {
		logger.Debug("News feed unavailable, continuing without flags: %v", err)
		return nil
	}
	return flags
}

func (c *Client) fetch(ctx context.Context) (map[string]bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.feedURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	var fr flagsResponse
	if err := json.NewDecoder(resp.Body).Decode(&fr); err != nil {
		return nil, err
	}
	return fr.Pairs, nil
}
