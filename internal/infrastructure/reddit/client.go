// Package reddit harvests posts and comments from the public Reddit
// endpoints, via the JSON listing API or an old-reddit HTML fallback.
package reddit

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

const baseURL = "https://www.reddit.com"

// responseBodyLimit caps how much of a listing body is read; Reddit
// listings are well under this.
const responseBodyLimit = 4 << 20

// client wraps the shared HTTP transport with the user agent Reddit
// requires and a global throttle (about one request per second keeps us
// inside the unauthenticated quota).
type client struct {
	http      *http.Client
	userAgent string
	limiter   *rate.Limiter
	base      string
}

func newClient(httpClient *http.Client, userAgent, base string) *client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	if userAgent == "" {
		userAgent = "RedditScout/1.0"
	}
	if base == "" {
		base = baseURL
	}
	return &client{
		http:      httpClient,
		userAgent: userAgent,
		limiter:   rate.NewLimiter(rate.Every(time.Second), 1),
		base:      base,
	}
}

func (c *client) getJSON(ctx context.Context, path string, v any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+path, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("reddit returned %s for %s", resp.Status, path)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, responseBodyLimit))
	if err != nil {
		return fmt.Errorf("read body: %w", err)
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

func (c *client) get(ctx context.Context, path string) (*http.Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+path, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request %s: %w", path, err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("reddit returned %s for %s", resp.Status, path)
	}
	return resp, nil
}
