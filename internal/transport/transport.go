// Package transport implements the HTTP fetch layer shared by the game
// clients: a session-style client with a TTL'd on-disk response cache and
// a per-call cache bypass.
package transport

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cory-johannsen/hakushin"
)

// DefaultUserAgent is sent when Options.UserAgent is empty.
const DefaultUserAgent = "hakushin-go"

// Options configures a Client.
type Options struct {
	// HTTPClient is the underlying HTTP client. Defaults to a client with
	// a 30s timeout.
	HTTPClient *http.Client
	// CachePath is the SQLite response-cache file. Empty disables caching.
	CachePath string
	// CacheTTL is how long a cached response stays fresh. Defaults to 1h.
	CacheTTL time.Duration
	// UserAgent overrides the User-Agent header.
	UserAgent string
	// Logger receives per-request debug logs. Defaults to zap.NewNop().
	Logger *zap.Logger
}

// Client fetches JSON documents over HTTP, consulting the response cache
// unless the caller bypasses it.
type Client struct {
	http      *http.Client
	cache     *responseCache
	userAgent string
	logger    *zap.Logger
}

// New creates a Client. The response cache is opened eagerly so that a bad
// cache path fails construction rather than the first fetch.
//
// Postcondition: Returns a ready Client or a non-nil error.
func New(opts Options) (*Client, error) {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	userAgent := opts.UserAgent
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}

	var cache *responseCache
	if opts.CachePath != "" {
		ttl := opts.CacheTTL
		if ttl <= 0 {
			ttl = time.Hour
		}
		var err error
		cache, err = openResponseCache(opts.CachePath, ttl)
		if err != nil {
			return nil, fmt.Errorf("opening response cache: %w", err)
		}
	}

	return &Client{
		http:      httpClient,
		cache:     cache,
		userAgent: userAgent,
		logger:    logger,
	}, nil
}

// FetchJSON returns the raw body of url. With useCache true a fresh cached
// copy is returned without touching the network; with useCache false the
// cache is skipped entirely for this call, reads and writes both.
//
// A 404 yields *hakushin.NotFoundError; any other non-200 yields
// *hakushin.APIError. The body is returned as-is; decoding belongs to the
// caller.
func (c *Client) FetchJSON(ctx context.Context, url string, useCache bool) ([]byte, error) {
	reqID := uuid.NewString()

	if useCache && c.cache != nil {
		body, ok, err := c.cache.get(ctx, url)
		if err != nil {
			return nil, fmt.Errorf("reading response cache: %w", err)
		}
		if ok {
			c.logger.Debug("cache hit", zap.String("url", url), zap.String("request_id", reqID))
			return body, nil
		}
	}

	c.logger.Debug("fetching", zap.String("url", url),
		zap.String("request_id", reqID), zap.Bool("use_cache", useCache))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("building request for %s: %w", url, err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", url, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, &hakushin.NotFoundError{URL: url}
	case resp.StatusCode != http.StatusOK:
		return nil, &hakushin.APIError{Status: resp.StatusCode, URL: url}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response from %s: %w", url, err)
	}

	if useCache && c.cache != nil {
		if err := c.cache.put(ctx, url, body); err != nil {
			// A broken cache must not fail an otherwise good fetch.
			c.logger.Warn("writing response cache failed", zap.String("url", url), zap.Error(err))
		}
	}
	return body, nil
}

// Close releases the response cache. Safe to call on a cacheless client.
func (c *Client) Close() error {
	if c.cache == nil {
		return nil
	}
	return c.cache.close()
}
