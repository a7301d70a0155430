// Package hsr is the Honkai: Star Rail client for the Hakush.in game-data
// API. It fetches and decodes enemy catalog entries, the two enemy
// scaling-group tables, and endgame stage details, and can resolve every
// enemy instance referenced by an endgame stage into its effective combat
// stats for the active rotation.
package hsr

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/cory-johannsen/hakushin"
)

// DefaultBaseURL is the primary API host.
const DefaultBaseURL = "https://api.hakush.in"

// The bulk scaling tables live on a separate host from the primary API.
const (
	DefaultEliteGroupURL     = "https://gitlab.com/Dimbreath/turnbasedgamedata/-/raw/main/ExcelOutput/EliteGroup.json"
	DefaultHardLevelGroupURL = "https://gitlab.com/Dimbreath/turnbasedgamedata/-/raw/main/ExcelOutput/HardLevelGroup.json"
)

// Fetcher retrieves a raw JSON document by URL. useCache false bypasses
// any response cache for that one call. transport.Client satisfies this.
type Fetcher interface {
	FetchJSON(ctx context.Context, url string, useCache bool) ([]byte, error)
}

// Options configures a Client. The zero value is usable: English, default
// hosts, no-op logger.
type Options struct {
	// Language selects the localization of API responses.
	Language hakushin.Language
	// BaseURL overrides the primary API host.
	BaseURL string
	// EliteGroupURL overrides the elite-group bulk table URL.
	EliteGroupURL string
	// HardLevelGroupURL overrides the hard-level-group bulk table URL.
	HardLevelGroupURL string
	// Logger receives debug logs (dropped instances, cache population).
	Logger *zap.Logger
}

// Client fetches and decodes HSR game data.
//
// The two scaling-group tables are memoized on the client after the first
// successful fetch and shared by every resolution for the life of the
// client, unless a call bypasses the cache.
type Client struct {
	fetcher Fetcher
	lang    hakushin.Language
	logger  *zap.Logger

	baseURL           string
	eliteGroupURL     string
	hardLevelGroupURL string

	groups groupCache
}

// NewClient creates a Client on top of the given fetcher.
//
// Precondition: fetcher must not be nil.
func NewClient(fetcher Fetcher, opts Options) (*Client, error) {
	if fetcher == nil {
		return nil, errors.New("hsr.NewClient: fetcher must not be nil")
	}

	lang := opts.Language
	if lang == "" {
		lang = hakushin.LanguageEN
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	eliteURL := opts.EliteGroupURL
	if eliteURL == "" {
		eliteURL = DefaultEliteGroupURL
	}
	hardURL := opts.HardLevelGroupURL
	if hardURL == "" {
		hardURL = DefaultHardLevelGroupURL
	}

	return &Client{
		fetcher:           fetcher,
		lang:              lang,
		logger:            logger,
		baseURL:           baseURL,
		eliteGroupURL:     eliteURL,
		hardLevelGroupURL: hardURL,
	}, nil
}

// dataURL builds a localized data endpoint URL.
func (c *Client) dataURL(endpoint string) string {
	return fmt.Sprintf("%s/%s/data/%s/%s.json",
		c.baseURL, hakushin.GameHSR, hakushin.APILang(hakushin.GameHSR, c.lang), endpoint)
}

// fetchSettings holds per-call fetch behavior.
type fetchSettings struct {
	bypassCache bool
}

// FetchOption adjusts a single fetch call.
type FetchOption func(*fetchSettings)

// BypassCache forces a fresh fetch for this call, skipping both the
// transport's response cache and, for the scaling tables, the client's
// memoized copy (which is re-populated from the fresh result).
func BypassCache() FetchOption {
	return func(s *fetchSettings) { s.bypassCache = true }
}

func applyFetchOptions(opts []FetchOption) fetchSettings {
	var s fetchSettings
	for _, opt := range opts {
		opt(&s)
	}
	return s
}
