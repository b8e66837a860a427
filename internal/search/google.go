// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/rotisserie/eris"
	"github.com/tidwall/gjson"

	"github.com/pdiddy/visibility-engine/internal/httputil"
	"github.com/pdiddy/visibility-engine/pkg/types"
)

// googleSearchURL is the Custom Search JSON API endpoint. Declared as a var
// so tests can substitute an httptest server.
var googleSearchURL = "https://www.googleapis.com/customsearch/v1"

const maxPageSize = 10

// GoogleBackend queries Google Programmable Search.
type GoogleBackend struct {
	Client *http.Client
	cfg    types.SearchConfig
}

// NewGoogleBackend returns a backend for cfg. Both the API key and the
// search engine id are required; a missing one is a configuration error.
func NewGoogleBackend(cfg types.SearchConfig, client *http.Client) (*GoogleBackend, error) {
	if cfg.APIKey == "" {
		return nil, types.ConfigurationError("google search: api key not set")
	}
	if cfg.EngineID == "" {
		return nil, types.ConfigurationError("google search: search engine id not set")
	}
	if cfg.PageSize <= 0 || cfg.PageSize > maxPageSize {
		cfg.PageSize = maxPageSize
	}
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	return &GoogleBackend{Client: client, cfg: cfg}, nil
}

// Name returns the backend identifier.
func (b *GoogleBackend) Name() string { return "google" }

// Search runs one query. HTTP 429 is retried up to cfg.MaxAttempts times;
// a response still rate limited after that yields ErrRateLimited.
func (b *GoogleBackend) Search(ctx context.Context, query string) ([]types.SearchResult, error) {
	if query == "" {
		return nil, fmt.Errorf("empty search query")
	}

	params := url.Values{
		"key": {b.cfg.APIKey},
		"cx":  {b.cfg.EngineID},
		"q":   {query},
		"num": {strconv.Itoa(b.cfg.PageSize)},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, googleSearchURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	if b.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", b.cfg.UserAgent)
	}

	resp, err := httputil.DoWithRetry(ctx, b.Client, req, b.cfg.MaxAttempts)
	if err != nil {
		return nil, types.ModelCallError(b.Name(), err)
	}
	defer resp.Body.Close()

	if httputil.IsRateLimited(resp) {
		return nil, eris.Wrapf(types.ErrRateLimited, "google search %q", query)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, types.ModelCallError(b.Name(), fmt.Errorf("reading response: %w", err))
	}

	if resp.StatusCode != http.StatusOK {
		msg := gjson.GetBytes(body, "error.message").String()
		return nil, types.ModelCallError(b.Name(), fmt.Errorf("HTTP %d: %s", resp.StatusCode, msg))
	}

	return parseGoogleResponse(body), nil
}

// parseGoogleResponse maps the items array to SearchResults. A response
// without items (no hits) yields an empty slice.
func parseGoogleResponse(body []byte) []types.SearchResult {
	items := gjson.GetBytes(body, "items").Array()
	results := make([]types.SearchResult, 0, len(items))
	for _, item := range items {
		results = append(results, types.SearchResult{
			Name:    item.Get("title").String(),
			Link:    item.Get("link").String(),
			Snippet: item.Get("snippet").String(),
		})
	}
	return results
}
