package tmdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

const defaultBaseURL = "https://api.themoviedb.org"
const defaultCacheTTL = 24 * time.Hour

var (
	// ErrNotFound is returned when the title doesn't exist in TMDB.
	ErrNotFound = errors.New("title not found")

	// ErrInvalidAPIKey is returned on 401 responses.
	ErrInvalidAPIKey = errors.New("invalid tmdb api key")

	// ErrUnsupportedKind is returned for kinds other than "movie" and "tv".
	ErrUnsupportedKind = errors.New("unsupported tmdb kind")
)

// Client is a TMDB API client.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	cache      *cache
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL sets a custom base URL (for testing).
func WithBaseURL(url string) Option {
	return func(c *Client) {
		c.baseURL = url
	}
}

// WithCacheTTL sets the cache TTL.
func WithCacheTTL(ttl time.Duration) Option {
	return func(c *Client) {
		c.cache = newCache(ttl)
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// NewClient creates a new TMDB client.
func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		cache: newCache(defaultCacheTTL),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ExternalIDs fetches the external ids of a movie or tv show.
func (c *Client) ExternalIDs(ctx context.Context, kind, tmdbID string) (ExternalIDs, error) {
	if kind != "movie" && kind != "tv" {
		return ExternalIDs{}, fmt.Errorf("%w: %q", ErrUnsupportedKind, kind)
	}

	key := kind + "/" + tmdbID
	if ids, ok := c.cache.get(key); ok {
		return ids, nil
	}

	endpoint := fmt.Sprintf("%s/3/%s/%s/external_ids?api_key=%s",
		c.baseURL, kind, url.PathEscape(tmdbID), url.QueryEscape(c.apiKey))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return ExternalIDs{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return ExternalIDs{}, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return ExternalIDs{}, ErrNotFound
	case http.StatusUnauthorized:
		return ExternalIDs{}, ErrInvalidAPIKey
	default:
		return ExternalIDs{}, fmt.Errorf("TMDB API error: %s", resp.Status)
	}

	var ids ExternalIDs
	if err := json.NewDecoder(resp.Body).Decode(&ids); err != nil {
		return ExternalIDs{}, fmt.Errorf("decode response: %w", err)
	}

	c.cache.set(key, ids)
	return ids, nil
}

// IMDbID returns the IMDb id of a movie or tv show, or "" when TMDB has
// none recorded.
func (c *Client) IMDbID(ctx context.Context, kind, tmdbID string) (string, error) {
	ids, err := c.ExternalIDs(ctx, kind, tmdbID)
	if err != nil {
		return "", err
	}
	return ids.IMDBID, nil
}
