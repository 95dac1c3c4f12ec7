// Package letterboxd resolves TMDB and IMDb identifiers from Letterboxd film
// pages.
package letterboxd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/vmunix/filmids/pkg/filmid"
)

const (
	defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/85.0.4183.102 Safari/537.36"
	defaultTimeout   = 30 * time.Second
	maxPageBytes     = 8 << 20
)

var (
	// ErrNoPageURL is returned when the film has no page to fetch.
	ErrNoPageURL = errors.New("film has no page url")

	// ErrUnexpectedStatus is returned for non-2xx responses.
	ErrUnexpectedStatus = errors.New("unexpected http status")
)

// IMDbSource fills in an IMDb id from a TMDB id. *tmdb.Client satisfies it.
type IMDbSource interface {
	IMDbID(ctx context.Context, kind, tmdbID string) (string, error)
}

// Result is the outcome of one page lookup: the identifiers found, or the
// reason none could be read.
type Result struct {
	IDs filmid.IDs
	Err error
}

// OK reports whether the page was fetched and parsed.
func (r Result) OK() bool { return r.Err == nil }

// Client fetches film pages.
type Client struct {
	httpClient *http.Client
	userAgent  string
	imdb       IMDbSource
	log        *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithUserAgent overrides the browser User-Agent sent with each request.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

// WithIMDbSource enables filling a missing IMDb id from TMDB.
func WithIMDbSource(src IMDbSource) Option {
	return func(c *Client) {
		c.imdb = src
	}
}

// WithLogger sets the logger.
func WithLogger(log *slog.Logger) Option {
	return func(c *Client) {
		if log != nil {
			c.log = log
		}
	}
}

// NewClient creates a client with browser-like defaults.
func NewClient(opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: defaultTimeout},
		userAgent:  defaultUserAgent,
		log:        slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Lookup resolves a film's identifiers. It never fails: any fetch or parse
// error is logged and reported as the zero IDs.
func (c *Client) Lookup(ctx context.Context, film filmid.Film) filmid.IDs {
	res := c.Fetch(ctx, film)
	if !res.OK() {
		c.log.Warn("lookup failed",
			"name", film.Name,
			"year", film.Year,
			"url", film.URL,
			"error", res.Err,
		)
		return filmid.IDs{}
	}

	c.log.Debug("lookup complete",
		"name", film.Name,
		"year", film.Year,
		"kind", res.IDs.Kind,
		"tmdb_id", res.IDs.TmdbID,
		"imdb_id", res.IDs.ImdbID,
	)
	return res.IDs
}

// Fetch downloads and parses the film page.
func (c *Client) Fetch(ctx context.Context, film filmid.Film) Result {
	if film.URL == "" {
		return Result{Err: ErrNoPageURL}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, film.URL, nil)
	if err != nil {
		return Result{Err: fmt.Errorf("create request: %w", err)}
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Result{Err: fmt.Errorf("execute request: %w", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Result{Err: fmt.Errorf("%w: %s", ErrUnexpectedStatus, resp.Status)}
	}

	ids, err := parsePage(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return Result{Err: fmt.Errorf("parse page: %w", err)}
	}

	return Result{IDs: c.backfillIMDb(ctx, ids)}
}

// backfillIMDb asks TMDB for the IMDb id when the page only linked TMDB.
// Failures keep the ids as scraped.
func (c *Client) backfillIMDb(ctx context.Context, ids filmid.IDs) filmid.IDs {
	if c.imdb == nil || ids.ImdbID != "" || ids.Kind == "" || ids.TmdbID == "" {
		return ids
	}

	imdbID, err := c.imdb.IMDbID(ctx, ids.Kind, ids.TmdbID)
	if err != nil {
		c.log.Warn("imdb backfill failed", "kind", ids.Kind, "tmdb_id", ids.TmdbID, "error", err)
		return ids
	}
	if imdbID != "" {
		c.log.Debug("imdb id backfilled from tmdb", "kind", ids.Kind, "tmdb_id", ids.TmdbID, "imdb_id", imdbID)
		ids.ImdbID = imdbID
	}
	return ids
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,image/apng,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("Upgrade-Insecure-Requests", "1")
	req.Header.Set("DNT", "1")
}
