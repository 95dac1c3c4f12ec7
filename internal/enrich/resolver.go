// Package enrich adds TMDB and IMDb identifiers to Letterboxd export rows.
package enrich

//go:generate mockgen -destination=mocks/lookuper.go -package=mocks github.com/vmunix/filmids/internal/enrich Lookuper

import (
	"context"
	"io"
	"log/slog"

	"github.com/vmunix/filmids/internal/filmcsv"
	"github.com/vmunix/filmids/internal/idcache"
	"github.com/vmunix/filmids/pkg/filmid"
)

// Columns read from and written to the export.
const (
	FieldName       = "Name"
	FieldYear       = "Year"
	FieldURI        = "Letterboxd URI"
	FieldURL        = "URL"
	FieldRating     = "Rating"
	FieldTmdbIDType = "TmdbIdType"
	FieldTmdbID     = "TmdbId"
	FieldImdbID     = "ImdbId"
)

// Lookuper resolves a film's identifiers. Implementations never fail; an
// unresolvable film yields the zero IDs.
type Lookuper interface {
	Lookup(ctx context.Context, film filmid.Film) filmid.IDs
}

// Outcome records which path a row took through the resolver.
type Outcome int

const (
	// OutcomeTrusted means the cached ids were used as-is.
	OutcomeTrusted Outcome = iota
	// OutcomeRepaired means an incomplete cache entry was looked up again.
	OutcomeRepaired
	// OutcomeScraped means the film was not cached and was looked up.
	OutcomeScraped
	// OutcomeSkipped means the film was not cached and diary mode forbade a lookup.
	OutcomeSkipped
)

func (o Outcome) String() string {
	switch o {
	case OutcomeTrusted:
		return "cached"
	case OutcomeRepaired:
		return "repaired"
	case OutcomeScraped:
		return "scraped"
	case OutcomeSkipped:
		return "skipped"
	default:
		return "unknown"
	}
}

// ResolveOptions are the per-run switches the resolver honours.
type ResolveOptions struct {
	// RatingBase10 doubles numeric ratings (5-star scale to 10-point scale).
	RatingBase10 bool
	// Diary treats the cache as read-only: no lookups, no cache writes.
	Diary bool
}

// Resolver decides per row whether to trust the cache, repair it, or look
// the film up.
type Resolver struct {
	store  *idcache.Store
	lookup Lookuper
	opts   ResolveOptions
	log    *slog.Logger
}

// NewResolver creates a resolver that reads and updates store.
func NewResolver(store *idcache.Store, lookup Lookuper, opts ResolveOptions, log *slog.Logger) *Resolver {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Resolver{
		store:  store,
		lookup: lookup,
		opts:   opts,
		log:    log,
	}
}

// Resolve returns a copy of row with TmdbIdType, TmdbId and ImdbId set.
// Cache writes made here are visible to later rows of the same run.
func (r *Resolver) Resolve(ctx context.Context, row filmcsv.Row) (filmcsv.Row, Outcome) {
	film := FilmOf(row)
	key := KeyOf(row)

	var ids filmid.IDs
	var outcome Outcome

	hit, cached := r.store.Lookup(key)
	switch {
	case cached:
		ids = hit.IDs()
		outcome = OutcomeTrusted
		if !hit.Exact {
			r.log.Debug("cache hit by name and year", "name", film.Name, "year", film.Year, "cached_key", hit.Key)
		}
		if !ids.Complete() && !r.opts.Diary {
			r.log.Info("cache entry incomplete, looking up again", "name", film.Name, "year", film.Year, "cached", hit.Value)
			ids = r.lookup.Lookup(ctx, film)
			r.store.Put(key, ids)
			outcome = OutcomeRepaired
		}
	case !r.opts.Diary:
		ids = r.lookup.Lookup(ctx, film)
		r.store.Put(key, ids)
		outcome = OutcomeScraped
	default:
		outcome = OutcomeSkipped
	}

	out := row.Clone()
	if r.opts.RatingBase10 {
		if v, ok := out.Get(FieldRating); ok {
			if n, ok := v.Number(); ok && n != 0 {
				out.Set(FieldRating, filmcsv.NumberValue(n*2))
			}
		}
	}

	out.Set(FieldTmdbIDType, filmcsv.StringValue(ids.DisplayKind()))
	out.Set(FieldTmdbID, filmcsv.StringValue(ids.TmdbID))
	out.Set(FieldImdbID, filmcsv.StringValue(ids.ImdbID))
	return out, outcome
}

// FilmOf extracts the page to look up. The diary and watched exports use
// "Letterboxd URI"; list exports use "URL".
func FilmOf(row filmcsv.Row) filmid.Film {
	uri := row.Text(FieldURI)
	if uri == "" {
		uri = row.Text(FieldURL)
	}
	return filmid.Film{
		Name: row.Text(FieldName),
		Year: row.Text(FieldYear),
		URL:  uri,
	}
}

// KeyOf builds the cache key for a row. Missing or empty name and year
// render as "null", matching keys written by earlier versions of the tool.
func KeyOf(row filmcsv.Row) idcache.Key {
	film := FilmOf(row)
	return idcache.Key{
		Name:      keyPart(row, FieldName),
		Year:      keyPart(row, FieldYear),
		ShortCode: idcache.ShortCode(film.URL),
	}
}

func keyPart(row filmcsv.Row, field string) string {
	v, ok := row.Get(field)
	if !ok || v.IsNull() {
		return "null"
	}
	return v.String()
}
