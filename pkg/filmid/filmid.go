// Package filmid defines the external identifiers resolved for a film.
package filmid

import "strings"

// Kind values as they appear in TMDB URLs.
const (
	KindMovie = "movie"
	KindTV    = "tv"
)

// Display labels written to the TmdbIdType column.
const (
	DisplayMovie    = "Movie"
	DisplayTVSeries = "TV Series"
)

// IDs is the identifier triple for one film. A failed lookup yields the
// zero value.
type IDs struct {
	Kind   string // "movie", "tv" or ""
	TmdbID string // e.g. "603"
	ImdbID string // e.g. "tt0133093"
}

// Parse reads the cache form "kind|tmdbId|imdbId". Missing parts are left
// empty and extra parts are ignored.
func Parse(s string) IDs {
	parts := strings.Split(s, "|")
	var ids IDs
	if len(parts) > 0 {
		ids.Kind = parts[0]
	}
	if len(parts) > 1 {
		ids.TmdbID = parts[1]
	}
	if len(parts) > 2 {
		ids.ImdbID = parts[2]
	}
	return ids
}

// String returns the cache form "kind|tmdbId|imdbId".
func (ids IDs) String() string {
	return ids.Kind + "|" + ids.TmdbID + "|" + ids.ImdbID
}

// IsZero reports whether nothing was resolved.
func (ids IDs) IsZero() bool {
	return ids == IDs{}
}

// Complete reports whether all three parts are present.
func (ids IDs) Complete() bool {
	return ids.Kind != "" && ids.TmdbID != "" && ids.ImdbID != ""
}

// DisplayKind maps the raw kind to the TmdbIdType label. Anything that is
// not "movie" is labelled "TV Series", including an unresolved kind.
func (ids IDs) DisplayKind() string {
	if ids.Kind == KindMovie {
		return DisplayMovie
	}
	return DisplayTVSeries
}

// Film identifies the page to resolve. Name and Year are only used for
// logging; URL is the film's Letterboxd page or boxd.it short link.
type Film struct {
	Name string
	Year string
	URL  string
}
