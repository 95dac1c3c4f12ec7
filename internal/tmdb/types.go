// Package tmdb provides a client for The Movie Database external id endpoints.
package tmdb

// ExternalIDs is the response of /3/{movie|tv}/{id}/external_ids.
type ExternalIDs struct {
	ID          int64  `json:"id"`
	IMDBID      string `json:"imdb_id"` // e.g., "tt0133093"; null decodes as ""
	TVDBID      int64  `json:"tvdb_id,omitempty"`
	WikidataID  string `json:"wikidata_id,omitempty"`
	FacebookID  string `json:"facebook_id,omitempty"`
	InstagramID string `json:"instagram_id,omitempty"`
}
