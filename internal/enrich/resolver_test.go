package enrich_test

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/vmunix/filmids/internal/enrich"
	"github.com/vmunix/filmids/internal/enrich/mocks"
	"github.com/vmunix/filmids/internal/filmcsv"
	"github.com/vmunix/filmids/internal/idcache"
	"github.com/vmunix/filmids/pkg/filmid"
)

// testLogger returns a discard logger for tests.
func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func loadStore(t *testing.T, content string) *idcache.Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cache.json")
	if content != "" {
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	store, err := idcache.Load(path, testLogger())
	require.NoError(t, err)
	return store
}

func filmRow(name string, year float64, url string) filmcsv.Row {
	r := filmcsv.NewRow()
	r.Set("Name", filmcsv.StringValue(name))
	r.Set("Year", filmcsv.NumberValue(year))
	r.Set("URL", filmcsv.StringValue(url))
	return r
}

var matrixIDs = filmid.IDs{Kind: "movie", TmdbID: "603", ImdbID: "tt0133093"}

func TestResolve_PrefixFallbackSkipsLookup(t *testing.T) {
	ctrl := gomock.NewController(t)
	lookup := mocks.NewMockLookuper(ctrl)
	// No EXPECT: any Lookup call fails the test.

	store := loadStore(t, `{"A|:|2000|:|": "movie|603|tt0133093"}`)
	r := enrich.NewResolver(store, lookup, enrich.ResolveOptions{}, testLogger())

	out, outcome := r.Resolve(context.Background(), filmRow("A", 2000, "https://x/abc123"))

	assert.Equal(t, enrich.OutcomeTrusted, outcome)
	assert.Equal(t, "Movie", out.Text("TmdbIdType"))
	assert.Equal(t, "603", out.Text("TmdbId"))
	assert.Equal(t, "tt0133093", out.Text("ImdbId"))
}

func TestResolve_ExactKeyUsesShortCode(t *testing.T) {
	ctrl := gomock.NewController(t)
	lookup := mocks.NewMockLookuper(ctrl)

	store := loadStore(t, `{
  "A|:|2000|:|": "tv|1|tt1",
  "A|:|2000|:|abc123": "movie|603|tt0133093"
}`)
	r := enrich.NewResolver(store, lookup, enrich.ResolveOptions{}, testLogger())

	out, _ := r.Resolve(context.Background(), filmRow("A", 2000, "https://boxd.it/abc123"))
	assert.Equal(t, "603", out.Text("TmdbId"))
}

func TestResolve_RepairsIncompleteEntry(t *testing.T) {
	ctrl := gomock.NewController(t)
	lookup := mocks.NewMockLookuper(ctrl)

	row := filmRow("A", 2000, "https://boxd.it/abc")
	lookup.EXPECT().
		Lookup(gomock.Any(), filmid.Film{Name: "A", Year: "2000", URL: "https://boxd.it/abc"}).
		Return(matrixIDs).
		Times(1)

	store := loadStore(t, `{"A|:|2000|:|abc": "movie||"}`)
	r := enrich.NewResolver(store, lookup, enrich.ResolveOptions{}, testLogger())

	out, outcome := r.Resolve(context.Background(), row)

	assert.Equal(t, enrich.OutcomeRepaired, outcome)
	assert.Equal(t, "tt0133093", out.Text("ImdbId"))

	hit, ok := store.Lookup(idcache.Key{Name: "A", Year: "2000", ShortCode: "abc"})
	require.True(t, ok)
	assert.Equal(t, "movie|603|tt0133093", hit.Value)
}

func TestResolve_RepairViaFallbackWritesExactKey(t *testing.T) {
	ctrl := gomock.NewController(t)
	lookup := mocks.NewMockLookuper(ctrl)
	lookup.EXPECT().Lookup(gomock.Any(), gomock.Any()).Return(matrixIDs)

	store := loadStore(t, `{"A|:|2000|:|": "||"}`)
	r := enrich.NewResolver(store, lookup, enrich.ResolveOptions{}, testLogger())

	_, outcome := r.Resolve(context.Background(), filmRow("A", 2000, "https://boxd.it/new"))
	assert.Equal(t, enrich.OutcomeRepaired, outcome)

	entries := store.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, idcache.Entry{Key: "A|:|2000|:|", Value: "||"}, entries[0])
	assert.Equal(t, idcache.Entry{Key: "A|:|2000|:|new", Value: "movie|603|tt0133093"}, entries[1])
}

func TestResolve_MissScrapesAndCachesEvenEmpty(t *testing.T) {
	ctrl := gomock.NewController(t)
	lookup := mocks.NewMockLookuper(ctrl)
	lookup.EXPECT().Lookup(gomock.Any(), gomock.Any()).Return(filmid.IDs{})

	store := loadStore(t, "")
	r := enrich.NewResolver(store, lookup, enrich.ResolveOptions{}, testLogger())

	out, outcome := r.Resolve(context.Background(), filmRow("Obscure", 1931, "https://boxd.it/zz"))

	assert.Equal(t, enrich.OutcomeScraped, outcome)
	assert.Equal(t, "", out.Text("TmdbId"))

	hit, ok := store.Lookup(idcache.Key{Name: "Obscure", Year: "1931", ShortCode: "zz"})
	require.True(t, ok)
	assert.Equal(t, "||", hit.Value)
}

func TestResolve_DiaryMissSkipsLookup(t *testing.T) {
	ctrl := gomock.NewController(t)
	lookup := mocks.NewMockLookuper(ctrl)

	store := loadStore(t, "")
	r := enrich.NewResolver(store, lookup, enrich.ResolveOptions{Diary: true}, testLogger())

	out, outcome := r.Resolve(context.Background(), filmRow("A", 2000, "https://boxd.it/abc"))

	assert.Equal(t, enrich.OutcomeSkipped, outcome)
	assert.Equal(t, "", out.Text("TmdbId"))
	assert.Equal(t, "", out.Text("ImdbId"))
	assert.Equal(t, 0, store.Len(), "diary mode must not write the cache")
}

func TestResolve_DiaryTrustsIncompleteEntry(t *testing.T) {
	ctrl := gomock.NewController(t)
	lookup := mocks.NewMockLookuper(ctrl)

	store := loadStore(t, `{"A|:|2000|:|abc": "movie|603|"}`)
	r := enrich.NewResolver(store, lookup, enrich.ResolveOptions{Diary: true}, testLogger())

	out, outcome := r.Resolve(context.Background(), filmRow("A", 2000, "https://boxd.it/abc"))

	assert.Equal(t, enrich.OutcomeTrusted, outcome)
	assert.Equal(t, "603", out.Text("TmdbId"))
	assert.Equal(t, "", out.Text("ImdbId"))
}

func TestResolve_UnresolvedKindDisplaysAsTVSeries(t *testing.T) {
	// Known quirk: a failed lookup has no kind, and anything that is not a
	// movie is labelled "TV Series".
	ctrl := gomock.NewController(t)
	lookup := mocks.NewMockLookuper(ctrl)
	lookup.EXPECT().Lookup(gomock.Any(), gomock.Any()).Return(filmid.IDs{})

	r := enrich.NewResolver(loadStore(t, ""), lookup, enrich.ResolveOptions{}, testLogger())
	out, _ := r.Resolve(context.Background(), filmRow("A", 2000, ""))

	assert.Equal(t, "TV Series", out.Text("TmdbIdType"))
}

func TestResolve_RatingBase10(t *testing.T) {
	tests := []struct {
		name   string
		rating filmcsv.Value
		flag   bool
		want   string
	}{
		{"doubles whole", filmcsv.NumberValue(3), true, "6"},
		{"doubles half", filmcsv.NumberValue(3.5), true, "7"},
		{"flag off", filmcsv.NumberValue(3), false, "3"},
		{"null untouched", filmcsv.NullValue(), true, ""},
		{"string untouched", filmcsv.StringValue("n/a"), true, "n/a"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			lookup := mocks.NewMockLookuper(ctrl)

			store := loadStore(t, `{"A|:|2000|:|": "movie|603|tt0133093"}`)
			r := enrich.NewResolver(store, lookup, enrich.ResolveOptions{RatingBase10: tt.flag}, testLogger())

			row := filmRow("A", 2000, "")
			row.Set("Rating", tt.rating)

			out, _ := r.Resolve(context.Background(), row)
			assert.Equal(t, tt.want, out.Text("Rating"))
		})
	}
}

func TestResolve_MergeOverwritesExistingColumns(t *testing.T) {
	ctrl := gomock.NewController(t)
	lookup := mocks.NewMockLookuper(ctrl)

	store := loadStore(t, `{"A|:|2000|:|": "movie|603|tt0133093"}`)
	r := enrich.NewResolver(store, lookup, enrich.ResolveOptions{}, testLogger())

	row := filmRow("A", 2000, "")
	row.Set("ImdbId", filmcsv.StringValue("stale"))
	row.Set("Notes", filmcsv.StringValue("kept"))

	out, _ := r.Resolve(context.Background(), row)

	assert.Equal(t, []string{"Name", "Year", "URL", "ImdbId", "Notes", "TmdbIdType", "TmdbId"}, out.Fields())
	assert.Equal(t, "tt0133093", out.Text("ImdbId"))
	assert.Equal(t, "stale", row.Text("ImdbId"), "input row must not be mutated")
}

func TestResolve_CacheWritesVisibleToLaterRows(t *testing.T) {
	ctrl := gomock.NewController(t)
	lookup := mocks.NewMockLookuper(ctrl)
	lookup.EXPECT().Lookup(gomock.Any(), gomock.Any()).Return(matrixIDs).Times(1)

	r := enrich.NewResolver(loadStore(t, ""), lookup, enrich.ResolveOptions{}, testLogger())

	_, first := r.Resolve(context.Background(), filmRow("A", 2000, "https://boxd.it/abc"))
	out, second := r.Resolve(context.Background(), filmRow("A", 2000, "https://boxd.it/other"))

	assert.Equal(t, enrich.OutcomeScraped, first)
	assert.Equal(t, enrich.OutcomeTrusted, second)
	assert.Equal(t, "603", out.Text("TmdbId"))
}

func TestFilmOf_PrefersLetterboxdURI(t *testing.T) {
	row := filmcsv.NewRow()
	row.Set("Name", filmcsv.StringValue("Heat"))
	row.Set("Year", filmcsv.NumberValue(1995))
	row.Set("Letterboxd URI", filmcsv.StringValue("https://boxd.it/2bf0"))
	row.Set("URL", filmcsv.StringValue("https://letterboxd.com/film/heat-1995/"))

	assert.Equal(t, filmid.Film{Name: "Heat", Year: "1995", URL: "https://boxd.it/2bf0"}, enrich.FilmOf(row))
	assert.Equal(t, idcache.Key{Name: "Heat", Year: "1995", ShortCode: "2bf0"}, enrich.KeyOf(row))
}

func TestKeyOf_NullParts(t *testing.T) {
	row := filmcsv.NewRow()
	row.Set("Name", filmcsv.StringValue("Untitled"))
	row.Set("Year", filmcsv.NullValue())

	assert.Equal(t, "Untitled|:|null|:|", enrich.KeyOf(row).String())
}

func TestOutcomeString(t *testing.T) {
	assert.Equal(t, "cached", enrich.OutcomeTrusted.String())
	assert.Equal(t, "repaired", enrich.OutcomeRepaired.String())
	assert.Equal(t, "scraped", enrich.OutcomeScraped.String())
	assert.Equal(t, "skipped", enrich.OutcomeSkipped.String())
}
