package idcache

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vmunix/filmids/pkg/filmid"
)

func writeCache(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cache.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_MissingFileCreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "cache")
	path := filepath.Join(dir, "cache.json")

	s, err := Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, s.Len())

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestLoad_EmptyFile(t *testing.T) {
	s, err := Load(writeCache(t, ""), nil)
	require.NoError(t, err)
	assert.Equal(t, 0, s.Len())
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"array", `["a"]`},
		{"number value", `{"A|:|2000|:|": 5}`},
		{"truncated", `{"A|:|2000|:|": "movie|1|tt1"`},
		{"garbage", `not json`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeCache(t, tt.content), nil)
			assert.ErrorIs(t, err, ErrInvalidCache)
		})
	}
}

func TestLoad_PreservesOrder(t *testing.T) {
	path := writeCache(t, `{
  "Zodiac|:|2007|:|1Bdm": "movie|1949|tt0443706",
  "Alien|:|1979|:|2aHi": "movie|348|tt0078748",
  "Heat|:|1995|:|2bf0": "movie|949|tt0113277"
}`)

	s, err := Load(path, nil)
	require.NoError(t, err)

	entries := s.Entries()
	require.Len(t, entries, 3)
	assert.Equal(t, "Zodiac|:|2007|:|1Bdm", entries[0].Key)
	assert.Equal(t, "Alien|:|1979|:|2aHi", entries[1].Key)
	assert.Equal(t, "Heat|:|1995|:|2bf0", entries[2].Key)
	assert.Equal(t, filmid.IDs{Kind: "movie", TmdbID: "348", ImdbID: "tt0078748"}, entries[1].IDs())
}

func TestLookup_Exact(t *testing.T) {
	s, err := Load(writeCache(t, `{"A|:|2000|:|abc": "movie|1|tt1", "A|:|2000|:|": "movie|2|tt2"}`), nil)
	require.NoError(t, err)

	hit, ok := s.Lookup(Key{Name: "A", Year: "2000", ShortCode: "abc"})
	require.True(t, ok)
	assert.True(t, hit.Exact)
	assert.Equal(t, "movie|1|tt1", hit.Value)
}

func TestLookup_PrefixFallback(t *testing.T) {
	s, err := Load(writeCache(t, `{"A|:|2000|:|": "movie|603|tt0133093"}`), nil)
	require.NoError(t, err)

	hit, ok := s.Lookup(Key{Name: "A", Year: "2000", ShortCode: "abc123"})
	require.True(t, ok)
	assert.False(t, hit.Exact)
	assert.Equal(t, "A|:|2000|:|", hit.Key)
	assert.Equal(t, "movie|603|tt0133093", hit.Value)
}

func TestLookup_PrefixFallbackFirstInFileOrder(t *testing.T) {
	s, err := Load(writeCache(t, `{
  "A|:|2000|:|zzz": "movie|1|tt1",
  "A|:|2000|:|aaa": "movie|2|tt2"
}`), nil)
	require.NoError(t, err)

	hit, ok := s.Lookup(Key{Name: "A", Year: "2000", ShortCode: "new"})
	require.True(t, ok)
	assert.Equal(t, "A|:|2000|:|zzz", hit.Key)
}

func TestLookup_PrefixRequiresSameYear(t *testing.T) {
	s, err := Load(writeCache(t, `{"A|:|2001|:|": "movie|1|tt1", "AB|:|2000|:|": "movie|2|tt2"}`), nil)
	require.NoError(t, err)

	_, ok := s.Lookup(Key{Name: "A", Year: "2000"})
	assert.False(t, ok)
}

func TestPut_OverwritesAndAppends(t *testing.T) {
	s, err := Load(writeCache(t, `{"A|:|2000|:|abc": "movie||"}`), nil)
	require.NoError(t, err)

	s.Put(Key{Name: "A", Year: "2000", ShortCode: "abc"}, filmid.IDs{Kind: "movie", TmdbID: "1", ImdbID: "tt1"})
	s.Put(Key{Name: "B", Year: "2001"}, filmid.IDs{})

	entries := s.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, Entry{Key: "A|:|2000|:|abc", Value: "movie|1|tt1"}, entries[0])
	assert.Equal(t, Entry{Key: "B|:|2001|:|", Value: "||"}, entries[1])

	hit, ok := s.Lookup(Key{Name: "B", Year: "2001"})
	require.True(t, ok)
	assert.True(t, hit.Exact)
}

func TestPersist_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache", "cache.json")
	s, err := Load(path, nil)
	require.NoError(t, err)

	s.Put(Key{Name: "Fast & Furious", Year: "2009", ShortCode: "1Xy"}, filmid.IDs{Kind: "movie", TmdbID: "13804", ImdbID: "tt1013752"})
	s.Put(Key{Name: "Alien", Year: "1979"}, filmid.IDs{Kind: "movie"})
	require.NoError(t, s.Persist())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, `{
  "Fast & Furious|:|2009|:|1Xy": "movie|13804|tt1013752",
  "Alien|:|1979|:|": "movie||"
}`, string(data))

	reloaded, err := Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, s.Entries(), reloaded.Entries())
}

func TestPersist_Empty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	s, err := Load(path, nil)
	require.NoError(t, err)
	require.NoError(t, s.Persist())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "{}", string(data))
}

func TestSearch(t *testing.T) {
	s, err := Load(writeCache(t, `{
  "Paddington|:|2014|:|7ZeK": "movie|116149|tt1109624",
  "Alien|:|1979|:|2aHi": "movie|348|tt0078748",
  "Aliens|:|1986|:|2a0e": "movie|679|tt0090605"
}`), nil)
	require.NoError(t, err)

	results := s.Search("alien", 0)
	require.Len(t, results, 2)
	assert.Equal(t, "Alien|:|1979|:|2aHi", results[0].Key)
	assert.Equal(t, "Aliens|:|1986|:|2a0e", results[1].Key)

	limited := s.Search("alien", 1)
	assert.Len(t, limited, 1)
}
