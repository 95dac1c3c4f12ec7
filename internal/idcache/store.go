// Package idcache persists resolved film identifiers in a flat JSON file.
//
// The file is a single JSON object mapping "name|:|year|:|shortCode" to
// "kind|tmdbId|imdbId". Key order is kept across load and save so the file
// diffs cleanly between runs.
package idcache

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/vmunix/filmids/internal/fileutil"
	"github.com/vmunix/filmids/pkg/filmid"
	"github.com/vmunix/filmids/pkg/title"
)

// ErrInvalidCache is returned when the cache file is not a JSON object of
// string values.
var ErrInvalidCache = errors.New("invalid cache file")

// Entry is one stored mapping.
type Entry struct {
	Key   string
	Value string
}

// IDs parses the stored value.
func (e Entry) IDs() filmid.IDs {
	return filmid.Parse(e.Value)
}

// Hit is a successful lookup.
type Hit struct {
	Entry
	// Exact is false when the entry was found through the name/year prefix.
	Exact bool
}

// Store is an in-memory view of the cache file. It is not safe for
// concurrent use.
type Store struct {
	path   string
	keys   []string
	values map[string]string
	log    *slog.Logger
}

// Load reads the cache at path. A missing file yields an empty store and
// creates the parent directory so a later Persist succeeds.
func Load(path string, log *slog.Logger) (*Store, error) {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	s := &Store{
		path:   path,
		values: make(map[string]string),
		log:    log,
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read cache file: %w", err)
		}
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create cache directory: %w", err)
		}
		log.Debug("cache file not found, starting empty", "path", path)
		return s, nil
	}

	if len(bytes.TrimSpace(data)) == 0 {
		return s, nil
	}
	if err := s.decode(data); err != nil {
		return nil, err
	}

	log.Debug("loaded id cache", "path", path, "entries", len(s.keys))
	return s, nil
}

// decode reads a JSON object token by token to keep key order.
func (s *Store) decode(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidCache, err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("%w: expected object", ErrInvalidCache)
	}

	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidCache, err)
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("%w: unexpected token %v", ErrInvalidCache, tok)
		}
		var value string
		if err := dec.Decode(&value); err != nil {
			return fmt.Errorf("%w: value for %q: %v", ErrInvalidCache, key, err)
		}
		s.set(key, value)
	}

	if _, err := dec.Token(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidCache, err)
	}
	return nil
}

// Path returns the backing file path.
func (s *Store) Path() string { return s.path }

// Len returns the number of entries.
func (s *Store) Len() int { return len(s.keys) }

// Lookup returns the entry stored under k. When there is none it falls back
// to the first entry, in file order, with the same name and year, so entries
// written before the short code was known still match.
func (s *Store) Lookup(k Key) (Hit, bool) {
	exact := k.String()
	if v, ok := s.values[exact]; ok {
		return Hit{Entry: Entry{Key: exact, Value: v}, Exact: true}, true
	}

	prefix := k.Prefix()
	for _, key := range s.keys {
		if strings.HasPrefix(key, prefix) {
			return Hit{Entry: Entry{Key: key, Value: s.values[key]}}, true
		}
	}
	return Hit{}, false
}

// Put stores ids under the exact key, overwriting any previous value.
func (s *Store) Put(k Key, ids filmid.IDs) {
	s.set(k.String(), ids.String())
}

func (s *Store) set(key, value string) {
	if _, ok := s.values[key]; !ok {
		s.keys = append(s.keys, key)
	}
	s.values[key] = value
}

// Entries returns all entries in file order.
func (s *Store) Entries() []Entry {
	out := make([]Entry, len(s.keys))
	for i, key := range s.keys {
		out[i] = Entry{Key: key, Value: s.values[key]}
	}
	return out
}

// SearchResult is an entry matched by film name.
type SearchResult struct {
	Entry
	Score      float64
	Confidence title.Confidence
}

// Search ranks entries by how closely their film name matches query.
// limit <= 0 returns every match.
func (s *Store) Search(query string, limit int) []SearchResult {
	entries := s.Entries()
	names := make([]string, len(entries))
	for i, e := range entries {
		k, _ := ParseKey(e.Key)
		names[i] = k.Name
	}

	var out []SearchResult
	for _, m := range title.Rank(query, names) {
		out = append(out, SearchResult{
			Entry:      entries[m.Index],
			Score:      m.Score,
			Confidence: m.Confidence,
		})
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}

// Persist writes the cache as indented JSON, replacing the file atomically.
func (s *Store) Persist() error {
	data, err := s.encode()
	if err != nil {
		return fmt.Errorf("marshal cache: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create cache directory: %w", err)
	}
	if err := fileutil.WriteFileAtomic(s.path, data, 0o644); err != nil {
		return err
	}

	s.log.Debug("persisted id cache", "path", s.path, "entries", len(s.keys))
	return nil
}

func (s *Store) encode() ([]byte, error) {
	if len(s.keys) == 0 {
		return []byte("{}"), nil
	}

	var buf bytes.Buffer
	buf.WriteString("{\n")
	for i, key := range s.keys {
		k, err := jsonString(key)
		if err != nil {
			return nil, err
		}
		v, err := jsonString(s.values[key])
		if err != nil {
			return nil, err
		}
		buf.WriteString("  ")
		buf.WriteString(k)
		buf.WriteString(": ")
		buf.WriteString(v)
		if i < len(s.keys)-1 {
			buf.WriteByte(',')
		}
		buf.WriteByte('\n')
	}
	buf.WriteString("}")
	return buf.Bytes(), nil
}

// jsonString quotes s without HTML escaping, so titles like "Fast & Furious"
// stay readable in the file.
func jsonString(s string) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return "", err
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}
