package idcache

import (
	"regexp"
	"strings"
)

const keySep = "|:|"

var shortCodePattern = regexp.MustCompile(`boxd\.it/([a-zA-Z0-9]+)`)

// Key identifies a film in the cache: name, year and the boxd.it short code
// when the export carried one.
type Key struct {
	Name      string
	Year      string
	ShortCode string
}

// String returns the stored form "name|:|year|:|shortCode".
func (k Key) String() string {
	return k.Prefix() + k.ShortCode
}

// Prefix returns "name|:|year|:|", shared by every short code of the film.
func (k Key) Prefix() string {
	return k.Name + keySep + k.Year + keySep
}

// ParseKey splits a stored key. Keys with fewer than three parts are
// reported as malformed.
func ParseKey(s string) (Key, bool) {
	parts := strings.SplitN(s, keySep, 3)
	if len(parts) != 3 {
		return Key{Name: s}, false
	}
	return Key{Name: parts[0], Year: parts[1], ShortCode: parts[2]}, true
}

// ShortCode extracts the code from a boxd.it link, or "" if there is none.
func ShortCode(uri string) string {
	m := shortCodePattern.FindStringSubmatch(uri)
	if m == nil {
		return ""
	}
	return m[1]
}
