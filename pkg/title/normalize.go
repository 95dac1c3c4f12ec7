// Package title normalizes and compares film titles.
package title

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var leadingArticles = []string{"the ", "a ", "an "}

// Clean folds a title into a comparison form: lowercase, no accents, no
// punctuation, no leading article, single spaces.
//
//	Clean("Léon: The Professional") == "leon professional"
func Clean(s string) string {
	s = strings.ToLower(s)
	s = foldAccents(s)

	s = strings.ReplaceAll(s, "&", " and ")
	s = strings.ReplaceAll(s, "'", "")
	s = strings.ReplaceAll(s, "’", "")

	// Subtitles may start with their own article ("Alien: The Director's Cut").
	parts := strings.Split(s, ":")
	for i, p := range parts {
		parts[i] = trimArticle(p)
	}
	s = strings.Join(parts, " ")

	s = strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return r
		}
		return ' '
	}, s)

	return strings.Join(strings.Fields(s), " ")
}

func foldAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

func trimArticle(s string) string {
	s = strings.TrimSpace(s)
	for _, a := range leadingArticles {
		if rest, ok := strings.CutPrefix(s, a); ok {
			return rest
		}
	}
	return s
}
