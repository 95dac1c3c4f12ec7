package letterboxd

import (
	"io"
	"regexp"
	"slices"
	"strings"

	"golang.org/x/net/html"

	"github.com/vmunix/filmids/pkg/filmid"
)

var (
	tmdbHrefPattern = regexp.MustCompile(`/(movie|tv)/(\d+)/`)
	imdbHrefPattern = regexp.MustCompile(`/title/(tt\d+)/?`)
)

// Film pages link out through buttons like
//
//	<a href="https://www.themoviedb.org/movie/603/" class="micro-button track-event" data-track-action="TMDB">
const (
	buttonClass  = "micro-button"
	trackAttr    = "data-track-action"
	trackTMDB    = "TMDB"
	trackIMDb    = "IMDb"
	maxNodeDepth = 256
)

// parsePage extracts identifiers from a film page. Missing buttons leave the
// matching fields empty.
func parsePage(r io.Reader) (filmid.IDs, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return filmid.IDs{}, err
	}

	hrefs := make(map[string]string, 2)
	collectButtons(doc, hrefs, 0)

	var ids filmid.IDs
	if m := tmdbHrefPattern.FindStringSubmatch(hrefs[trackTMDB]); m != nil {
		ids.Kind = m[1]
		ids.TmdbID = m[2]
	}
	if m := imdbHrefPattern.FindStringSubmatch(hrefs[trackIMDb]); m != nil {
		ids.ImdbID = m[1]
	}
	return ids, nil
}

// collectButtons records the href of the first tracked micro-button for each
// action.
func collectButtons(n *html.Node, hrefs map[string]string, depth int) {
	if depth > maxNodeDepth {
		return
	}
	if n.Type == html.ElementNode && hasClass(n, buttonClass) {
		action := getAttr(n, trackAttr)
		if action == trackTMDB || action == trackIMDb {
			if _, seen := hrefs[action]; !seen {
				hrefs[action] = getAttr(n, "href")
			}
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectButtons(c, hrefs, depth+1)
	}
}

func hasClass(n *html.Node, class string) bool {
	return slices.Contains(strings.Fields(getAttr(n, "class")), class)
}

func getAttr(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}
