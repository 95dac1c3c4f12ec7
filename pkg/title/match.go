package title

import (
	"sort"
	"strings"

	"github.com/hbollon/go-edlib"
)

// Confidence buckets a similarity score.
type Confidence int

const (
	ConfidenceNone   Confidence = iota // < 0.70
	ConfidenceLow                      // >= 0.70
	ConfidenceMedium                   // >= 0.85
	ConfidenceHigh                     // >= 0.95
)

func (c Confidence) String() string {
	switch c {
	case ConfidenceHigh:
		return "high"
	case ConfidenceMedium:
		return "medium"
	case ConfidenceLow:
		return "low"
	default:
		return "none"
	}
}

func confidenceFor(score float64) Confidence {
	switch {
	case score >= 0.95:
		return ConfidenceHigh
	case score >= 0.85:
		return ConfidenceMedium
	case score >= 0.70:
		return ConfidenceLow
	default:
		return ConfidenceNone
	}
}

// Match is one ranked candidate.
type Match struct {
	Index      int // position in the candidate slice
	Title      string
	Score      float64
	Confidence Confidence
}

// Similarity returns the Jaro-Winkler similarity of two cleaned titles,
// between 0 and 1. A query that is a whole-word prefix of the candidate
// ("alien" vs "alien 3") scores at least 0.85.
func Similarity(a, b string) float64 {
	ca, cb := Clean(a), Clean(b)
	if ca == "" || cb == "" {
		return 0
	}
	if ca == cb {
		return 1
	}
	score := float64(edlib.JaroWinklerSimilarity(ca, cb))
	if strings.HasPrefix(cb, ca+" ") {
		score = max(score, 0.85)
	}
	return score
}

// Rank scores every candidate against query and returns those with at least
// low confidence, best first. Ties keep candidate order.
func Rank(query string, candidates []string) []Match {
	var out []Match
	for i, c := range candidates {
		score := Similarity(query, c)
		conf := confidenceFor(score)
		if conf == ConfidenceNone {
			continue
		}
		out = append(out, Match{Index: i, Title: c, Score: score, Confidence: conf})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score > out[j].Score
	})
	return out
}
