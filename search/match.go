// Package search scores contributors against free-text queries. Matching is
// case-insensitive and tiered: a query that prefixes a field outranks one that
// merely appears inside it, which in turn outranks a scattered-subsequence hit.
package search

import (
	"strings"

	"github.com/TFMV/cohortviz/models"
)

// Score tiers. A prefix hit always beats a substring hit, which always beats
// a subsequence hit, regardless of which field produced it.
const (
	ScorePrefix      = 100
	ScoreSubstring   = 50
	ScoreSubsequence = 25
	ScoreNone        = 0
)

// FuzzyMatch reports whether every rune of query appears in text in order,
// ignoring case. An empty query matches everything.
func FuzzyMatch(text, query string) bool {
	text = strings.ToLower(text)
	want := []rune(strings.ToLower(query))

	i := 0
	for _, r := range text {
		if i >= len(want) {
			break
		}
		if r == want[i] {
			i++
		}
	}
	return i >= len(want)
}

// Score rates how well query matches text on the tier ladder. Case is
// ignored. An empty query scores zero; callers treat that as "not filtering"
// rather than "no match".
func Score(text, query string) int {
	if query == "" {
		return ScoreNone
	}
	text = strings.ToLower(text)
	query = strings.ToLower(query)

	switch {
	case strings.HasPrefix(text, query):
		return ScorePrefix
	case strings.Contains(text, query):
		return ScoreSubstring
	case FuzzyMatch(text, query):
		return ScoreSubsequence
	default:
		return ScoreNone
	}
}

// EffectiveScore rates a contributor by the better of their name and cohort
// label scores, so "2020" surfaces an entire cohort while "alice" surfaces
// one person. An absent graduation year contributes nothing; the grouping
// sentinel is never searchable.
func EffectiveScore(c *models.Contributor, query string) int {
	name := Score(c.Name, query)
	label := Score(c.GraduationYear, query)
	return max(name, label)
}

// Result is the outcome of applying a query to a roster.
type Result struct {
	// Filtering is false when the query was empty: every contributor
	// matched and Scores carries no entries.
	Filtering bool
	// Matched holds the slugs whose effective score was positive.
	Matched map[string]bool
	// Scores maps slug to effective score for matched contributors only.
	Scores map[string]int
	// Best is the slug with the highest effective score, earliest roster
	// position winning ties. Empty when nothing matched or not filtering.
	Best string
}

// Apply scores every contributor against query. Leading and trailing
// whitespace on the query is ignored.
func Apply(contributors []models.Contributor, query string) Result {
	query = strings.TrimSpace(query)

	res := Result{
		Matched: make(map[string]bool, len(contributors)),
		Scores:  make(map[string]int),
	}
	if query == "" {
		for i := range contributors {
			res.Matched[contributors[i].Slug] = true
		}
		return res
	}

	res.Filtering = true
	bestScore := ScoreNone
	for i := range contributors {
		score := EffectiveScore(&contributors[i], query)
		if score == ScoreNone {
			continue
		}
		res.Matched[contributors[i].Slug] = true
		res.Scores[contributors[i].Slug] = score
		if score > bestScore {
			bestScore = score
			res.Best = contributors[i].Slug
		}
	}
	return res
}
