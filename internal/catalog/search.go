package catalog

import (
	"sort"
	"strings"
)

// SearchResult is a catalog printing matched by name with its score.
type SearchResult struct {
	Card  Card `json:"card"`
	Score int  `json:"score"`
}

// SearchOptions configures name search.
type SearchOptions struct {
	// MaxResults limits the number of results (0 = unlimited).
	MaxResults int
	// MinScore drops results scoring below this threshold (0-100).
	MinScore int
}

// DefaultSearchOptions returns the options used by the add-cards flow.
func DefaultSearchOptions() SearchOptions {
	return SearchOptions{
		MaxResults: 50,
		MinScore:   60,
	}
}

// Search matches query against printing names, ignoring case.
// Results are ordered by score, then catalog order. An empty query matches
// nothing.
func (c *Catalog) Search(query string, options SearchOptions) []SearchResult {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return nil
	}

	type scored struct {
		SearchResult
		index int
	}

	var matches []scored
	for i, card := range c.cards {
		score := nameScore(query, strings.ToLower(card.Name))
		if score < options.MinScore {
			continue
		}
		matches = append(matches, scored{SearchResult{Card: card, Score: score}, i})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		return matches[i].index < matches[j].index
	})

	if options.MaxResults > 0 && len(matches) > options.MaxResults {
		matches = matches[:options.MaxResults]
	}

	results := make([]SearchResult, len(matches))
	for i, m := range matches {
		results[i] = m.SearchResult
	}
	return results
}

// nameScore rates how well query matches target (0-100). Both are lowercase.
func nameScore(query, target string) int {
	if query == target {
		return 100
	}
	if target == "" {
		return 0
	}

	q, t := []rune(query), []rune(target)

	if strings.HasPrefix(target, query) {
		return 90 + len(q)*10/len(t)
	}
	if strings.Contains(target, query) {
		return 80 + len(q)*10/len(t)
	}

	distance := levenshtein(q, t)
	longest := len(q)
	if len(t) > longest {
		longest = len(t)
	}
	return 100 - distance*100/longest
}

// levenshtein returns the edit distance between a and b.
func levenshtein(a, b []rune) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}

	return prev[len(b)]
}
