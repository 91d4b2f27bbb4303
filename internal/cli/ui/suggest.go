package ui

import (
	"sort"
	"strings"
)

const (
	// maxSuggestionDistance is the largest edit distance still offered as a
	// "did you mean" suggestion
	maxSuggestionDistance = 3
	// maxSuggestions caps how many model names are offered
	maxSuggestions = 3
)

// SuggestModels returns the declared model names closest to a mistyped one,
// nearest first, for "did you mean" hints. Matching is case-insensitive so
// `post` still suggests `Post`; names further than three edits away are not
// offered.
//
// Example:
//
//	SuggestModels("Pst", []string{"Post", "User", "Product", "Comment"})
//	// Returns: ["Post", "User"]
func SuggestModels(typed string, declared []string) []string {
	type scored struct {
		name     string
		distance int
	}

	var close []scored
	for _, name := range declared {
		dist := LevenshteinDistance(strings.ToLower(typed), strings.ToLower(name))
		if dist <= maxSuggestionDistance {
			close = append(close, scored{name: name, distance: dist})
		}
	}

	sort.SliceStable(close, func(i, j int) bool {
		return close[i].distance < close[j].distance
	})

	out := make([]string, 0, maxSuggestions)
	for i := 0; i < len(close) && i < maxSuggestions; i++ {
		out = append(out, close[i].name)
	}
	return out
}

// LevenshteinDistance counts the single-character edits (insertions,
// deletions, substitutions) needed to turn one string into the other.
func LevenshteinDistance(s1, s2 string) int {
	if len(s1) == 0 {
		return len(s2)
	}
	if len(s2) == 0 {
		return len(s1)
	}

	// two-row dynamic programming table
	prev := make([]int, len(s2)+1)
	curr := make([]int, len(s2)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(s1); i++ {
		curr[0] = i
		for j := 1; j <= len(s2); j++ {
			cost := 1
			if s1[i-1] == s2[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}

	return prev[len(s2)]
}
