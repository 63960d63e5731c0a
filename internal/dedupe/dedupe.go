// Package dedupe suppresses near-duplicate memory contents using word-set
// Jaccard similarity. The comparison is order-independent and
// case-insensitive.
package dedupe

import "strings"

// DefaultThreshold is the similarity above which a candidate is rejected.
const DefaultThreshold = 0.8

// Similarity computes the Jaccard similarity of the two strings' word
// sets: |intersection| / |union| over lowercased whitespace-split tokens.
func Similarity(a, b string) float64 {
	return jaccard(tokens(a), tokens(b))
}

func tokens(s string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, tok := range strings.Fields(strings.ToLower(s)) {
		set[tok] = struct{}{}
	}
	return set
}

// Index holds the contents already accepted, for duplicate checks.
// First-seen wins: an accepted content rejects later near-identical ones.
type Index struct {
	threshold float64
	seen      []map[string]struct{}
}

// NewIndex creates an index seeded with existing contents. A threshold
// of 0 falls back to DefaultThreshold.
func NewIndex(threshold float64, existing []string) *Index {
	if threshold == 0 {
		threshold = DefaultThreshold
	}
	idx := &Index{threshold: threshold}
	for _, c := range existing {
		idx.Add(c)
	}
	return idx
}

// IsDuplicate reports whether content is too similar to any indexed one.
func (i *Index) IsDuplicate(content string) bool {
	set := tokens(content)
	for _, other := range i.seen {
		if jaccard(set, other) > i.threshold {
			return true
		}
	}
	return false
}

// Add records an accepted content.
func (i *Index) Add(content string) {
	i.seen = append(i.seen, tokens(content))
}

func jaccard(a, b map[string]struct{}) float64 {
	union := len(a)
	intersection := 0
	for tok := range b {
		if _, ok := a[tok]; ok {
			intersection++
		} else {
			union++
		}
	}
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}
