package dedupe

import (
	"math"
	"testing"
)

func TestSimilarity(t *testing.T) {
	tests := []struct {
		name     string
		a, b     string
		expected float64
		delta    float64
	}{
		{"identical", "user prefers quiet offices", "user prefers quiet offices", 1.0, 0.001},
		{"identical word sets reordered", "quiet offices user prefers", "user prefers quiet offices", 1.0, 0.001},
		{"case insensitive", "User Prefers TEA", "user prefers tea", 1.0, 0.001},
		{"disjoint", "alpha beta gamma", "delta epsilon zeta", 0.0, 0.001},
		{"half overlap", "a b c d", "c d e f", 0.333, 0.001},
		{"both empty", "", "", 0.0, 0.001},
		{"one empty", "words here", "", 0.0, 0.001},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Similarity(tt.a, tt.b)
			if math.Abs(got-tt.expected) > tt.delta {
				t.Errorf("Similarity(%q, %q) = %f, want %f (±%f)", tt.a, tt.b, got, tt.expected, tt.delta)
			}
		})
	}
}

func TestIndexRejectsIdenticalWordSets(t *testing.T) {
	idx := NewIndex(DefaultThreshold, []string{"User prefers quiet offices"})

	if !idx.IsDuplicate("user prefers quiet offices") {
		t.Error("expected identical word set to be rejected")
	}
	if !idx.IsDuplicate("offices quiet prefers user") {
		t.Error("expected reordered word set to be rejected")
	}
}

func TestIndexAcceptsDisjointContents(t *testing.T) {
	idx := NewIndex(DefaultThreshold, []string{"User prefers quiet offices"})

	if idx.IsDuplicate("Personal info: married with kids") {
		t.Error("expected disjoint content to be accepted")
	}
}

func TestIndexFirstSeenWins(t *testing.T) {
	idx := NewIndex(DefaultThreshold, nil)

	if idx.IsDuplicate("User prefers tea in the morning") {
		t.Error("empty index should accept everything")
	}
	idx.Add("User prefers tea in the morning")
	if !idx.IsDuplicate("the morning User prefers tea in") {
		t.Error("expected later near-identical content to be rejected")
	}
}

func TestIndexThresholdBoundary(t *testing.T) {
	// 4 of 5 shared tokens: similarity 4/6 = 0.667, below 0.8.
	idx := NewIndex(DefaultThreshold, []string{"a b c d e"})
	if idx.IsDuplicate("a b c d f") {
		t.Error("similarity at 0.667 should not be rejected at threshold 0.8")
	}

	// Exactly at the threshold must not reject (strictly-greater rule).
	idx = NewIndex(0.5, []string{"a b c d"})
	if idx.IsDuplicate("a b c d e f g h") {
		t.Error("similarity exactly at threshold should not be rejected")
	}
	if !idx.IsDuplicate("a b c d e") {
		t.Error("similarity above threshold should be rejected")
	}
}

func TestNewIndexZeroThresholdDefaults(t *testing.T) {
	idx := NewIndex(0, []string{"a b c d e"})
	// 0.667 similarity passes only if the default 0.8 threshold applied.
	if idx.IsDuplicate("a b c d f") {
		t.Error("zero threshold should fall back to the default, not reject everything")
	}
}
