// Package extract finds personal-fact candidates in message text using
// category-tagged pattern rules, and scores them.
package extract

import (
	"strings"

	"github.com/rcliao/chat-memory/internal/model"
)

// minCaptureLen is the shortest trimmed capture that produces a candidate.
const minCaptureLen = 4

// Candidate is an unpersisted, unvalidated extraction result pending
// deduplication.
type Candidate struct {
	Category model.Category
	RawMatch string
	Capture  string
}

// Extractor applies extraction rules to normalized text.
type Extractor struct {
	rules []Rule
}

// New creates an extractor. Nil or empty rules fall back to DefaultRules.
func New(rules []Rule) *Extractor {
	if len(rules) == 0 {
		rules = DefaultRules()
	}
	return &Extractor{rules: rules}
}

// Extract emits one candidate per pattern match whose capture group is at
// least minCaptureLen trimmed characters. Emission order is rule order,
// then pattern order, then left-to-right in the text; downstream
// deduplication keeps the first occurrence.
func (e *Extractor) Extract(text string) []Candidate {
	var candidates []Candidate

	for _, rule := range e.rules {
		for _, pattern := range rule.Patterns {
			for _, loc := range pattern.FindAllStringSubmatchIndex(text, -1) {
				if len(loc) < 4 || loc[2] < 0 {
					continue
				}
				capture := text[loc[2]:loc[3]]
				if len(strings.TrimSpace(capture)) < minCaptureLen {
					continue
				}
				candidates = append(candidates, Candidate{
					Category: rule.Category,
					// The raw match stops at the capture end so clause
					// terminators never leak into stored matches.
					RawMatch: text[loc[0]:loc[3]],
					Capture:  capture,
				})
			}
		}
	}

	return candidates
}

// FormatContent turns a candidate into its display sentence using the
// per-category phrasing rule.
func FormatContent(c Candidate) string {
	capture := strings.Join(strings.Fields(c.Capture), " ")
	raw := strings.ToLower(c.RawMatch)

	switch c.Category {
	case model.CategoryPreference:
		if strings.Contains(raw, "don't") || strings.Contains(raw, "never") {
			return "User dislikes " + capture
		}
		return "User prefers " + capture
	case model.CategoryProfessional:
		if strings.Contains(raw, "work as") || strings.Contains(raw, "i'm a") {
			return "User works as " + capture
		}
		return "Professional context: " + capture
	case model.CategoryPersonal:
		if strings.Contains(raw, "live") || strings.Contains(raw, "from") {
			return "User location: " + capture
		}
		return "Personal info: " + capture
	}
	return capture
}

// Score assigns a heuristic confidence to a raw match. Base 0.5, plus
// 0.3 for emphatic words, 0.2 for preference words, 0.1 for longer
// matches, capped at 1.0.
func Score(rawMatch string) float64 {
	lower := strings.ToLower(rawMatch)
	confidence := 0.5

	if strings.Contains(lower, "always") || strings.Contains(lower, "never") {
		confidence += 0.3
	}
	if strings.Contains(lower, "prefer") || strings.Contains(lower, "like") {
		confidence += 0.2
	}
	if len(rawMatch) > 20 {
		confidence += 0.1
	}

	return model.ClampConfidence(confidence)
}
