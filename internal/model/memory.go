// Package model defines the core memory data types.
package model

import (
	"math/rand"
	"time"

	"github.com/oklog/ulid/v2"
)

// Category classifies a memory.
type Category string

const (
	CategoryPreference   Category = "PREFERENCE"
	CategoryProfessional Category = "PROFESSIONAL"
	CategoryPersonal     Category = "PERSONAL"
)

// ValidCategories are the allowed memory categories.
var ValidCategories = map[Category]bool{
	CategoryPreference:   true,
	CategoryProfessional: true,
	CategoryPersonal:     true,
}

// SourceManual is the source sentinel for manually seeded memories.
const SourceManual = "manual"

// Memory represents a stored memory entry: a short natural-language fact
// inferred from the user's own messages. Immutable once created, except
// for deletion.
type Memory struct {
	ID          string    `json:"id"`
	Content     string    `json:"content"`
	Category    Category  `json:"category"`
	Source      string    `json:"source"`
	SourceTitle string    `json:"source_title,omitempty"`
	Confidence  float64   `json:"confidence"`
	CreatedAt   time.Time `json:"created_at"`
	RawMatch    string    `json:"raw_match,omitempty"`
}

var entropy = rand.New(rand.NewSource(time.Now().UnixNano()))

// NewID generates a fresh memory ID.
func NewID() string {
	return ulid.MustNew(ulid.Timestamp(time.Now()), entropy).String()
}

// ClampConfidence bounds a confidence value to [0,1].
func ClampConfidence(c float64) float64 {
	if c < 0 {
		return 0
	}
	if c > 1 {
		return 1
	}
	return c
}
