package extract

import (
	"regexp"

	"github.com/rcliao/chat-memory/internal/model"
)

// Rule binds a memory category to its detection patterns. Patterns run in
// slice order; first-person statements capture the fact in group 1.
type Rule struct {
	Category model.Category
	Patterns []*regexp.Regexp
}

// clause captures up to a sentence ender or the next coordinating
// conjunction, so one sentence can yield separate facts per clause.
const clause = `([^.!?]+?)(?:[.!?]| and |$)`

// DefaultRules returns the built-in extraction rules. All patterns are
// case-insensitive. Keyword-anchored captures run to the end of the
// sentence; the required keyword inside the group already bounds them.
func DefaultRules() []Rule {
	return []Rule{
		{
			Category: model.CategoryPreference,
			Patterns: []*regexp.Regexp{
				regexp.MustCompile(`(?i)I prefer ` + clause),
				regexp.MustCompile(`(?i)I like ` + clause),
				regexp.MustCompile(`(?i)I don't like ` + clause),
				regexp.MustCompile(`(?i)My preference is ` + clause),
				regexp.MustCompile(`(?i)I usually ` + clause),
				regexp.MustCompile(`(?i)I typically ` + clause),
				regexp.MustCompile(`(?i)I always ` + clause),
				regexp.MustCompile(`(?i)I never ` + clause),
			},
		},
		{
			Category: model.CategoryProfessional,
			Patterns: []*regexp.Regexp{
				regexp.MustCompile(`(?i)I work as ` + clause),
				regexp.MustCompile(`(?i)I'm a ([^.!?]*(?:developer|engineer|designer|manager|analyst|consultant|teacher|doctor|lawyer)[^.!?]*)`),
				regexp.MustCompile(`(?i)My job ` + clause),
				regexp.MustCompile(`(?i)At work ` + clause),
				regexp.MustCompile(`(?i)I'm working on ` + clause),
				regexp.MustCompile(`(?i)My company ` + clause),
				regexp.MustCompile(`(?i)I use ([^.!?]*(?:Python|JavaScript|React|Node|Java|C\+\+|SQL|AWS|Docker)[^.!?]*)`),
			},
		},
		{
			Category: model.CategoryPersonal,
			Patterns: []*regexp.Regexp{
				regexp.MustCompile(`(?i)I live in ` + clause),
				regexp.MustCompile(`(?i)I'm from ` + clause),
				regexp.MustCompile(`(?i)My name is ` + clause),
				regexp.MustCompile(`(?i)I have ([^.!?]*(?:children|kids|family|pets?|dogs?|cats?)[^.!?]*)`),
				regexp.MustCompile(`(?i)I'm ([^.!?]*(?:married|single|studying|learning)[^.!?]*)`),
				regexp.MustCompile(`(?i)I was born ` + clause),
				regexp.MustCompile(`(?i)I grew up ` + clause),
			},
		},
	}
}
