// Package normalize strips lightweight markup from message text before
// pattern matching.
package normalize

import "regexp"

// rule is a single replacement applied in order.
type rule struct {
	re   *regexp.Regexp
	repl string
}

// Patterns are applied top to bottom, so the double-delimiter forms must
// come before their single-delimiter counterparts.
var rules = []rule{
	{regexp.MustCompile(`\*\*(.*?)\*\*`), "$1"},           // bold
	{regexp.MustCompile(`__(.*?)__`), "$1"},               // bold (underscore)
	{regexp.MustCompile(`\*(.*?)\*`), "$1"},               // italic
	{regexp.MustCompile(`_(.*?)_`), "$1"},                 // italic (underscore)
	{regexp.MustCompile(`~~(.*?)~~`), "$1"},               // strikethrough
	{regexp.MustCompile("`(.*?)`"), "$1"},                 // inline code
	{regexp.MustCompile(`(?m)^\s*>\s+`), ""},              // block quote marker
	{regexp.MustCompile(`(?m)^\s*#{1,6}\s+`), ""},         // heading marker
	{regexp.MustCompile(`!?\[[^\]]*\]\([^)]*\)`), ""},     // links and images
	{regexp.MustCompile(`(?m)^\s*([-*]|\d+\.)\s+`), ""},   // list bullets
	{regexp.MustCompile(`(?m)^\|[^|]*\|`), ""},            // table row leading pipes
}

// Clean returns text with lightweight markup removed.
func Clean(text string) string {
	for _, r := range rules {
		text = r.re.ReplaceAllString(text, r.repl)
	}
	return text
}
