package changelog

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Headings maps category tokens to section titles.
// It is a plain value: callers own their copy and may pass different
// vocabularies to concurrent renders.
type Headings map[string]string

// DefaultHeadings returns a fresh copy of the built-in vocabulary.
func DefaultHeadings() Headings {
	return Headings{
		"build":    "Build System Changes",
		"chore":    "Chores",
		"ci":       "Change related to CI",
		"docs":     "Changes to Documentation",
		"feat":     "New Features",
		"fix":      "Bug Fixes",
		"perf":     "Performance Enhancements",
		"refactor": "Code Refactor",
		"style":    "Code Style Changes",
		"test":     "Testing Changes",
	}
}

// Title returns the section title for a category. Lookups are case-sensitive;
// unknown categories fall back to the title-cased token.
func (h Headings) Title(category string) string {
	if title, ok := h[category]; ok {
		return title
	}
	return titleWords(category)
}

// titleWords title-cases every run of letters, so digits and underscores
// start a new word: "foo_bar" becomes "Foo_Bar" and "v2fix" becomes "V2Fix".
func titleWords(s string) string {
	caser := cases.Title(language.Und)

	var b strings.Builder
	b.Grow(len(s))
	start := -1
	for i, r := range s {
		switch {
		case unicode.IsLetter(r) && start < 0:
			start = i
		case !unicode.IsLetter(r) && start >= 0:
			b.WriteString(caser.String(s[start:i]))
			start = -1
			fallthrough
		case !unicode.IsLetter(r):
			b.WriteRune(r)
		}
	}
	if start >= 0 {
		b.WriteString(caser.String(s[start:]))
	}
	return b.String()
}

// With returns a copy of h with overrides applied on top.
func (h Headings) With(overrides map[string]string) Headings {
	out := make(Headings, len(h)+len(overrides))
	for k, v := range h {
		out[k] = v
	}
	for k, v := range overrides {
		out[k] = v
	}
	return out
}
