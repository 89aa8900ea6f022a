package changelog

import "regexp"

// headerPattern matches "<category>(<scope>): <description>".
//
// The category is a run of letters, digits or underscores. The scope is an
// optional, non-empty, greedy parenthesized run. The description is the rest
// of the header's first line after the colon and any following whitespace,
// Unicode spaces included.
var headerPattern = regexp.MustCompile(`^([\p{L}\p{N}_]+)(\(.+\))?:[\s\v\x{1c}-\x{1f}\x{85}\p{Z}]*(.*)`)

// Classification is the category, scope and summary extracted from a header.
// An empty Scope means the header carried no parenthesized scope.
type Classification struct {
	Category string
	Scope    string
	Summary  string
}

// Classify extracts the classification from a commit header.
// It returns false when the header does not start with a colon-delimited
// category prefix; the zero Classification is returned in that case.
// Category and summary are preserved exactly as captured.
func Classify(header string) (Classification, bool) {
	m := headerPattern.FindStringSubmatch(header)
	if m == nil {
		return Classification{}, false
	}

	scope := m[2]
	if scope != "" {
		scope = scope[1 : len(scope)-1]
	}

	return Classification{
		Category: m[1],
		Scope:    scope,
		Summary:  m[3],
	}, true
}
