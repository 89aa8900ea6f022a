package changelog

import (
	"fmt"
	"strings"
)

// ReleaseNotFoundError is returned when a requested release doesn't exist.
type ReleaseNotFoundError struct {
	Name      string
	Available []string
}

func (e *ReleaseNotFoundError) Error() string {
	return fmt.Sprintf("release %q not found (available: %s)",
		e.Name, strings.Join(e.Available, ", "))
}

// normalizeName strips a leading "v" or "V" so "v1.2.0" and "1.2.0" compare equal.
func normalizeName(name string) string {
	name = strings.TrimSpace(name)
	if len(name) > 1 && (name[0] == 'v' || name[0] == 'V') {
		return name[1:]
	}
	return name
}

// Find retrieves a release by tag name. A leading "v" is ignored on both
// sides, so "v0.6.0" finds a tag named "0.6.0" and vice versa.
func (r *Result) Find(name string) (*Release, error) {
	// Exact matches win over normalized ones.
	for _, rel := range r.Releases {
		if rel.Name == name {
			return rel, nil
		}
	}

	want := normalizeName(name)
	for _, rel := range r.Releases {
		if normalizeName(rel.Name) == want {
			return rel, nil
		}
	}

	return nil, &ReleaseNotFoundError{Name: name, Available: r.Names()}
}

// Names returns the release names in marker order.
func (r *Result) Names() []string {
	names := make([]string, len(r.Releases))
	for i, rel := range r.Releases {
		names[i] = rel.Name
	}
	return names
}

// Latest returns the most recent release by ReleasedAt.
func (r *Result) Latest() *Release {
	if len(r.Chronological) == 0 {
		return nil
	}
	return r.Chronological[len(r.Chronological)-1]
}

// Count returns the number of commits assigned to releases or the unreleased bucket.
func (r *Result) Count() int {
	n := 0
	for _, rel := range r.Releases {
		n += len(rel.Commits)
	}
	if r.Unreleased != nil {
		n += len(r.Unreleased.Commits)
	}
	return n
}
