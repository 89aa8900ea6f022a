package changelog

import (
	"errors"
	"fmt"
	"sort"
)

// ErrNoReleases is returned by Partition when there are no tag markers.
var ErrNoReleases = errors.New("cannot generate changelog from a repository with no tags")

// Result is the outcome of partitioning a commit history.
type Result struct {
	// Releases is in the order the tag markers were supplied.
	Releases []*Release
	// Chronological holds the same releases sorted by ReleasedAt, oldest first.
	// This is the order that defines bucket boundaries.
	Chronological []*Release
	Unreleased    *Unreleased
	// Excluded counts candidates dropped because they were uncategorized.
	Excluded int
}

// Partition assigns every categorized commit to exactly one release, or to the
// unreleased bucket when it was authored after the most recent release.
//
// Each tag's target commit is a candidate too, so a tagged commit carrying a
// category lands in its own release. Targets already present in commits (by
// hash) are not added twice.
//
// A release owns the commits with prev.ReleasedAt < AuthoredAt <= ReleasedAt;
// the oldest release has no lower bound.
func Partition(commits []*Commit, markers []TagMarker) (*Result, error) {
	if len(markers) == 0 {
		return nil, ErrNoReleases
	}

	releases := make([]*Release, len(markers))
	for i, m := range markers {
		if m.Target == nil {
			return nil, fmt.Errorf("tag %q has no target commit", m.Name)
		}
		releases[i] = newRelease(m)
	}

	candidates, excluded := collectCandidates(commits, markers)

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].AuthoredAt.Before(candidates[j].AuthoredAt)
	})

	chronological := make([]*Release, len(releases))
	copy(chronological, releases)
	sort.SliceStable(chronological, func(i, j int) bool {
		return chronological[i].ReleasedAt.Before(chronological[j].ReleasedAt)
	})

	// Candidates are sorted, so each release takes a contiguous run.
	next := 0
	for _, r := range chronological {
		for next < len(candidates) && !candidates[next].AuthoredAt.After(r.ReleasedAt) {
			r.add(candidates[next])
			next++
		}
	}

	return &Result{
		Releases:      releases,
		Chronological: chronological,
		Unreleased:    newUnreleased(candidates[next:]),
		Excluded:      excluded,
	}, nil
}

// collectCandidates merges commits and tag targets into one pool and drops
// uncategorized entries. It returns the pool and the number of dropped entries.
func collectCandidates(commits []*Commit, markers []TagMarker) ([]*Commit, int) {
	seen := make(map[string]bool, len(commits)+len(markers))
	pool := make([]*Commit, 0, len(commits)+len(markers))
	excluded := 0

	admit := func(c *Commit) {
		if c == nil {
			return
		}
		if c.Hash != "" {
			if seen[c.Hash] {
				return
			}
			seen[c.Hash] = true
		}
		if !c.IsCategorized() {
			excluded++
			return
		}
		pool = append(pool, c)
	}

	for _, c := range commits {
		admit(c)
	}
	for _, m := range markers {
		admit(m.Target)
	}

	return pool, excluded
}
