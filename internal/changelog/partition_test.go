package changelog

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// at builds a timestamp from a small integer for readable fixtures.
func at(sec int64) time.Time {
	return time.Unix(sec, 0).UTC()
}

func commit(hash string, sec int64, message string) *Commit {
	return NewCommit(hash, at(sec), message)
}

func tag(name, hash string, sec int64, message string) TagMarker {
	return TagMarker{Name: name, Target: NewCommit(hash, at(sec), message)}
}

func summaries(commits []*Commit) []string {
	out := make([]string, len(commits))
	for i, c := range commits {
		out[i] = c.Summary
	}
	return out
}

func groupsAsMap(g *Groups) map[string][]string {
	out := make(map[string][]string)
	for _, cat := range g.Categories() {
		out[cat] = summaries(g.Get(cat))
	}
	return out
}

func TestPartition_Scenario(t *testing.T) {
	t.Parallel()

	commits := []*Commit{
		commit("a", 50, "feat: a"),
		commit("b", 150, "fix: b"),
		commit("c", 180, "chore: c"),
		commit("d", 250, "feat: d"),
		commit("x", 90, "not a commit"),
	}
	markers := []TagMarker{
		tag("v1", "t1", 100, "release v1"),
		tag("v2", "t2", 200, "release v2"),
	}

	res, err := Partition(commits, markers)
	require.NoError(t, err)
	require.Len(t, res.Releases, 2)

	v1, v2 := res.Releases[0], res.Releases[1]
	assert.Equal(t, "v1", v1.Name)
	assert.Equal(t, map[string][]string{"feat": {"a"}}, groupsAsMap(v1.Groups))
	assert.Equal(t, map[string][]string{"fix": {"b"}, "chore": {"c"}}, groupsAsMap(v2.Groups))
	assert.Equal(t, []string{"fix", "chore"}, v2.Groups.Categories(), "categories keep first-seen order")
	assert.Equal(t, map[string][]string{"feat": {"d"}}, groupsAsMap(res.Unreleased.Groups))

	// One uncategorized history commit plus both uncategorized tag targets.
	assert.Equal(t, 3, res.Excluded)

	for _, bucket := range [][]*Commit{v1.Commits, v2.Commits, res.Unreleased.Commits} {
		for _, c := range bucket {
			assert.NotEqual(t, "x", c.Hash, "uncategorized commit must not be surfaced")
		}
	}
}

func TestPartition_NoMarkers(t *testing.T) {
	t.Parallel()

	res, err := Partition([]*Commit{commit("a", 1, "feat: a")}, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNoReleases))
	assert.Nil(t, res, "no partial result is produced")
}

func TestPartition_NilTarget(t *testing.T) {
	t.Parallel()

	_, err := Partition(nil, []TagMarker{{Name: "v1"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"v1"`)
}

func TestPartition_Boundaries(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		commitAt    int64
		wantRelease string // empty means unreleased
	}{
		"before first release":          {commitAt: 10, wantRelease: "v1"},
		"equal to first release":        {commitAt: 100, wantRelease: "v1"},
		"just after first release":      {commitAt: 101, wantRelease: "v2"},
		"equal to second release":       {commitAt: 200, wantRelease: "v2"},
		"after last release":            {commitAt: 201, wantRelease: ""},
		"far before all releases":       {commitAt: -5000, wantRelease: "v1"},
		"between releases near the top": {commitAt: 199, wantRelease: "v2"},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			c := commit("c", tt.commitAt, "feat: boundary")
			res, err := Partition([]*Commit{c}, []TagMarker{
				tag("v1", "t1", 100, "v1"),
				tag("v2", "t2", 200, "v2"),
			})
			require.NoError(t, err)

			if tt.wantRelease == "" {
				assert.Nil(t, c.Release())
				assert.Equal(t, []*Commit{c}, res.Unreleased.Commits)
				return
			}
			require.NotNil(t, c.Release())
			assert.Equal(t, tt.wantRelease, c.Release().Name)
			assert.Contains(t, c.Release().Commits, c)
		})
	}
}

func TestPartition_MarkerOrderIsPreserved(t *testing.T) {
	t.Parallel()

	markers := []TagMarker{
		tag("v2.0.0", "t2", 200, "v2"),
		tag("v0.9.0", "t0", 50, "v0"),
		tag("v1.0.0", "t1", 100, "v1"),
	}
	commits := []*Commit{
		commit("a", 40, "feat: a"),
		commit("b", 75, "feat: b"),
		commit("c", 150, "feat: c"),
	}

	res, err := Partition(commits, markers)
	require.NoError(t, err)

	names := func(rs []*Release) []string {
		out := make([]string, len(rs))
		for i, r := range rs {
			out[i] = r.Name
		}
		return out
	}
	assert.Equal(t, []string{"v2.0.0", "v0.9.0", "v1.0.0"}, names(res.Releases))
	assert.Equal(t, []string{"v0.9.0", "v1.0.0", "v2.0.0"}, names(res.Chronological))

	assert.Equal(t, []string{"a"}, summaries(res.Releases[1].Commits))
	assert.Equal(t, []string{"b"}, summaries(res.Releases[2].Commits))
	assert.Equal(t, []string{"c"}, summaries(res.Releases[0].Commits))
	assert.True(t, res.Unreleased.IsEmpty())
}

func TestPartition_TagTargetIsCandidate(t *testing.T) {
	t.Parallel()

	t.Run("categorized tag commit joins its own release", func(t *testing.T) {
		t.Parallel()

		res, err := Partition(nil, []TagMarker{tag("v1", "t1", 100, "feat: ship it")})
		require.NoError(t, err)
		assert.Equal(t, []string{"ship it"}, summaries(res.Releases[0].Commits))
		assert.Equal(t, 0, res.Excluded)
	})

	t.Run("tag target already in history is not duplicated", func(t *testing.T) {
		t.Parallel()

		c := commit("t1", 100, "feat: tagged")
		res, err := Partition([]*Commit{c}, []TagMarker{{Name: "v1", Target: NewCommit("t1", at(100), "feat: tagged")}})
		require.NoError(t, err)
		require.Len(t, res.Releases[0].Commits, 1)
		assert.Same(t, c, res.Releases[0].Commits[0])
	})

	t.Run("two tags on one commit admit it once", func(t *testing.T) {
		t.Parallel()

		target := NewCommit("t1", at(100), "fix: shared")
		res, err := Partition(nil, []TagMarker{
			{Name: "v1.0.0", Target: target},
			{Name: "latest", Target: target},
		})
		require.NoError(t, err)

		total := 0
		for _, r := range res.Releases {
			total += len(r.Commits)
		}
		assert.Equal(t, 1, total)
		assert.Equal(t, "v1.0.0", target.Release().Name, "the first release in chronological order owns it")
	})
}

func TestPartition_ChronologicalWithinBuckets(t *testing.T) {
	t.Parallel()

	// History order from a log walk is newest first.
	commits := []*Commit{
		commit("c3", 30, "fix: third"),
		commit("c2", 20, "feat: second"),
		commit("c1", 10, "fix: first"),
	}
	res, err := Partition(commits, []TagMarker{tag("v1", "t1", 100, "v1")})
	require.NoError(t, err)

	r := res.Releases[0]
	assert.Equal(t, []string{"first", "second", "third"}, summaries(r.Commits))
	assert.Equal(t, []string{"fix", "feat"}, r.Groups.Categories())
	assert.Equal(t, []string{"first", "third"}, summaries(r.Groups.Get("fix")))
}

func TestPartition_Properties(t *testing.T) {
	t.Parallel()

	var commits []*Commit
	for i := 0; i < 60; i++ {
		msg := fmt.Sprintf("feat: c%d", i)
		switch i % 4 {
		case 1:
			msg = fmt.Sprintf("fix(core): c%d", i)
		case 3:
			msg = fmt.Sprintf("wip c%d", i)
		}
		// Spread timestamps out of order.
		commits = append(commits, commit(fmt.Sprintf("h%d", i), int64((i*37)%300), msg))
	}
	markers := []TagMarker{
		tag("v3", "t3", 240, "release"),
		tag("v1", "t1", 60, "release"),
		tag("v2", "t2", 150, "release"),
	}

	res, err := Partition(commits, markers)
	require.NoError(t, err)

	seen := make(map[string]int)
	var prev *Release
	for _, r := range res.Chronological {
		for _, c := range r.Commits {
			seen[c.Hash]++
			assert.False(t, c.AuthoredAt.After(r.ReleasedAt), "commit after its release")
			if prev != nil {
				assert.True(t, c.AuthoredAt.After(prev.ReleasedAt), "commit at or before previous release")
			}
			assert.Same(t, r, c.Release())
		}
		assert.Equal(t, len(r.Commits), r.Groups.Count(), "groups cover commits exactly")
		prev = r
	}

	last := res.Chronological[len(res.Chronological)-1]
	for _, c := range res.Unreleased.Commits {
		seen[c.Hash]++
		assert.True(t, c.AuthoredAt.After(last.ReleasedAt))
		assert.Nil(t, c.Release())
	}

	categorized := 0
	for _, c := range commits {
		if c.IsCategorized() {
			categorized++
			assert.Equal(t, 1, seen[c.Hash], "commit %s must appear exactly once", c.Hash)
		} else {
			assert.Zero(t, seen[c.Hash])
		}
	}
	assert.Len(t, seen, categorized)
	assert.Equal(t, len(commits)-categorized+len(markers), res.Excluded)
}
