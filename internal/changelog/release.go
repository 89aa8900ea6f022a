package changelog

import "time"

// UnreleasedName is the display label of the unreleased bucket.
const UnreleasedName = "Unreleased"

// TagMarker is a release tag as read from the version-control backend.
// Target is the parsed commit the tag points at.
type TagMarker struct {
	Name   string
	Target *Commit
}

// Release is the bucket of categorized commits attributed to one tag.
type Release struct {
	Name       string
	ReleasedAt time.Time
	Hash       string // hash of the tag's target commit

	Commits []*Commit
	Groups  *Groups
}

func newRelease(marker TagMarker) *Release {
	return &Release{
		Name:       marker.Name,
		ReleasedAt: marker.Target.AuthoredAt,
		Hash:       marker.Target.Hash,
		Groups:     Group(nil),
	}
}

func (r *Release) add(c *Commit) {
	c.release = r
	r.Commits = append(r.Commits, c)
	r.Groups.add(c)
}

// ShortHash returns the first 7 characters of the target hash.
func (r *Release) ShortHash() string {
	if len(r.Hash) < 7 {
		return r.Hash
	}
	return r.Hash[:7]
}

// Unreleased is the bucket of categorized commits authored after the most
// recent release.
type Unreleased struct {
	Commits []*Commit
	Groups  *Groups
}

func newUnreleased(commits []*Commit) *Unreleased {
	return &Unreleased{
		Commits: commits,
		Groups:  Group(commits),
	}
}

// Name returns the display label of the bucket.
func (u *Unreleased) Name() string {
	return UnreleasedName
}

// IsEmpty reports whether no commits are waiting for a release.
func (u *Unreleased) IsEmpty() bool {
	return u == nil || len(u.Commits) == 0
}
