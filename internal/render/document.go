package render

import (
	"slices"
	"strings"

	"github.com/ariel-frischer/gitchangelog/internal/changelog"
)

// DateLayout is the layout of release dates in every format.
const DateLayout = "2006-01-02"

// noLink is the link target used when no URL can be derived.
const noLink = "#"

// Document is the format-independent view of a changelog. It is what the
// YAML format emits and what every other format walks.
type Document struct {
	Title    string    `yaml:"title"`
	Project  string    `yaml:"project,omitempty"`
	Sections []Section `yaml:"releases"`
}

// Section is one release, or the unreleased bucket.
type Section struct {
	Name       string  `yaml:"name"`
	Date       string  `yaml:"date,omitempty"` // YYYY-MM-DD; empty for unreleased
	Hash       string  `yaml:"hash,omitempty"`
	URL        string  `yaml:"url"`
	Unreleased bool    `yaml:"unreleased,omitempty"`
	Groups     []Group `yaml:"groups"`
}

// Group is one category heading with its entries.
type Group struct {
	Category string  `yaml:"category"`
	Title    string  `yaml:"title"`
	Entries  []Entry `yaml:"entries"`
}

// Entry is a single commit line.
type Entry struct {
	Summary string `yaml:"summary"`
	Scope   string `yaml:"scope,omitempty"`
	Hash    string `yaml:"hash"`
	Body    string `yaml:"body,omitempty"`
}

// IsEmpty returns true if the section has no entries in any group.
func (s Section) IsEmpty() bool {
	return s.Count() == 0
}

// Count returns the total number of entries across all groups.
func (s Section) Count() int {
	n := 0
	for _, g := range s.Groups {
		n += len(g.Entries)
	}
	return n
}

// Build selects and orders the parts of result described by opts.
//
// The unreleased section comes first when opts.Unreleased is set and it has
// commits. Releases follow in opts.Order; a release with no matching entries
// still gets a section so its heading and date are shown.
func Build(result *changelog.Result, opts Options) (*Document, error) {
	releases, err := Releases(result, opts.Order)
	if err != nil {
		return nil, err
	}

	single := true
	switch {
	case opts.Release != "":
		rel, err := result.Find(opts.Release)
		if err != nil {
			return nil, err
		}
		releases = []*changelog.Release{rel}
	case opts.Latest && result.Latest() != nil:
		releases = []*changelog.Release{result.Latest()}
	default:
		single = false
	}

	headings := opts.Headings
	if headings == nil {
		headings = changelog.DefaultHeadings()
	}
	include := groupFilter(opts.Groups)

	doc := &Document{
		Title:   opts.Title,
		Project: ProjectURL(opts.ReleasesURL),
	}
	if doc.Title == "" {
		doc.Title = "Changelog"
	}

	if opts.Unreleased && !single && !result.Unreleased.IsEmpty() {
		doc.Sections = append(doc.Sections, Section{
			Name:       result.Unreleased.Name(),
			URL:        UnreleasedURL(opts.ReleasesURL, opts.Branch),
			Unreleased: true,
			Groups:     buildGroups(result.Unreleased.Groups, include, headings),
		})
	}

	for _, rel := range releases {
		doc.Sections = append(doc.Sections, Section{
			Name:   rel.Name,
			Date:   rel.ReleasedAt.Format(DateLayout),
			Hash:   rel.Hash,
			URL:    ReleaseURL(opts.ReleasesURL, rel.Name),
			Groups: buildGroups(rel.Groups, include, headings),
		})
	}

	return doc, nil
}

// buildGroups keeps categories in first-seen order, dropping those not included.
func buildGroups(groups *changelog.Groups, include func(string) bool, headings changelog.Headings) []Group {
	out := make([]Group, 0, groups.Len())
	for _, category := range groups.Categories() {
		if !include(category) {
			continue
		}
		commits := groups.Get(category)
		entries := make([]Entry, len(commits))
		for i, c := range commits {
			entries[i] = Entry{
				Summary: c.Summary,
				Scope:   c.Scope,
				Hash:    c.Hash,
				Body:    c.Body.String(),
			}
		}
		out = append(out, Group{
			Category: category,
			Title:    headings.Title(category),
			Entries:  entries,
		})
	}
	return out
}

func groupFilter(groups []string) func(string) bool {
	if groups == nil {
		groups = DefaultGroups()
	}
	if slices.Contains(groups, AllGroups) {
		return func(string) bool { return true }
	}
	return func(category string) bool {
		return slices.Contains(groups, category)
	}
}

// ProjectURL derives the repository URL from a releases URL by dropping its
// last two path segments, e.g. "https://host/org/repo/releases/{}" becomes
// "https://host/org/repo". Returns "" when releasesURL is too short.
func ProjectURL(releasesURL string) string {
	parts := strings.Split(releasesURL, "/")
	if len(parts) <= 2 {
		return ""
	}
	return strings.Join(parts[:len(parts)-2], "/")
}

// ReleaseURL formats releasesURL with the tag name, or returns "#".
func ReleaseURL(releasesURL, name string) string {
	if releasesURL == "" {
		return noLink
	}
	return strings.ReplaceAll(releasesURL, "{}", name)
}

// UnreleasedURL points at the branch tree of the project, or returns "#".
// A detached HEAD (empty branch) links to HEAD.
func UnreleasedURL(releasesURL, branch string) string {
	project := ProjectURL(releasesURL)
	if project == "" {
		return noLink
	}
	if branch == "" {
		branch = "HEAD"
	}
	return project + "/tree/" + branch
}
