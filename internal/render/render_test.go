package render

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/ariel-frischer/gitchangelog/internal/changelog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

var day0 = time.Date(2024, time.March, 1, 10, 0, 0, 0, time.UTC)

func onDay(n int) time.Time {
	return day0.AddDate(0, 0, n)
}

// fixture builds two releases (v1.0.0 on day 2, v0.9.0 on day 1, listed
// newest first as a backend might) and an unreleased bucket.
func fixture(t *testing.T) *changelog.Result {
	t.Helper()

	commits := []*changelog.Commit{
		changelog.NewCommit("c1", onDay(0), "feat(core): initial engine"),
		changelog.NewCommit("c2", onDay(0), "fix: off by one\n\nThe loop ran once too often."),
		changelog.NewCommit("c3", onDay(1), "docs: readme"),
		changelog.NewCommit("c4", onDay(2), "feat: plugins"),
		changelog.NewCommit("c5", onDay(3), "fix(cli): flag parsing\n\nFlags after args were ignored."),
		changelog.NewCommit("c6", onDay(3), "perf: faster walk"),
		changelog.NewCommit("c7", onDay(3), "random noise"),
	}
	markers := []changelog.TagMarker{
		{Name: "v1.0.0", Target: changelog.NewCommit("t2", onDay(2), "chore: release 1.0.0")},
		{Name: "v0.9.0", Target: changelog.NewCommit("t1", onDay(1), "chore: release 0.9.0")},
	}

	res, err := changelog.Partition(commits, markers)
	require.NoError(t, err)
	return res
}

func sectionNames(doc *Document) []string {
	names := make([]string, len(doc.Sections))
	for i, s := range doc.Sections {
		names[i] = s.Name
	}
	return names
}

func TestParseFormat(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		input   string
		want    Format
		wantErr bool
	}{
		"markdown":         {input: "markdown", want: FormatMarkdown},
		"md alias":         {input: "md", want: FormatMarkdown},
		"case insensitive": {input: "RST", want: FormatRST},
		"yaml":             {input: "yaml", want: FormatYAML},
		"terminal":         {input: " terminal ", want: FormatTerminal},
		"unknown":          {input: "html", wantErr: true},
		"empty":            {input: "", wantErr: true},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			got, err := ParseFormat(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnknownFormat)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestReleases(t *testing.T) {
	t.Parallel()

	res := fixture(t)

	tests := map[string]struct {
		order   string
		want    []string
		wantErr bool
	}{
		"default is source order": {order: "", want: []string{"v1.0.0", "v0.9.0"}},
		"source":                  {order: OrderSource, want: []string{"v1.0.0", "v0.9.0"}},
		"oldest first":            {order: OrderOldest, want: []string{"v0.9.0", "v1.0.0"}},
		"newest first":            {order: OrderNewest, want: []string{"v1.0.0", "v0.9.0"}},
		"unknown":                 {order: "alphabetical", wantErr: true},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			got, err := Releases(res, tt.order)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnknownOrder)
				return
			}
			require.NoError(t, err)
			names := make([]string, len(got))
			for i, r := range got {
				names[i] = r.Name
			}
			assert.Equal(t, tt.want, names)
		})
	}
}

func TestReleases_DoesNotAliasResult(t *testing.T) {
	t.Parallel()

	res := fixture(t)
	got, err := Releases(res, OrderNewest)
	require.NoError(t, err)
	got[0] = nil
	assert.NotNil(t, res.Chronological[1])
	assert.NotNil(t, res.Releases[0])
}

func TestProjectURL(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		releasesURL string
		want        string
	}{
		"github style": {releasesURL: "https://github.com/org/repo/releases/{}", want: "https://github.com/org/repo"},
		"tag path":     {releasesURL: "https://git.example.com/org/repo/tag/{}", want: "https://git.example.com/org/repo"},
		"empty":        {releasesURL: "", want: ""},
		"too short":    {releasesURL: "a/b", want: ""},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, ProjectURL(tt.releasesURL))
		})
	}
}

func TestReleaseAndUnreleasedURL(t *testing.T) {
	t.Parallel()

	const releases = "https://github.com/org/repo/releases/{}"

	assert.Equal(t, "https://github.com/org/repo/releases/v1.0.0", ReleaseURL(releases, "v1.0.0"))
	assert.Equal(t, "#", ReleaseURL("", "v1.0.0"))
	assert.Equal(t, "https://github.com/org/repo/tree/main", UnreleasedURL(releases, "main"))
	assert.Equal(t, "https://github.com/org/repo/tree/HEAD", UnreleasedURL(releases, ""))
	assert.Equal(t, "#", UnreleasedURL("", "main"))
}

func TestBuild(t *testing.T) {
	t.Parallel()

	res := fixture(t)

	tests := map[string]struct {
		opts         Options
		wantSections []string
		check        func(t *testing.T, doc *Document)
	}{
		"defaults include feat and fix only": {
			opts:         Options{},
			wantSections: []string{"v1.0.0", "v0.9.0"},
			check: func(t *testing.T, doc *Document) {
				assert.Equal(t, "Changelog", doc.Title)
				v1 := doc.Sections[0]
				assert.Equal(t, "2024-03-03", v1.Date)
				assert.Equal(t, "t2", v1.Hash)
				assert.Equal(t, "#", v1.URL)
				// v1.0.0 holds feat: plugins and its own chore target.
				require.Len(t, v1.Groups, 1)
				assert.Equal(t, "feat", v1.Groups[0].Category)
				assert.Equal(t, "New Features", v1.Groups[0].Title)
			},
		},
		"empty release keeps its section": {
			opts:         Options{Groups: []string{"perf"}},
			wantSections: []string{"v1.0.0", "v0.9.0"},
			check: func(t *testing.T, doc *Document) {
				for _, s := range doc.Sections {
					assert.True(t, s.IsEmpty(), s.Name)
					assert.NotEmpty(t, s.Date)
				}
			},
		},
		"all groups": {
			opts:         Options{Groups: []string{AllGroups}},
			wantSections: []string{"v1.0.0", "v0.9.0"},
			check: func(t *testing.T, doc *Document) {
				var cats []string
				for _, g := range doc.Sections[1].Groups {
					cats = append(cats, g.Category)
				}
				assert.Equal(t, []string{"feat", "fix", "docs", "chore"}, cats)
			},
		},
		"unreleased first": {
			opts:         Options{Unreleased: true, Order: OrderOldest, ReleasesURL: "https://h/o/r/releases/{}", Branch: "main"},
			wantSections: []string{"Unreleased", "v0.9.0", "v1.0.0"},
			check: func(t *testing.T, doc *Document) {
				u := doc.Sections[0]
				assert.True(t, u.Unreleased)
				assert.Empty(t, u.Date)
				assert.Equal(t, "https://h/o/r/tree/main", u.URL)
				require.Len(t, u.Groups, 1)
				assert.Equal(t, "fix", u.Groups[0].Category)
				assert.Equal(t, "cli", u.Groups[0].Entries[0].Scope)
				assert.Equal(t, "Flags after args were ignored.", u.Groups[0].Entries[0].Body)
				assert.Equal(t, "https://h/o/r/releases/v0.9.0", doc.Sections[1].URL)
				assert.Equal(t, "https://h/o/r", doc.Project)
			},
		},
		"single release": {
			opts:         Options{Release: "0.9.0", Unreleased: true},
			wantSections: []string{"v0.9.0"},
		},
		"latest release": {
			opts:         Options{Latest: true, Unreleased: true, Order: OrderOldest},
			wantSections: []string{"v1.0.0"},
		},
		"release wins over latest": {
			opts:         Options{Release: "v0.9.0", Latest: true},
			wantSections: []string{"v0.9.0"},
		},
		"heading overrides and title": {
			opts: Options{
				Title:    "Release Notes",
				Headings: changelog.DefaultHeadings().With(map[string]string{"feat": "Features"}),
			},
			wantSections: []string{"v1.0.0", "v0.9.0"},
			check: func(t *testing.T, doc *Document) {
				assert.Equal(t, "Release Notes", doc.Title)
				assert.Equal(t, "Features", doc.Sections[0].Groups[0].Title)
			},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			doc, err := Build(res, tt.opts)
			require.NoError(t, err)
			assert.Equal(t, tt.wantSections, sectionNames(doc))
			if tt.check != nil {
				tt.check(t, doc)
			}
		})
	}
}

func TestBuild_UnknownRelease(t *testing.T) {
	t.Parallel()

	_, err := Build(fixture(t), Options{Release: "v9"})
	var notFound *changelog.ReleaseNotFoundError
	assert.True(t, errors.As(err, &notFound))
}

func TestBuild_UnreleasedSkippedWhenEmpty(t *testing.T) {
	t.Parallel()

	res, err := changelog.Partition(
		[]*changelog.Commit{changelog.NewCommit("a", onDay(0), "feat: a")},
		[]changelog.TagMarker{{Name: "v1", Target: changelog.NewCommit("t", onDay(1), "chore: v1")}},
	)
	require.NoError(t, err)

	doc, err := Build(res, Options{Unreleased: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"v1"}, sectionNames(doc))
}

func TestRender_Markdown(t *testing.T) {
	t.Parallel()

	out, err := RenderString(fixture(t), FormatMarkdown, Options{
		Unreleased:  true,
		ReleasesURL: "https://github.com/org/repo/releases/{}",
		Branch:      "main",
	})
	require.NoError(t, err)

	contains := []string{
		"# Changelog\n",
		"## [Unreleased]\n",
		"- flag parsing [cli]\n  - Flags after args were ignored.\n",
		"## [v1.0.0]\n\n_Released: 2024-03-03_\n",
		"### New Features\n\n- plugins\n",
		"## [v0.9.0]\n\n_Released: 2024-03-02_\n",
		"- initial engine\n",
		"- off by one\n  <!-- The loop ran once too often. -->\n",
		"[Unreleased]: https://github.com/org/repo/tree/main\n",
		"[v1.0.0]: https://github.com/org/repo/releases/v1.0.0\n",
	}
	for _, want := range contains {
		assert.Contains(t, out, want)
	}

	assert.NotContains(t, out, "initial engine [core]", "scope is only shown for unreleased entries")
	assert.NotContains(t, out, "faster walk", "perf is not a default group")
	assert.Less(t, strings.Index(out, "## [Unreleased]"), strings.Index(out, "## [v1.0.0]"))
}

func TestRender_MarkdownWithoutLinks(t *testing.T) {
	t.Parallel()

	out, err := RenderString(fixture(t), FormatMarkdown, Options{})
	require.NoError(t, err)
	assert.Contains(t, out, "\n## v1.0.0\n")
	assert.NotContains(t, out, "]: ")
}

func TestRender_MarkdownIdempotent(t *testing.T) {
	t.Parallel()

	res := fixture(t)
	opts := Options{Unreleased: true, Groups: []string{AllGroups}}

	first, err := RenderString(res, FormatMarkdown, opts)
	require.NoError(t, err)
	second, err := RenderString(res, FormatMarkdown, opts)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestRender_RST(t *testing.T) {
	t.Parallel()

	out, err := RenderString(fixture(t), FormatRST, Options{
		Unreleased:  true,
		ReleasesURL: "https://github.com/org/repo/releases/{}",
		Branch:      "main",
	})
	require.NoError(t, err)

	contains := []string{
		"Changelog\n=========\n",
		"`Unreleased <https://github.com/org/repo/tree/main>`_\n",
		"`v1.0.0 <https://github.com/org/repo/releases/v1.0.0>`_\n",
		"*Released: 2024-03-03*\n",
		"New Features\n~~~~~~~~~~~~\n\n- plugins\n",
		"- flag parsing [cli]\n\n  - Flags after args were ignored.\n",
		"- off by one\n\n  ..\n     The loop ran once too often.\n",
	}
	for _, want := range contains {
		assert.Contains(t, out, want)
	}
}

func TestWriteRSTTitle_UnderlineMatchesRunes(t *testing.T) {
	t.Parallel()

	var b strings.Builder
	require.NoError(t, writeRSTTitle(&b, "Änderungen", '-'))
	assert.Equal(t, "Änderungen\n----------\n", b.String())
}

func TestRender_YAML(t *testing.T) {
	t.Parallel()

	out, err := RenderString(fixture(t), FormatYAML, Options{Unreleased: true})
	require.NoError(t, err)

	var doc Document
	require.NoError(t, yaml.Unmarshal([]byte(out), &doc))
	assert.Equal(t, []string{"Unreleased", "v1.0.0", "v0.9.0"}, sectionNames(&doc))
	assert.True(t, doc.Sections[0].Unreleased)
	assert.Equal(t, "2024-03-02", doc.Sections[2].Date)
	assert.Equal(t, "c1", doc.Sections[2].Groups[0].Entries[0].Hash)
	assert.Equal(t, "core", doc.Sections[2].Groups[0].Entries[0].Scope)
}

func TestRender_TerminalPlain(t *testing.T) {
	t.Parallel()

	out, err := RenderString(fixture(t), FormatTerminal, Options{Plain: true, Unreleased: true})
	require.NoError(t, err)

	assert.Contains(t, out, "## Unreleased\n")
	assert.Contains(t, out, "## v1.0.0 (2024-03-03)\n")
	assert.Contains(t, out, "\n### Bug Fixes\n  - cli: flag parsing\n")
	assert.Contains(t, out, "  - core: initial engine\n")
	assert.NotContains(t, out, "\x1b[")
}

func TestRender_UnknownFormat(t *testing.T) {
	t.Parallel()

	_, err := RenderString(fixture(t), Format("html"), Options{})
	assert.ErrorIs(t, err, ErrUnknownFormat)
}

func TestRender_UnknownOrder(t *testing.T) {
	t.Parallel()

	_, err := RenderString(fixture(t), FormatMarkdown, Options{Order: "random"})
	assert.ErrorIs(t, err, ErrUnknownOrder)
}

func TestWrapText(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		text     string
		maxWidth int
		want     string
	}{
		"fits":           {text: "short text", maxWidth: 20, want: "short text"},
		"zero width":     {text: "anything goes", maxWidth: 0, want: "anything goes"},
		"wraps at space": {text: "alpha beta gamma", maxWidth: 10, want: "alpha\n    beta gamma"},
		"no spaces":      {text: "abcdefghij", maxWidth: 4, want: "abcd\n    efgh\n    ij"},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, wrapText(tt.text, tt.maxWidth, "    "))
		})
	}
}
