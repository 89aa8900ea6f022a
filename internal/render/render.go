// Package render turns a partitioned changelog into documents: Markdown,
// reStructuredText, YAML, or colored terminal output.
package render

import (
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/ariel-frischer/gitchangelog/internal/changelog"
)

// Format names an output format.
type Format string

const (
	FormatMarkdown Format = "markdown"
	FormatRST      Format = "rst"
	FormatYAML     Format = "yaml"
	FormatTerminal Format = "terminal"
)

// Release orderings.
const (
	// OrderSource keeps tags in the order the backend listed them.
	OrderSource = "source"
	// OrderNewest lists the most recent release first.
	OrderNewest = "newest"
	// OrderOldest lists the oldest release first.
	OrderOldest = "oldest"
)

// AllGroups in Options.Groups includes every category.
const AllGroups = "*"

var (
	// ErrUnknownFormat is returned for a format name that has no renderer.
	ErrUnknownFormat = errors.New("unknown output format")
	// ErrUnknownOrder is returned for an unsupported release ordering.
	ErrUnknownOrder = errors.New("unknown release order")
)

// DefaultGroups returns the categories rendered when none are configured.
func DefaultGroups() []string {
	return []string{"feat", "fix"}
}

// Formats lists every supported format name.
func Formats() []string {
	return []string{string(FormatMarkdown), string(FormatRST), string(FormatYAML), string(FormatTerminal)}
}

// Orders lists every supported release ordering.
func Orders() []string {
	return []string{OrderSource, OrderNewest, OrderOldest}
}

// ParseFormat validates a format name. Matching is case-insensitive and
// "md" is accepted for markdown.
func ParseFormat(name string) (Format, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "md" {
		return FormatMarkdown, nil
	}
	if slices.Contains(Formats(), name) {
		return Format(name), nil
	}
	return "", fmt.Errorf("%w %q (valid: %s)", ErrUnknownFormat, name, strings.Join(Formats(), ", "))
}

// Options controls what is rendered and how.
type Options struct {
	// Groups lists the categories to include. Nil means DefaultGroups;
	// a single AllGroups entry includes everything.
	Groups []string
	// Unreleased adds a section for commits newer than the latest release.
	Unreleased bool
	// ReleasesURL links release headings; "{}" is replaced by the tag name.
	ReleasesURL string
	// Branch is linked from the unreleased heading.
	Branch string
	// Order is one of OrderSource (default), OrderNewest or OrderOldest.
	Order string
	// Release restricts output to a single release when set.
	Release string
	// Latest restricts output to the most recently dated release. Release
	// takes precedence.
	Latest bool
	// Headings overrides the category titles. Nil means changelog.DefaultHeadings.
	Headings changelog.Headings
	// Title is the document title. Empty means "Changelog".
	Title string
	// Plain disables colors and icons in terminal output.
	Plain bool
	// Width caps terminal line width (0 = auto-detect).
	Width int
}

// Render writes result to w in the given format.
func Render(w io.Writer, result *changelog.Result, format Format, opts Options) error {
	doc, err := Build(result, opts)
	if err != nil {
		return err
	}

	switch format {
	case FormatMarkdown:
		return RenderMarkdown(doc, w)
	case FormatRST:
		return RenderRST(doc, w)
	case FormatYAML:
		return RenderYAML(doc, w)
	case FormatTerminal:
		return RenderTerminal(doc, w, TerminalOptions{Plain: opts.Plain, MaxWidth: opts.Width})
	default:
		return fmt.Errorf("%w %q", ErrUnknownFormat, format)
	}
}

// RenderString is a convenience function that renders to a string.
func RenderString(result *changelog.Result, format Format, opts Options) (string, error) {
	var b strings.Builder
	if err := Render(&b, result, format, opts); err != nil {
		return "", err
	}
	return b.String(), nil
}

// Releases returns the releases of result in the requested display order.
// The returned slice is never one of result's own slices.
func Releases(result *changelog.Result, order string) ([]*changelog.Release, error) {
	switch order {
	case "", OrderSource:
		return slices.Clone(result.Releases), nil
	case OrderOldest:
		return slices.Clone(result.Chronological), nil
	case OrderNewest:
		out := slices.Clone(result.Chronological)
		slices.Reverse(out)
		return out, nil
	default:
		return nil, fmt.Errorf("%w %q (valid: %s)", ErrUnknownOrder, order, strings.Join(Orders(), ", "))
	}
}
