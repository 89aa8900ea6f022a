package render

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"golang.org/x/term"
)

// CategoryStyle defines the color and icon for a changelog category.
type CategoryStyle struct {
	Color *color.Color
	Icon  string
}

// categoryStyles maps category tokens to their terminal styling.
var categoryStyles = map[string]CategoryStyle{
	"feat":     {Color: color.New(color.FgGreen), Icon: "✓"},
	"fix":      {Color: color.New(color.FgYellow), Icon: "⚡"},
	"perf":     {Color: color.New(color.FgMagenta), Icon: "»"},
	"refactor": {Color: color.New(color.FgBlue), Icon: "~"},
	"docs":     {Color: color.New(color.FgCyan), Icon: "✎"},
}

// defaultStyle is used for categories without a dedicated style.
var defaultStyle = CategoryStyle{Color: color.New(color.FgWhite), Icon: "•"}

func styleFor(category string) CategoryStyle {
	if s, ok := categoryStyles[category]; ok {
		return s
	}
	return defaultStyle
}

// TerminalOptions controls the terminal output formatting.
type TerminalOptions struct {
	Plain    bool // Disable colors and icons
	MaxWidth int  // Maximum line width (0 = auto-detect)
}

// RenderTerminal writes the document with terminal styling: bold section
// headers and color-coded category headers.
func RenderTerminal(doc *Document, w io.Writer, opts TerminalOptions) error {
	width := resolveWidth(opts.MaxWidth)

	for i, s := range doc.Sections {
		if err := formatSection(&s, w, opts, width, i > 0); err != nil {
			return fmt.Errorf("formatting section %s: %w", s.Name, err)
		}
	}

	return nil
}

// formatSection writes a single section and its groups.
func formatSection(s *Section, w io.Writer, opts TerminalOptions, width int, addSeparator bool) error {
	if addSeparator {
		fmt.Fprintln(w)
	}

	if err := writeSectionHeader(s, w, opts); err != nil {
		return err
	}

	for _, g := range s.Groups {
		if err := writeCategorySection(&g, w, opts, width); err != nil {
			return err
		}
	}

	return nil
}

// writeSectionHeader writes the release header line.
func writeSectionHeader(s *Section, w io.Writer, opts TerminalOptions) error {
	header := s.Name
	if s.Date != "" {
		header = fmt.Sprintf("%s (%s)", s.Name, s.Date)
	}

	if opts.Plain {
		_, err := fmt.Fprintf(w, "## %s\n", header)
		return err
	}

	bold := color.New(color.Bold).SprintFunc()
	_, err := fmt.Fprintf(w, "## %s\n", bold(header))
	return err
}

// writeCategorySection writes a single category with its entries.
func writeCategorySection(g *Group, w io.Writer, opts TerminalOptions, width int) error {
	style := styleFor(g.Category)

	if err := writeCategoryHeader(g.Title, style, w, opts); err != nil {
		return err
	}

	for _, e := range g.Entries {
		if err := writeEntry(&e, style, w, opts, width); err != nil {
			return err
		}
	}

	return nil
}

// writeCategoryHeader writes the category header line.
func writeCategoryHeader(title string, style CategoryStyle, w io.Writer, opts TerminalOptions) error {
	if opts.Plain {
		_, err := fmt.Fprintf(w, "\n### %s\n", title)
		return err
	}

	colored := style.Color.SprintFunc()
	_, err := fmt.Fprintf(w, "\n%s %s\n", colored(style.Icon), colored(title))
	return err
}

// writeEntry writes a single entry with optional wrapping.
func writeEntry(e *Entry, style CategoryStyle, w io.Writer, opts TerminalOptions, width int) error {
	prefix := "  - "
	text := e.Summary
	if e.Scope != "" {
		text = e.Scope + ": " + text
	}

	if opts.Plain {
		_, err := fmt.Fprintf(w, "%s%s\n", prefix, text)
		return err
	}

	wrapped := wrapText(text, width-len(prefix), "    ")

	colored := style.Color.SprintFunc()
	_, err := fmt.Fprintf(w, "%s%s\n", prefix, colored(wrapped))
	return err
}

// resolveWidth determines the terminal width to use.
func resolveWidth(maxWidth int) int {
	if maxWidth > 0 {
		return maxWidth
	}
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
		return w
	}
	return 80
}

// wrapText wraps text to fit within maxWidth, using indent for continuation lines.
func wrapText(text string, maxWidth int, indent string) string {
	if maxWidth <= 0 || len(text) <= maxWidth {
		return text
	}

	var lines []string
	remaining := text

	for len(remaining) > maxWidth {
		breakPoint := maxWidth
		for i := maxWidth - 1; i > 0; i-- {
			if remaining[i] == ' ' {
				breakPoint = i
				break
			}
		}

		lines = append(lines, remaining[:breakPoint])
		remaining = strings.TrimLeft(remaining[breakPoint:], " ")
	}

	if len(remaining) > 0 {
		lines = append(lines, remaining)
	}

	return strings.Join(lines, "\n"+indent)
}
