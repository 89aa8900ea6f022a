package render

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"
)

// Section adornments, outermost first.
const (
	rstTitleRule   = '='
	rstSectionRule = '-'
	rstGroupRule   = '~'
)

// RenderRST writes the document as reStructuredText, one section per release
// with nested category sections, suitable for inclusion in Sphinx docs.
func RenderRST(doc *Document, w io.Writer) error {
	if err := writeRSTTitle(w, doc.Title, rstTitleRule); err != nil {
		return fmt.Errorf("rendering header: %w", err)
	}

	for _, s := range doc.Sections {
		if err := renderRSTSection(&s, w); err != nil {
			return fmt.Errorf("rendering section %s: %w", s.Name, err)
		}
	}

	return nil
}

func renderRSTSection(s *Section, w io.Writer) error {
	title := s.Name
	if s.URL != noLink && s.URL != "" {
		title = fmt.Sprintf("`%s <%s>`_", s.Name, s.URL)
	}

	if _, err := fmt.Fprintln(w); err != nil {
		return err
	}
	if err := writeRSTTitle(w, title, rstSectionRule); err != nil {
		return err
	}

	if !s.Unreleased {
		if _, err := fmt.Fprintf(w, "\n*Released: %s*\n", s.Date); err != nil {
			return err
		}
	}

	for _, g := range s.Groups {
		if _, err := fmt.Fprintln(w); err != nil {
			return err
		}
		if err := writeRSTTitle(w, g.Title, rstGroupRule); err != nil {
			return err
		}
		if _, err := fmt.Fprintln(w); err != nil {
			return err
		}
		for _, e := range g.Entries {
			if err := renderRSTEntry(&e, s.Unreleased, w); err != nil {
				return err
			}
		}
	}

	return nil
}

// renderRSTEntry writes one bullet. Unreleased bodies become a nested bullet;
// release bodies become a comment, which Sphinx does not display.
func renderRSTEntry(e *Entry, unreleased bool, w io.Writer) error {
	line := e.Summary
	if unreleased && e.Scope != "" {
		line += " [" + e.Scope + "]"
	}
	if _, err := fmt.Fprintf(w, "- %s\n", line); err != nil {
		return err
	}
	if e.Body == "" {
		return nil
	}

	if unreleased {
		_, err := fmt.Fprintf(w, "\n  - %s\n\n", indentContinuation(e.Body, "    "))
		return err
	}
	_, err := fmt.Fprintf(w, "\n  ..\n     %s\n\n", indentContinuation(e.Body, "     "))
	return err
}

// writeRSTTitle writes text followed by an adornment line at least as long.
func writeRSTTitle(w io.Writer, text string, rule rune) error {
	width := max(utf8.RuneCountInString(text), 1)
	_, err := fmt.Fprintf(w, "%s\n%s\n", text, strings.Repeat(string(rule), width))
	return err
}
