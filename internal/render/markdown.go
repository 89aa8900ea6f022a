package render

import (
	"fmt"
	"io"
	"strings"
)

// RenderMarkdown writes the document as Markdown.
//
// Linked section headings use reference-style links that are collected at the
// end of the document. Unreleased entries show their scope and body; release
// entries keep the body in an HTML comment.
//
// The function is idempotent - given the same input, it produces identical output.
func RenderMarkdown(doc *Document, w io.Writer) error {
	if _, err := fmt.Fprintf(w, "# %s\n", doc.Title); err != nil {
		return fmt.Errorf("rendering header: %w", err)
	}

	for _, s := range doc.Sections {
		if err := renderMarkdownSection(&s, w); err != nil {
			return fmt.Errorf("rendering section %s: %w", s.Name, err)
		}
	}

	if err := renderFooterLinks(doc, w); err != nil {
		return fmt.Errorf("rendering footer links: %w", err)
	}

	return nil
}

// renderMarkdownSection writes a single section with all its groups.
func renderMarkdownSection(s *Section, w io.Writer) error {
	if _, err := fmt.Fprintf(w, "\n## %s\n", sectionHeading(s)); err != nil {
		return err
	}

	if !s.Unreleased {
		if _, err := fmt.Fprintf(w, "\n_Released: %s_\n", s.Date); err != nil {
			return err
		}
	}

	for _, g := range s.Groups {
		if err := renderMarkdownGroup(&g, s.Unreleased, w); err != nil {
			return err
		}
	}

	return nil
}

// sectionHeading returns the heading text, as a reference link when linked.
func sectionHeading(s *Section) string {
	if s.URL == noLink || s.URL == "" {
		return s.Name
	}
	return "[" + s.Name + "]"
}

// renderMarkdownGroup writes a single category section with its entries.
func renderMarkdownGroup(g *Group, unreleased bool, w io.Writer) error {
	if _, err := fmt.Fprintf(w, "\n### %s\n\n", g.Title); err != nil {
		return err
	}

	for _, e := range g.Entries {
		if err := renderMarkdownEntry(&e, unreleased, w); err != nil {
			return err
		}
	}

	return nil
}

func renderMarkdownEntry(e *Entry, unreleased bool, w io.Writer) error {
	if !unreleased {
		if _, err := fmt.Fprintf(w, "- %s\n", e.Summary); err != nil {
			return err
		}
		if e.Body == "" {
			return nil
		}
		body := strings.ReplaceAll(e.Body, "-->", "--&gt;")
		_, err := fmt.Fprintf(w, "  <!-- %s -->\n", indentContinuation(body, "  "))
		return err
	}

	line := e.Summary
	if e.Scope != "" {
		line += " [" + e.Scope + "]"
	}
	if _, err := fmt.Fprintf(w, "- %s\n", line); err != nil {
		return err
	}
	if e.Body == "" {
		return nil
	}
	_, err := fmt.Fprintf(w, "  - %s\n", indentContinuation(e.Body, "    "))
	return err
}

// renderFooterLinks writes the link definitions of linked section headings.
func renderFooterLinks(doc *Document, w io.Writer) error {
	var links []string
	for _, s := range doc.Sections {
		if s.URL == noLink || s.URL == "" {
			continue
		}
		links = append(links, fmt.Sprintf("[%s]: %s", s.Name, s.URL))
	}
	if len(links) == 0 {
		return nil
	}

	_, err := fmt.Fprintf(w, "\n%s\n", strings.Join(links, "\n"))
	return err
}

// indentContinuation prefixes every line after the first with indent.
func indentContinuation(text, indent string) string {
	return strings.ReplaceAll(text, "\n", "\n"+indent)
}
