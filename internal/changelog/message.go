package changelog

import (
	"strings"
	"unicode/utf8"
)

// paragraphSeparator is the blank line that separates message sections.
const paragraphSeparator = "\n\n"

// Body is the part of a commit message between the header and the footer.
//
// Its shape depends on how many paragraphs the message has. With exactly one
// paragraph after the header, Text holds that paragraph verbatim and Lines is
// nil. With two or more, every paragraph except the last (the footer) is joined
// and split into Lines, and Text is empty. Consumers that do not care about the
// difference should call String.
type Body struct {
	Text  string
	Lines []string
}

// IsLines reports whether the body was decomposed into lines.
func (b *Body) IsLines() bool {
	return b != nil && b.Lines != nil
}

// String returns the body as a single newline-joined string.
func (b *Body) String() string {
	if b == nil {
		return ""
	}
	if b.Lines != nil {
		return strings.Join(b.Lines, "\n")
	}
	return b.Text
}

// SplitMessage splits a raw commit message into header, body and footer.
//
// Sections are separated by a literal blank line. The first section is always
// the header. A nil body or nil footer means the section is absent. Splitting
// never fails: the worst case is a header-only result.
func SplitMessage(raw string) (header string, body *Body, footer []string) {
	sections := strings.Split(raw, paragraphSeparator)
	header, sections = sections[0], sections[1:]

	switch len(sections) {
	case 0:
		return header, nil, nil
	case 1:
		return header, &Body{Text: sections[0]}, nil
	}

	last := len(sections) - 1
	footer = splitLines(sections[last])
	body = &Body{Lines: splitLines(strings.Join(sections[:last], "\n"))}

	return header, body, footer
}

// splitLines breaks text on line boundaries without keeping the terminators.
// Boundaries are \n, \r\n, a lone \r, \v, \f, the file, group and record
// separators, NEL and the Unicode line and paragraph separators. A trailing
// terminator does not produce an empty final line, and empty text yields an
// empty, non-nil slice.
func splitLines(text string) []string {
	lines := []string{}
	start := 0
	for i, r := range text {
		if i < start || !isLineBreak(r) {
			continue
		}
		lines = append(lines, text[start:i])
		start = i + utf8.RuneLen(r)
		if r == '\r' && strings.HasPrefix(text[start:], "\n") {
			start++
		}
	}
	if start < len(text) {
		lines = append(lines, text[start:])
	}
	return lines
}

func isLineBreak(r rune) bool {
	switch r {
	case '\n', '\r', '\v', '\f', '\x1c', '\x1d', '\x1e', '\u0085', '\u2028', '\u2029':
		return true
	}
	return false
}
