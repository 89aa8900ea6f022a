package changelog

import "time"

// Commit is one parsed version-control commit.
//
// A Commit is built once by NewCommit and not modified afterwards, except for
// its release back-reference, which Partition assigns exactly once.
type Commit struct {
	Hash       string
	AuthoredAt time.Time
	Message    string

	Header string
	Body   *Body    // nil when the message has no body
	Footer []string // nil when the message has no footer

	Category string // empty when the header does not match the grammar
	Scope    string
	Summary  string

	release *Release
}

// NewCommit parses message and classifies its header.
func NewCommit(hash string, authoredAt time.Time, message string) *Commit {
	c := &Commit{
		Hash:       hash,
		AuthoredAt: authoredAt,
		Message:    message,
	}

	c.Header, c.Body, c.Footer = SplitMessage(message)

	if cls, ok := Classify(c.Header); ok {
		c.Category = cls.Category
		c.Scope = cls.Scope
		c.Summary = cls.Summary
	}

	return c
}

// IsCategorized reports whether the header matched the classification grammar.
// Uncategorized commits never appear in any release or grouping.
func (c *Commit) IsCategorized() bool {
	return c.Category != ""
}

// Release returns the release that owns this commit. It is nil before
// partitioning and for commits that belong to the unreleased bucket.
func (c *Commit) Release() *Release {
	return c.release
}

// ShortHash returns the first 7 characters of the hash.
func (c *Commit) ShortHash() string {
	if len(c.Hash) < 7 {
		return c.Hash
	}
	return c.Hash[:7]
}
