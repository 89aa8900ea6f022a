package changelog

// Groups maps category tokens to commits, remembering the order in which
// categories were first seen.
type Groups struct {
	order []string
	items map[string][]*Commit
}

// Group buckets commits by category, preserving their order within each
// category. Categories are ordered by first appearance. Uncategorized commits
// are skipped.
func Group(commits []*Commit) *Groups {
	g := &Groups{items: make(map[string][]*Commit)}
	for _, c := range commits {
		g.add(c)
	}
	return g
}

func (g *Groups) add(c *Commit) {
	if !c.IsCategorized() {
		return
	}
	if _, ok := g.items[c.Category]; !ok {
		g.order = append(g.order, c.Category)
	}
	g.items[c.Category] = append(g.items[c.Category], c)
}

// Categories returns the category tokens in first-seen order.
func (g *Groups) Categories() []string {
	if g == nil {
		return nil
	}
	out := make([]string, len(g.order))
	copy(out, g.order)
	return out
}

// Get returns the commits for a category, or nil if the category is absent.
func (g *Groups) Get(category string) []*Commit {
	if g == nil {
		return nil
	}
	return g.items[category]
}

// Has reports whether the category has at least one commit.
func (g *Groups) Has(category string) bool {
	return len(g.Get(category)) > 0
}

// Len returns the number of categories.
func (g *Groups) Len() int {
	if g == nil {
		return 0
	}
	return len(g.order)
}

// Count returns the total number of grouped commits.
func (g *Groups) Count() int {
	if g == nil {
		return 0
	}
	n := 0
	for _, commits := range g.items {
		n += len(commits)
	}
	return n
}
