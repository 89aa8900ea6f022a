// Package testutil provides test utilities and helpers for gitchangelog tests.
package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// Epoch is the base timestamp used by TestRepo when callers pass offsets.
var Epoch = time.Date(2024, time.January, 1, 12, 0, 0, 0, time.UTC)

// TestRepo is a throwaway on-disk repository for tests.
// Every commit writes a unique file so commits are never empty.
type TestRepo struct {
	t    *testing.T
	Dir  string
	Repo *git.Repository
	n    int
}

// NewTestRepo initializes an empty repository in a temp directory.
func NewTestRepo(t *testing.T) *TestRepo {
	t.Helper()

	dir := t.TempDir()
	repo, err := git.PlainInit(dir, false)
	if err != nil {
		t.Fatalf("initializing repository: %v", err)
	}

	return &TestRepo{t: t, Dir: dir, Repo: repo}
}

// Commit records a commit whose author and committer time is Epoch plus offset.
// It returns the full commit hash.
func (r *TestRepo) Commit(message string, offset time.Duration) string {
	r.t.Helper()
	when := Epoch.Add(offset)
	return r.CommitWithTimes(message, when, when)
}

// CommitWithTimes records a commit with distinct author and committer times.
func (r *TestRepo) CommitWithTimes(message string, authored, committed time.Time) string {
	r.t.Helper()

	wt, err := r.Repo.Worktree()
	if err != nil {
		r.t.Fatalf("getting worktree: %v", err)
	}

	r.n++
	name := fmt.Sprintf("file-%03d.txt", r.n)
	if err := os.WriteFile(filepath.Join(r.Dir, name), []byte(message), 0o644); err != nil {
		r.t.Fatalf("writing %s: %v", name, err)
	}
	if _, err := wt.Add(name); err != nil {
		r.t.Fatalf("staging %s: %v", name, err)
	}

	hash, err := wt.Commit(message, &git.CommitOptions{
		Author:    &object.Signature{Name: "Test", Email: "test@test.com", When: authored},
		Committer: &object.Signature{Name: "Test", Email: "test@test.com", When: committed},
	})
	if err != nil {
		r.t.Fatalf("committing %q: %v", message, err)
	}

	return hash.String()
}

// Tag creates a lightweight tag on the given commit hash.
func (r *TestRepo) Tag(name, hash string) {
	r.t.Helper()

	if _, err := r.Repo.CreateTag(name, plumbing.NewHash(hash), nil); err != nil {
		r.t.Fatalf("creating tag %s: %v", name, err)
	}
}

// AnnotatedTag creates an annotated tag on the given commit hash.
func (r *TestRepo) AnnotatedTag(name, hash, message string) {
	r.t.Helper()

	_, err := r.Repo.CreateTag(name, plumbing.NewHash(hash), &git.CreateTagOptions{
		Message: message,
		Tagger:  &object.Signature{Name: "Test", Email: "test@test.com", When: Epoch},
	})
	if err != nil {
		r.t.Fatalf("creating annotated tag %s: %v", name, err)
	}
}

// Checkout creates and switches to a new branch at HEAD.
func (r *TestRepo) Checkout(branch string) {
	r.t.Helper()

	head, err := r.Repo.Head()
	if err != nil {
		r.t.Fatalf("getting HEAD: %v", err)
	}
	wt, err := r.Repo.Worktree()
	if err != nil {
		r.t.Fatalf("getting worktree: %v", err)
	}

	err = wt.Checkout(&git.CheckoutOptions{
		Hash:   head.Hash(),
		Branch: plumbing.NewBranchReferenceName(branch),
		Create: true,
		Keep:   true,
	})
	if err != nil {
		r.t.Fatalf("checking out %s: %v", branch, err)
	}
}
