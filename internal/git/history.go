package git

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// RawCommit is a commit as stored in the repository, before message parsing.
type RawCommit struct {
	Hash       string
	AuthorTime time.Time
	CommitTime time.Time
	Message    string
}

// RawTag is a tag and the commit it points at. Annotated tags are peeled.
type RawTag struct {
	Name   string
	Target RawCommit
}

// History is everything the changelog pipeline reads from a repository.
type History struct {
	// Commits reachable from the start revision, newest first.
	Commits []RawCommit
	// Tags pointing at commits, sorted by name.
	Tags []RawTag
}

// HistoryOptions controls ReadHistory.
type HistoryOptions struct {
	// Ref is the revision to walk from. Empty means HEAD.
	Ref string
}

// ReadHistory collects the commit log and all commit tags of the repository at path.
// A repository without commits yields an empty History.
func ReadHistory(ctx context.Context, path string, opts HistoryOptions) (*History, error) {
	repo, err := openRepo(path)
	if err != nil {
		return nil, err
	}

	commits, err := readCommits(ctx, repo, opts.Ref)
	if err != nil {
		return nil, err
	}

	tags, err := readTags(ctx, repo)
	if err != nil {
		return nil, err
	}

	logDebug("[git] ReadHistory: %d commits, %d tags", len(commits), len(tags))
	return &History{Commits: commits, Tags: tags}, nil
}

// readCommits walks the log from ref (or HEAD).
func readCommits(ctx context.Context, repo *git.Repository, ref string) ([]RawCommit, error) {
	from, err := resolveStart(repo, ref)
	if err != nil {
		return nil, err
	}
	if from.IsZero() {
		logDebug("[git] readCommits: repository has no commits")
		return nil, nil
	}

	iter, err := repo.Log(&git.LogOptions{From: from})
	if err != nil {
		return nil, fmt.Errorf("reading log from %s: %w", from, err)
	}
	defer iter.Close()

	var commits []RawCommit
	err = iter.ForEach(func(c *object.Commit) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		commits = append(commits, toRawCommit(c))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking commit log: %w", err)
	}

	return commits, nil
}

// resolveStart returns the hash to walk from. A zero hash means there is
// nothing to walk (unborn HEAD).
func resolveStart(repo *git.Repository, ref string) (plumbing.Hash, error) {
	if ref == "" {
		head, err := repo.Head()
		if err != nil {
			if errors.Is(err, plumbing.ErrReferenceNotFound) {
				return plumbing.ZeroHash, nil
			}
			return plumbing.ZeroHash, fmt.Errorf("getting HEAD reference: %w", err)
		}
		return head.Hash(), nil
	}

	hash, err := repo.ResolveRevision(plumbing.Revision(ref))
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("resolving revision %q: %w", ref, err)
	}
	return *hash, nil
}

// readTags lists all tags that resolve to a commit, sorted by name.
func readTags(ctx context.Context, repo *git.Repository) ([]RawTag, error) {
	iter, err := repo.Tags()
	if err != nil {
		return nil, fmt.Errorf("listing tags: %w", err)
	}
	defer iter.Close()

	var tags []RawTag
	err = iter.ForEach(func(ref *plumbing.Reference) error {
		if err := ctx.Err(); err != nil {
			return err
		}

		name := ref.Name().Short()
		c, err := peelToCommit(repo, ref.Hash())
		if err != nil {
			logDebug("[git] skipping tag %s: %v", name, err)
			return nil
		}

		tags = append(tags, RawTag{Name: name, Target: toRawCommit(c)})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("iterating tags: %w", err)
	}

	sort.SliceStable(tags, func(i, j int) bool {
		return tags[i].Name < tags[j].Name
	})

	return tags, nil
}

// peelToCommit follows annotated tag objects until it reaches a commit.
func peelToCommit(repo *git.Repository, hash plumbing.Hash) (*object.Commit, error) {
	for {
		tagObj, err := repo.TagObject(hash)
		if errors.Is(err, plumbing.ErrObjectNotFound) {
			// Lightweight tag: the reference points straight at the target.
			return repo.CommitObject(hash)
		}
		if err != nil {
			return nil, fmt.Errorf("reading tag object %s: %w", hash, err)
		}

		switch tagObj.TargetType {
		case plumbing.TagObject:
			hash = tagObj.Target
		case plumbing.CommitObject:
			return repo.CommitObject(tagObj.Target)
		default:
			return nil, fmt.Errorf("tag %s points at a %s, not a commit", tagObj.Name, tagObj.TargetType)
		}
	}
}

func toRawCommit(c *object.Commit) RawCommit {
	return RawCommit{
		Hash:       c.Hash.String(),
		AuthorTime: c.Author.When,
		CommitTime: c.Committer.When,
		Message:    c.Message,
	}
}
