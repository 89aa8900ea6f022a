// Package generator wires the git backend to the changelog core: it reads the
// repository history, parses every commit message and partitions the result
// into releases.
package generator

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/ariel-frischer/gitchangelog/internal/changelog"
	"github.com/ariel-frischer/gitchangelog/internal/git"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Date sources select which commit timestamp orders history.
const (
	DateSourceCommitter = "committer"
	DateSourceAuthor    = "author"
)

// Options configures a single Generate run.
type Options struct {
	// RepoPath is any path inside the repository. Empty means the working directory.
	RepoPath string
	// Ref is the revision to walk from. Empty means HEAD.
	Ref string
	// DateSource is DateSourceCommitter (default) or DateSourceAuthor.
	DateSource string
	// Workers bounds concurrent message parsing. Zero means GOMAXPROCS.
	Workers int
	// Fetch pulls tags from all remotes before reading history.
	Fetch bool
}

// Generator produces partitioned changelogs from a repository.
type Generator struct {
	logger *logrus.Logger
}

// New creates a Generator. A nil logger discards log output.
func New(logger *logrus.Logger) *Generator {
	if logger == nil {
		logger = logrus.New()
		logger.SetLevel(logrus.PanicLevel)
	}
	return &Generator{logger: logger}
}

// Generate reads the repository history and partitions it into releases.
// It returns changelog.ErrNoReleases when the repository has no tags.
func (g *Generator) Generate(ctx context.Context, opts Options) (*changelog.Result, error) {
	log := g.logger.WithField("repo", opts.RepoPath)

	if opts.Fetch {
		g.fetchTags(ctx, opts.RepoPath)
	}

	history, err := git.ReadHistory(ctx, opts.RepoPath, git.HistoryOptions{Ref: opts.Ref})
	if err != nil {
		return nil, fmt.Errorf("reading history: %w", err)
	}
	log.WithFields(logrus.Fields{
		"commits": len(history.Commits),
		"tags":    len(history.Tags),
	}).Debug("Read repository history")

	commits, markers, err := Parse(ctx, history, opts)
	if err != nil {
		return nil, err
	}

	result, err := changelog.Partition(commits, markers)
	if err != nil {
		return nil, err
	}

	log.WithFields(logrus.Fields{
		"releases":   len(result.Releases),
		"unreleased": len(result.Unreleased.Commits),
		"excluded":   result.Excluded,
	}).Info("Partitioned commit history")

	return result, nil
}

// fetchTags refreshes tags from remotes; failures are logged and ignored.
func (g *Generator) fetchTags(ctx context.Context, repoPath string) {
	fetchCtx, cancel := context.WithTimeout(ctx, git.DefaultFetchTimeout)
	defer cancel()

	ok, err := git.FetchTags(fetchCtx, repoPath, func(remote string, err error) {
		g.logger.WithError(err).WithField("remote", remote).Warn("Failed to fetch tags")
	})
	if err != nil {
		g.logger.WithError(err).Warn("Skipping tag fetch")
		return
	}
	g.logger.WithField("complete", ok).Debug("Fetched tags")
}

// Parse turns raw history into parsed commits and tag markers.
// Messages are parsed concurrently; the returned slices keep history order.
func Parse(ctx context.Context, history *git.History, opts Options) ([]*changelog.Commit, []changelog.TagMarker, error) {
	timestamp, err := timestampFunc(opts.DateSource)
	if err != nil {
		return nil, nil, err
	}

	commits := make([]*changelog.Commit, len(history.Commits))
	markers := make([]changelog.TagMarker, len(history.Tags))

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(workerLimit(opts.Workers))

	for i, raw := range history.Commits {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			commits[i] = changelog.NewCommit(raw.Hash, timestamp(raw), raw.Message)
			return nil
		})
	}
	for i, tag := range history.Tags {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			target := tag.Target
			markers[i] = changelog.TagMarker{
				Name:   tag.Name,
				Target: changelog.NewCommit(target.Hash, timestamp(target), target.Message),
			}
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, nil, fmt.Errorf("parsing commit messages: %w", err)
	}

	return commits, markers, nil
}

func timestampFunc(source string) (func(git.RawCommit) time.Time, error) {
	switch source {
	case "", DateSourceCommitter:
		return func(c git.RawCommit) time.Time { return c.CommitTime }, nil
	case DateSourceAuthor:
		return func(c git.RawCommit) time.Time { return c.AuthorTime }, nil
	default:
		return nil, fmt.Errorf("unknown date source %q (expected %s or %s)", source, DateSourceCommitter, DateSourceAuthor)
	}
}

func workerLimit(n int) int {
	if n > 0 {
		return n
	}
	return runtime.GOMAXPROCS(0)
}
