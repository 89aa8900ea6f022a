// Package git reads commit history and tags for gitchangelog. It uses the
// go-git library so no git CLI installation is required, and exposes the
// small set of repository queries the changelog pipeline needs: history and
// tag listing, current branch detection, repository validation and tag fetch.
package git

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/transport"
	"github.com/go-git/go-git/v5/plumbing/transport/http"
	"github.com/go-git/go-git/v5/plumbing/transport/ssh"
)

// debugLogger is a function that logs debug messages when debug mode is enabled.
// By default, it's a no-op. Set it via SetDebugLogger to enable debug output.
var debugLogger func(format string, args ...any)

// SetDebugLogger configures the debug logger for git operations.
// Pass nil to disable debug logging. The logger function should format
// and output the message (similar to log.Printf signature).
func SetDebugLogger(logger func(format string, args ...any)) {
	debugLogger = logger
}

// logDebug logs a debug message if the debug logger is set.
func logDebug(format string, args ...any) {
	if debugLogger != nil {
		debugLogger(format, args...)
	}
}

// openRepo opens a git repository at the specified path or current working directory.
// It uses go-git's PlainOpenWithOptions with DetectDotGit enabled to traverse
// up the directory tree to find the repository root.
// If path is empty, the current working directory is used.
func openRepo(path string) (*git.Repository, error) {
	if path == "" {
		var err error
		path, err = os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("getting current directory: %w", err)
		}
	}

	logDebug("[git] opening repository at %s", path)

	repo, err := git.PlainOpenWithOptions(path, &git.PlainOpenOptions{
		DetectDotGit: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening repository at %s: %w", path, err)
	}

	logDebug("[git] repository opened successfully")
	return repo, nil
}

// GetCurrentBranch returns the name of the current git branch.
// Returns empty string if in detached HEAD state or if the repository has no commits yet.
func GetCurrentBranch(path string) (string, error) {
	repo, err := openRepo(path)
	if err != nil {
		return "", err
	}

	head, err := repo.Head()
	if err != nil {
		if errors.Is(err, plumbing.ErrReferenceNotFound) {
			return "", nil
		}
		return "", fmt.Errorf("getting HEAD reference: %w", err)
	}

	if !head.Name().IsBranch() {
		logDebug("[git] GetCurrentBranch: detached HEAD state")
		return "", nil
	}

	branch := head.Name().Short()
	logDebug("[git] GetCurrentBranch: %s", branch)
	return branch, nil
}

// GetRepositoryRoot returns the absolute path to the repository root.
func GetRepositoryRoot(path string) (string, error) {
	repo, err := openRepo(path)
	if err != nil {
		return "", err
	}

	worktree, err := repo.Worktree()
	if err != nil {
		return "", fmt.Errorf("getting worktree: %w", err)
	}

	root := worktree.Filesystem.Root()
	logDebug("[git] GetRepositoryRoot: %s", root)
	return root, nil
}

// DefaultFetchTimeout is the default timeout for fetch operations.
const DefaultFetchTimeout = 60 * time.Second

// tagRefSpec mirrors every remote tag into refs/tags.
const tagRefSpec = config.RefSpec("+refs/tags/*:refs/tags/*")

// getAuthForURL returns the appropriate authentication method for a remote URL.
// SSH URLs use SSH agent auth, HTTPS URLs use environment credentials.
func getAuthForURL(url string) transport.AuthMethod {
	if isSSHURL(url) {
		auth, err := ssh.NewSSHAgentAuth("git")
		if err != nil {
			logDebug("[git] SSH agent auth failed: %v", err)
			return nil
		}
		return auth
	}

	username := os.Getenv("GIT_USERNAME")
	password := os.Getenv("GIT_PASSWORD")
	if username == "" {
		username = os.Getenv("GITHUB_TOKEN")
		if username != "" {
			password = "" // GitHub token can be used as username with empty password
		}
	}

	if username != "" {
		return &http.BasicAuth{
			Username: username,
			Password: password,
		}
	}

	return nil
}

// isSSHURL checks if a URL is an SSH URL.
// Detects git@ (SCP-style), ssh://, and git+ssh:// schemes.
func isSSHURL(url string) bool {
	return strings.HasPrefix(url, "git@") ||
		strings.HasPrefix(url, "ssh://") ||
		strings.HasPrefix(url, "git+ssh://")
}

// isSSHAgentAvailable checks if an SSH agent is available.
func isSSHAgentAvailable() bool {
	return strings.TrimSpace(os.Getenv("SSH_AUTH_SOCK")) != ""
}

// FetchTags fetches tags from every configured remote of the repository at path.
// It returns true if all fetches succeeded. Failures on individual remotes are
// reported as warnings through the warn function and do not produce an error,
// so a changelog can still be generated from the local tags.
func FetchTags(ctx context.Context, path string, warn func(remote string, err error)) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	repo, err := openRepo(path)
	if err != nil {
		return false, err
	}

	remotes, err := repo.Remotes()
	if err != nil {
		logDebug("[git] FetchTags: no remotes: %v", err)
		return true, nil
	}

	if len(remotes) == 0 {
		logDebug("[git] FetchTags: no remotes configured")
		return true, nil
	}

	allSucceeded := true
	for _, remote := range remotes {
		if ctx.Err() != nil {
			logDebug("[git] FetchTags: context cancelled, stopping fetch")
			return false, nil
		}
		if err := fetchRemoteTags(ctx, repo, remote); err != nil {
			if warn != nil {
				warn(remote.Config().Name, err)
			}
			allSucceeded = false
		}
	}

	logDebug("[git] FetchTags: completed, all succeeded: %v", allSucceeded)
	return allSucceeded, nil
}

// fetchRemoteTags fetches tags from a single remote with authentication.
// Skips SSH remotes when no SSH agent is available.
func fetchRemoteTags(ctx context.Context, repo *git.Repository, remote *git.Remote) error {
	remoteConfig := remote.Config()
	if len(remoteConfig.URLs) == 0 {
		return nil
	}

	url := remoteConfig.URLs[0]

	if isSSHURL(url) && !isSSHAgentAvailable() {
		logDebug("[git] skipping fetch from remote '%s': SSH URL without SSH agent available", remoteConfig.Name)
		return nil
	}

	logDebug("[git] fetching tags from remote '%s' (%s)", remoteConfig.Name, url)

	err := repo.FetchContext(ctx, &git.FetchOptions{
		RemoteName: remoteConfig.Name,
		Auth:       getAuthForURL(url),
		Tags:       git.AllTags,
		RefSpecs:   []config.RefSpec{tagRefSpec},
	})

	if ctx.Err() != nil {
		logDebug("[git] fetch from remote '%s' timed out or cancelled", remoteConfig.Name)
		return ctx.Err()
	}

	if errors.Is(err, git.NoErrAlreadyUpToDate) {
		return nil
	}

	return err
}
