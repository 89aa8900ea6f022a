// Package watch notifies callers when a repository's tags, branches or HEAD
// move, so a changelog can be regenerated as soon as a release is tagged.
package watch

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/ariel-frischer/gitchangelog/internal/git"
	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
)

const (
	// DefaultDebounce groups the burst of ref writes a single git command makes.
	DefaultDebounce = 300 * time.Millisecond
	// DefaultPollInterval is the fallback scan for events fsnotify missed.
	DefaultPollInterval = 2 * time.Second
)

// refDirs are watched recursively, relative to the .git directory.
var refDirs = []string{
	filepath.Join("refs", "tags"),
	filepath.Join("refs", "heads"),
}

// refFiles are watched through their parent, the .git directory.
var refFiles = []string{"HEAD", "packed-refs"}

// ChangeFunc is called after refs have settled. Errors are logged and
// watching continues.
type ChangeFunc func(ctx context.Context) error

// RefWatcher watches the refs of one repository.
type RefWatcher struct {
	gitDir       string
	debounce     time.Duration
	pollInterval time.Duration
	logger       *logrus.Logger
	watcher      *fsnotify.Watcher
	mu           sync.Mutex
	closed       bool
}

// Option configures a RefWatcher.
type Option func(*RefWatcher)

// WithDebounce sets how long refs must be quiet before the callback runs.
func WithDebounce(d time.Duration) Option {
	return func(w *RefWatcher) {
		w.debounce = d
	}
}

// WithPollInterval sets the fallback scan interval. Zero disables polling.
func WithPollInterval(d time.Duration) Option {
	return func(w *RefWatcher) {
		w.pollInterval = d
	}
}

// WithLogger sets the logger for watch events and callback failures.
func WithLogger(logger *logrus.Logger) Option {
	return func(w *RefWatcher) {
		w.logger = logger
	}
}

// New creates a RefWatcher for the repository containing repoPath.
func New(repoPath string, opts ...Option) (*RefWatcher, error) {
	root, err := git.GetRepositoryRoot(repoPath)
	if err != nil {
		return nil, err
	}

	gitDir := filepath.Join(root, ".git")
	info, err := os.Stat(gitDir)
	if err != nil {
		return nil, fmt.Errorf("locating git directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("watching linked worktrees is not supported: %s is a file", gitDir)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating fsnotify watcher: %w", err)
	}

	w := &RefWatcher{
		gitDir:       gitDir,
		debounce:     DefaultDebounce,
		pollInterval: DefaultPollInterval,
		watcher:      fw,
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.logger == nil {
		w.logger = logrus.New()
		w.logger.SetLevel(logrus.PanicLevel)
	}

	return w, nil
}

// GitDir returns the watched .git directory.
func (w *RefWatcher) GitDir() string {
	return w.gitDir
}

// Watch blocks until ctx is cancelled, calling onChange once per settled
// burst of ref changes. It does not call onChange for the initial state.
func (w *RefWatcher) Watch(ctx context.Context, onChange ChangeFunc) error {
	if err := w.addWatches(); err != nil {
		return err
	}

	last := w.fingerprint()

	debounce := time.NewTimer(w.debounce)
	debounce.Stop()
	defer debounce.Stop()

	var poll <-chan time.Time
	if w.pollInterval > 0 {
		ticker := time.NewTicker(w.pollInterval)
		defer ticker.Stop()
		poll = ticker.C
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			w.handleEvent(event)
			if w.isRelevant(event.Name) {
				w.logger.WithField("path", event.Name).Debug("Ref changed")
				debounce.Reset(w.debounce)
			}
		case <-poll:
			if current := w.fingerprint(); current != last {
				w.logger.Debug("Ref change detected by poll")
				debounce.Reset(w.debounce)
			}
		case <-debounce.C:
			last = w.fingerprint()
			if err := onChange(ctx); err != nil {
				w.logger.WithError(err).Warn("Regeneration failed")
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			// Polling covers anything the watcher dropped.
			w.logger.WithError(err).Debug("Watcher error")
		}
	}
}

// addWatches watches the .git directory and every directory below the ref roots.
func (w *RefWatcher) addWatches() error {
	if err := w.watcher.Add(w.gitDir); err != nil {
		return fmt.Errorf("watching %s: %w", w.gitDir, err)
	}

	for _, dir := range refDirs {
		root := filepath.Join(w.gitDir, dir)
		if err := os.MkdirAll(root, 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", root, err)
		}
		if err := w.addTree(root); err != nil {
			return err
		}
	}

	return nil
}

// addTree watches dir and its subdirectories, which hold refs like feature/x.
func (w *RefWatcher) addTree(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if err := w.watcher.Add(path); err != nil {
			return fmt.Errorf("watching %s: %w", path, err)
		}
		return nil
	})
}

// handleEvent starts watching directories created below the ref roots.
func (w *RefWatcher) handleEvent(event fsnotify.Event) {
	if !event.Has(fsnotify.Create) || !w.underRefDirs(event.Name) {
		return
	}
	info, err := os.Stat(event.Name)
	if err != nil || !info.IsDir() {
		return
	}
	if err := w.addTree(event.Name); err != nil {
		w.logger.WithError(err).Debug("Could not watch new ref directory")
	}
}

// isRelevant reports whether a changed path can move a tag, branch or HEAD.
// Lock files are skipped; the rename that follows them is the real change.
func (w *RefWatcher) isRelevant(path string) bool {
	if strings.HasSuffix(path, ".lock") {
		return false
	}
	rel, err := filepath.Rel(w.gitDir, path)
	if err != nil {
		return false
	}
	for _, name := range refFiles {
		if rel == name {
			return true
		}
	}
	return w.underRefDirs(path)
}

func (w *RefWatcher) underRefDirs(path string) bool {
	rel, err := filepath.Rel(w.gitDir, path)
	if err != nil {
		return false
	}
	for _, dir := range refDirs {
		if rel == dir || strings.HasPrefix(rel, dir+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

// fingerprint summarizes the size and modification time of every ref file.
func (w *RefWatcher) fingerprint() string {
	var sb strings.Builder

	stat := func(path string) {
		if info, err := os.Stat(path); err == nil {
			fmt.Fprintf(&sb, "%s:%d:%d;", path, info.Size(), info.ModTime().UnixNano())
		}
	}

	for _, name := range refFiles {
		stat(filepath.Join(w.gitDir, name))
	}
	for _, dir := range refDirs {
		_ = filepath.WalkDir(filepath.Join(w.gitDir, dir), func(path string, d fs.DirEntry, err error) error {
			if err == nil && !d.IsDir() {
				stat(path)
			}
			return nil
		})
	}

	return sb.String()
}

// Close stops the watcher and releases resources.
func (w *RefWatcher) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil
	}
	w.closed = true

	return w.watcher.Close()
}
