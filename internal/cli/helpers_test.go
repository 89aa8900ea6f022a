package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/ariel-frischer/gitchangelog/internal/testutil"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// cliResult is the captured outcome of one command run.
type cliResult struct {
	stdout string
	stderr string
	err    error
}

// runCLI executes args in dir with isolated user configuration.
// It changes the working directory, so callers must not be parallel.
func runCLI(t *testing.T, dir, stdin string, args ...string) cliResult {
	t.Helper()

	t.Chdir(dir)
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", home)

	resetCommandState(rootCmd)

	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetIn(strings.NewReader(stdin))
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetIn(nil)
	})

	err := ExecuteContext(context.Background(), args)
	return cliResult{stdout: stdout.String(), stderr: stderr.String(), err: err}
}

// resetCommandState restores every flag to its default and forgets the
// configuration loaded by a previous run.
func resetCommandState(cmd *cobra.Command) {
	cfg = nil
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, sub := range cmd.Commands() {
		resetCommandState(sub)
	}
}

// newReleasedRepo builds a repository with one release, one uncategorized
// commit and one unreleased feature.
func newReleasedRepo(t *testing.T) *testutil.TestRepo {
	t.Helper()

	repo := testutil.NewTestRepo(t)
	repo.Commit("feat: initial feature", 0)
	fix := repo.Commit("fix(core): patch crash", time.Hour)
	repo.Tag("v1.0.0", fix)
	repo.Commit("update readme", 2*time.Hour)
	repo.Commit("feat(cli): add watch mode\n\nRuns until interrupted.", 3*time.Hour)
	return repo
}
