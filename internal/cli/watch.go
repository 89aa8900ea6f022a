package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	clierrors "github.com/ariel-frischer/gitchangelog/internal/errors"
	"github.com/ariel-frischer/gitchangelog/internal/watch"
	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Regenerate the changelog file whenever tags or branches change",
	Long: `Write the changelog once, then rewrite it every time a tag is created or
deleted, a branch moves or HEAD changes. Stop with Ctrl+C.`,
	Example: `  gitchangelog watch -o CHANGELOG.md --unreleased`,
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := resolveSettings(cmd)
		if err != nil {
			return err
		}
		if s.Output == "" {
			return clierrors.WatchRequiresOutput()
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return runWatch(ctx, cmd, s)
	},
}

func init() {
	watchCmd.GroupID = GroupChangelog
	addGenerateFlags(watchCmd)
	rootCmd.AddCommand(watchCmd)
}

// runWatch generates once and then on every settled ref change until ctx ends.
func runWatch(ctx context.Context, cmd *cobra.Command, s settings) error {
	w, err := watch.New(s.RepoPath, watch.WithLogger(logger))
	if err != nil {
		return describeError(err, s.RepoPath)
	}
	defer w.Close()

	if err := runGenerate(ctx, cmd, s); err != nil {
		return err
	}
	cmd.PrintErrf("Watching %s for ref changes\n", w.GitDir())

	return w.Watch(ctx, func(ctx context.Context) error {
		if err := runGenerate(ctx, cmd, s); err != nil {
			return err
		}
		logger.WithField("output", s.Output).Info("Changelog regenerated")
		return nil
	})
}
