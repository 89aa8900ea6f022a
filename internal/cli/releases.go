package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/ariel-frischer/gitchangelog/internal/changelog"
	"github.com/ariel-frischer/gitchangelog/internal/render"
	"github.com/spf13/cobra"
)

var releasesCmd = &cobra.Command{
	Use:   "releases [name]",
	Short: "List releases or show one release",
	Long: `List every release with its date and the number of commits per category,
followed by the unreleased and uncategorized commit counts.

With a release name, show that release in the terminal. The leading 'v' of a
tag name is optional.`,
	Example: `  gitchangelog releases
  gitchangelog releases --order newest
  gitchangelog releases 1.2.0 --groups '*'`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := resolveSettings(cmd)
		if err != nil {
			return err
		}

		result, err := readResult(cmd.Context(), cmd.ErrOrStderr(), s)
		if err != nil {
			return err
		}

		if len(args) == 1 {
			s.Release = args[0]
			opts := s.renderOptions(currentBranch(s))
			opts.Unreleased = false
			if err := render.Render(cmd.OutOrStdout(), result, render.FormatTerminal, opts); err != nil {
				return describeError(err, s.RepoPath)
			}
			return nil
		}

		releases, err := render.Releases(result, s.Order)
		if err != nil {
			return describeError(err, s.RepoPath)
		}
		return listReleases(cmd.OutOrStdout(), releases, result)
	},
}

func init() {
	releasesCmd.GroupID = GroupChangelog
	addGenerateFlags(releasesCmd)
	rootCmd.AddCommand(releasesCmd)
}

// listReleases prints one line per release and a summary.
func listReleases(w io.Writer, releases []*changelog.Release, result *changelog.Result) error {
	width := 0
	for _, r := range releases {
		width = max(width, len(r.Name))
	}

	for _, r := range releases {
		if _, err := fmt.Fprintf(w, "%-*s  %s  %s  %s\n",
			width, r.Name, r.ReleasedAt.Format(render.DateLayout), r.ShortHash(), categoryCounts(r.Groups)); err != nil {
			return err
		}
	}

	unreleased := 0
	if result.Unreleased != nil {
		unreleased = len(result.Unreleased.Commits)
	}
	_, err := fmt.Fprintf(w, "\n%d releases, %d unreleased commits, %d uncategorized commits\n",
		len(releases), unreleased, result.Excluded)
	return err
}

// categoryCounts formats "feat:2 fix:1" in first-seen category order.
func categoryCounts(groups *changelog.Groups) string {
	if groups == nil || groups.Len() == 0 {
		return "-"
	}
	parts := make([]string, 0, groups.Len())
	for _, category := range groups.Categories() {
		parts = append(parts, fmt.Sprintf("%s:%d", category, len(groups.Get(category))))
	}
	return strings.Join(parts, " ")
}
