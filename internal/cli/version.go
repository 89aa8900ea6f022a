package cli

import (
	"fmt"
	"io"

	"github.com/ariel-frischer/gitchangelog/internal/build"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var versionPlain bool

var versionCmd = &cobra.Command{
	Use:         "version",
	Short:       "Display version information",
	Long:        "Display version, commit, build date, and Go version information for gitchangelog",
	Annotations: map[string]string{annotationSkipConfig: "true"},
	Example: `  # Show version info
  gitchangelog version

  # Plain output (for scripts)
  gitchangelog version --plain`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		info := build.Current()
		if versionPlain {
			return printPlainVersion(cmd.OutOrStdout(), info)
		}
		return printPrettyVersion(cmd.OutOrStdout(), info)
	},
}

func init() {
	versionCmd.GroupID = GroupInfo
	versionCmd.Flags().BoolVar(&versionPlain, "plain", false, "Plain output without formatting")
	rootCmd.AddCommand(versionCmd)
}

// printPlainVersion prints a simple version output for scripting
func printPlainVersion(w io.Writer, info build.Info) error {
	_, err := fmt.Fprintf(w, "gitchangelog %s\ncommit: %s\nbuilt: %s\ngo: %s\nplatform: %s\n",
		info.Version, info.Commit, info.BuildDate, info.GoVersion, info.Platform)
	return err
}

// printPrettyVersion prints labelled, colored version information
func printPrettyVersion(w io.Writer, info build.Info) error {
	cyan := color.New(color.FgCyan, color.Bold).SprintFunc()
	dim := color.New(color.Faint).SprintFunc()

	rows := []struct {
		label string
		value string
	}{
		{"Version", info.Version},
		{"Commit", info.ShortCommit()},
		{"Built", info.BuildDate},
		{"Go", info.GoVersion},
		{"Platform", info.Platform},
	}

	if _, err := fmt.Fprintf(w, "%s %s\n\n", cyan("gitchangelog"), dim(build.SourceURL)); err != nil {
		return err
	}
	for _, row := range rows {
		if _, err := fmt.Fprintf(w, "  %-9s %s\n", row.label+":", row.value); err != nil {
			return err
		}
	}
	return nil
}
