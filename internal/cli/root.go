// Package cli implements the gitchangelog command line interface.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/ariel-frischer/gitchangelog/internal/config"
	clierrors "github.com/ariel-frischer/gitchangelog/internal/errors"
	"github.com/ariel-frischer/gitchangelog/internal/git"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// Command group IDs for help output.
const (
	GroupChangelog     = "changelog"
	GroupConfiguration = "configuration"
	GroupInfo          = "info"
)

// annotationSkipConfig marks commands that run without loading configuration,
// so a broken config file can still be inspected or replaced.
const annotationSkipConfig = "skip-config"

var (
	cfgFile     string
	debugFlag   bool
	verboseFlag bool

	logger *logrus.Logger
	cfg    *config.Configuration
)

var rootCmd = &cobra.Command{
	Use:   "gitchangelog",
	Short: "Generate changelogs from conventional commit history",
	Long: `gitchangelog reads a git repository's commits and tags and writes a
changelog grouped by release and commit category.

Commit headers follow the form "category(scope): summary", for example
"feat(parser): accept empty bodies". Commits that do not follow it are left
out. Every tag is a release; commits after the latest tag are unreleased.

Running gitchangelog without a command is the same as 'gitchangelog generate'.`,
	Example: `  # Markdown changelog of features and fixes on stdout
  gitchangelog

  # All categories including unreleased work, written to a file
  gitchangelog generate --groups '*' --unreleased -o CHANGELOG.md

  # Show one release in the terminal
  gitchangelog releases v1.2.0`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.AddGroup(
		&cobra.Group{ID: GroupChangelog, Title: "Changelog Commands:"},
		&cobra.Group{ID: GroupConfiguration, Title: "Configuration Commands:"},
		&cobra.Group{ID: GroupInfo, Title: "Information Commands:"},
	)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "project config file (default: .gitchangelog.yml)")
	rootCmd.PersistentFlags().BoolVar(&debugFlag, "debug", false, "debug logging")
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "verbose logging")

	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return clierrors.NewArgumentErrorWithUsage(err.Error(), cmd.UseLine())
	})
}

// setup builds the logger and loads configuration before any command runs.
func setup(cmd *cobra.Command, args []string) error {
	logger = newLogger(cmd.ErrOrStderr(), debugFlag, verboseFlag)
	git.SetDebugLogger(logger.Debugf)

	if cmd.Annotations[annotationSkipConfig] == "true" {
		return nil
	}

	loaded, err := config.LoadWithOptions(config.LoadOptions{
		ProjectConfigPath: cfgFile,
		WarningWriter:     cmd.ErrOrStderr(),
	})
	if err != nil {
		return clierrors.ConfigParseError(cfgFile, err)
	}
	cfg = loaded
	logger.WithField("sources", cfg.Sources).Debug("Loaded configuration")
	return nil
}

// newLogger returns a logger writing to w. Warnings are always shown.
func newLogger(w io.Writer, debug, verbose bool) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(w)
	switch {
	case debug:
		l.SetLevel(logrus.DebugLevel)
	case verbose:
		l.SetLevel(logrus.InfoLevel)
	default:
		l.SetLevel(logrus.WarnLevel)
	}
	return l
}

// Execute runs the root command with the process arguments and prints any
// error. The returned error maps to an exit code through ExitCode.
func Execute() error {
	return ExecuteContext(context.Background(), os.Args[1:])
}

// ExecuteContext runs the root command with args.
func ExecuteContext(ctx context.Context, args []string) error {
	rootCmd.SetArgs(withDefaultCommand(args))
	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		printError(rootCmd.ErrOrStderr(), err)
	}
	return err
}

// withDefaultCommand prepends "generate" when args name no subcommand.
func withDefaultCommand(args []string) []string {
	if slices.ContainsFunc(args, func(a string) bool { return a == "-h" || a == "--help" }) {
		return args
	}
	cmd, _, err := rootCmd.Find(args)
	if err != nil || cmd != rootCmd {
		return args
	}
	return append([]string{generateCmd.Name()}, args...)
}

// printError writes err to w. ExitErrors have already been reported.
func printError(w io.Writer, err error) {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return
	}
	if !clierrors.IsCLIError(err) {
		clierrors.FprintError(w, clierrors.Wrap(err, clierrors.Runtime))
		return
	}
	clierrors.FprintError(w, clierrors.AsCLIError(err))
}

// requireConfig returns the loaded configuration, or defaults when a
// command skipped loading.
func requireConfig() (*config.Configuration, error) {
	if cfg != nil {
		return cfg, nil
	}
	loaded, err := config.LoadWithOptions(config.LoadOptions{ProjectConfigPath: cfgFile, SkipWarnings: true})
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}
	cfg = loaded
	return cfg, nil
}
