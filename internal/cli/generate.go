package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ariel-frischer/gitchangelog/internal/changelog"
	"github.com/ariel-frischer/gitchangelog/internal/config"
	clierrors "github.com/ariel-frischer/gitchangelog/internal/errors"
	"github.com/ariel-frischer/gitchangelog/internal/generator"
	"github.com/ariel-frischer/gitchangelog/internal/git"
	"github.com/ariel-frischer/gitchangelog/internal/progress"
	"github.com/ariel-frischer/gitchangelog/internal/render"
	gogit "github.com/go-git/go-git/v5"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// generateFlags holds the flag values shared by generate and watch.
var generateFlags struct {
	repo        string
	ref         string
	format      string
	output      string
	groups      []string
	unreleased  bool
	releasesURL string
	order       string
	dateSource  string
	workers     int
	fetch       bool
	title       string
	release     string
	latest      bool
	plain       bool
	width       int
}

var generateCmd = &cobra.Command{
	Use:     "generate",
	Aliases: []string{"gen"},
	Short:   "Write the changelog (default command)",
	Long: `Write a changelog for the repository in the current directory.

Flags override configuration from .gitchangelog.yml, the user config file,
.env and GITCHANGELOG_* environment variables.`,
	Example: `  # Markdown on stdout
  gitchangelog generate

  # reStructuredText with linked release headings
  gitchangelog generate -f rst --releases-url 'https://github.com/org/repo/releases/tag/{}'

  # Only one release, newest releases first
  gitchangelog generate --release v1.2.0

  # Notes for the most recent tag only
  gitchangelog generate --latest
  gitchangelog generate --order newest`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := resolveSettings(cmd)
		if err != nil {
			return err
		}
		if err := checkTerminalFlags(cmd, s); err != nil {
			return err
		}
		return runGenerate(cmd.Context(), cmd, s)
	},
}

func init() {
	generateCmd.GroupID = GroupChangelog
	addGenerateFlags(generateCmd)
	generateCmd.Flags().StringVar(&generateFlags.release, "release", "", "render a single release by tag name")
	generateCmd.Flags().BoolVar(&generateFlags.latest, "latest", false, "render only the most recently dated release")
	rootCmd.AddCommand(generateCmd)
}

// addGenerateFlags registers the history and rendering flags on cmd.
func addGenerateFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&generateFlags.repo, "repo", "", "path inside the repository (default: current directory)")
	f.StringVar(&generateFlags.ref, "ref", "", "revision to walk history from (default: HEAD)")
	f.StringVarP(&generateFlags.format, "format", "f", "", "output format: markdown, rst, yaml, terminal")
	f.StringVarP(&generateFlags.output, "output", "o", "", "write to file instead of stdout")
	f.StringSliceVarP(&generateFlags.groups, "groups", "g", nil, "categories to include, '*' for all (default: feat,fix)")
	f.BoolVarP(&generateFlags.unreleased, "unreleased", "u", false, "include commits after the latest tag")
	f.StringVar(&generateFlags.releasesURL, "releases-url", "", "release link template, {} is the tag name")
	f.StringVar(&generateFlags.order, "order", "", "release order: source, newest, oldest")
	f.StringVar(&generateFlags.dateSource, "date-source", "", "commit timestamp to use: committer, author")
	f.IntVar(&generateFlags.workers, "workers", 0, "parallel message parsers (0 = number of CPUs)")
	f.BoolVar(&generateFlags.fetch, "fetch", false, "fetch tags from all remotes first")
	f.StringVar(&generateFlags.title, "title", "", "document title")
	f.BoolVar(&generateFlags.plain, "plain", false, "terminal format without colors or icons")
	f.IntVar(&generateFlags.width, "width", 0, "terminal line width (0 = auto-detect)")
}

// settings is the effective configuration of one run: config values with
// changed flags applied on top.
type settings struct {
	RepoPath    string
	Ref         string
	Format      render.Format
	Output      string
	Groups      []string
	Unreleased  bool
	ReleasesURL string
	Order       string
	DateSource  string
	Workers     int
	Fetch       bool
	Title       string
	Release     string
	Latest      bool
	Plain       bool
	Width       int
	Headings    map[string]string
}

// resolveSettings merges configuration with the flags set on cmd and
// validates the result the same way configuration files are validated.
func resolveSettings(cmd *cobra.Command) (settings, error) {
	c, err := requireConfig()
	if err != nil {
		return settings{}, clierrors.ConfigParseError(cfgFile, err)
	}

	merged := *c
	release, latest := "", false
	plain, width := false, 0

	changed := cmd.Flags().Changed
	if changed("repo") {
		merged.RepoPath = generateFlags.repo
	}
	if changed("ref") {
		merged.Ref = generateFlags.ref
	}
	if changed("format") {
		merged.Format = generateFlags.format
	}
	if changed("output") {
		merged.Output = generateFlags.output
	}
	if changed("groups") {
		merged.Groups = config.SplitList(generateFlags.groups)
	}
	if changed("unreleased") {
		merged.Unreleased = generateFlags.unreleased
	}
	if changed("releases-url") {
		merged.ReleasesURL = generateFlags.releasesURL
	}
	if changed("order") {
		if err := validateFlag("order", "order", generateFlags.order); err != nil {
			return settings{}, err
		}
		merged.Order = generateFlags.order
	}
	if changed("date-source") {
		if err := validateFlag("date-source", "date_source", generateFlags.dateSource); err != nil {
			return settings{}, err
		}
		merged.DateSource = generateFlags.dateSource
	}
	if changed("workers") {
		merged.Workers = generateFlags.workers
	}
	if changed("fetch") {
		merged.Fetch = generateFlags.fetch
	}
	if changed("title") {
		merged.Title = generateFlags.title
	}
	if changed("release") {
		release = generateFlags.release
	}
	if changed("latest") {
		latest = generateFlags.latest
	}
	if changed("plain") {
		plain = generateFlags.plain
	}
	if changed("width") {
		width = generateFlags.width
	}

	format, err := render.ParseFormat(merged.Format)
	if err != nil {
		return settings{}, clierrors.UnknownFormat(merged.Format, render.Formats())
	}
	merged.Format = string(format)

	if err := config.ValidateConfigValues(&merged, "command line"); err != nil {
		var verr *config.ValidationError
		if errors.As(err, &verr) && verr.Field != "" {
			return settings{}, clierrors.InvalidFlagValue(flagName(verr.Field), err)
		}
		return settings{}, err
	}

	return settings{
		RepoPath:    merged.RepoPath,
		Ref:         merged.Ref,
		Format:      format,
		Output:      merged.Output,
		Groups:      merged.Groups,
		Unreleased:  merged.Unreleased,
		ReleasesURL: merged.ReleasesURL,
		Order:       merged.Order,
		DateSource:  merged.DateSource,
		Workers:     merged.Workers,
		Fetch:       merged.Fetch,
		Title:       merged.Title,
		Release:     release,
		Latest:      latest,
		Plain:       plain,
		Width:       width,
		Headings:    merged.Headings,
	}, nil
}

// checkTerminalFlags rejects --plain and --width for formats that ignore them.
func checkTerminalFlags(cmd *cobra.Command, s settings) error {
	if s.Format == render.FormatTerminal {
		return nil
	}
	for _, name := range []string{"plain", "width"} {
		if cmd.Flags().Changed(name) {
			return clierrors.InvalidFlagCombination(
				fmt.Sprintf("--%s with --format %s", name, s.Format),
				fmt.Sprintf("--%s only applies to the terminal format", name),
			)
		}
	}
	return nil
}

// validateFlag checks an enum flag against the allowed values of its config key.
func validateFlag(flag, key, value string) error {
	if _, err := config.ValidateValue(key, value); err != nil {
		return clierrors.InvalidFlagValue(flag, err)
	}
	return nil
}

// flagName converts a config field such as "groups[1]" or "date_source"
// to its flag name.
func flagName(field string) string {
	name, _, _ := strings.Cut(field, "[")
	return strings.ReplaceAll(name, "_", "-")
}

// renderOptions converts settings to render options.
func (s settings) renderOptions(branch string) render.Options {
	return render.Options{
		Groups:      s.Groups,
		Unreleased:  s.Unreleased,
		ReleasesURL: s.ReleasesURL,
		Branch:      branch,
		Order:       s.Order,
		Release:     s.Release,
		Latest:      s.Latest,
		Headings:    changelog.DefaultHeadings().With(s.Headings),
		Title:       s.Title,
		Plain:       s.Plain,
		Width:       s.Width,
	}
}

// generatorOptions converts settings to generator options.
func (s settings) generatorOptions() generator.Options {
	return generator.Options{
		RepoPath:   s.RepoPath,
		Ref:        s.Ref,
		DateSource: s.DateSource,
		Workers:    s.Workers,
		Fetch:      s.Fetch,
	}
}

// runGenerate reads history and writes the rendered changelog.
func runGenerate(ctx context.Context, cmd *cobra.Command, s settings) error {
	result, err := readResult(ctx, cmd.ErrOrStderr(), s)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := render.Render(&buf, result, s.Format, s.renderOptions(currentBranch(s))); err != nil {
		return describeError(err, s.RepoPath)
	}

	return writeOutput(cmd.OutOrStdout(), s.Output, buf.Bytes())
}

// readResult runs the generator with a spinner on stderr.
func readResult(ctx context.Context, stderr io.Writer, s settings) (*changelog.Result, error) {
	caps := progress.TerminalCapabilities{}
	if f, ok := stderr.(*os.File); ok {
		caps = progress.DetectTerminalCapabilities(f)
	}
	sp := progress.NewSpinner(stderr, caps)
	sp.Start("Reading history")

	result, err := generator.New(logger).Generate(ctx, s.generatorOptions())
	if err != nil {
		sp.Fail("")
		return nil, describeError(err, s.RepoPath)
	}

	sp.Succeed(fmt.Sprintf("%d releases", len(result.Releases)))
	return result, nil
}

// currentBranch returns the checked-out branch, or "" when detached.
func currentBranch(s settings) string {
	branch, err := git.GetCurrentBranch(s.RepoPath)
	if err != nil {
		logger.WithError(err).Debug("Could not determine current branch")
		return ""
	}
	return branch
}

// writeOutput writes data to path, or to stdout when path is empty.
func writeOutput(stdout io.Writer, path string, data []byte) error {
	if path == "" {
		_, err := stdout.Write(data)
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return clierrors.FileNotWritable(path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return clierrors.FileNotWritable(path, err)
	}
	logger.WithFields(logrus.Fields{"path": path, "bytes": len(data)}).Info("Wrote changelog")
	return nil
}

// describeError converts errors a user can act on into CLIErrors.
func describeError(err error, repoPath string) error {
	var notFound *changelog.ReleaseNotFoundError
	switch {
	case errors.Is(err, changelog.ErrNoReleases):
		return clierrors.NoReleases(repoPath)
	case errors.Is(err, gogit.ErrRepositoryNotExists):
		return clierrors.NotARepository(repoPath)
	case errors.As(err, &notFound):
		return clierrors.ReleaseNotFound(notFound.Name, notFound.Available)
	case errors.Is(err, render.ErrUnknownFormat):
		return clierrors.UnknownFormat(err.Error(), render.Formats())
	case errors.Is(err, render.ErrUnknownOrder):
		return clierrors.InvalidFlagValue("order", err)
	default:
		return err
	}
}
