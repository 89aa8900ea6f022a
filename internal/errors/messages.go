package errors

import (
	"fmt"
	"strings"
)

// Common error messages for the gitchangelog CLI.
// These templates keep remediation hints consistent across commands.

// NoReleases creates an error for a repository without any tags.
func NoReleases(repoPath string) *CLIError {
	where := "the repository"
	if repoPath != "" {
		where = repoPath
	}
	return NewPrerequisiteError(
		fmt.Sprintf("no tags found in %s; a changelog needs at least one release", where),
		"Create a tag for the first release: git tag v0.1.0",
		"Fetch tags from the remote: gitchangelog generate --fetch",
		"Check that --ref points at a branch containing tagged commits",
	)
}

// NotARepository creates an error when the target path is not inside a git repository.
func NotARepository(path string) *CLIError {
	if path == "" {
		path = "."
	}
	return NewPrerequisiteError(
		fmt.Sprintf("not a git repository: %s", path),
		"Run gitchangelog from inside a repository",
		"Or point at one with: gitchangelog generate --repo <path>",
	)
}

// ReleaseNotFound creates an error for an unknown release name.
func ReleaseNotFound(name string, available []string) *CLIError {
	remediation := []string{"Release names are tag names; a leading 'v' is optional"}
	if len(available) > 0 {
		remediation = append(remediation, "Available releases: "+strings.Join(available, ", "))
	}
	remediation = append(remediation, "List releases with: gitchangelog releases")
	return NewArgumentError(fmt.Sprintf("release not found: %s", name), remediation...)
}

// UnknownFormat creates an error for an unsupported output format.
func UnknownFormat(format string, valid []string) *CLIError {
	return NewArgumentErrorWithUsage(
		fmt.Sprintf("unknown output format: %s", format),
		"gitchangelog generate --format <"+strings.Join(valid, "|")+">",
		"Valid formats: "+strings.Join(valid, ", "),
	)
}

// InvalidFlagValue creates an error for a flag whose value failed validation.
func InvalidFlagValue(flag string, err error) *CLIError {
	return WrapWithMessage(err, Argument,
		fmt.Sprintf("invalid value for --%s", flag),
		"Run 'gitchangelog config keys' to see accepted values",
	)
}

// InvalidFlagCombination creates an error for incompatible flag combinations.
func InvalidFlagCombination(flags string, reason string) *CLIError {
	return NewArgumentError(
		fmt.Sprintf("invalid flag combination: %s", flags),
		reason,
		"Use 'gitchangelog <command> --help' to see valid options",
	)
}

// ConfigParseError creates an error for an unreadable or invalid config file.
func ConfigParseError(path string, err error) *CLIError {
	message := "failed to load configuration"
	if path != "" {
		message = fmt.Sprintf("failed to load configuration from %s", path)
	}
	return WrapWithMessage(err, Configuration,
		message,
		"Check the file for YAML syntax errors",
		"Inspect the effective configuration with: gitchangelog config show",
		"Reset to defaults with: gitchangelog config init --force",
	)
}

// FileNotWritable creates an error when the changelog cannot be written.
func FileNotWritable(path string, err error) *CLIError {
	return WrapWithMessage(err, Runtime,
		fmt.Sprintf("cannot write changelog to %s", path),
		"Check file permissions: ls -la "+path,
		"Ensure the parent directory exists and is writable",
	)
}

// WatchRequiresOutput creates an error when watch mode has nowhere to write.
func WatchRequiresOutput() *CLIError {
	return NewArgumentErrorWithUsage(
		"watch mode needs an output file",
		"gitchangelog watch --output CHANGELOG.md",
		"Set --output, or 'output' in .gitchangelog.yml",
	)
}
