package cli

import (
	"errors"
	"fmt"

	clierrors "github.com/ariel-frischer/gitchangelog/internal/errors"
)

// Exit codes for the gitchangelog CLI
// These codes support scripting and CI/CD integration
const (
	// ExitSuccess indicates successful command execution
	ExitSuccess = 0

	// ExitFailure indicates a runtime failure
	ExitFailure = 1

	// ExitInvalidArguments indicates invalid command arguments
	ExitInvalidArguments = 3

	// ExitMissingDependencies indicates a missing prerequisite, such as a
	// repository without tags or a path outside any repository
	ExitMissingDependencies = 4

	// ExitConfigError indicates invalid configuration
	ExitConfigError = 5
)

// ExitError carries an exit code for an error that has already been reported.
type ExitError struct {
	Code int
}

// NewExitError creates an ExitError with the given code.
func NewExitError(code int) error {
	return &ExitError{Code: code}
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit status %d", e.Code)
}

// ExitCode maps an error returned by Execute to a process exit code.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}

	if cliErr := clierrors.AsCLIError(err); cliErr != nil {
		switch cliErr.Category {
		case clierrors.Argument:
			return ExitInvalidArguments
		case clierrors.Configuration:
			return ExitConfigError
		case clierrors.Prerequisite:
			return ExitMissingDependencies
		}
	}

	return ExitFailure
}
