package git

import (
	"errors"
	"fmt"
)

// ErrNotARepository is returned when the given path has no repository at its root.
var ErrNotARepository = errors.New("not a git repository")

// BranchNotFoundError indicates a branch reference could not be resolved.
type BranchNotFoundError struct {
	Name string
}

func (e *BranchNotFoundError) Error() string {
	return fmt.Sprintf("branch %q not found", e.Name)
}

// CommitNotFoundError indicates a commit id could not be resolved.
type CommitNotFoundError struct {
	ID string
}

func (e *CommitNotFoundError) Error() string {
	return fmt.Sprintf("commit %q not found", e.ID)
}

// RemoteNotFoundError indicates a named remote is not configured.
type RemoteNotFoundError struct {
	Name string
}

func (e *RemoteNotFoundError) Error() string {
	return fmt.Sprintf("remote %q not found", e.Name)
}

// CLINotFoundError indicates a required external tool is not installed.
type CLINotFoundError struct {
	Tool string
}

func (e *CLINotFoundError) Error() string {
	return fmt.Sprintf("CLI tool %q not found in PATH", e.Tool)
}

// CLIError wraps a failure reported by a delegated external tool.
type CLIError struct {
	Tool    string
	Message string
}

func (e *CLIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Tool, e.Message)
}

// ErrorCode maps an error to the stable code exposed to the API layer.
func ErrorCode(err error) string {
	var (
		branchErr *BranchNotFoundError
		commitErr *CommitNotFoundError
		remoteErr *RemoteNotFoundError
		cliMiss   *CLINotFoundError
		cliErr    *CLIError
	)
	switch {
	case errors.Is(err, ErrNotARepository):
		return "NOT_A_REPOSITORY"
	case errors.As(err, &branchErr):
		return "BRANCH_NOT_FOUND"
	case errors.As(err, &commitErr):
		return "COMMIT_NOT_FOUND"
	case errors.As(err, &remoteErr):
		return "REMOTE_NOT_FOUND"
	case errors.As(err, &cliMiss):
		return "CLI_NOT_FOUND"
	case errors.As(err, &cliErr):
		return "CLI_ERROR"
	default:
		return "GIT_ERROR"
	}
}
