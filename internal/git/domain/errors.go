package domain

import (
	"errors"
	"strings"
)

// Git-specific errors.
var (
	// ErrNotGitRepo indicates the directory is not a git repository.
	ErrNotGitRepo = errors.New("not a git repository")

	// ErrAlreadyGitRepo indicates init was asked to run inside an existing repository.
	ErrAlreadyGitRepo = errors.New("already a git repository")

	// ErrDetachedHead indicates HEAD is not pointing to a branch (detached HEAD state).
	ErrDetachedHead = errors.New("detached HEAD state")

	// ErrBranchNotFound indicates the branch does not exist.
	ErrBranchNotFound = errors.New("branch not found")

	// ErrBranchExists indicates the branch already exists.
	ErrBranchExists = errors.New("branch already exists")

	// ErrNothingToCommit indicates there are no changes to commit.
	ErrNothingToCommit = errors.New("nothing to commit")

	// ErrGitNotInstalled indicates the git executable is not on PATH.
	ErrGitNotInstalled = errors.New("git executable not found")
)

// CommandError wraps a failed git invocation with context.
type CommandError struct {
	Op       string   // Operation that failed (e.g., "merge", "push")
	Args     []string // Git arguments that were run
	Output   string   // Combined stdout/stderr output
	ExitCode int      // Process exit code, -1 if git did not run
	Err      error    // Underlying error
}

func (e *CommandError) Error() string {
	if out := strings.TrimSpace(e.Output); out != "" {
		return e.Op + ": " + out
	}
	return e.Op + ": " + e.Err.Error()
}

func (e *CommandError) Unwrap() error {
	return e.Err
}
