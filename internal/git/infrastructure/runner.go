package infrastructure

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"

	domain "github.com/ryangerardwilson/gitguru/internal/git/domain"
)

// Runner executes git with args in dir and returns stdout.
// A failed invocation returns a *domain.CommandError carrying the exit code.
type Runner interface {
	Run(ctx context.Context, dir string, args ...string) (string, error)
}

// ExecRunner runs the git binary found on PATH.
type ExecRunner struct {
	Env []string // Extra environment entries appended to os.Environ()
}

// NewExecRunner returns a runner that forces the C locale so that git's
// messages can be matched reliably.
func NewExecRunner() *ExecRunner {
	return &ExecRunner{Env: []string{"LC_ALL=C"}}
}

// Run implements Runner.
func (r *ExecRunner) Run(ctx context.Context, dir string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(), r.Env...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		cerr := &domain.CommandError{
			Op:       args[0],
			Args:     args,
			Output:   stderr.String() + stdout.String(),
			ExitCode: -1,
			Err:      err,
		}
		var exitErr *exec.ExitError
		switch {
		case errors.As(err, &exitErr):
			cerr.ExitCode = exitErr.ExitCode()
		case errors.Is(err, exec.ErrNotFound):
			cerr.Err = domain.ErrGitNotInstalled
		}
		return stdout.String(), cerr
	}
	return stdout.String(), nil
}

// exitCode extracts the git exit code from err, or -1.
func exitCode(err error) int {
	var cerr *domain.CommandError
	if errors.As(err, &cerr) {
		return cerr.ExitCode
	}
	return -1
}

// output returns the combined output recorded in err.
func output(err error) string {
	var cerr *domain.CommandError
	if errors.As(err, &cerr) {
		return cerr.Output
	}
	return ""
}
