// Package infrastructure implements the git Gateway port on top of the git CLI.
package infrastructure

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	domain "github.com/ryangerardwilson/gitguru/internal/git/domain"
	"github.com/ryangerardwilson/gitguru/internal/log"
	"github.com/ryangerardwilson/gitguru/internal/tracing"
)

// DefaultRemote is the remote Push targets unless WithRemote is given.
const DefaultRemote = "origin"

// Executor drives one repository through the git CLI.
type Executor struct {
	dir    string // Repository working directory
	remote string // Remote used by Push
	runner Runner
}

// Option configures an Executor.
type Option func(*Executor)

// WithRunner sets a custom command runner.
// This is primarily used for testing to inject scripted git output.
func WithRunner(r Runner) Option {
	return func(e *Executor) {
		e.runner = r
	}
}

// WithRemote sets the remote Push targets.
func WithRemote(name string) Option {
	return func(e *Executor) {
		if name != "" {
			e.remote = name
		}
	}
}

// NewExecutor returns an Executor for the repository containing dir.
// Returns ErrNotGitRepo if dir is not inside a work tree.
func NewExecutor(ctx context.Context, dir string, opts ...Option) (*Executor, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve path: %w", err)
	}
	e := &Executor{dir: abs, remote: DefaultRemote, runner: NewExecRunner()}
	for _, opt := range opts {
		opt(e)
	}
	if _, err := e.run(ctx, "rev-parse", "--is-inside-work-tree"); err != nil {
		if errors.Is(err, domain.ErrGitNotInstalled) {
			return nil, err
		}
		return nil, fmt.Errorf("%s: %w", abs, domain.ErrNotGitRepo)
	}
	return e, nil
}

// Dir returns the repository working directory.
func (e *Executor) Dir() string {
	return e.dir
}

// ListBranches returns local branches ordered by the creation date git
// reports for their refs, oldest first.
func (e *Executor) ListBranches(ctx context.Context) ([]domain.Branch, error) {
	out, err := e.run(ctx, "for-each-ref", "--sort=creatordate",
		"--format=%(refname:short)%00%(objectname)%00%(HEAD)", "refs/heads/")
	if err != nil {
		return nil, err
	}
	return parseBranches(out), nil
}

func parseBranches(out string) []domain.Branch {
	var branches []domain.Branch
	for _, line := range strings.Split(out, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		fields := strings.Split(line, "\x00")
		if len(fields) < 2 {
			continue
		}
		b := domain.Branch{
			Name:  fields[0],
			Tip:   domain.CommitID(fields[1]),
			Order: len(branches) + 1,
		}
		if len(fields) > 2 && strings.TrimSpace(fields[2]) == "*" {
			b.IsCurrent = true
		}
		branches = append(branches, b)
	}
	return branches
}

// CurrentBranch implements the Gateway port.
func (e *Executor) CurrentBranch(ctx context.Context) (string, error) {
	out, err := e.run(ctx, "symbolic-ref", "--quiet", "--short", "HEAD")
	if err != nil {
		if exitCode(err) == 1 {
			return "", domain.ErrDetachedHead
		}
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// HeadCommit implements the Gateway port.
func (e *Executor) HeadCommit(ctx context.Context, branch string) (domain.CommitID, error) {
	out, err := e.run(ctx, "rev-parse", "--verify", "--quiet", "refs/heads/"+branch+"^{commit}")
	if err != nil {
		if exitCode(err) == 1 {
			return "", fmt.Errorf("%s: %w", branch, domain.ErrBranchNotFound)
		}
		return "", err
	}
	return domain.CommitID(strings.TrimSpace(out)), nil
}

// IsDirty implements the Gateway port.
func (e *Executor) IsDirty(ctx context.Context, branch string) (bool, error) {
	current, err := e.CurrentBranch(ctx)
	if err != nil && !errors.Is(err, domain.ErrDetachedHead) {
		return false, err
	}
	if current != branch {
		return false, nil
	}
	return e.hasChanges(ctx)
}

func (e *Executor) hasChanges(ctx context.Context) (bool, error) {
	out, err := e.run(ctx, "status", "--porcelain")
	if err != nil {
		return false, err
	}
	return strings.TrimSpace(out) != "", nil
}

// CommitAll implements the Gateway port.
func (e *Executor) CommitAll(ctx context.Context, message string) (domain.CommitID, error) {
	dirty, err := e.hasChanges(ctx)
	if err != nil {
		return "", err
	}
	if !dirty {
		return "", domain.ErrNothingToCommit
	}
	if _, err := e.run(ctx, "add", "-A"); err != nil {
		return "", err
	}
	if _, err := e.run(ctx, "commit", "--quiet", "-m", message); err != nil {
		return "", err
	}
	out, err := e.run(ctx, "rev-parse", "HEAD")
	if err != nil {
		return "", err
	}
	return domain.CommitID(strings.TrimSpace(out)), nil
}

// Checkout implements the Gateway port.
func (e *Executor) Checkout(ctx context.Context, branch string) error {
	if _, err := e.run(ctx, "checkout", "--quiet", branch, "--"); err != nil {
		if strings.Contains(output(err), "did not match") || strings.Contains(output(err), "invalid reference") {
			return fmt.Errorf("%s: %w", branch, domain.ErrBranchNotFound)
		}
		return err
	}
	return nil
}

// CreateBranch implements the Gateway port.
func (e *Executor) CreateBranch(ctx context.Context, name, from string) error {
	if _, err := e.run(ctx, "branch", "--no-track", name, from); err != nil {
		if strings.Contains(output(err), "already exists") {
			return fmt.Errorf("%s: %w", name, domain.ErrBranchExists)
		}
		return err
	}
	return nil
}

// DeleteBranch implements the Gateway port.
func (e *Executor) DeleteBranch(ctx context.Context, name string, force bool) error {
	flag := "-d"
	if force {
		flag = "-D"
	}
	if _, err := e.run(ctx, "branch", flag, name); err != nil {
		if strings.Contains(output(err), "not found") {
			return fmt.Errorf("%s: %w", name, domain.ErrBranchNotFound)
		}
		return err
	}
	return nil
}

// Merge implements the Gateway port. It always creates a merge commit
// (--no-ff) and reports textual conflicts with the unmerged paths.
func (e *Executor) Merge(ctx context.Context, source, target string) (domain.MergeResult, error) {
	current, err := e.CurrentBranch(ctx)
	if err != nil {
		return domain.MergeResult{}, err
	}
	if current != target {
		return domain.MergeResult{}, fmt.Errorf("merge target %q is not checked out (on %q)", target, current)
	}

	msg := fmt.Sprintf("Merge %s into %s", source, target)
	if _, mergeErr := e.run(ctx, "merge", "--no-ff", "--no-edit", "-m", msg, source); mergeErr != nil {
		paths, err := e.UnmergedPaths(ctx)
		if err != nil {
			return domain.MergeResult{}, err
		}
		if len(paths) == 0 {
			return domain.MergeResult{}, mergeErr
		}
		return domain.MergeResult{Status: domain.MergeConflicted, Paths: paths}, nil
	}

	tip, err := e.HeadCommit(ctx, target)
	if err != nil {
		return domain.MergeResult{}, err
	}
	return domain.MergeResult{Status: domain.MergeMerged, Commit: tip}, nil
}

// UnmergedPaths implements the Gateway port.
func (e *Executor) UnmergedPaths(ctx context.Context) ([]string, error) {
	out, err := e.run(ctx, "diff", "--name-only", "--diff-filter=U")
	if err != nil {
		return nil, err
	}
	var paths []string
	for _, p := range strings.Split(out, "\n") {
		if p = strings.TrimSpace(p); p != "" {
			paths = append(paths, p)
		}
	}
	return paths, nil
}

// MergeInProgress implements the Gateway port.
func (e *Executor) MergeInProgress(ctx context.Context) (bool, error) {
	_, err := e.run(ctx, "rev-parse", "--quiet", "--verify", "MERGE_HEAD")
	switch {
	case err == nil:
		return true, nil
	case exitCode(err) == 1:
		return false, nil
	default:
		return false, err
	}
}

// IsAncestorOrEqual implements the Gateway port.
func (e *Executor) IsAncestorOrEqual(ctx context.Context, a, b domain.CommitID) (bool, error) {
	if a == b {
		return true, nil
	}
	_, err := e.run(ctx, "merge-base", "--is-ancestor", string(a), string(b))
	switch {
	case err == nil:
		return true, nil
	case exitCode(err) == 1:
		return false, nil
	default:
		return false, err
	}
}

// Push implements the Gateway port.
func (e *Executor) Push(ctx context.Context, branch string) error {
	_, err := e.run(ctx, "push", e.remote, branch)
	return err
}

// run executes git inside a span and logs the outcome.
func (e *Executor) run(ctx context.Context, args ...string) (string, error) {
	ctx, span := tracing.Tracer().Start(ctx, "git "+args[0],
		trace.WithAttributes(
			attribute.StringSlice("git.args", args),
			attribute.String("git.dir", e.dir),
		))
	defer span.End()

	out, err := e.runner.Run(ctx, e.dir, args...)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		log.Debug(log.CatGit, "git command failed", "args", args, "exit", exitCode(err), "output", strings.TrimSpace(output(err)))
		return out, err
	}
	log.Debug(log.CatGit, "git command succeeded", "args", args)
	return out, nil
}

// InitialCommitMessage is the message of the commit created by Init.
const InitialCommitMessage = "Initial commit with existing files"

// Init turns dir into a repository whose only branch is main, with an
// initial commit containing every existing file.
// Returns ErrAlreadyGitRepo if dir already has a .git directory.
func Init(ctx context.Context, dir string, runner Runner) error {
	if runner == nil {
		runner = NewExecRunner()
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}
	if _, err := os.Stat(filepath.Join(dir, ".git")); err == nil {
		return fmt.Errorf("%s: %w", dir, domain.ErrAlreadyGitRepo)
	}

	steps := [][]string{
		{"init", "--quiet"},
		{"symbolic-ref", "HEAD", "refs/heads/main"},
		{"add", "-A"},
		{"commit", "--quiet", "--allow-empty", "-m", InitialCommitMessage},
	}
	for _, args := range steps {
		if _, err := runner.Run(ctx, dir, args...); err != nil {
			return fmt.Errorf("git %s: %w", args[0], err)
		}
	}
	log.Info(log.CatGit, "Initialized repository", "dir", dir)
	return nil
}
