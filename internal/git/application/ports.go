// Package application defines ports (interfaces) for git operations.
package application

import (
	"context"

	domain "github.com/ryangerardwilson/gitguru/internal/git/domain"
)

// AncestryReader answers commit ancestry questions.
type AncestryReader interface {
	// IsAncestorOrEqual reports whether a is b or an ancestor of b.
	IsAncestorOrEqual(ctx context.Context, a, b domain.CommitID) (bool, error)
}

// Gateway is the repository the workflow layer drives.
// This abstraction allows for easy testing with in-memory implementations.
type Gateway interface {
	AncestryReader

	// ListBranches returns every local branch with its tip commit, oldest first.
	ListBranches(ctx context.Context) ([]domain.Branch, error)
	// CurrentBranch returns the checked out branch.
	// Returns ErrDetachedHead if HEAD does not point at a branch.
	CurrentBranch(ctx context.Context) (string, error)
	// HeadCommit returns the tip commit of branch.
	// Returns ErrBranchNotFound if the branch does not exist.
	HeadCommit(ctx context.Context, branch string) (domain.CommitID, error)
	// IsDirty reports uncommitted changes for branch. Only the checked out
	// branch has a working tree, so any other branch is reported clean.
	IsDirty(ctx context.Context, branch string) (bool, error)

	// CommitAll stages every change and commits it on the current branch.
	// Returns ErrNothingToCommit when the tree is clean.
	CommitAll(ctx context.Context, message string) (domain.CommitID, error)
	Checkout(ctx context.Context, branch string) error
	// CreateBranch creates name pointing at the tip of from without checking it out.
	CreateBranch(ctx context.Context, name, from string) error
	// DeleteBranch deletes name; force skips git's own merged check.
	DeleteBranch(ctx context.Context, name string, force bool) error
	// Merge merges source into target, which must be checked out. A textual
	// conflict is reported through MergeResult, not as an error.
	Merge(ctx context.Context, source, target string) (domain.MergeResult, error)
	// UnmergedPaths returns the paths left conflicted by an unfinished merge.
	UnmergedPaths(ctx context.Context) ([]string, error)
	// MergeInProgress reports whether a merge is waiting to be concluded.
	MergeInProgress(ctx context.Context) (bool, error)
	// Push pushes branch to the configured remote.
	Push(ctx context.Context, branch string) error
}
