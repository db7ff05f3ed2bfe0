package application

import (
	"context"
	"errors"
	"fmt"

	"github.com/ryangerardwilson/gitguru/internal/branch/domain"
	gitapp "github.com/ryangerardwilson/gitguru/internal/git/application"
	gitdomain "github.com/ryangerardwilson/gitguru/internal/git/domain"
	"github.com/ryangerardwilson/gitguru/internal/tree"
)

// Workspace holds the single-call operations: commit, push, switch and view.
type Workspace struct {
	gw     gitapp.Gateway
	policy domain.Policy
}

// NewWorkspace returns a Workspace.
func NewWorkspace(gw gitapp.Gateway, policy domain.Policy) *Workspace {
	return &Workspace{gw: gw, policy: policy}
}

// Commit stages and commits every change on the current branch.
func (w *Workspace) Commit(ctx context.Context, message string) (gitdomain.CommitID, error) {
	if message == "" {
		return "", errors.New("commit message is empty")
	}
	if _, err := currentBranch(ctx, w.gw); err != nil {
		return "", err
	}
	return w.gw.CommitAll(ctx, message)
}

// PushCurrent pushes the checked out branch after checking its name.
func (w *Workspace) PushCurrent(ctx context.Context) (string, error) {
	cur, err := currentBranch(ctx, w.gw)
	if err != nil {
		return "", err
	}
	if _, err := w.policy.Grammar().ParseRef(cur); err != nil {
		return "", err
	}
	if err := w.gw.Push(ctx, cur); err != nil {
		return "", fmt.Errorf("pushing %s: %w", cur, err)
	}
	return cur, nil
}

// Switch checks out an existing branch.
func (w *Workspace) Switch(ctx context.Context, raw string) error {
	if _, err := w.policy.Grammar().ParseRef(raw); err != nil {
		return err
	}
	if err := w.gw.Checkout(ctx, raw); err != nil {
		if errors.Is(err, gitdomain.ErrBranchNotFound) {
			return &domain.Error{Kind: domain.KindBranchNotFound, Ref: raw, Detail: "branch does not exist", Err: err}
		}
		return fmt.Errorf("switching to %s: %w", raw, err)
	}
	return nil
}

// View is the branch forest together with the checked out branch.
type View struct {
	Forest  *tree.Forest
	Current string // empty when HEAD is detached
}

// View builds the forest from the live branch set. Ancestry answers are
// memoized for this call only.
func (w *Workspace) View(ctx context.Context) (*View, error) {
	branches, err := w.gw.ListBranches(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing branches: %w", err)
	}
	builder := tree.NewBuilder(w.policy, gitapp.NewMemoAncestry(w.gw))
	forest, err := builder.Build(ctx, branches)
	if err != nil {
		return nil, err
	}

	cur, err := w.gw.CurrentBranch(ctx)
	if err != nil && !errors.Is(err, gitdomain.ErrDetachedHead) {
		return nil, fmt.Errorf("reading current branch: %w", err)
	}
	return &View{Forest: forest, Current: cur}, nil
}
