// Package application sequences repository calls into the branch workflows:
// creating, merging, deleting and viewing branches, and the privileged
// hotfix flow. Every workflow re-reads the repository when it starts.
package application

import (
	"context"
	"errors"
	"fmt"

	"github.com/ryangerardwilson/gitguru/internal/branch/domain"
	gitapp "github.com/ryangerardwilson/gitguru/internal/git/application"
	gitdomain "github.com/ryangerardwilson/gitguru/internal/git/domain"
)

// snapshot is the branch listing a workflow decides from.
type snapshot struct {
	branches []gitdomain.Branch
	byName   map[string]gitdomain.Branch
	names    []domain.Name // every branch that follows the convention
}

func takeSnapshot(ctx context.Context, gw gitapp.Gateway, grammar domain.Grammar) (*snapshot, error) {
	branches, err := gw.ListBranches(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing branches: %w", err)
	}
	s := &snapshot{branches: branches, byName: make(map[string]gitdomain.Branch, len(branches))}
	for _, b := range branches {
		s.byName[b.Name] = b
		if n, err := grammar.Parse(b.Name); err == nil {
			s.names = append(s.names, n)
		}
	}
	return s, nil
}

func (s *snapshot) has(name string) bool {
	_, ok := s.byName[name]
	return ok
}

func (s *snapshot) tip(name string) (gitdomain.CommitID, bool) {
	b, ok := s.byName[name]
	return b.Tip, ok
}

// currentBranch returns the checked out branch, translating a detached HEAD
// into DetachedHeadState.
func currentBranch(ctx context.Context, gw gitapp.Gateway) (string, error) {
	cur, err := gw.CurrentBranch(ctx)
	if errors.Is(err, gitdomain.ErrDetachedHead) {
		return "", &domain.Error{
			Kind:   domain.KindDetachedHeadState,
			Detail: "HEAD does not point at a branch; switch to a branch first",
			Err:    err,
		}
	}
	if err != nil {
		return "", fmt.Errorf("reading current branch: %w", err)
	}
	return cur, nil
}

func branchNotFound(name string) *domain.Error {
	return domain.NewError(domain.KindBranchNotFound, name, "branch does not exist")
}
