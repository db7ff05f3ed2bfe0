package application

import (
	"context"
	"errors"
	"fmt"

	"github.com/ryangerardwilson/gitguru/internal/branch/domain"
	gitapp "github.com/ryangerardwilson/gitguru/internal/git/application"
	gitdomain "github.com/ryangerardwilson/gitguru/internal/git/domain"
	"github.com/ryangerardwilson/gitguru/internal/log"
	"github.com/ryangerardwilson/gitguru/internal/tracing"
)

// DeleteAction is how one branch of a batch was handled.
type DeleteAction string

const (
	// DeleteSafe means the branch was merged into its parent or trunk.
	DeleteSafe DeleteAction = "deleted"
	// DeleteForced means an unmerged branch was removed because force was set.
	DeleteForced DeleteAction = "force-deleted"
	// DeleteFailed means the branch was kept; Err says why.
	DeleteFailed DeleteAction = "failed"
)

// DeleteItem is the result for one requested branch.
type DeleteItem struct {
	Ref    string
	Parent string // Branch the merged check ran against
	Action DeleteAction
	Err    error
}

// DeleteReport lists every requested branch in request order.
type DeleteReport struct {
	Items []DeleteItem
}

// Deleted returns the branches that were removed.
func (r *DeleteReport) Deleted() []string {
	var out []string
	for _, it := range r.Items {
		if it.Action != DeleteFailed {
			out = append(out, it.Ref)
		}
	}
	return out
}

// Failures returns the branches that were kept.
func (r *DeleteReport) Failures() []domain.ItemFailure {
	var out []domain.ItemFailure
	for _, it := range r.Items {
		if it.Action == DeleteFailed {
			out = append(out, domain.ItemFailure{Ref: it.Ref, Err: it.Err})
		}
	}
	return out
}

// DeleteOrchestrator deletes a batch of branches. A branch merged into its
// convention parent (or trunk) is deleted; an unmerged one needs force.
// One failing branch never stops the rest of the batch.
type DeleteOrchestrator struct {
	gw     gitapp.Gateway
	policy domain.Policy
}

// NewDeleteOrchestrator returns a DeleteOrchestrator.
func NewDeleteOrchestrator(gw gitapp.Gateway, policy domain.Policy) *DeleteOrchestrator {
	return &DeleteOrchestrator{gw: gw, policy: policy}
}

// Delete processes names in order, once each. Every name is validated before
// anything is deleted; a malformed name aborts the whole batch. Per-branch failures
// are collected into the report and returned as a *domain.BatchError.
func (o *DeleteOrchestrator) Delete(ctx context.Context, names []string, force bool) (*DeleteReport, error) {
	ctx, span := tracing.Tracer().Start(ctx, "branch.delete")
	defer span.End()

	grammar := o.policy.Grammar()
	refs := make([]domain.Ref, 0, len(names))
	seen := make(map[string]bool, len(names))
	for _, raw := range names {
		ref, err := grammar.ParseRef(raw)
		if err != nil {
			return nil, err
		}
		if seen[ref.String()] {
			continue
		}
		seen[ref.String()] = true
		refs = append(refs, ref)
	}

	// A detached HEAD has no checked out branch to protect.
	current, err := o.gw.CurrentBranch(ctx)
	if err != nil && !errors.Is(err, gitdomain.ErrDetachedHead) {
		return nil, fmt.Errorf("reading current branch: %w", err)
	}
	snap, err := takeSnapshot(ctx, o.gw, grammar)
	if err != nil {
		return nil, err
	}
	ancestry := gitapp.NewMemoAncestry(o.gw)

	report := &DeleteReport{}
	for _, ref := range refs {
		item := o.deleteOne(ctx, ref, current, force, snap, ancestry)
		if item.Err != nil {
			log.Warn(log.CatFlow, "Branch not deleted", "branch", item.Ref, "error", item.Err)
		} else {
			log.Info(log.CatFlow, "Deleted branch", "branch", item.Ref, "action", string(item.Action))
		}
		report.Items = append(report.Items, item)
	}

	if failures := report.Failures(); len(failures) > 0 {
		return report, &domain.BatchError{Op: "delete", Total: len(refs), Failures: failures}
	}
	return report, nil
}

func (o *DeleteOrchestrator) deleteOne(ctx context.Context, ref domain.Ref, current string, force bool, snap *snapshot, ancestry gitapp.AncestryReader) DeleteItem {
	raw := ref.String()
	item := DeleteItem{Ref: raw, Action: DeleteFailed}

	switch {
	case ref.IsTrunk():
		item.Err = domain.NewError(domain.KindProtectedBranch, raw, "trunk cannot be deleted")
		return item
	case !snap.has(raw):
		item.Err = branchNotFound(raw)
		return item
	case raw == current:
		item.Err = domain.NewError(domain.KindBranchCheckedOut, raw, "switch to another branch first")
		return item
	}

	name, _ := ref.Name()
	tip, _ := snap.tip(raw)
	merged, into, err := o.mergedIntoParentOrTrunk(ctx, name, tip, snap, ancestry)
	if err != nil {
		item.Err = fmt.Errorf("checking whether %s is merged: %w", raw, err)
		return item
	}
	item.Parent = into

	switch {
	case merged:
		item.Action = DeleteSafe
	case force:
		item.Action = DeleteForced
	default:
		item.Err = domain.NewError(domain.KindUnmergedBranch, raw,
			"not merged into its parent or trunk; use --force to delete anyway")
		return item
	}

	// The merged check above replaces git's own, which only looks at HEAD.
	if err := o.gw.DeleteBranch(ctx, raw, true); err != nil {
		item.Action = DeleteFailed
		if errors.Is(err, gitdomain.ErrBranchNotFound) {
			item.Err = &domain.Error{Kind: domain.KindBranchNotFound, Ref: raw, Detail: "branch does not exist", Err: err}
		} else {
			item.Err = fmt.Errorf("deleting %s: %w", raw, err)
		}
	}
	return item
}

// mergedIntoParentOrTrunk reports whether tip is contained in the branch's
// convention parent or in trunk, and names the branch that contains it (or
// the parent it was checked against).
func (o *DeleteOrchestrator) mergedIntoParentOrTrunk(ctx context.Context, name domain.Name, tip gitdomain.CommitID, snap *snapshot, ancestry gitapp.AncestryReader) (bool, string, error) {
	candidates := make([]string, 0, 2)
	if parent, err := o.policy.ExpectedParent(name, snap.names); err == nil && !parent.IsTrunk() && snap.has(parent.String()) {
		candidates = append(candidates, parent.String())
	}
	if snap.has(domain.TrunkName) {
		candidates = append(candidates, domain.TrunkName)
	}

	for _, c := range candidates {
		ctip, _ := snap.tip(c)
		ok, err := ancestry.IsAncestorOrEqual(ctx, tip, ctip)
		if err != nil {
			return false, "", err
		}
		if ok {
			return true, c, nil
		}
	}
	if len(candidates) == 0 {
		return false, "", nil
	}
	return false, candidates[0], nil
}
