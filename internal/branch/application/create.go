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

// CreateResult describes a branch created by CreateOrchestrator.
type CreateResult struct {
	Name   domain.Name
	Parent domain.Ref
	Tip    gitdomain.CommitID
}

// CreateOrchestrator creates a convention branch from its expected parent and
// checks it out: ValidateName, ResolveParent, CreateFromParent, CheckoutNew.
type CreateOrchestrator struct {
	gw     gitapp.Gateway
	policy domain.Policy
}

// NewCreateOrchestrator returns a CreateOrchestrator.
func NewCreateOrchestrator(gw gitapp.Gateway, policy domain.Policy) *CreateOrchestrator {
	return &CreateOrchestrator{gw: gw, policy: policy}
}

// Create creates raw. It fails on the first validation or policy error
// without touching the repository, and removes the new branch again if it
// cannot be checked out.
func (o *CreateOrchestrator) Create(ctx context.Context, raw string) (*CreateResult, error) {
	ctx, span := tracing.Tracer().Start(ctx, "branch.create")
	defer span.End()

	name, err := o.policy.Grammar().Parse(raw)
	if err != nil {
		return nil, err
	}

	snap, err := takeSnapshot(ctx, o.gw, o.policy.Grammar())
	if err != nil {
		return nil, err
	}
	parent, err := o.resolveParent(name, snap)
	if err != nil {
		return nil, err
	}
	if snap.has(raw) {
		return nil, domain.NewError(domain.KindBranchAlreadyExists, raw, "branch already exists")
	}

	if err := o.gw.CreateBranch(ctx, raw, parent.String()); err != nil {
		if errors.Is(err, gitdomain.ErrBranchExists) {
			return nil, &domain.Error{Kind: domain.KindBranchAlreadyExists, Ref: raw, Detail: "branch already exists", Err: err}
		}
		return nil, fmt.Errorf("creating %s from %s: %w", raw, parent, err)
	}
	log.Info(log.CatFlow, "Created branch", "branch", raw, "parent", parent.String())

	if err := o.gw.Checkout(ctx, raw); err != nil {
		if delErr := o.gw.DeleteBranch(ctx, raw, true); delErr != nil {
			log.Error(log.CatFlow, "Failed to remove branch after checkout failure", "branch", raw, "error", delErr)
		}
		return nil, fmt.Errorf("checking out %s: %w", raw, err)
	}

	tip, _ := snap.tip(parent.String())
	return &CreateResult{Name: name, Parent: parent, Tip: tip}, nil
}

// resolveParent maps the policy's answer onto the live branch set.
func (o *CreateOrchestrator) resolveParent(name domain.Name, snap *snapshot) (domain.Ref, error) {
	parent, err := o.policy.ExpectedParent(name, snap.names)
	if err != nil {
		if errors.Is(err, domain.ErrNoMatchingRelease) {
			return domain.Ref{}, &domain.Error{
				Kind:   domain.KindParentBranchNotFound,
				Ref:    name.String(),
				Detail: fmt.Sprintf("create a %s release branch first", name.Version),
				Err:    err,
			}
		}
		return domain.Ref{}, err
	}
	if !snap.has(parent.String()) {
		return domain.Ref{}, domain.NewError(domain.KindParentBranchNotFound, name.String(),
			fmt.Sprintf("parent branch %s does not exist", parent))
	}
	return parent, nil
}
