package application

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"

	"github.com/ryangerardwilson/gitguru/internal/branch/domain"
	gitapp "github.com/ryangerardwilson/gitguru/internal/git/application"
	gitdomain "github.com/ryangerardwilson/gitguru/internal/git/domain"
	"github.com/ryangerardwilson/gitguru/internal/log"
	"github.com/ryangerardwilson/gitguru/internal/tracing"
)

// DefaultAutoCommitMessage is used for changes committed on the target before a merge.
const DefaultAutoCommitMessage = "Commit before merge"

// MergeState is a step of the merge state machine.
type MergeState int

const (
	// MergeIdle validates both refs and the repository preconditions.
	MergeIdle MergeState = iota
	// MergeEnsureTargetCheckedOut switches to the target when needed.
	MergeEnsureTargetCheckedOut
	// MergeAutoCommitIfDirty commits pending changes on the target.
	MergeAutoCommitIfDirty
	// MergeAttemptMerge asks the repository to merge.
	MergeAttemptMerge
	// MergeMerged is terminal: the target tip advanced.
	MergeMerged
	// MergeConflicted is terminal: the working tree holds conflict markers.
	MergeConflicted
)

// String returns the string representation of a MergeState.
func (s MergeState) String() string {
	switch s {
	case MergeIdle:
		return "idle"
	case MergeEnsureTargetCheckedOut:
		return "ensure-target-checked-out"
	case MergeAutoCommitIfDirty:
		return "auto-commit-if-dirty"
	case MergeAttemptMerge:
		return "attempt-merge"
	case MergeMerged:
		return "merged"
	case MergeConflicted:
		return "conflicted"
	default:
		return fmt.Sprintf("unknown(%d)", s)
	}
}

// IsTerminal reports whether the machine stops in s.
func (s MergeState) IsTerminal() bool {
	return s == MergeMerged || s == MergeConflicted
}

// MergeOutcome records what a merge did.
type MergeOutcome struct {
	Source     domain.Ref
	Target     domain.Ref
	States     []MergeState       // Every state entered, in order
	AutoCommit gitdomain.CommitID // Commit made on the dirty target, if any
	Commit     gitdomain.CommitID // Target tip after the merge
	Paths      []string           // Conflicting paths
}

// State returns the last state entered.
func (o *MergeOutcome) State() MergeState {
	if len(o.States) == 0 {
		return MergeIdle
	}
	return o.States[len(o.States)-1]
}

func (o *MergeOutcome) enter(s MergeState) {
	o.States = append(o.States, s)
	log.Debug(log.CatFlow, "Merge state", "source", o.Source.String(), "target", o.Target.String(), "state", s.String())
}

// MergeConfig configures a MergeOrchestrator.
type MergeConfig struct {
	// AutoCommitMessage is the message for changes committed on a dirty
	// target. Defaults to DefaultAutoCommitMessage.
	AutoCommitMessage string
}

// MergeOrchestrator merges one branch into another, committing the target's
// pending changes first so a merge never runs over a dirty tree.
type MergeOrchestrator struct {
	gw     gitapp.Gateway
	policy domain.Policy
	cfg    MergeConfig
}

// NewMergeOrchestrator returns a MergeOrchestrator.
func NewMergeOrchestrator(gw gitapp.Gateway, policy domain.Policy, cfg MergeConfig) *MergeOrchestrator {
	if cfg.AutoCommitMessage == "" {
		cfg.AutoCommitMessage = DefaultAutoCommitMessage
	}
	return &MergeOrchestrator{gw: gw, policy: policy, cfg: cfg}
}

// Merge runs Idle → EnsureTargetCheckedOut → AutoCommitIfDirty → AttemptMerge
// and ends in Merged or Conflicted. A conflict returns the outcome together
// with a MergeConflict error listing the paths; the repository is left in
// its conflict state for manual resolution. A merge already left unfinished in
// the working tree also ends in Conflicted, before anything is committed.
func (o *MergeOrchestrator) Merge(ctx context.Context, source, target string) (*MergeOutcome, error) {
	ctx, span := tracing.Tracer().Start(ctx, "branch.merge")
	defer span.End()
	span.SetAttributes(attribute.String("merge.source", source), attribute.String("merge.target", target))

	grammar := o.policy.Grammar()
	src, err := grammar.ParseRef(source)
	if err != nil {
		return nil, err
	}
	dst, err := grammar.ParseRef(target)
	if err != nil {
		return nil, err
	}
	out := &MergeOutcome{Source: src, Target: dst}
	out.enter(MergeIdle)

	current, err := currentBranch(ctx, o.gw)
	if err != nil {
		return out, err
	}
	snap, err := takeSnapshot(ctx, o.gw, grammar)
	if err != nil {
		return out, err
	}
	for _, name := range []string{source, target} {
		if !snap.has(name) {
			return out, branchNotFound(name)
		}
	}

	// An unfinished merge must be concluded by the user; committing it here
	// would record the conflict markers.
	if err := o.checkPendingMerge(ctx, current, out); err != nil {
		return out, err
	}

	srcDirty, err := o.gw.IsDirty(ctx, source)
	if err != nil {
		return out, fmt.Errorf("checking %s for changes: %w", source, err)
	}
	if srcDirty && source != target {
		return out, domain.NewError(domain.KindDirtySourceBranch, source,
			"commit or stash the changes on the source branch before merging it")
	}

	out.enter(MergeEnsureTargetCheckedOut)
	if current != target {
		dirty, err := o.gw.IsDirty(ctx, current)
		if err != nil {
			return out, fmt.Errorf("checking %s for changes: %w", current, err)
		}
		if dirty {
			return out, domain.NewError(domain.KindDirtyWorkingTree, current,
				fmt.Sprintf("uncommitted changes would be carried onto %s", target))
		}
		if err := o.gw.Checkout(ctx, target); err != nil {
			return out, fmt.Errorf("checking out %s: %w", target, err)
		}
	}

	out.enter(MergeAutoCommitIfDirty)
	dirty, err := o.gw.IsDirty(ctx, target)
	if err != nil {
		return out, fmt.Errorf("checking %s for changes: %w", target, err)
	}
	if dirty {
		id, err := o.gw.CommitAll(ctx, o.cfg.AutoCommitMessage)
		if err != nil {
			return out, fmt.Errorf("committing changes on %s: %w", target, err)
		}
		out.AutoCommit = id
		log.Info(log.CatFlow, "Committed changes before merge", "branch", target, "commit", string(id))
	}

	out.enter(MergeAttemptMerge)
	res, err := o.gw.Merge(ctx, source, target)
	if err != nil {
		return out, fmt.Errorf("merging %s into %s: %w", source, target, err)
	}
	if !res.Merged() {
		out.Paths = res.Paths
		out.enter(MergeConflicted)
		log.Warn(log.CatFlow, "Merge conflict", "source", source, "target", target, "paths", res.Paths)
		return out, &domain.Error{
			Kind:   domain.KindMergeConflict,
			Ref:    source,
			Detail: fmt.Sprintf("merging into %s left conflicts; resolve them and commit", target),
			Paths:  res.Paths,
		}
	}

	out.Commit = res.Commit
	out.enter(MergeMerged)
	log.Info(log.CatFlow, "Merged", "source", source, "target", target, "commit", string(res.Commit))
	return out, nil
}

func (o *MergeOrchestrator) checkPendingMerge(ctx context.Context, current string, out *MergeOutcome) error {
	paths, err := o.gw.UnmergedPaths(ctx)
	if err != nil {
		return fmt.Errorf("checking for unmerged paths: %w", err)
	}
	pending := len(paths) > 0
	if !pending {
		if pending, err = o.gw.MergeInProgress(ctx); err != nil {
			return fmt.Errorf("checking for a merge in progress: %w", err)
		}
	}
	if !pending {
		return nil
	}

	out.Paths = paths
	out.enter(MergeConflicted)
	log.Warn(log.CatFlow, "Merge already in progress", "branch", current, "paths", paths)
	return &domain.Error{
		Kind:   domain.KindMergeConflict,
		Ref:    current,
		Detail: "a merge is still in progress; resolve the conflicts and commit before merging again",
		Paths:  paths,
	}
}
