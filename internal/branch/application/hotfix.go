package application

import (
	"context"
	"fmt"

	"github.com/ryangerardwilson/gitguru/internal/branch/domain"
	gitapp "github.com/ryangerardwilson/gitguru/internal/git/application"
	"github.com/ryangerardwilson/gitguru/internal/log"
)

// PublishResult records the steps of a privileged hotfix publish.
type PublishResult struct {
	Branch string
	Merge  *MergeOutcome
	Delete *DeleteReport
}

// HotfixService runs the privileged hotfix flow: a description-less hotfix
// branched from trunk, later merged into trunk, pushed and removed.
// Backporting into a release branch is left to an explicit merge.
type HotfixService struct {
	gw      gitapp.Gateway
	policy  domain.Policy
	creator *CreateOrchestrator
	merger  *MergeOrchestrator
	deleter *DeleteOrchestrator
}

// NewHotfixService returns a HotfixService sharing the given orchestrators.
func NewHotfixService(gw gitapp.Gateway, policy domain.Policy, creator *CreateOrchestrator, merger *MergeOrchestrator, deleter *DeleteOrchestrator) *HotfixService {
	return &HotfixService{gw: gw, policy: policy, creator: creator, merger: merger, deleter: deleter}
}

func (s *HotfixService) branchFor(version string) (domain.Name, error) {
	v, err := domain.ParseVersion(version)
	if err != nil {
		return domain.Name{}, err
	}
	name := s.policy.PrivilegedHotfix(v)
	if err := s.policy.Grammar().Validate(name); err != nil {
		return domain.Name{}, err
	}
	return name, nil
}

// Start creates <version>/<privileged owner>/hotfix from trunk and checks it
// out. A failure leaves the current branch checked out.
func (s *HotfixService) Start(ctx context.Context, version string) (*CreateResult, error) {
	name, err := s.branchFor(version)
	if err != nil {
		return nil, err
	}
	return s.creator.Create(ctx, name.String())
}

// Publish merges the privileged hotfix for version into trunk, pushes trunk
// and deletes the hotfix branch. It stops at the first failing step.
func (s *HotfixService) Publish(ctx context.Context, version string) (*PublishResult, error) {
	name, err := s.branchFor(version)
	if err != nil {
		return nil, err
	}
	raw := name.String()
	res := &PublishResult{Branch: raw}

	if _, err := s.gw.HeadCommit(ctx, raw); err != nil {
		return res, &domain.Error{
			Kind:   domain.KindBranchNotFound,
			Ref:    raw,
			Detail: "create it first with cto-hotfix",
			Err:    err,
		}
	}

	res.Merge, err = s.merger.Merge(ctx, raw, domain.TrunkName)
	if err != nil {
		return res, err
	}
	if err := s.gw.Push(ctx, domain.TrunkName); err != nil {
		return res, fmt.Errorf("pushing %s: %w", domain.TrunkName, err)
	}
	log.Info(log.CatFlow, "Published hotfix", "branch", raw)

	res.Delete, err = s.deleter.Delete(ctx, []string{raw}, false)
	return res, err
}
