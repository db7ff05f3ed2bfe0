package application

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ryangerardwilson/gitguru/internal/branch/domain"
	"github.com/ryangerardwilson/gitguru/internal/git/gittest"
)

const (
	release = "0.0.1/team/release"
	feature = "0.0.1/tom/feature/user-auth"
	bugfix  = "0.0.1/jane/bugfix/login-error"
)

func newMerger(repo *gittest.Repo) *MergeOrchestrator {
	return NewMergeOrchestrator(repo, testPolicy, MergeConfig{})
}

func releaseWithFeature(t *testing.T) *gittest.Repo {
	t.Helper()
	repo := gittest.NewRepo()
	repo.Branch(release, "main")
	repo.Branch(feature, release)
	repo.CommitOn(feature, map[string]string{"auth.go": "package auth\n"})
	return repo
}

func TestMerge_FeatureIntoRelease(t *testing.T) {
	repo := releaseWithFeature(t)
	featureTip := repo.Tip(feature)

	out, err := newMerger(repo).Merge(context.Background(), feature, release)
	require.NoError(t, err)
	require.Equal(t, []MergeState{
		MergeIdle, MergeEnsureTargetCheckedOut, MergeAutoCommitIfDirty, MergeAttemptMerge, MergeMerged,
	}, out.States)
	require.Equal(t, MergeMerged, out.State())
	require.Empty(t, out.AutoCommit)
	require.Equal(t, repo.Tip(release), out.Commit)
	require.Contains(t, repo.Parents(out.Commit), featureTip)
	require.Equal(t, "Merge "+feature+" into "+release, repo.Message(out.Commit))
	require.Equal(t, release, repo.Current())
}

func TestMerge_AutoCommitPrecedesMergeCommit(t *testing.T) {
	repo := releaseWithFeature(t)
	require.NoError(t, repo.Checkout(context.Background(), release))
	repo.WriteFile("notes.txt", "pending\n")

	out, err := newMerger(repo).Merge(context.Background(), feature, release)
	require.NoError(t, err)
	require.NotEmpty(t, out.AutoCommit)
	require.Equal(t, DefaultAutoCommitMessage, repo.Message(out.AutoCommit))

	ok, err := repo.IsAncestorOrEqual(context.Background(), out.AutoCommit, out.Commit)
	require.NoError(t, err)
	require.True(t, ok, "auto-commit must be an ancestor of the merge commit")
	require.Equal(t, out.AutoCommit, repo.Parents(out.Commit)[0])

	require.Equal(t, []string{
		"checkout:" + release,
		"commit:" + string(out.AutoCommit),
		"merge:" + string(out.Commit),
	}, repo.Calls)
}

func TestMerge_CustomAutoCommitMessage(t *testing.T) {
	repo := releaseWithFeature(t)
	require.NoError(t, repo.Checkout(context.Background(), release))
	repo.WriteFile("notes.txt", "pending\n")

	out, err := NewMergeOrchestrator(repo, testPolicy, MergeConfig{AutoCommitMessage: "wip"}).
		Merge(context.Background(), feature, release)
	require.NoError(t, err)
	require.Equal(t, "wip", repo.Message(out.AutoCommit))
}

func TestMerge_Conflict(t *testing.T) {
	repo := gittest.NewRepo()
	repo.Branch(release, "main")
	repo.Branch(feature, release)
	repo.CommitOn(feature, map[string]string{"README.md": "feature\n"})
	repo.CommitOn(release, map[string]string{"README.md": "release\n"})
	before := repo.Tip(release)

	out, err := newMerger(repo).Merge(context.Background(), feature, release)
	require.ErrorIs(t, err, domain.ErrMergeConflict)
	require.Equal(t, MergeConflicted, out.State())
	require.Equal(t, []string{"README.md"}, out.Paths)
	require.Equal(t, before, repo.Tip(release))

	var de *domain.Error
	require.ErrorAs(t, err, &de)
	require.Equal(t, []string{"README.md"}, de.Paths)
	require.Equal(t, domain.CategoryConflict, de.Kind.Category())
}

func conflicted(t *testing.T) *gittest.Repo {
	t.Helper()
	repo := gittest.NewRepo()
	repo.Branch(release, "main")
	repo.Branch(feature, release)
	repo.CommitOn(feature, map[string]string{"README.md": "feature\n"})
	repo.CommitOn(release, map[string]string{"README.md": "release\n"})
	_, err := newMerger(repo).Merge(context.Background(), feature, release)
	require.ErrorIs(t, err, domain.ErrMergeConflict)
	repo.Calls = nil
	return repo
}

func TestMerge_RerunWhileConflictedCommitsNothing(t *testing.T) {
	repo := conflicted(t)
	before := repo.Tip(release)

	out, err := newMerger(repo).Merge(context.Background(), feature, release)
	require.ErrorIs(t, err, domain.ErrMergeConflict)
	require.Equal(t, []MergeState{MergeIdle, MergeConflicted}, out.States)
	require.Equal(t, []string{"README.md"}, out.Paths)
	require.Empty(t, out.AutoCommit)
	require.Equal(t, before, repo.Tip(release))
	require.Empty(t, repo.Calls)

	var de *domain.Error
	require.ErrorAs(t, err, &de)
	require.Equal(t, release, de.Ref)
	require.Equal(t, []string{"README.md"}, de.Paths)
}

func TestMerge_ResolvedButUnconcludedMergeIsRefused(t *testing.T) {
	repo := conflicted(t)
	repo.Resolve("README.md", "feature and release\n")

	out, err := newMerger(repo).Merge(context.Background(), feature, release)
	require.ErrorIs(t, err, domain.ErrMergeConflict)
	require.Equal(t, MergeConflicted, out.State())
	require.Empty(t, out.Paths)
	require.Empty(t, repo.Calls)
}

func TestMerge_PendingMergeCheckFails(t *testing.T) {
	repo := releaseWithFeature(t)
	repo.Errors["UnmergedPaths"] = gittest.ErrInjected

	_, err := newMerger(repo).Merge(context.Background(), feature, release)
	require.ErrorIs(t, err, gittest.ErrInjected)
	require.Empty(t, repo.Calls)
}

func TestMerge_Preconditions(t *testing.T) {
	tests := []struct {
		name   string
		setup  func(*gittest.Repo)
		source string
		target string
		want   error
	}{
		{name: "malformed source", source: "feature-x", target: release, want: domain.ErrMalformedName},
		{name: "missing source", source: "0.0.1/tom/feature/nope", target: release, want: domain.ErrBranchNotFound},
		{name: "missing target", source: feature, target: "0.0.2/team/release", want: domain.ErrBranchNotFound},
		{
			name:   "detached head",
			setup:  func(r *gittest.Repo) { r.Detach() },
			source: feature,
			target: release,
			want:   domain.ErrDetachedHeadState,
		},
		{
			name: "dirty source",
			setup: func(r *gittest.Repo) {
				_ = r.Checkout(context.Background(), feature)
				r.WriteFile("auth.go", "changed\n")
			},
			source: feature,
			target: release,
			want:   domain.ErrDirtySourceBranch,
		},
		{
			name: "dirty third branch",
			setup: func(r *gittest.Repo) {
				r.WriteFile("README.md", "changed on main\n")
			},
			source: feature,
			target: release,
			want:   domain.ErrDirtyWorkingTree,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := releaseWithFeature(t)
			if tt.setup != nil {
				tt.setup(repo)
			}
			repo.Calls = nil
			tipBefore := repo.Tip(release)

			_, err := newMerger(repo).Merge(context.Background(), tt.source, tt.target)
			require.ErrorIs(t, err, tt.want)
			require.Empty(t, repo.Calls)
			require.Equal(t, tipBefore, repo.Tip(release))
		})
	}
}

func TestMerge_TrunkAsTarget(t *testing.T) {
	repo := gittest.NewRepo()
	repo.Branch(release, "main")
	repo.CommitOn(release, map[string]string{"v.txt": "0.0.1\n"})

	out, err := newMerger(repo).Merge(context.Background(), release, "main")
	require.NoError(t, err)
	require.True(t, out.Target.IsTrunk())
	require.Equal(t, repo.Tip("main"), out.Commit)
}

func TestMerge_AlreadyMergedLeavesTip(t *testing.T) {
	repo := gittest.NewRepo()
	repo.Branch(release, "main")
	tip := repo.Tip("main")

	out, err := newMerger(repo).Merge(context.Background(), release, "main")
	require.NoError(t, err)
	require.Equal(t, tip, out.Commit)
}

func TestMergeState_String(t *testing.T) {
	require.Equal(t, "attempt-merge", MergeAttemptMerge.String())
	require.Equal(t, "unknown(42)", MergeState(42).String())
	require.True(t, MergeConflicted.IsTerminal())
	require.False(t, MergeIdle.IsTerminal())
}
