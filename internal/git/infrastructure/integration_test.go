package infrastructure

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	branchapp "github.com/ryangerardwilson/gitguru/internal/branch/application"
	branchdomain "github.com/ryangerardwilson/gitguru/internal/branch/domain"
	domain "github.com/ryangerardwilson/gitguru/internal/git/domain"
)

// testRunner runs real git with a fixed identity and no user configuration.
func testRunner(t *testing.T) *ExecRunner {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}
	r := NewExecRunner()
	r.Env = append(r.Env,
		"GIT_AUTHOR_NAME=Test",
		"GIT_AUTHOR_EMAIL=test@example.com",
		"GIT_COMMITTER_NAME=Test",
		"GIT_COMMITTER_EMAIL=test@example.com",
		"GIT_CONFIG_GLOBAL="+os.DevNull,
		"GIT_CONFIG_NOSYSTEM=1",
	)
	return r
}

func initRepo(t *testing.T) (*Executor, string) {
	t.Helper()
	r := testRunner(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("# repo\n"), 0o600))
	require.NoError(t, Init(context.Background(), dir, r))
	e, err := NewExecutor(context.Background(), dir, WithRunner(r))
	require.NoError(t, err)
	return e, dir
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600))
}

func TestInit_CreatesMainWithInitialCommit(t *testing.T) {
	e, dir := initRepo(t)
	ctx := context.Background()

	current, err := e.CurrentBranch(ctx)
	require.NoError(t, err)
	require.Equal(t, "main", current)

	msg, err := e.runner.Run(ctx, dir, "log", "-1", "--format=%s")
	require.NoError(t, err)
	require.Equal(t, InitialCommitMessage+"\n", msg)

	err = Init(ctx, dir, e.runner)
	require.ErrorIs(t, err, domain.ErrAlreadyGitRepo)
}

func TestExecutor_BranchLifecycle(t *testing.T) {
	e, dir := initRepo(t)
	ctx := context.Background()

	require.NoError(t, e.CreateBranch(ctx, "0.0.1/team/release", "main"))
	require.ErrorIs(t, e.CreateBranch(ctx, "0.0.1/team/release", "main"), domain.ErrBranchExists)

	branches, err := e.ListBranches(ctx)
	require.NoError(t, err)
	require.Len(t, branches, 2)
	names := []string{branches[0].Name, branches[1].Name}
	require.ElementsMatch(t, []string{"main", "0.0.1/team/release"}, names)

	mainTip, err := e.HeadCommit(ctx, "main")
	require.NoError(t, err)
	relTip, err := e.HeadCommit(ctx, "0.0.1/team/release")
	require.NoError(t, err)
	require.Equal(t, mainTip, relTip)

	_, err = e.HeadCommit(ctx, "nope")
	require.ErrorIs(t, err, domain.ErrBranchNotFound)

	require.NoError(t, e.Checkout(ctx, "0.0.1/team/release"))
	writeFile(t, dir, "feature.txt", "work\n")
	dirty, err := e.IsDirty(ctx, "0.0.1/team/release")
	require.NoError(t, err)
	require.True(t, dirty)

	commit, err := e.CommitAll(ctx, "add feature")
	require.NoError(t, err)
	_, err = e.CommitAll(ctx, "again")
	require.ErrorIs(t, err, domain.ErrNothingToCommit)

	ok, err := e.IsAncestorOrEqual(ctx, mainTip, commit)
	require.NoError(t, err)
	require.True(t, ok)
	ok, err = e.IsAncestorOrEqual(ctx, commit, mainTip)
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, e.Checkout(ctx, "main"))
	res, err := e.Merge(ctx, "0.0.1/team/release", "main")
	require.NoError(t, err)
	require.True(t, res.Merged())
	require.NotEqual(t, commit, res.Commit)

	msg, err := e.runner.Run(ctx, dir, "log", "-1", "--format=%s")
	require.NoError(t, err)
	require.Equal(t, "Merge 0.0.1/team/release into main\n", msg)

	require.NoError(t, e.DeleteBranch(ctx, "0.0.1/team/release", false))
	_, err = e.HeadCommit(ctx, "0.0.1/team/release")
	require.ErrorIs(t, err, domain.ErrBranchNotFound)
}

func TestExecutor_MergeConflictReportsPaths(t *testing.T) {
	e, dir := initRepo(t)
	ctx := context.Background()

	require.NoError(t, e.CreateBranch(ctx, "0.0.1/team/release", "main"))
	require.NoError(t, e.Checkout(ctx, "0.0.1/team/release"))
	writeFile(t, dir, "README.md", "release side\n")
	_, err := e.CommitAll(ctx, "release edit")
	require.NoError(t, err)

	require.NoError(t, e.Checkout(ctx, "main"))
	writeFile(t, dir, "README.md", "main side\n")
	_, err = e.CommitAll(ctx, "main edit")
	require.NoError(t, err)

	res, err := e.Merge(ctx, "0.0.1/team/release", "main")
	require.NoError(t, err)
	require.Equal(t, domain.MergeConflicted, res.Status)
	require.Equal(t, []string{"README.md"}, res.Paths)
}

func TestMerge_RerunDuringConflictLeavesConflictAlone(t *testing.T) {
	e, dir := initRepo(t)
	ctx := context.Background()
	const (
		release = "0.0.1/team/release"
		feature = "0.0.1/tom/feature/x"
	)

	require.NoError(t, e.CreateBranch(ctx, release, "main"))
	require.NoError(t, e.CreateBranch(ctx, feature, release))
	require.NoError(t, e.Checkout(ctx, feature))
	writeFile(t, dir, "README.md", "feature\n")
	_, err := e.CommitAll(ctx, "feature edit")
	require.NoError(t, err)
	require.NoError(t, e.Checkout(ctx, release))
	writeFile(t, dir, "README.md", "release\n")
	releaseTip, err := e.CommitAll(ctx, "release edit")
	require.NoError(t, err)

	merger := branchapp.NewMergeOrchestrator(e, branchdomain.NewPolicy("cto"), branchapp.MergeConfig{})
	_, err = merger.Merge(ctx, feature, release)
	require.ErrorIs(t, err, branchdomain.ErrMergeConflict)

	out, err := merger.Merge(ctx, feature, release)
	require.ErrorIs(t, err, branchdomain.ErrMergeConflict)
	require.Equal(t, branchapp.MergeConflicted, out.State())
	require.Empty(t, out.AutoCommit)
	require.Equal(t, []string{"README.md"}, out.Paths)

	tip, err := e.HeadCommit(ctx, release)
	require.NoError(t, err)
	require.Equal(t, releaseTip, tip, "the conflicted target must not gain a commit")

	inProgress, err := e.MergeInProgress(ctx)
	require.NoError(t, err)
	require.True(t, inProgress)
	paths, err := e.UnmergedPaths(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"README.md"}, paths)
}

func TestExecutor_DetachedHead(t *testing.T) {
	e, dir := initRepo(t)
	ctx := context.Background()

	_, err := e.runner.Run(ctx, dir, "checkout", "--quiet", "--detach")
	require.NoError(t, err)

	_, err = e.CurrentBranch(ctx)
	require.ErrorIs(t, err, domain.ErrDetachedHead)
}
