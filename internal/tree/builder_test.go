package tree

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	branchdomain "github.com/ryangerardwilson/gitguru/internal/branch/domain"
	gitdomain "github.com/ryangerardwilson/gitguru/internal/git/domain"
	"github.com/ryangerardwilson/gitguru/internal/git/gittest"
)

// stubAncestry answers from a fixed set of "a..b" pairs that are ancestors.
type stubAncestry map[string]bool

func (s stubAncestry) IsAncestorOrEqual(_ context.Context, a, b gitdomain.CommitID) (bool, error) {
	if a == b {
		return true, nil
	}
	return s[string(a)+".."+string(b)], nil
}

type failingAncestry struct{}

func (failingAncestry) IsAncestorOrEqual(context.Context, gitdomain.CommitID, gitdomain.CommitID) (bool, error) {
	return false, errors.New("boom")
}

func newBuilder(a stubAncestry) *Builder {
	return NewBuilder(branchdomain.NewPolicy("cto"), a)
}

func br(name, tip string, order int) gitdomain.Branch {
	return gitdomain.Branch{Name: name, Tip: gitdomain.CommitID(tip), Order: order}
}

func childNames(n *Node) []string {
	names := make([]string, 0, len(n.Children))
	for _, c := range n.Children {
		names = append(names, c.Branch.Name)
	}
	return names
}

func TestBuild_SpecExample(t *testing.T) {
	f, err := newBuilder(stubAncestry{}).Build(context.Background(), []gitdomain.Branch{
		br("main", "d644eac", 1),
		br("0.0.1/team/release", "a1b2c3d", 2),
		br("0.0.1/tom/feature/user-auth", "a1b2c3d", 3),
	})
	require.NoError(t, err)
	require.Equal(t, 3, f.Len())
	require.Equal(t, []string{"0.0.1/team/release"}, childNames(f.Root))

	rel := f.Find("0.0.1/team/release")
	require.Equal(t, StatusDiverged, rel.Status)
	require.Equal(t, []string{"0.0.1/tom/feature/user-auth"}, childNames(rel))
	require.Equal(t, StatusSameAsParent, rel.Children[0].Status)
}

func TestBuild_MissingTrunk(t *testing.T) {
	// No ancestry query is needed: the root has no tip to compare against.
	f, err := NewBuilder(branchdomain.NewPolicy("cto"), failingAncestry{}).Build(context.Background(), []gitdomain.Branch{
		br("0.0.1/team/release", "a", 1),
		br("0.0.1/tom/feature/user-auth", "a", 2),
		br("scratch", "s", 3),
	})
	require.NoError(t, err)
	require.True(t, f.Root.Missing)
	require.True(t, f.Root.IsTrunk())
	require.Equal(t, []string{"0.0.1/team/release", "scratch"}, childNames(f.Root))

	rel := f.Find("0.0.1/team/release")
	require.True(t, rel.Orphaned)
	require.Contains(t, rel.Reason, "trunk main is missing")
	require.Equal(t, StatusDiverged, rel.Status)

	feat := f.Find("0.0.1/tom/feature/user-auth")
	require.False(t, feat.Orphaned)
	require.Equal(t, StatusSameAsParent, feat.Status)
}

func TestBuild_OrphansAttachToTrunk(t *testing.T) {
	f, err := newBuilder(stubAncestry{}).Build(context.Background(), []gitdomain.Branch{
		br("main", "m", 1),
		br("0.0.2/tom/feature/login", "f", 2), // no 0.0.2 release
		br("scratch", "s", 3),                 // outside the convention
		br("0.0.1/team/release", "r", 4),
	})
	require.NoError(t, err)
	require.Equal(t, []string{"0.0.1/team/release", "0.0.2/tom/feature/login", "scratch"}, childNames(f.Root))

	login := f.Find("0.0.2/tom/feature/login")
	require.True(t, login.Orphaned)
	require.Contains(t, login.Reason, "NoMatchingRelease")

	scratch := f.Find("scratch")
	require.True(t, scratch.Orphaned)
	require.Nil(t, scratch.Name)

	require.False(t, f.Find("0.0.1/team/release").Orphaned)
}

func TestBuild_SiblingOrder(t *testing.T) {
	f, err := newBuilder(stubAncestry{}).Build(context.Background(), []gitdomain.Branch{
		br("main", "m", 1),
		br("0.0.1/team/release", "r", 2),
		br("0.0.1/zed/feature/a", "1", 3),
		br("0.0.1/amy/feature/b", "2", 4),
		br("0.0.1/amy/bugfix/z", "3", 5),
		br("0.0.1/amy/feature/a", "4", 6),
		br("0.0.10/team/release", "5", 7),
		br("0.0.2/team/release", "6", 8),
		br("0.0.1/amy/hotfix/x", "7", 9),
	})
	require.NoError(t, err)

	require.Equal(t, []string{
		"0.0.1/amy/hotfix/x",
		"0.0.1/team/release",
		"0.0.2/team/release",
		"0.0.10/team/release",
	}, childNames(f.Root))
	require.Equal(t, []string{
		"0.0.1/amy/bugfix/z",
		"0.0.1/amy/feature/a",
		"0.0.1/amy/feature/b",
		"0.0.1/zed/feature/a",
	}, childNames(f.Find("0.0.1/team/release")))
}

func TestBuild_UnparsableTiesUseCreationOrder(t *testing.T) {
	f, err := newBuilder(stubAncestry{}).Build(context.Background(), []gitdomain.Branch{
		br("main", "m", 1),
		br("wip", "b", 5),
		br("wip", "a", 2),
	})
	require.NoError(t, err)
	require.Equal(t, 2, f.Root.Children[0].Branch.Order)
	require.Equal(t, 5, f.Root.Children[1].Branch.Order)
}

func TestBuild_Status(t *testing.T) {
	f, err := newBuilder(stubAncestry{"r..m": true}).Build(context.Background(), []gitdomain.Branch{
		br("main", "m", 1),
		br("0.0.1/team/release", "r", 2),
		br("0.0.1/tom/feature/a", "f", 3),
		br("0.0.1/tom/feature/b", "r", 4),
	})
	require.NoError(t, err)
	require.Empty(t, f.Root.Status)
	require.Equal(t, StatusMerged, f.Find("0.0.1/team/release").Status)
	require.Equal(t, StatusDiverged, f.Find("0.0.1/tom/feature/a").Status)
	require.Equal(t, StatusSameAsParent, f.Find("0.0.1/tom/feature/b").Status)
}

func TestBuild_AncestryErrorSurfaces(t *testing.T) {
	b := NewBuilder(branchdomain.NewPolicy("cto"), failingAncestry{})
	_, err := b.Build(context.Background(), []gitdomain.Branch{
		br("main", "m", 1),
		br("0.0.1/team/release", "r", 2),
	})
	require.ErrorContains(t, err, "0.0.1/team/release")
}

func TestBuild_WithFakeRepository(t *testing.T) {
	repo := gittest.NewRepo()
	repo.Branch("0.0.1/team/release", "main")
	repo.Branch("0.0.1/tom/feature/user-auth", "0.0.1/team/release")
	repo.CommitOn("0.0.1/tom/feature/user-auth", map[string]string{"auth.go": "package auth\n"})
	repo.Branch("1.0.0/cto/hotfix", "main")

	ctx := context.Background()
	branches, err := repo.ListBranches(ctx)
	require.NoError(t, err)

	f, err := NewBuilder(branchdomain.NewPolicy("cto"), repo).Build(ctx, branches)
	require.NoError(t, err)
	require.Equal(t, 4, f.Len())
	require.Equal(t, StatusSameAsParent, f.Find("0.0.1/team/release").Status)
	require.Equal(t, StatusSameAsParent, f.Find("1.0.0/cto/hotfix").Status)
	require.Equal(t, StatusDiverged, f.Find("0.0.1/tom/feature/user-auth").Status)
}
