package tree

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	gitdomain "github.com/ryangerardwilson/gitguru/internal/git/domain"
)

func TestRender_SpecExample(t *testing.T) {
	f, err := newBuilder(stubAncestry{}).Build(context.Background(), []gitdomain.Branch{
		br("main", "d644eac9f0", 1),
		br("0.0.1/team/release", "a1b2c3d4e5", 2),
		br("0.0.1/tom/feature/user-auth", "a1b2c3d4e5", 3),
	})
	require.NoError(t, err)

	want := "main (d644eac)\n" +
		"└── 0.0.1/team/release (a1b2c3d)\n" +
		"    └── 0.0.1/tom/feature/user-auth\n"
	require.Equal(t, want, Render(f, RenderOptions{}))
}

func TestRender_TrunkOnceWhenSiblingsShareTip(t *testing.T) {
	f, err := newBuilder(stubAncestry{}).Build(context.Background(), []gitdomain.Branch{
		br("main", "1111111", 1),
		br("0.0.1/team/release", "1111111", 2),
		br("0.0.2/team/release", "1111111", 3),
		br("0.0.3/ann/hotfix/crash", "1111111", 4),
	})
	require.NoError(t, err)

	out := Render(f, RenderOptions{})
	require.Equal(t, 1, strings.Count(out, "1111111"))
	require.Equal(t, 1, strings.Count(out, "main"))
	require.Equal(t, 4, strings.Count(out, "\n"))
}

func TestRender_Markers(t *testing.T) {
	f, err := newBuilder(stubAncestry{"rrrrrrrr..mmmmmmmm": true}).Build(context.Background(), []gitdomain.Branch{
		br("main", "mmmmmmmm", 1),
		br("0.0.1/team/release", "rrrrrrrr", 2),
		br("0.0.9/tom/feature/x", "ffffffff", 3),
		br("0.0.1/tom/feature/y", "yyyyyyyy", 4),
	})
	require.NoError(t, err)

	want := "main (mmmm)\n" +
		"├── 0.0.1/team/release (rrrr) [merged]\n" +
		"│   └── 0.0.1/tom/feature/y (yyyy)\n" +
		"└── 0.0.9/tom/feature/x (ffff) [orphaned]\n"
	require.Equal(t, want, Render(f, RenderOptions{HashLength: 4}))
}

func TestRender_MissingTrunk(t *testing.T) {
	f, err := newBuilder(stubAncestry{}).Build(context.Background(), []gitdomain.Branch{
		br("0.0.1/team/release", "a1b2c3d4e5", 1),
	})
	require.NoError(t, err)

	want := "main [missing]\n" +
		"└── 0.0.1/team/release (a1b2c3d) [orphaned]\n"
	require.Equal(t, want, Render(f, RenderOptions{}))
}

func TestRender_Empty(t *testing.T) {
	require.Empty(t, Render(nil, RenderOptions{}))
}

func TestMarshalYAML(t *testing.T) {
	f, err := newBuilder(stubAncestry{}).Build(context.Background(), []gitdomain.Branch{
		br("main", "m", 1),
		br("0.0.1/team/release", "r", 2),
		br("stray", "s", 3),
	})
	require.NoError(t, err)

	data, err := MarshalYAML(f)
	require.NoError(t, err)

	var got exportNode
	require.NoError(t, yaml.Unmarshal(data, &got))
	require.Equal(t, "main", got.Name)
	require.Len(t, got.Children, 2)
	require.Equal(t, "release", got.Children[0].Type)
	require.Equal(t, "diverged", got.Children[0].Status)
	require.True(t, got.Children[1].Orphaned)
	require.NotEmpty(t, got.Children[1].Reason)
}
