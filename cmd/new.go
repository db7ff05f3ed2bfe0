package cmd

import (
	"context"
	"strings"

	"github.com/spf13/cobra"
)

func newNewCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:     "new <version> <owner> <type> [description] | new <branch>",
		Aliases: []string{"branch"},
		Short:   "Create a branch from its expected parent and switch to it",
		Long: `Create a branch from its expected parent and switch to it.

Releases and hotfixes are created from main. Features and bugfixes are created
from the release branch of the same version, which must already exist.

  gitguru new 0.0.1 team release
  gitguru new 0.0.1 tom feature user-auth
  gitguru new 0.0.1/tom/feature/user-auth`,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				return nil
			}
			return cobra.RangeArgs(3, 4)(cmd, args)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			raw := branchFromArgs(args)
			return c.repoCommand(cmd, "Before Command", "After Branch Creation", func(ctx context.Context, w *workflows) error {
				res, err := w.create.Create(ctx, raw)
				if err != nil {
					return err
				}
				c.out.Success("Branch '%s' created from '%s'.", res.Name, res.Parent)
				return nil
			})
		},
	}
}

// branchFromArgs joins <version> <owner> <type> [description] into a branch
// name; a single argument is taken as the full name.
func branchFromArgs(args []string) string {
	return strings.Join(args, "/")
}
