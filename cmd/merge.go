package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/ryangerardwilson/gitguru/internal/branch/application"
)

func newMergeCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "merge <source> <target>",
		Short: "Merge one branch into another with a merge commit",
		Long: `Merge source into target with a merge commit.

Target is checked out first. Uncommitted changes on target are committed
before the merge; changes on source must be committed by you. On a conflict
the repository is left in git's conflict state for you to resolve.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			source, target := args[0], args[1]
			return c.repoCommand(cmd, "Before Command", "After Merge", func(ctx context.Context, w *workflows) error {
				out, err := w.merge.Merge(ctx, source, target)
				if out != nil && out.AutoCommit != "" {
					c.out.Success("Committed pending changes on '%s' before merge.", target)
				}
				if out != nil && out.State() == application.MergeConflicted {
					c.out.Muted("Resolve the conflicts, then run 'gitguru commit <message>' on '%s':", target)
					for _, p := range out.Paths {
						c.out.Muted("  %s", p)
					}
				}
				if err != nil {
					return err
				}
				c.out.Success("Merged '%s' into '%s'.", source, target)
				return nil
			})
		},
	}
}
