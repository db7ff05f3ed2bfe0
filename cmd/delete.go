package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/ryangerardwilson/gitguru/internal/branch/application"
)

func newDeleteCmd(c *cli) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "delete <branch>... [--force]",
		Short: "Delete branches that are merged into their parent",
		Long: `Delete one or more branches.

A branch merged into its parent (or main) is deleted. An unmerged branch is
kept unless --force is given. Each branch is handled on its own: one failure
does not stop the others, and a summary lists what happened to each.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.repoCommand(cmd, "Before Command", "After Deletion", func(ctx context.Context, w *workflows) error {
				report, err := w.delete.Delete(ctx, args, force)
				if report != nil {
					c.printDeleteReport(report)
				}
				return err
			})
		},
	}
	cmd.Flags().BoolVarP(&force, "force", "f", false, "delete branches even when they are not merged")
	return cmd
}

func (c *cli) printDeleteReport(r *application.DeleteReport) {
	for _, it := range r.Items {
		switch it.Action {
		case application.DeleteSafe:
			c.out.Success("Deleted '%s' (merged into %s).", it.Ref, it.Parent)
		case application.DeleteForced:
			c.out.Success("Force-deleted '%s'.", it.Ref)
		}
	}
	if n := len(r.Deleted()); n > 0 {
		c.out.Success("Deleted %d of %d branch(es).", n, len(r.Items))
	} else {
		c.out.Muted("No branches were deleted.")
	}
}
