package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/ryangerardwilson/gitguru/internal/branch/application"
)

func newHotfixCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "cto-hotfix <version>",
		Short: "Start a privileged hotfix branch from main",
		Long: `Switch to main and create <version>/<privileged_owner>/hotfix from it.

The privileged owner comes from the privileged_owner config key (default cto).`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.repoCommand(cmd, "Before CTO Hotfix", "After CTO Hotfix", func(ctx context.Context, w *workflows) error {
				res, err := w.hotfix.Start(ctx, args[0])
				if err != nil {
					return err
				}
				c.out.Success("Hotfix branch '%s' created from main.", res.Name)
				return nil
			})
		},
	}
}

func newHotfixPushCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "cto-hotfix-push <version>",
		Short: "Merge the privileged hotfix into main, push main and delete the hotfix",
		Long: `Merge <version>/<privileged_owner>/hotfix into main, push main and delete
the hotfix branch.

Backporting the fix into an active release is a separate, explicit merge:

  gitguru merge main 0.0.1/team/release`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.repoCommand(cmd, "Before CTO Hotfix Push", "After CTO Hotfix Push", func(ctx context.Context, w *workflows) error {
				res, err := w.hotfix.Publish(ctx, args[0])
				if res != nil && res.Merge != nil && res.Merge.State() == application.MergeMerged {
					c.out.Success("Merged '%s' into main.", res.Branch)
				}
				if res != nil && res.Delete != nil {
					c.out.Success("Pushed main to %s.", c.cfg.Remote)
					c.printDeleteReport(res.Delete)
				}
				return err
			})
		},
	}
}
