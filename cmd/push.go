package cmd

import (
	"context"

	"github.com/spf13/cobra"
)

func newPushCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "push",
		Short: "Push the current branch to the configured remote",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.repoCommand(cmd, "Before Command", "After Push", func(ctx context.Context, w *workflows) error {
				branch, err := w.workspace.PushCurrent(ctx)
				if err != nil {
					return err
				}
				c.out.Success("Pushed '%s' to %s.", branch, c.cfg.Remote)
				return nil
			})
		},
	}
}
