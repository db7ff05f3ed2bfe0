package cmd

import (
	"context"

	"github.com/spf13/cobra"
)

func newSwitchCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "switch <branch>",
		Short: "Check out an existing branch",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.repoCommand(cmd, "Before Command", "After Switch", func(ctx context.Context, w *workflows) error {
				if err := w.workspace.Switch(ctx, args[0]); err != nil {
					return err
				}
				c.out.Success("Switched to '%s'.", args[0])
				return nil
			})
		},
	}
}
