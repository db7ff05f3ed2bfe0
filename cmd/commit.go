package cmd

import (
	"context"
	"strings"

	"github.com/spf13/cobra"
)

func newCommitCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "commit <message...>",
		Short: "Stage every change and commit it on the current branch",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			message := strings.Join(args, " ")
			return c.repoCommand(cmd, "Before Command", "After Commit", func(ctx context.Context, w *workflows) error {
				id, err := w.workspace.Commit(ctx, message)
				if err != nil {
					return err
				}
				c.out.Success("Committed %s: %s", id.Short(c.cfg.HashLength), message)
				return nil
			})
		},
	}
}
