package cmd

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ryangerardwilson/gitguru/internal/git/infrastructure"
)

func newInitCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:         "init [dir]",
		Short:       "Create a repository on main with every existing file committed",
		Args:        cobra.MaximumNArgs(1),
		Annotations: map[string]string{dirArgAnnotation: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := c.dir
			ctx := cmd.Context()
			if err := infrastructure.Init(ctx, dir, nil); err != nil {
				return err
			}
			abs, _ := filepath.Abs(dir)
			c.out.Success("Initialized git repository on 'main' in %s, including all existing files.", abs)

			w, err := c.workflows(ctx, dir)
			if err != nil {
				return err
			}
			c.showTree(ctx, w, "After Initialization")
			return nil
		},
	}
}
