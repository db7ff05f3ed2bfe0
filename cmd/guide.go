package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ryangerardwilson/gitguru/internal/docs"
)

func newGuideCmd(c *cli) *cobra.Command {
	var width int
	cmd := &cobra.Command{
		Use:   "guide",
		Short: "Explain the branch naming convention and the commands",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := docs.RenderGuide(width, colorEnabled(c.cfg.Color, c.noColor))
			if err != nil {
				return err
			}
			c.out.Plain(out)
			return nil
		},
	}
	cmd.Flags().IntVar(&width, "width", 80, "wrap the guide at this many columns")
	return cmd
}
