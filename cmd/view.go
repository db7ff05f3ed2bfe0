package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ryangerardwilson/gitguru/internal/log"
	"github.com/ryangerardwilson/gitguru/internal/tree"
)

func newViewCmd(c *cli) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "view [dir]",
		Short: "Show every branch as a tree rooted at main",
		Long: `Show every branch as a tree rooted at main.

Releases and hotfixes hang off main, features and bugfixes off the release of
their version. A branch pointing at the same commit as its parent is shown
without a hash. Branches whose name or parent breaks the convention are listed
under main and marked [orphaned]. A repository without a main branch is shown
under a "main [missing]" placeholder.`,
		Args:        cobra.MaximumNArgs(1),
		Annotations: map[string]string{dirArgAnnotation: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runView(cmd, c.dir, output)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "text", "output format: text or yaml")
	return cmd
}

func (c *cli) runView(cmd *cobra.Command, dir, output string) error {
	ctx := cmd.Context()
	w, err := c.workflows(ctx, dir)
	if err != nil {
		return err
	}
	v, err := w.workspace.View(ctx)
	if err != nil {
		return err
	}

	switch output {
	case "text":
		c.out.Tree("", v.Forest, c.cfg.HashLength, v.Current)
	case "yaml":
		data, err := tree.MarshalYAML(v.Forest)
		if err != nil {
			return fmt.Errorf("encoding tree: %w", err)
		}
		c.out.Plain(string(data))
	default:
		return fmt.Errorf("unknown output format %q (want text or yaml)", output)
	}
	return nil
}

// showTree prints the tree under title when show_tree is on. A failure to
// build the tree is logged and never fails the command.
func (c *cli) showTree(ctx context.Context, w *workflows, title string) {
	if !c.cfg.ShowTree {
		return
	}
	v, err := w.workspace.View(ctx)
	if err != nil {
		log.Warn(log.CatCLI, "Could not build branch tree", "title", title, "error", err)
		return
	}
	c.out.Tree(title, v.Forest, c.cfg.HashLength, v.Current)
}

// repoCommand opens the repository, prints the "Before" tree, runs fn and
// prints the "After" tree, which is shown even when fn fails.
func (c *cli) repoCommand(cmd *cobra.Command, before, after string, fn func(ctx context.Context, w *workflows) error) error {
	ctx := cmd.Context()
	w, err := c.workflows(ctx, c.dir)
	if err != nil {
		return err
	}
	c.showTree(ctx, w, before)
	err = fn(ctx, w)
	c.showTree(ctx, w, after)
	return err
}
