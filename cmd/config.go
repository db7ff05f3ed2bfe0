package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ryangerardwilson/gitguru/internal/config"
)

func newConfigCmd(c *cli) *cobra.Command {
	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage gitguru configuration",
	}

	var (
		path      string
		repoLocal bool
	)
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write the default config file with comments",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			target := path
			switch {
			case target != "":
			case repoLocal:
				target = filepath.Join(c.dir, config.RepoConfigName)
			default:
				var err error
				if target, err = config.DefaultPath(); err != nil {
					return err
				}
			}
			if err := config.WriteDefaultConfig(target); err != nil {
				return err
			}
			c.out.Success("Wrote %s", target)
			return nil
		},
	}
	initCmd.Flags().StringVar(&path, "path", "", "write the config to this file")
	initCmd.Flags().BoolVar(&repoLocal, "repo", false, "write "+config.RepoConfigName+" in the repository instead of the user config")
	initCmd.MarkFlagsMutuallyExclusive("path", "repo")

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := yaml.Marshal(c.cfg)
			if err != nil {
				return fmt.Errorf("encoding config: %w", err)
			}
			if c.cfgFile != "" {
				c.out.Muted("# from %s", c.cfgFile)
			} else {
				c.out.Muted("# defaults (no config file found)")
			}
			c.out.Plain(string(data))
			return nil
		},
	}

	cfgCmd.AddCommand(initCmd, showCmd)
	return cfgCmd
}
