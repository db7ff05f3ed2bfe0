// Package cmd implements the gitguru command line.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/attribute"

	"github.com/ryangerardwilson/gitguru/internal/branch/application"
	"github.com/ryangerardwilson/gitguru/internal/branch/domain"
	"github.com/ryangerardwilson/gitguru/internal/config"
	"github.com/ryangerardwilson/gitguru/internal/git/infrastructure"
	"github.com/ryangerardwilson/gitguru/internal/log"
	"github.com/ryangerardwilson/gitguru/internal/tracing"
)

// version is set at build time with -ldflags "-X .../cmd.version=...".
var version = "dev"

// cli is the state shared by every command of one invocation.
type cli struct {
	configPath string
	dir        string
	verbose    bool
	noColor    bool

	cfg        config.Config
	cfgFile    string
	invocation string
	out        *printer
	cleanup    []func(context.Context) error
}

// workflows bundles the services a repository command needs.
type workflows struct {
	gw        *infrastructure.Executor
	policy    domain.Policy
	create    *application.CreateOrchestrator
	merge     *application.MergeOrchestrator
	delete    *application.DeleteOrchestrator
	hotfix    *application.HotfixService
	workspace *application.Workspace
}

// newRootCmd builds the command tree around c. The caller runs c.teardown
// once the command returns, whether or not it failed.
func newRootCmd(c *cli) *cobra.Command {
	root := &cobra.Command{
		Use:   "gitguru",
		Short: "Convention-driven branch workflows on top of git",
		Long: `gitguru enforces the <version>/<owner>/<type>[/<description>] branch
naming convention, creates branches from their expected parents, merges and
deletes them safely, and shows every branch as a tree rooted at main.

Run without arguments to view the branch tree.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.setup(cmd, args)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runView(cmd, c.dir, "text")
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&c.configPath, "config", "", "config file (default: .gitguru.yaml in the repository, then $XDG_CONFIG_HOME/gitguru/config.yaml)")
	flags.StringVarP(&c.dir, "dir", "C", ".", "repository directory")
	flags.BoolVarP(&c.verbose, "verbose", "v", false, "mirror log records to stderr")
	flags.BoolVar(&c.noColor, "no-color", false, "disable colored output")

	root.AddCommand(
		newInitCmd(c),
		newViewCmd(c),
		newNewCmd(c),
		newMergeCmd(c),
		newCommitCmd(c),
		newPushCmd(c),
		newSwitchCmd(c),
		newDeleteCmd(c),
		newHotfixCmd(c),
		newHotfixPushCmd(c),
		newConfigCmd(c),
		newGuideCmd(c),
	)
	return root
}

// Execute runs the command line and returns the process exit code.
func Execute() int {
	return run(context.Background(), os.Args[1:], os.Stdout, os.Stderr)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	c := &cli{}
	root := newRootCmd(c)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	err := root.ExecuteContext(ctx)
	if err != nil {
		// Setup may have failed before the config was read.
		color := c.out == nil || c.cfg.Color
		newPrinter(stderr, colorEnabled(color, c.noColor)).Error(err)
	}
	if terr := c.teardown(ctx); terr != nil {
		fmt.Fprintf(stderr, "warning: %v\n", terr)
	}
	return exitCode(err)
}

// dirArgAnnotation marks commands whose optional positional argument is the
// repository directory. It replaces --dir for the whole invocation.
const dirArgAnnotation = "gitguru/dir-arg"

// setup loads configuration and starts logging and tracing.
func (c *cli) setup(cmd *cobra.Command, args []string) error {
	if cmd.Annotations[dirArgAnnotation] != "" && len(args) == 1 {
		c.dir = args[0]
	}
	cfg, path, err := config.Load(config.LoadOptions{Path: c.configPath, RepoDir: c.dir})
	if err != nil {
		return err
	}
	c.cfg, c.cfgFile = cfg, path
	c.out = newPrinter(cmd.OutOrStdout(), colorEnabled(cfg.Color, c.noColor))

	closeLog, err := log.Init(log.Config{
		Enabled: cfg.Log.Enabled,
		Level:   cfg.Log.Level,
		Path:    cfg.Log.Path,
		Verbose: c.verbose,
		Stderr:  cmd.ErrOrStderr(),
	})
	if err != nil {
		return fmt.Errorf("starting logger: %w", err)
	}
	c.cleanup = append(c.cleanup, func(context.Context) error { return closeLog() })

	c.invocation = uuid.NewString()
	log.With("invocation", c.invocation)

	shutdown, err := tracing.Setup(cmd.Context(), tracing.Config{
		Enabled:  cfg.Tracing.Enabled,
		Exporter: cfg.Tracing.Exporter,
		Endpoint: cfg.Tracing.Endpoint,
		Writer:   cmd.ErrOrStderr(),
		Attrs:    []attribute.KeyValue{attribute.String("gitguru.invocation", c.invocation)},
	})
	if err != nil {
		return fmt.Errorf("starting tracing: %w", err)
	}
	c.cleanup = append(c.cleanup, shutdown)

	log.Info(log.CatCLI, "Command started", "command", cmd.CommandPath(), "config", path)
	return nil
}

// teardown flushes tracing and closes the log, newest first.
func (c *cli) teardown(ctx context.Context) error {
	var errs []error
	for i := len(c.cleanup) - 1; i >= 0; i-- {
		errs = append(errs, c.cleanup[i](ctx))
	}
	c.cleanup = nil
	return errors.Join(errs...)
}

// workflows opens the repository at dir and wires the services.
func (c *cli) workflows(ctx context.Context, dir string) (*workflows, error) {
	gw, err := infrastructure.NewExecutor(ctx, dir, infrastructure.WithRemote(c.cfg.Remote))
	if err != nil {
		return nil, fmt.Errorf("%w; use 'gitguru init' to create one", err)
	}
	policy := domain.NewPolicy(c.cfg.PrivilegedOwner)
	w := &workflows{
		gw:        gw,
		policy:    policy,
		create:    application.NewCreateOrchestrator(gw, policy),
		merge:     application.NewMergeOrchestrator(gw, policy, application.MergeConfig{AutoCommitMessage: c.cfg.AutoCommitMessage}),
		delete:    application.NewDeleteOrchestrator(gw, policy),
		workspace: application.NewWorkspace(gw, policy),
	}
	w.hotfix = application.NewHotfixService(gw, policy, w.create, w.merge, w.delete)
	return w, nil
}

// colorEnabled honours the config, the --no-color flag and NO_COLOR.
func colorEnabled(cfgColor, noColor bool) bool {
	if noColor || !cfgColor {
		return false
	}
	_, set := os.LookupEnv("NO_COLOR")
	return !set
}
