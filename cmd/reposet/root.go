package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/colorprofile"
	"github.com/spf13/cobra"

	"github.com/raphi011/reposet/internal/config"
	"github.com/raphi011/reposet/internal/git"
	"github.com/raphi011/reposet/internal/log"
	"github.com/raphi011/reposet/internal/output"
	"github.com/raphi011/reposet/internal/ui/styles"
)

// Command group IDs for organizing help output
const (
	GroupCore      = "core"
	GroupInventory = "inventory"
	GroupConfig    = "config"
)

// annotationNeedsGit marks commands that run the git executable.
const annotationNeedsGit = "needs-git"

// globalFlags holds the persistent flags of the root command.
type globalFlags struct {
	verbose    bool
	quiet      bool
	configPath string
	dotEnv     string
}

// newRootCmd builds the command tree. Each call returns an independent
// tree so tests can run commands side by side.
func newRootCmd() *cobra.Command {
	flags := &globalFlags{}

	rootCmd := &cobra.Command{
		Use:   "reposet",
		Short: "Inventory, restore and sync git repositories across machines",
		Long: `reposet records the git repositories below a directory in a portable
inventory file (JSON, YAML or TOML), restores them on another machine, and
keeps a directory and a shared inventory in sync.`,
		SilenceUsage:               true,
		SilenceErrors:              true,
		SuggestionsMinimumDistance: 2,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setup(cmd, flags)
		},
		// Run is not set - shows help when no subcommand provided
	}

	rootCmd.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "Show external commands being executed")
	rootCmd.PersistentFlags().BoolVarP(&flags.quiet, "quiet", "q", false, "Suppress all log output")
	rootCmd.PersistentFlags().StringVar(&flags.configPath, "config", "", "Config file (default ~/.config/reposet/config.toml)")
	rootCmd.PersistentFlags().StringVar(&flags.dotEnv, "env-file", ".env", "Load environment variables from this file if it exists")
	rootCmd.MarkFlagsMutuallyExclusive("verbose", "quiet")

	rootCmd.Version = versionString()
	rootCmd.SetVersionTemplate("{{.Version}}\n")

	rootCmd.AddGroup(
		&cobra.Group{ID: GroupCore, Title: "Core Commands:"},
		&cobra.Group{ID: GroupInventory, Title: "Inventory Commands:"},
		&cobra.Group{ID: GroupConfig, Title: "Configuration Commands:"},
	)

	// Core commands
	rootCmd.AddCommand(newScanCmd())
	rootCmd.AddCommand(newRestoreCmd())
	rootCmd.AddCommand(newSyncCmd())

	// Inventory commands
	rootCmd.AddCommand(newListCmd())
	rootCmd.AddCommand(newPublishCmd())

	// Config commands
	rootCmd.AddCommand(newConfigCmd())

	return rootCmd
}

// setup attaches logger, printer and config to the command context.
func setup(cmd *cobra.Command, flags *globalFlags) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	// Diagnostics go to stderr, primary data to stdout.
	logger := log.New(cmd.ErrOrStderr(), flags.verbose, flags.quiet)
	ctx = log.WithLogger(ctx, logger)

	if flags.dotEnv != "" {
		if err := config.LoadDotEnv(flags.dotEnv); err != nil {
			logger.Warnf("%v", err)
		}
	}

	var (
		cfg config.Config
		err error
	)
	if flags.configPath != "" {
		cfg, err = config.LoadFrom(flags.configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	ctx = config.WithConfig(ctx, &cfg)

	if cfg.Theme != "" {
		if err := styles.Init(cfg.Theme); err != nil {
			logger.Warnf("%v", err)
		}
	}

	// Downsamples colors to what the terminal supports and strips them
	// when stdout is not a terminal or NO_COLOR is set.
	ctx = output.WithPrinter(ctx, colorprofile.NewWriter(cmd.OutOrStdout(), os.Environ()))

	cmd.SetContext(ctx)

	if _, ok := cmd.Annotations[annotationNeedsGit]; ok {
		return git.CheckGit(cfg.GitPath)
	}
	return nil
}

// needsGit marks cmd as requiring the git executable.
func needsGit(cmd *cobra.Command) *cobra.Command {
	if cmd.Annotations == nil {
		cmd.Annotations = map[string]string{}
	}
	cmd.Annotations[annotationNeedsGit] = "true"
	return cmd
}

// Execute builds the command tree and runs it with signal handling.
func Execute() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	rootCmd := newRootCmd()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		fmt.Fprintln(os.Stderr)
		fmt.Fprintln(os.Stderr, "Run 'reposet -h' for help")
		cancel()
		os.Exit(1)
	}
}
