package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"github.com/raphi011/reposet/internal/config"
	"github.com/raphi011/reposet/internal/log"
	"github.com/raphi011/reposet/internal/output"
)

// redacted replaces secrets in "config show".
const redacted = "<redacted>"

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "config",
		Short:   "Manage configuration",
		Aliases: []string{"cfg"},
		GroupID: GroupConfig,
		Long: `Manage reposet configuration.

Global config: ~/.config/reposet/config.toml
Local config:  .reposet.toml (in the scanned or synced directory)`,
		Example: `  reposet config init             # Create default global config
  reposet config init --local ~/src  # Create local config for ~/src
  reposet config show             # Show effective config`,
	}

	cmd.AddCommand(newConfigInitCmd())
	cmd.AddCommand(newConfigShowCmd())

	return cmd
}

func newConfigInitCmd() *cobra.Command {
	var (
		force  bool
		stdout bool
		local  bool
	)

	cmd := &cobra.Command{
		Use:   "init [dir]",
		Short: "Create default config file",
		Args:  cobra.MaximumNArgs(1),
		Long: `Create default config file.

Without flags, creates the global config at ~/.config/reposet/config.toml
(or the path given with --config). With --local, creates .reposet.toml in
dir (default: root_dir, else the current directory).`,
		Example: `  reposet config init           # Create global config
  reposet config init --local   # Create local config
  reposet config init -f        # Overwrite existing config
  reposet config init -s        # Print config to stdout`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			l := log.FromContext(ctx)
			out := output.FromContext(ctx)

			if local {
				if stdout {
					out.Print(config.DefaultLocalConfig())
					return nil
				}
				dir, err := resolveDir(args, config.FromContext(ctx))
				if err != nil {
					return err
				}
				configPath := filepath.Join(dir, config.LocalConfigFileName)
				if !force {
					if _, err := os.Stat(configPath); err == nil {
						return fmt.Errorf("local config already exists: %s (use -f to overwrite)", configPath)
					}
				}
				if err := os.WriteFile(configPath, []byte(config.DefaultLocalConfig()), 0o644); err != nil {
					return err
				}
				l.Printf("Created local config: %s\n", configPath)
				return nil
			}

			if len(args) > 0 {
				return fmt.Errorf("a directory argument requires --local")
			}
			if stdout {
				out.Print(config.DefaultConfig())
				return nil
			}
			configPath, _ := cmd.Flags().GetString("config")
			path, err := config.Init(configPath, force)
			if err != nil {
				return fmt.Errorf("%w (use -f to overwrite)", err)
			}
			l.Printf("Created config file: %s\n", path)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite existing config")
	cmd.Flags().BoolVarP(&stdout, "stdout", "s", false, "Print config to stdout")
	cmd.Flags().BoolVar(&local, "local", false, "Create per-directory .reposet.toml instead of global config")

	return cmd
}

func newConfigShowCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "show [dir]",
		Short: "Show effective configuration",
		Args:  cobra.MaximumNArgs(1),
		Long: `Show effective configuration.

The global config is merged with the .reposet.toml of dir (default:
root_dir, else the current directory). Tokens are redacted.`,
		Example: `  reposet config show          # Show effective config
  reposet config show ~/src    # Include ~/src/.reposet.toml
  reposet config show --json   # Output as JSON`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := output.FromContext(ctx)

			dir, err := resolveDir(args, config.FromContext(ctx))
			if err != nil {
				return err
			}
			local, err := config.LoadLocal(dir)
			if err != nil {
				log.FromContext(ctx).Warnf("failed to load local config: %v (using global config)", err)
			}
			eff := *config.MergeLocal(config.FromContext(ctx), local)
			if eff.Publish.Token != "" {
				eff.Publish.Token = redacted
			}

			if jsonOutput {
				return out.JSON(eff)
			}

			if global, err := config.Path(); err == nil {
				out.Printf("# Global config: %s\n", global)
			}
			if local != nil {
				out.Printf("# Local config:  %s\n", filepath.Join(dir, config.LocalConfigFileName))
			} else {
				out.Printf("# Local config:  (none)\n")
			}
			out.Println()
			return toml.NewEncoder(out.Writer()).Encode(eff)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")

	return cmd
}
