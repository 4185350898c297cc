package main

import (
	"bytes"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/raphi011/reposet/internal/config"
	"github.com/raphi011/reposet/internal/inventory"
	"github.com/raphi011/reposet/internal/log"
	"github.com/raphi011/reposet/internal/output"
	"github.com/raphi011/reposet/internal/record"
	"github.com/raphi011/reposet/internal/scan"
	"github.com/raphi011/reposet/internal/ui/progress"
	"github.com/raphi011/reposet/internal/ui/static"
)

func newScanCmd() *cobra.Command {
	var (
		outFile   string
		format    string
		remote    string
		skipProbe bool
		table     bool
		copyOut   bool
	)

	cmd := &cobra.Command{
		Use:     "scan [dir]",
		Short:   "Inventory the repositories below a directory",
		GroupID: GroupCore,
		Args:    cobra.MaximumNArgs(1),
		Long: `Scan a directory tree for git repositories and write an inventory.

Each directory containing a .git directory becomes one entry; its children
are not searched. The remote URL, user identity and last activity are read
from the repository itself, and each remote is probed with "git ls-remote"
unless --skip-probe is given.

Without -o the inventory is written to stdout in --format (default json).
With -o it is saved to the file, whose extension selects the format.`,
		Example: `  reposet scan ~/src                   # Print inventory as JSON
  reposet scan ~/src -o repos.yaml      # Save as YAML
  reposet scan --format toml --skip-probe
  reposet scan --table                  # Human-readable table`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			l := log.FromContext(ctx)
			out := output.FromContext(ctx)

			dir, err := resolveDir(args, config.FromContext(ctx))
			if err != nil {
				return err
			}
			cfg, err := config.ForRoot(config.FromContext(ctx), dir)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("remote") {
				cfg.RemoteName = remote
			}
			if skipProbe {
				cfg.SkipProbe = true
			}

			f, err := scanFormat(outFile, format, cmd.Flags().Changed("format"))
			if err != nil {
				return err
			}

			opts := scanOptions(cfg)
			var sp *progress.Spinner
			if showProgress(ctx, cmd.ErrOrStderr()) {
				sp = progress.NewSpinner(cmd.ErrOrStderr(), "Scanning "+dir)
				found := 0
				opts.OnFound = func(r record.Record) {
					found++
					sp.UpdateMessage(fmt.Sprintf("Scanning %s: %d found (%s)", dir, found, r.RelativePath))
				}
				sp.Start()
			}
			records, err := scan.Scan(ctx, dir, opts)
			if sp != nil {
				sp.Stop()
			}
			if err != nil {
				return err
			}
			record.Sort(records)

			if outFile != "" {
				lock := inventory.LockFor(outFile)
				if err := lock.Lock(); err != nil {
					return err
				}
				defer lock.Unlock()
				if err := inventory.Save(outFile, records); err != nil {
					return err
				}
				l.Printf("Wrote %d repositories to %s\n", len(records), outFile)
			}

			var encoded bytes.Buffer
			if outFile == "" || copyOut {
				if err := inventory.Encode(&encoded, f, records); err != nil {
					return err
				}
			}

			switch {
			case table:
				out.Print(static.RenderInventory(records))
			case outFile == "":
				out.Print(encoded.String())
			}

			if copyOut {
				copyToClipboard(ctx, encoded.String())
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&outFile, "output", "o", "", "Save the inventory to this file")
	cmd.Flags().StringVar(&format, "format", "json", "Output format: json, yaml or toml")
	cmd.Flags().StringVar(&remote, "remote", config.DefaultRemoteName, "Remote whose URL is recorded")
	cmd.Flags().BoolVar(&skipProbe, "skip-probe", false, "Do not probe remote reachability")
	cmd.Flags().BoolVar(&table, "table", false, "Print a table instead of the encoded inventory")
	cmd.Flags().BoolVar(&copyOut, "copy", false, "Copy the encoded inventory to the clipboard")

	cmd.RegisterFlagCompletionFunc("format", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return []string{"json", "yaml", "toml"}, cobra.ShellCompDirectiveNoFileComp
	})

	return needsGit(cmd)
}

// scanFormat decides the output format. With an output file the extension
// decides, and an explicit --format must agree with it.
func scanFormat(outFile, format string, explicit bool) (inventory.Format, error) {
	flagFormat, err := inventory.ParseFormat(format)
	if err != nil {
		return 0, err
	}
	if outFile == "" {
		return flagFormat, nil
	}
	fileFormat, err := inventory.FormatFromPath(outFile)
	if err != nil {
		return 0, err
	}
	if explicit && fileFormat != flagFormat {
		return 0, fmt.Errorf("--format %s does not match the extension of %s", flagFormat, outFile)
	}
	return fileFormat, nil
}
