package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/raphi011/reposet/internal/config"
	"github.com/raphi011/reposet/internal/inventory"
	"github.com/raphi011/reposet/internal/log"
	"github.com/raphi011/reposet/internal/output"
	"github.com/raphi011/reposet/internal/restore"
	"github.com/raphi011/reposet/internal/ui/progress"
)

func newRestoreCmd() *cobra.Command {
	var (
		policy     policyFlags
		dryRun     bool
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:     "restore <file> [dest]",
		Short:   "Clone the repositories listed in an inventory",
		GroupID: GroupCore,
		Args:    cobra.RangeArgs(1, 2),
		Long: `Clone every repository listed in an inventory file below dest.

Each entry is cloned to dest/<relative path>. Entries with unsafe paths,
without a remote URL, with a remote known to be unreachable, or whose
system filter excludes this machine are skipped. A failed clone is reported
and the remaining entries are still processed.

Existing target directories are skipped with a warning unless --force
(delete and re-clone) or --skip-existing (skip quietly) is given.`,
		Example: `  reposet restore repos.json ~/src          # Clone missing repositories
  reposet restore repos.yaml --dry-run        # Show what would be cloned
  reposet restore repos.json --skip-existing  # Quietly skip existing directories
  reposet restore repos.json --force          # Replace existing directories`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			l := log.FromContext(ctx)
			out := output.FromContext(ctx)

			listPath, err := resolveListPath(args[0], config.FromContext(ctx))
			if err != nil {
				return err
			}
			dest, err := resolveDir(args[1:], config.FromContext(ctx))
			if err != nil {
				return err
			}
			cfg, err := config.ForRoot(config.FromContext(ctx), dest)
			if err != nil {
				return err
			}

			records, err := inventory.Load(listPath)
			if err != nil {
				return fmt.Errorf("load inventory: %w", err)
			}
			l.Debug("restoring", "inventory", listPath, "destination", dest, "records", len(records))

			exec := newExecutor(cfg, policy.resolve(cfg), dryRun)
			var bar *progress.ProgressBar
			if !dryRun && len(records) > 0 && showProgress(ctx, cmd.ErrOrStderr()) {
				bar = progress.NewProgressBar(cmd.ErrOrStderr(), len(records), "Restoring")
				exec.OnOutcome = func(o restore.Outcome) {
					bar.Advance(o.RelativePath)
				}
				bar.Start()
			}

			outcomes, err := exec.Restore(ctx, records, dest)
			if bar != nil {
				bar.Stop()
			}
			if jsonOutput {
				if jerr := out.JSON(outcomes); jerr != nil {
					return jerr
				}
			} else {
				printOutcomes(ctx, outcomes)
			}
			if err != nil {
				return err
			}
			return failedError(outcomes)
		},
	}

	cmd.Flags().BoolVarP(&policy.force, "force", "f", false, "Delete existing target directories and clone again")
	cmd.Flags().BoolVar(&policy.skipExisting, "skip-existing", false, "Skip existing target directories without a warning")
	cmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false, "Show what would be done without cloning")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print outcomes as JSON")
	cmd.MarkFlagsMutuallyExclusive("force", "skip-existing")

	return needsGit(cmd)
}
