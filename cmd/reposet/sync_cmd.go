package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/raphi011/reposet/internal/config"
	"github.com/raphi011/reposet/internal/inventory"
	"github.com/raphi011/reposet/internal/log"
	"github.com/raphi011/reposet/internal/output"
	"github.com/raphi011/reposet/internal/record"
	"github.com/raphi011/reposet/internal/restore"
	"github.com/raphi011/reposet/internal/schedule"
	reposync "github.com/raphi011/reposet/internal/sync"
	"github.com/raphi011/reposet/internal/ui/progress"
)

// scheduleFromConfig is the --schedule value meaning "use sync.schedule".
const scheduleFromConfig = "config"

func newSyncCmd() *cobra.Command {
	var (
		listFlag   string
		policy     policyFlags
		dryRun     bool
		yes        bool
		publish    bool
		schedSpec  string
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:     "sync [dir]",
		Short:   "Reconcile a directory with a shared inventory",
		GroupID: GroupCore,
		Args:    cobra.MaximumNArgs(1),
		Long: `Reconcile a directory with a shared inventory file.

The directory is scanned and merged with the inventory: repositories found
locally win every conflict, entries only in the inventory are cloned, and
the inventory is rewritten only when something changed. Running sync twice
without changes on disk neither clones nor writes.

A missing directory is created after confirmation (or with --yes).
With --schedule, sync runs repeatedly until interrupted; without a value
the sync.schedule config key is used.`,
		Example: `  reposet sync ~/src --list ~/Dropbox/repos.json
  reposet sync --dry-run                  # Preview clones and writes
  reposet sync --yes --skip-existing      # Non-interactive
  reposet sync --publish                  # Also update the configured gist
  reposet sync --schedule "@every 1h"     # Keep syncing every hour`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			dir, err := resolveDir(args, config.FromContext(ctx))
			if err != nil {
				return err
			}
			cfg, err := config.ForRoot(config.FromContext(ctx), dir)
			if err != nil {
				return err
			}
			listPath, err := resolveListPath(listFlag, cfg)
			if err != nil {
				return err
			}

			opts := reposync.Options{
				Dir:      dir,
				ListPath: listPath,
				Restore:  newExecutor(cfg, policy.resolve(cfg), false),
				DryRun:   dryRun,
			}
			if !yes {
				opts.Confirm = confirmCreate(cmd.InOrStdin(), cmd.ErrOrStderr())
			}

			s := &syncer{
				cfg:        cfg,
				opts:       opts,
				publish:    publish && !dryRun,
				jsonOutput: jsonOutput,
			}

			if !cmd.Flags().Changed("schedule") {
				if showProgress(ctx, cmd.ErrOrStderr()) && !jsonOutput {
					s.progressOut = cmd.ErrOrStderr()
				}
				return s.run(ctx)
			}

			spec := schedSpec
			if spec == scheduleFromConfig {
				spec = cfg.Sync.Schedule
			}
			if spec == "" {
				return fmt.Errorf("--schedule needs a value or sync.schedule in the config")
			}
			s.opts.Confirm = unattendedConfirm(yes)
			log.FromContext(ctx).Printf("Syncing %s on schedule %q, press Ctrl+C to stop\n", dir, spec)
			return schedule.Run(ctx, spec, s.run, schedule.Options{Immediately: true})
		},
	}

	cmd.Flags().StringVarP(&listFlag, "list", "l", "", "Inventory file (default: list_path from config)")
	cmd.Flags().BoolVarP(&policy.force, "force", "f", false, "Delete existing target directories and clone again")
	cmd.Flags().BoolVar(&policy.skipExisting, "skip-existing", false, "Skip existing target directories without a warning")
	cmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false, "Show what would be done without changing anything")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Create a missing directory without asking")
	cmd.Flags().BoolVar(&publish, "publish", false, "Publish the inventory to the configured gist after syncing")
	cmd.Flags().StringVar(&schedSpec, "schedule", "", "Run repeatedly on a cron schedule (e.g. \"@every 1h\")")
	cmd.Flags().Lookup("schedule").NoOptDefVal = scheduleFromConfig
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the sync result as JSON")
	cmd.MarkFlagsMutuallyExclusive("force", "skip-existing")
	cmd.MarkFlagsMutuallyExclusive("dry-run", "schedule")

	return needsGit(cmd)
}

// syncer runs one sync and reports it. It is reused across scheduled runs.
type syncer struct {
	cfg         *config.Config
	opts        reposync.Options
	publish     bool
	jsonOutput  bool
	progressOut io.Writer
}

func (s *syncer) run(ctx context.Context) error {
	l := log.FromContext(ctx)

	if !s.opts.DryRun {
		lock := inventory.LockFor(s.opts.ListPath)
		ok, err := lock.TryLock()
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%s is locked by another reposet process", s.opts.ListPath)
		}
		defer lock.Unlock()
	}

	opts := s.runOptions()
	var sp *progress.Spinner
	if s.progressOut != nil {
		sp = progress.NewSpinner(s.progressOut, "Scanning "+opts.Dir)
		opts.Scan.OnFound = func(r record.Record) {
			sp.UpdateMessage("Scanning " + opts.Dir + ": " + r.RelativePath)
		}
		opts.Restore.OnOutcome = func(o restore.Outcome) {
			sp.UpdateMessage("Restoring " + o.RelativePath)
		}
		if confirm := opts.Confirm; confirm != nil {
			// The prompt needs the terminal line to itself.
			opts.Confirm = func(ctx context.Context, dir string) (bool, error) {
				sp.Stop()
				return confirm(ctx, dir)
			}
		}
		sp.Start()
	}

	res, err := reposync.Run(ctx, opts)
	if sp != nil {
		sp.Stop()
	}
	if res != nil {
		if rerr := s.report(ctx, res); rerr != nil {
			return rerr
		}
	}
	if err != nil {
		return err
	}

	if s.publish {
		if res.Written || s.cfg.Publish.GistID == "" {
			published, err := publishInventory(ctx, s.cfg, s.opts.ListPath, "", "")
			if err != nil {
				return err
			}
			// Later scheduled runs update the gist instead of creating another.
			s.cfg.Publish.GistID = published.ID
		} else {
			l.Debug("inventory unchanged, not publishing", "path", s.opts.ListPath)
		}
	}
	return failedError(res.Outcomes)
}

// runOptions returns the options for one run. Scan options are rebuilt so
// every run probes remotes with an empty reachability cache.
func (s *syncer) runOptions() reposync.Options {
	opts := s.opts
	opts.Scan = scanOptions(s.cfg)
	return opts
}

// unattendedConfirm answers the directory prompt for scheduled runs: nil
// (create) with --yes, otherwise a decline that explains how to allow it.
func unattendedConfirm(yes bool) reposync.ConfirmFunc {
	if yes {
		return nil
	}
	return func(ctx context.Context, dir string) (bool, error) {
		log.FromContext(ctx).Warnf("%s does not exist; scheduled syncs only create it with --yes", dir)
		return false, nil
	}
}

func (s *syncer) report(ctx context.Context, res *reposync.Result) error {
	out := output.FromContext(ctx)
	if s.jsonOutput {
		return out.JSON(res)
	}

	printOutcomes(ctx, res.Outcomes)
	switch {
	case res.Written:
		out.Printf("Wrote %d repositories to %s\n", len(res.Merged), s.opts.ListPath)
	case res.NeedsWrite && s.opts.DryRun:
		out.Printf("dry run: would write %d repositories to %s\n", len(res.Merged), s.opts.ListPath)
	case !res.NeedsWrite:
		out.Printf("%s is up to date (%d repositories)\n", s.opts.ListPath, len(res.Merged))
	}
	return nil
}
