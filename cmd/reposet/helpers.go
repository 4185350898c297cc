package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/atotto/clipboard"
	"github.com/mattn/go-isatty"

	"github.com/raphi011/reposet/internal/config"
	"github.com/raphi011/reposet/internal/git"
	"github.com/raphi011/reposet/internal/log"
	"github.com/raphi011/reposet/internal/output"
	"github.com/raphi011/reposet/internal/restore"
	"github.com/raphi011/reposet/internal/scan"
	"github.com/raphi011/reposet/internal/ui/prompt"
	"github.com/raphi011/reposet/internal/ui/static"
)

// isTerminal reports whether f is an interactive terminal.
func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// showProgress reports whether spinners and progress bars should be drawn:
// only on an interactive stderr and when logging is not silenced.
func showProgress(ctx context.Context, w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok || !isTerminal(f) {
		return false
	}
	l := log.FromContext(ctx)
	// Verbose command echo would tear through the progress line.
	return !l.IsVerbose() && !l.IsQuiet()
}

// canPrompt reports whether a confirmation prompt can be answered.
func canPrompt(in io.Reader, out io.Writer) bool {
	fin, ok := in.(*os.File)
	if !ok || !isTerminal(fin) {
		return false
	}
	fout, ok := out.(*os.File)
	return ok && isTerminal(fout)
}

// resolveDir picks the directory argument, else root_dir, else the
// working directory, and makes it absolute.
func resolveDir(args []string, cfg *config.Config) (string, error) {
	dir := cfg.RootDir
	if len(args) > 0 && args[0] != "" {
		expanded, err := config.ExpandPath(args[0])
		if err != nil {
			return "", err
		}
		dir = expanded
	}
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("get working directory: %w", err)
		}
		dir = wd
	}
	return filepath.Abs(dir)
}

// resolveListPath picks the path argument or flag, else list_path.
func resolveListPath(explicit string, cfg *config.Config) (string, error) {
	path := cfg.ListPath
	if explicit != "" {
		expanded, err := config.ExpandPath(explicit)
		if err != nil {
			return "", err
		}
		path = expanded
	}
	if path == "" {
		return "", fmt.Errorf("no inventory file given and list_path is not configured")
	}
	return filepath.Abs(path)
}

// policyFlags are the mutually exclusive existing-directory flags shared
// by restore and sync.
type policyFlags struct {
	force        bool
	skipExisting bool
}

// resolve returns the flag policy when either flag is set, else the
// configured one.
func (f policyFlags) resolve(cfg *config.Config) restore.Policy {
	if f.force || f.skipExisting {
		return restore.Policy{OverwriteExisting: f.force, SkipExisting: f.skipExisting}
	}
	return restore.Policy{
		OverwriteExisting: cfg.Restore.OverwriteExisting,
		SkipExisting:      cfg.Restore.SkipExisting,
	}
}

// scanOptions builds scanner options from config.
func scanOptions(cfg *config.Config) scan.Options {
	opts := scan.Options{
		RemoteName: cfg.RemoteName,
		SkipProbe:  cfg.SkipProbe,
		Exclude:    scan.NewExcludeMatcher(cfg.Exclude),
	}
	if !cfg.SkipProbe {
		opts.Prober = git.NewProber(cfg.GitPath, cfg.ProbeTimeoutDuration())
	}
	return opts
}

// newExecutor builds a restore executor backed by the git client.
func newExecutor(cfg *config.Config, policy restore.Policy, dryRun bool) restore.Executor {
	return restore.Executor{
		Cloner:     git.Client{Path: cfg.GitPath},
		Policy:     policy,
		DryRun:     dryRun,
		SystemName: cfg.SystemName,
	}
}

// printOutcomes writes the outcome table and a one-line summary.
func printOutcomes(ctx context.Context, outcomes []restore.Outcome) {
	out := output.FromContext(ctx)
	if len(outcomes) == 0 {
		return
	}
	out.Print(static.RenderOutcomes(outcomes))
	s := restore.Summarize(outcomes)
	out.Printf("\n%d cloned, %d skipped, %d failed\n", s.Cloned, s.Skipped, s.Failed)
}

// failedError turns failed clones into a non-zero exit.
func failedError(outcomes []restore.Outcome) error {
	if s := restore.Summarize(outcomes); s.Failed > 0 {
		return fmt.Errorf("%d of %d clone(s) failed", s.Failed, len(outcomes))
	}
	return nil
}

// copyToClipboard copies text, warning instead of failing when no
// clipboard is available.
func copyToClipboard(ctx context.Context, text string) {
	l := log.FromContext(ctx)
	if err := clipboard.WriteAll(text); err != nil {
		l.Warnf("failed to copy to clipboard: %v", err)
		return
	}
	l.Debug("copied to clipboard", "bytes", len(text))
}

// confirmCreate asks on the terminal whether dir may be created.
func confirmCreate(in io.Reader, out io.Writer) func(ctx context.Context, dir string) (bool, error) {
	return func(ctx context.Context, dir string) (bool, error) {
		if !canPrompt(in, out) {
			log.FromContext(ctx).Warnf("%s does not exist; rerun with --yes to create it", dir)
			return false, nil
		}
		res, err := prompt.Confirm(ctx, fmt.Sprintf("%s does not exist. Create it?", dir), in, out)
		if err != nil {
			return false, err
		}
		return res.Confirmed && !res.Cancelled, nil
	}
}
