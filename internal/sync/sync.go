// Package sync reconciles a local directory tree with a shared inventory
// file.
//
// A run loads the stored inventory, scans the directory, merges both with
// local values winning every conflict, clones stored repositories missing
// locally, and writes the merged inventory back only when it changed. A
// second run with no changes on disk therefore neither clones nor writes.
package sync

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/raphi011/reposet/internal/inventory"
	"github.com/raphi011/reposet/internal/log"
	"github.com/raphi011/reposet/internal/pathsafe"
	"github.com/raphi011/reposet/internal/record"
	"github.com/raphi011/reposet/internal/restore"
	"github.com/raphi011/reposet/internal/scan"
)

// ConfirmFunc asks whether a missing directory may be created.
type ConfirmFunc func(ctx context.Context, dir string) (bool, error)

// Options configures a run.
type Options struct {
	// Dir is the local root to reconcile.
	Dir string
	// ListPath is the inventory file. Its extension selects the format.
	ListPath string
	// Scan is passed through to the directory scanner.
	Scan scan.Options
	// Restore clones missing repositories. Its DryRun field is overridden
	// by DryRun below.
	Restore restore.Executor
	// DryRun reports what would happen without creating the directory,
	// cloning or writing the inventory.
	DryRun bool
	// Confirm is consulted before creating a missing Dir. Nil creates it
	// without asking.
	Confirm ConfirmFunc
}

// Result describes a completed run.
type Result struct {
	MergeResult

	// Outcomes has one entry per record in CloneQueue, empty when cloning
	// was skipped because Dir does not exist.
	Outcomes []restore.Outcome
	// Discarded holds records dropped for unsafe relative paths.
	Discarded []record.Record
	// FileExisted is false when ListPath did not exist before the run.
	FileExisted bool
	// NeedsWrite is true when the inventory is missing or changed.
	NeedsWrite bool
	// Written is true when the inventory file was rewritten.
	Written bool
	// DirCreated is true when Dir was created (or would be, in a dry run).
	DirCreated bool
	// DirMissing is true when Dir does not exist and was not created.
	DirMissing bool
}

// Run performs one reconciliation.
func Run(ctx context.Context, opts Options) (*Result, error) {
	l := log.FromContext(ctx)
	res := &Result{FileExisted: true}

	stored, err := inventory.Load(opts.ListPath)
	switch {
	case errors.Is(err, os.ErrNotExist):
		res.FileExisted = false
		l.Debug("inventory does not exist yet", "path", opts.ListPath)
	case err != nil:
		return nil, fmt.Errorf("load inventory: %w", err)
	}
	stored, dropped := discardUnsafe(ctx, stored, "inventory")
	res.Discarded = append(res.Discarded, dropped...)

	dirExists, err := ensureDir(ctx, opts, res)
	if err != nil {
		return nil, err
	}

	var local []record.Record
	if dirExists && !res.DirCreated {
		local, err = scan.Scan(ctx, opts.Dir, opts.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", opts.Dir, err)
		}
		local, dropped = discardUnsafe(ctx, local, "scan")
		res.Discarded = append(res.Discarded, dropped...)
	}

	res.MergeResult = Merge(local, stored)
	for _, c := range res.Conflicts {
		l.Warnf("%s: local %s %q differs from inventory %q, keeping local", c.RelativePath, c.Field, c.Local, c.Stored)
	}
	for _, r := range res.Unclonable {
		l.Warnf("%s: listed without a remote url, cannot clone", r.RelativePath)
	}
	for _, r := range res.Duplicates {
		l.Warnf("%s: duplicate entry ignored", r.RelativePath)
	}

	switch {
	case len(res.CloneQueue) == 0:
	case dirExists || opts.DryRun:
		exec := opts.Restore
		exec.DryRun = opts.DryRun
		outcomes, err := exec.Restore(ctx, res.CloneQueue, opts.Dir)
		res.Outcomes = outcomes
		if err != nil {
			return res, fmt.Errorf("restore: %w", err)
		}
	default:
		l.Warnf("%s does not exist, skipping %d clone(s)", opts.Dir, len(res.CloneQueue))
	}

	res.NeedsWrite = !res.FileExisted || res.Changed
	if !res.NeedsWrite {
		l.Debug("inventory unchanged", "path", opts.ListPath)
		return res, nil
	}
	if opts.DryRun {
		l.Debug("dry run: would write inventory", "path", opts.ListPath, "records", len(res.Merged))
		return res, nil
	}
	if err := inventory.Save(opts.ListPath, res.Merged); err != nil {
		return res, err
	}
	res.Written = true
	return res, nil
}

// ensureDir creates opts.Dir when missing and allowed. It reports whether
// the directory exists (or would, in a dry run).
func ensureDir(ctx context.Context, opts Options, res *Result) (bool, error) {
	l := log.FromContext(ctx)

	info, err := os.Stat(opts.Dir)
	if err == nil {
		if !info.IsDir() {
			return false, fmt.Errorf("%s is not a directory", opts.Dir)
		}
		return true, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return false, fmt.Errorf("stat %s: %w", opts.Dir, err)
	}

	if opts.DryRun {
		l.Printf("dry run: would create %s\n", opts.Dir)
		res.DirCreated = true
		return true, nil
	}
	if opts.Confirm != nil {
		ok, err := opts.Confirm(ctx, opts.Dir)
		if err != nil {
			return false, err
		}
		if !ok {
			l.Warnf("%s was not created", opts.Dir)
			res.DirMissing = true
			return false, nil
		}
	}
	if err := os.MkdirAll(opts.Dir, 0o755); err != nil {
		l.Warnf("cannot create %s: %v", opts.Dir, err)
		res.DirMissing = true
		return false, nil
	}
	res.DirCreated = true
	return true, nil
}

// discardUnsafe drops records whose relative path could escape a root.
func discardUnsafe(ctx context.Context, records []record.Record, source string) (kept, dropped []record.Record) {
	kept = records[:0:0]
	for _, r := range records {
		if pathsafe.IsUnsafe(r.RelativePath) {
			log.FromContext(ctx).Warnf("discarding %s entry with unsafe path %q", source, r.RelativePath)
			dropped = append(dropped, r)
			continue
		}
		kept = append(kept, r)
	}
	return kept, dropped
}
