// Package scan discovers git repositories beneath a root directory.
//
// The traversal is breadth-first with an explicit queue. A directory that
// contains a .git directory is a leaf: it yields one record and its
// children are never visited, so nested repositories and submodule
// checkouts inside a repository are not reported separately. Directories
// that cannot be read are logged and contribute nothing; only an
// unresolvable root fails the scan.
//
// Result order follows the traversal and is not stable across runs.
// Callers needing a fixed order sort with [record.Sort].
package scan

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	ignore "github.com/sabhiram/go-gitignore"

	"github.com/raphi011/reposet/internal/git"
	"github.com/raphi011/reposet/internal/log"
	"github.com/raphi011/reposet/internal/pathsafe"
	"github.com/raphi011/reposet/internal/record"
)

// Prober reports whether a remote URL is reachable.
type Prober interface {
	Probe(ctx context.Context, remoteURL string) bool
}

// Options controls a scan.
type Options struct {
	// RemoteName selects which remote's URL is recorded; "origin" if empty.
	RemoteName string
	// SkipProbe leaves IsRemoteAccessible unknown instead of probing.
	SkipProbe bool
	// Prober is required unless SkipProbe is set.
	Prober Prober
	// Exclude skips directories whose slash-separated path relative to the
	// root matches. May be nil.
	Exclude *ignore.GitIgnore
	// OnFound, if set, is called for each repository as it is recorded.
	OnFound func(record.Record)
}

// NewExcludeMatcher compiles gitignore-style patterns. Returns nil for no
// patterns.
func NewExcludeMatcher(patterns []string) *ignore.GitIgnore {
	if len(patterns) == 0 {
		return nil
	}
	return ignore.CompileIgnoreLines(patterns...)
}

// Scan walks root and returns one record per repository found.
func Scan(ctx context.Context, root string, opts Options) ([]record.Record, error) {
	absRoot, err := canonicalRoot(root)
	if err != nil {
		return nil, err
	}
	if !opts.SkipProbe && opts.Prober == nil {
		return nil, fmt.Errorf("scan %s: remote probing enabled without a prober", absRoot)
	}

	l := log.FromContext(ctx)
	l.Debug("scanning", "root", absRoot)

	var records []record.Record
	queue := []string{absRoot}
	for len(queue) > 0 {
		if err := ctx.Err(); err != nil {
			return records, err
		}

		dir := queue[0]
		queue = queue[1:]

		if git.IsRepository(dir) {
			rel, err := relativePath(absRoot, dir)
			if err != nil {
				l.Warnf("skipping %s: %v", dir, err)
				continue
			}
			r := inspect(ctx, absRoot, rel, dir, opts)
			records = append(records, r)
			if opts.OnFound != nil {
				opts.OnFound(r)
			}
			continue
		}

		entries, err := os.ReadDir(dir)
		if err != nil {
			l.Warnf("cannot read %s: %v", dir, err)
			continue
		}
		for _, e := range entries {
			// DirEntry types come from lstat, so symlinked directories are
			// not followed.
			if !e.IsDir() || e.Name() == git.MarkerName {
				continue
			}
			child := filepath.Join(dir, e.Name())
			if opts.Exclude != nil {
				if rel, err := relativePath(absRoot, child); err == nil && opts.Exclude.MatchesPath(rel) {
					l.Debug("excluded", "path", rel)
					continue
				}
			}
			queue = append(queue, child)
		}
	}

	l.Debug("scan complete", "root", absRoot, "repositories", len(records))
	return records, nil
}

// canonicalRoot resolves root to an absolute, symlink-free directory path.
func canonicalRoot(root string) (string, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("resolve scan root %s: %w", root, err)
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return "", fmt.Errorf("resolve scan root %s: %w", root, err)
	}
	info, err := os.Stat(resolved)
	if err != nil {
		return "", fmt.Errorf("resolve scan root %s: %w", root, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("scan root %s is not a directory", root)
	}
	return filepath.Clean(resolved), nil
}

// relativePath returns the canonical "/"-separated path of dir below root,
// "." for root itself.
func relativePath(root, dir string) (string, error) {
	rel, err := filepath.Rel(root, dir)
	if err != nil {
		return "", err
	}
	rel = pathsafe.Normalize(filepath.ToSlash(rel))
	if pathsafe.IsUnsafe(rel) {
		return "", fmt.Errorf("%w: %s", pathsafe.ErrOutOfScope, rel)
	}
	return rel, nil
}

// inspect builds the record for the repository at dir.
func inspect(ctx context.Context, root, rel, dir string, opts Options) record.Record {
	remoteName := opts.RemoteName
	if remoteName == "" {
		remoteName = git.DefaultRemote
	}

	r := record.New(root, rel)
	r.RemoteURL = git.ExtractRemoteURL(dir, remoteName)
	if r.RemoteURL != "" {
		r.RemoteName = remoteName
	}
	r.UserName, r.UserEmail = git.ExtractUserIdentity(dir)
	if ts, ok := git.ExtractStatusDate(dir); ok {
		r.StatusDate = record.Time(ts)
	}
	if !opts.SkipProbe {
		r.IsRemoteAccessible = record.Bool(opts.Prober.Probe(ctx, r.RemoteURL))
	}

	log.FromContext(ctx).Debug("found repository", "path", rel, "remote", r.RemoteURL)
	return r
}
