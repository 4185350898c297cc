// Package restore clones repositories listed in an inventory into a
// destination directory.
//
// Each record ends in exactly one Outcome: Cloned, Skipped with a reason,
// or Failed with the clone's exit code. Validation problems and clone
// failures are per-record outcomes, never errors, so one bad entry cannot
// abort a batch. Paths from the inventory are checked with pathsafe before
// anything on disk is touched.
package restore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/raphi011/reposet/internal/cmd"
	"github.com/raphi011/reposet/internal/log"
	"github.com/raphi011/reposet/internal/pathsafe"
	"github.com/raphi011/reposet/internal/record"
)

// Status is the terminal state of one record.
type Status int

const (
	Skipped Status = iota
	Cloned
	Failed
)

func (s Status) String() string {
	switch s {
	case Cloned:
		return "cloned"
	case Skipped:
		return "skipped"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// DryRunPrefix starts the reason of every outcome produced in preview mode.
const DryRunPrefix = "dry run: "

// Outcome reports what happened to one record.
type Outcome struct {
	RelativePath string `json:"relative_path"`
	TargetPath   string `json:"target_path"`
	RemoteURL    string `json:"remote_url"`
	Status       Status `json:"status"`
	Reason       string `json:"reason,omitempty"`
	// ExitCode is the clone's exit status for Failed outcomes, -1 when git
	// never produced one.
	ExitCode int `json:"exit_code,omitempty"`
}

// MarshalText lets JSON output carry the status name.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText parses a status name written by MarshalText.
func (s *Status) UnmarshalText(text []byte) error {
	for _, v := range []Status{Skipped, Cloned, Failed} {
		if v.String() == string(text) {
			*s = v
			return nil
		}
	}
	return fmt.Errorf("unknown restore status %q", text)
}

// IsDryRun reports whether the outcome describes a previewed action.
func (o Outcome) IsDryRun() bool {
	return strings.HasPrefix(o.Reason, DryRunPrefix)
}

// Policy decides what happens when a target directory already exists.
type Policy struct {
	// OverwriteExisting deletes an existing target before cloning.
	OverwriteExisting bool
	// SkipExisting skips existing targets quietly.
	SkipExisting bool
}

// ErrConflictingPolicy is returned when both policy flags are set.
var ErrConflictingPolicy = errors.New("overwrite and skip existing are mutually exclusive")

// Validate checks that at most one flag is set.
func (p Policy) Validate() error {
	if p.OverwriteExisting && p.SkipExisting {
		return ErrConflictingPolicy
	}
	return nil
}

// Cloner performs the git operations of a restore. git.Client implements it.
type Cloner interface {
	Clone(ctx context.Context, url, target string) error
	SetIdentity(ctx context.Context, repoPath, name, email string) error
}

// Executor restores records with a fixed policy.
type Executor struct {
	Cloner Cloner
	Policy Policy
	// DryRun reports the action each record would take without touching disk.
	DryRun bool
	// SystemName is matched against each record's system filter. Empty
	// matches only records without a restricting filter.
	SystemName string
	// OnOutcome, if set, is called after each record is processed.
	OnOutcome func(Outcome)
}

// Restore processes records in order against destinationRoot. The error is
// non-nil only for an invalid policy, an unresolvable destination, or a
// cancelled context; in the last case the outcomes gathered so far are
// returned with it.
func (e *Executor) Restore(ctx context.Context, records []record.Record, destinationRoot string) ([]Outcome, error) {
	if err := e.Policy.Validate(); err != nil {
		return nil, err
	}
	if e.Cloner == nil {
		return nil, errors.New("restore: no cloner configured")
	}
	root, err := filepath.Abs(destinationRoot)
	if err != nil {
		return nil, fmt.Errorf("resolve destination %s: %w", destinationRoot, err)
	}

	outcomes := make([]Outcome, 0, len(records))
	for _, r := range records {
		if err := ctx.Err(); err != nil {
			return outcomes, err
		}
		o := e.restoreOne(ctx, r, root)
		outcomes = append(outcomes, o)
		if e.OnOutcome != nil {
			e.OnOutcome(o)
		}
	}
	return outcomes, nil
}

func (e *Executor) restoreOne(ctx context.Context, r record.Record, root string) Outcome {
	l := log.FromContext(ctx)
	out := Outcome{
		RelativePath: r.RelativePath,
		RemoteURL:    strings.TrimSpace(r.RemoteURL),
		Status:       Skipped,
	}

	skip := func(reason string) Outcome {
		out.Reason = reason
		return out
	}
	warn := func(reason string) Outcome {
		l.Warnf("skipping %s: %s", displayPath(r.RelativePath), reason)
		return skip(reason)
	}

	rel := strings.TrimSpace(r.RelativePath)
	if out.RemoteURL == "" {
		return warn("no remote url")
	}
	if rel == "" {
		return warn("empty relative path")
	}
	if pathsafe.IsUnsafe(rel) {
		return warn("unsafe relative path")
	}

	target, err := pathsafe.ResolveWithinRoot(root, rel)
	if err != nil {
		return warn(err.Error())
	}
	out.TargetPath = target
	out.RelativePath = pathsafe.Normalize(rel)

	if r.KnownInaccessible() {
		return warn("remote is not accessible")
	}
	if !r.MatchesSystem(e.SystemName) {
		l.Debug("system filter excludes record", "path", out.RelativePath, "filter", r.SystemFilter, "system", e.SystemName)
		return skip("system filter")
	}

	replace := false
	if info, err := os.Stat(target); err == nil {
		switch {
		case !info.IsDir():
			return warn("target exists and is not a directory")
		case e.Policy.SkipExisting:
			l.Debug("target exists, skipping", "path", target)
			return skip("already exists")
		case e.Policy.OverwriteExisting:
			if target == root {
				return warn("refusing to replace the destination root")
			}
			replace = true
		default:
			return warn("target directory already exists (use --force or --skip-existing)")
		}
	}

	if e.DryRun {
		if replace {
			return skip(DryRunPrefix + "would replace existing directory and clone")
		}
		return skip(DryRunPrefix + "would clone")
	}

	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return warn(fmt.Sprintf("create parent directory: %v", err))
	}
	if replace {
		l.Debug("removing existing directory", "path", target)
		if err := os.RemoveAll(target); err != nil {
			return warn(fmt.Sprintf("remove existing directory: %v", err))
		}
	}

	l.Debug("cloning", "url", out.RemoteURL, "target", target)
	if err := e.Cloner.Clone(ctx, out.RemoteURL, target); err != nil {
		out.Status = Failed
		out.ExitCode = cmd.ExitCode(err)
		out.Reason = strings.TrimSpace(err.Error())
		l.Warnf("clone %s failed: %s", out.RemoteURL, out.Reason)
		return out
	}
	out.Status = Cloned

	if r.UserName != "" || r.UserEmail != "" {
		if err := e.Cloner.SetIdentity(ctx, target, r.UserName, r.UserEmail); err != nil {
			l.Warnf("set identity for %s: %v", out.RelativePath, err)
		}
	}
	return out
}

func displayPath(rel string) string {
	if strings.TrimSpace(rel) == "" {
		return "<empty path>"
	}
	return rel
}

// Summary counts outcomes by status.
type Summary struct {
	Cloned, Skipped, Failed int
}

// Summarize tallies outcomes.
func Summarize(outcomes []Outcome) Summary {
	var s Summary
	for _, o := range outcomes {
		switch o.Status {
		case Cloned:
			s.Cloned++
		case Skipped:
			s.Skipped++
		case Failed:
			s.Failed++
		}
	}
	return s
}
