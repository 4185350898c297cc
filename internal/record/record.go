// Package record defines the repository inventory entry shared by the
// scanner, the inventory file, sync and restore.
package record

import (
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/raphi011/reposet/internal/pathsafe"
)

// Record describes one repository found on disk or listed in an inventory.
// Empty strings mean "absent". Records are treated as values: sync and
// restore derive new records instead of mutating their inputs.
type Record struct {
	RootPath           string     `json:"root_path" yaml:"root_path" toml:"root_path"`
	RelativePath       string     `json:"relative_path" yaml:"relative_path" toml:"relative_path"`
	FullPath           string     `json:"full_path" yaml:"full_path" toml:"full_path"`
	RemoteName         string     `json:"remote_name" yaml:"remote_name" toml:"remote_name"`
	RemoteURL          string     `json:"remote_url" yaml:"remote_url" toml:"remote_url"`
	IsRemoteAccessible *bool      `json:"is_remote_accessible" yaml:"is_remote_accessible" toml:"is_remote_accessible,omitempty"` // nil = not probed
	UserName           string     `json:"user_name" yaml:"user_name" toml:"user_name"`
	UserEmail          string     `json:"user_email" yaml:"user_email" toml:"user_email"`
	StatusDate         *time.Time `json:"status_date" yaml:"status_date" toml:"status_date,omitempty"`
	SystemFilter       string     `json:"system_filter" yaml:"system_filter" toml:"system_filter"`
}

// New creates a record for relativePath beneath rootPath with FullPath set.
func New(rootPath, relativePath string) Record {
	r := Record{RootPath: rootPath, RelativePath: relativePath}
	return r.Normalized()
}

// Normalized returns a copy with the root trimmed of trailing separators,
// the relative path in canonical form, and FullPath recomputed from both.
func (r Record) Normalized() Record {
	out := r.Clone()
	out.RootPath = trimRoot(r.RootPath)
	out.RelativePath = pathsafe.Normalize(r.RelativePath)
	out.FullPath = FullPathOf(out.RootPath, out.RelativePath)
	return out
}

// FullPathOf joins a root and a canonical relative path.
func FullPathOf(rootPath, relativePath string) string {
	if rootPath == "" {
		return ""
	}
	rel := pathsafe.Normalize(relativePath)
	if rel == pathsafe.Root {
		return rootPath
	}
	return filepath.Join(rootPath, filepath.FromSlash(rel))
}

func trimRoot(root string) string {
	root = strings.TrimSpace(root)
	trimmed := strings.TrimRight(root, `/\`)
	if trimmed == "" || strings.HasSuffix(trimmed, ":") {
		// "/" or "C:\" keep their separator.
		return root
	}
	return trimmed
}

// Key identifies a repository within one root: the canonical relative path,
// compared case-insensitively.
func (r Record) Key() string {
	return strings.ToLower(pathsafe.Normalize(r.RelativePath))
}

// HasRemote reports whether the record carries a clonable URL.
func (r Record) HasRemote() bool {
	return strings.TrimSpace(r.RemoteURL) != ""
}

// KnownInaccessible reports whether a probe marked the remote unreachable.
func (r Record) KnownInaccessible() bool {
	return r.IsRemoteAccessible != nil && !*r.IsRemoteAccessible
}

// Clone returns a deep copy.
func (r Record) Clone() Record {
	if r.IsRemoteAccessible != nil {
		v := *r.IsRemoteAccessible
		r.IsRemoteAccessible = &v
	}
	if r.StatusDate != nil {
		v := *r.StatusDate
		r.StatusDate = &v
	}
	return r
}

// Equal compares every field; timestamps compare by instant.
func (r Record) Equal(o Record) bool {
	if r.RootPath != o.RootPath ||
		r.RelativePath != o.RelativePath ||
		r.FullPath != o.FullPath ||
		r.RemoteName != o.RemoteName ||
		r.RemoteURL != o.RemoteURL ||
		r.UserName != o.UserName ||
		r.UserEmail != o.UserEmail ||
		r.SystemFilter != o.SystemFilter {
		return false
	}
	if (r.IsRemoteAccessible == nil) != (o.IsRemoteAccessible == nil) {
		return false
	}
	if r.IsRemoteAccessible != nil && *r.IsRemoteAccessible != *o.IsRemoteAccessible {
		return false
	}
	if (r.StatusDate == nil) != (o.StatusDate == nil) {
		return false
	}
	if r.StatusDate != nil && !r.StatusDate.Equal(*o.StatusDate) {
		return false
	}
	return true
}

// Bool returns a pointer to b, for IsRemoteAccessible.
func Bool(b bool) *bool {
	return &b
}

// Time returns a pointer to t, for StatusDate.
func Time(t time.Time) *time.Time {
	return &t
}

// Sort orders records by key, then by the exact relative path.
func Sort(records []Record) {
	slices.SortStableFunc(records, func(a, b Record) int {
		if c := strings.Compare(a.Key(), b.Key()); c != 0 {
			return c
		}
		return strings.Compare(a.RelativePath, b.RelativePath)
	})
}
