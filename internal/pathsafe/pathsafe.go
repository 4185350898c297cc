// Package pathsafe validates and normalizes inventory-relative paths so that
// entries read from a shared file can never address anything outside the
// directory they are restored into.
//
// Inventory paths always use "/" as separator regardless of the platform
// that wrote them; "." denotes the root itself. Containment is checked both
// lexically and after resolving symlinks in the part of the path that
// already exists on disk.
package pathsafe

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// Root is the canonical relative path of a repository that is the root itself.
const Root = "."

// Separator is the canonical separator used in relative paths.
const Separator = "/"

// ErrOutOfScope is returned when a resolved path escapes its root.
var ErrOutOfScope = errors.New("path escapes root directory")

// IsUnsafe reports whether a relative path starts with a separator,
// contains a drive or volume marker, or contains a ".." segment.
func IsUnsafe(relativePath string) bool {
	p := strings.TrimSpace(relativePath)
	if strings.HasPrefix(p, "/") || strings.HasPrefix(p, `\`) {
		return true
	}
	if strings.Contains(p, ":") {
		return true
	}
	for _, seg := range splitSegments(p) {
		if seg == ".." {
			return true
		}
	}
	return false
}

// Normalize converts a relative path to canonical form: whitespace trimmed,
// both separator kinds collapsed to a single "/", "." segments dropped, no
// leading or trailing separator, and "." for the root. Normalize is
// idempotent.
func Normalize(path string) string {
	p := strings.TrimSpace(path)
	if p == "" || p == Root {
		return Root
	}
	segs := splitSegments(p)
	kept := segs[:0]
	for _, seg := range segs {
		if seg != Root {
			kept = append(kept, seg)
		}
	}
	if len(kept) == 0 {
		return Root
	}
	return strings.Join(kept, Separator)
}

// splitSegments splits on both separator kinds and drops empty segments.
func splitSegments(p string) []string {
	return strings.FieldsFunc(p, func(r rune) bool {
		return r == '/' || r == '\\'
	})
}

// ResolveWithinRoot joins root and relativePath and verifies the cleaned
// result still lies within root, both as written and with symlinks in its
// existing ancestors resolved. The returned path is the lexical join.
// Comparison is case-insensitive on platforms whose default filesystems are.
func ResolveWithinRoot(root, relativePath string) (string, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("resolve root %s: %w", root, err)
	}
	absRoot = filepath.Clean(absRoot)

	rel := Normalize(relativePath)
	target := filepath.Clean(filepath.Join(absRoot, filepath.FromSlash(rel)))

	if !within(absRoot, target) {
		return "", fmt.Errorf("%w: %s resolves to %s outside %s", ErrOutOfScope, relativePath, target, absRoot)
	}

	realRoot, err := evalExisting(absRoot)
	if err != nil {
		return "", fmt.Errorf("resolve root %s: %w", root, err)
	}
	realTarget, err := evalExisting(target)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", relativePath, err)
	}
	if !within(realRoot, realTarget) {
		return "", fmt.Errorf("%w: %s follows a symlink to %s outside %s", ErrOutOfScope, relativePath, realTarget, realRoot)
	}
	return target, nil
}

// evalExisting resolves symlinks in the longest prefix of path that exists
// and appends the missing remainder unchanged. A dangling symlink is an
// error.
func evalExisting(path string) (string, error) {
	existing := path
	var missing []string
	for {
		if _, err := os.Lstat(existing); err == nil {
			break
		}
		parent := filepath.Dir(existing)
		if parent == existing {
			break
		}
		missing = append(missing, filepath.Base(existing))
		existing = parent
	}

	resolved, err := filepath.EvalSymlinks(existing)
	if err != nil {
		return "", err
	}
	for i := len(missing) - 1; i >= 0; i-- {
		resolved = filepath.Join(resolved, missing[i])
	}
	return filepath.Clean(resolved), nil
}

func within(root, target string) bool {
	if caseInsensitiveFS() {
		root = strings.ToLower(root)
		target = strings.ToLower(target)
	}
	if target == root {
		return true
	}
	prefix := root
	if !strings.HasSuffix(prefix, string(os.PathSeparator)) {
		prefix += string(os.PathSeparator)
	}
	return strings.HasPrefix(target, prefix)
}

func caseInsensitiveFS() bool {
	return runtime.GOOS == "windows" || runtime.GOOS == "darwin"
}
