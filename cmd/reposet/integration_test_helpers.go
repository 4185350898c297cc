//go:build integration

package main

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"
)

// resolvePath resolves symlinks in a path.
// This is needed on macOS where /var is a symlink to /private/var.
func resolvePath(t *testing.T, path string) string {
	t.Helper()
	resolved, err := filepath.EvalSymlinks(path)
	if err != nil {
		t.Fatalf("failed to resolve path %s: %v", path, err)
	}
	return resolved
}

// runGit runs git in dir and fails the test on error.
func runGit(t *testing.T, dir string, args ...string) {
	t.Helper()
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(), "GIT_TERMINAL_PROMPT=0")
	if out, err := cmd.CombinedOutput(); err != nil {
		t.Fatalf("failed to run git %v: %v\n%s", args, err, out)
	}
}

// setupTestRepo creates a git repo with an initial commit in dir/name.
// Returns the absolute path to the created repo (with symlinks resolved).
func setupTestRepo(t *testing.T, dir, name string) string {
	t.Helper()

	dir = resolvePath(t, dir)
	repoPath := filepath.Join(dir, filepath.FromSlash(name))
	if err := os.MkdirAll(repoPath, 0o755); err != nil {
		t.Fatalf("failed to create repo dir: %v", err)
	}

	runGit(t, repoPath, "init")
	runGit(t, repoPath, "config", "user.email", "test@test.com")
	runGit(t, repoPath, "config", "user.name", "Test User")
	runGit(t, repoPath, "config", "commit.gpgsign", "false")

	if err := os.WriteFile(filepath.Join(repoPath, "README.md"), []byte("# "+name+"\n"), 0o644); err != nil {
		t.Fatalf("failed to write README: %v", err)
	}
	runGit(t, repoPath, "add", "README.md")
	runGit(t, repoPath, "commit", "-m", "Initial commit")

	return repoPath
}

// setupUpstream creates a repo under upstreamDir and a working copy of it
// under workDir/rel with origin pointing at the upstream via file://.
// Returns the upstream URL.
func setupUpstream(t *testing.T, upstreamDir, workDir, rel string) string {
	t.Helper()

	upstream := setupTestRepo(t, upstreamDir, filepath.Base(rel))
	url := "file://" + upstream

	target := filepath.Join(resolvePath(t, workDir), filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		t.Fatal(err)
	}
	runGit(t, filepath.Dir(target), "clone", "--quiet", url, filepath.Base(target))
	runGit(t, target, "config", "user.name", "Local User")
	runGit(t, target, "config", "user.email", "local@test.com")
	return url
}
