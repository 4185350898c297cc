package git

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"
)

// requireGit skips the test when no git executable is available.
func requireGit(t *testing.T) {
	t.Helper()
	if err := CheckGit(""); err != nil {
		t.Skip("git not available")
	}
}

// setupSourceRepo creates a git repo with one commit in dir/name and
// returns its path.
func setupSourceRepo(t *testing.T, dir, name string) string {
	t.Helper()

	repoPath := filepath.Join(dir, name)
	if err := os.MkdirAll(repoPath, 0o755); err != nil {
		t.Fatalf("failed to create repo dir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(repoPath, "README.md"), []byte("# "+name+"\n"), 0o644); err != nil {
		t.Fatalf("failed to write README: %v", err)
	}

	cmds := [][]string{
		{"git", "init", "--initial-branch=main"},
		{"git", "config", "user.email", "test@test.com"},
		{"git", "config", "user.name", "Test User"},
		{"git", "config", "commit.gpgsign", "false"},
		{"git", "add", "README.md"},
		{"git", "commit", "-m", "Initial commit"},
	}
	for _, args := range cmds {
		c := exec.Command(args[0], args[1:]...)
		c.Dir = repoPath
		if out, err := c.CombinedOutput(); err != nil {
			t.Fatalf("failed to run %v: %v\n%s", args, err, out)
		}
	}
	return repoPath
}

// writeScript writes an executable shell script and returns its path.
func writeScript(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o755); err != nil {
		t.Fatalf("write script: %v", err)
	}
	return path
}
