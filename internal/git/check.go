package git

import (
	"errors"
	"os/exec"
)

// ErrGitNotFound indicates git is not installed or not in PATH
var ErrGitNotFound = errors.New("git not found: please install git (https://git-scm.com) or set git_path")

// CheckGit verifies that the git executable at path (or "git" in PATH) exists.
func CheckGit(path string) error {
	if path == "" {
		path = "git"
	}
	if _, err := exec.LookPath(path); err != nil {
		return ErrGitNotFound
	}
	return nil
}
