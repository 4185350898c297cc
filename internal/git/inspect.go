package git

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/raphi011/reposet/internal/pathsafe"
)

// DefaultRemote is the remote inspected when none is configured.
const DefaultRemote = "origin"

// IsRepository reports whether dir contains a .git directory.
func IsRepository(dir string) bool {
	info, err := os.Stat(filepath.Join(dir, MarkerName))
	return err == nil && info.IsDir()
}

// ExtractRemoteURL returns the url of [remote "<remoteName>"] from the
// repository-local config, or "" when the file, section or key is missing.
func ExtractRemoteURL(repoPath, remoteName string) string {
	if remoteName == "" {
		remoteName = DefaultRemote
	}
	cfg, err := ReadLocalConfig(repoPath)
	if err != nil {
		return ""
	}
	url, _ := cfg.Get("remote", remoteName, "url")
	return strings.TrimSpace(url)
}

// ExtractUserIdentity returns user.name and user.email from the
// repository-local config. Missing values are "".
func ExtractUserIdentity(repoPath string) (name, email string) {
	cfg, err := ReadLocalConfig(repoPath)
	if err != nil {
		return "", ""
	}
	name, _ = cfg.Get("user", "", "name")
	email, _ = cfg.Get("user", "", "email")
	return strings.TrimSpace(name), strings.TrimSpace(email)
}

// ExtractStatusDate approximates the last activity in a repository from
// file modification times: the checked-out branch ref, else HEAD itself
// when detached, else the .git directory. ok is false only when the .git
// directory does not exist.
func ExtractStatusDate(repoPath string) (t time.Time, ok bool) {
	gitDir := filepath.Join(repoPath, MarkerName)
	dirInfo, err := os.Stat(gitDir)
	if err != nil || !dirInfo.IsDir() {
		return time.Time{}, false
	}

	headPath := filepath.Join(gitDir, "HEAD")
	content, err := os.ReadFile(headPath)
	if err != nil {
		return dirInfo.ModTime(), true
	}

	head := strings.TrimSpace(string(content))
	if ref, isRef := strings.CutPrefix(head, "ref:"); isRef {
		ref = strings.TrimSpace(ref)
		if ref != "" && !pathsafe.IsUnsafe(ref) {
			if info, err := os.Stat(filepath.Join(gitDir, filepath.FromSlash(ref))); err == nil {
				return info.ModTime(), true
			}
		}
		return dirInfo.ModTime(), true
	}

	if isObjectID(head) {
		if info, err := os.Stat(headPath); err == nil {
			return info.ModTime(), true
		}
	}
	return dirInfo.ModTime(), true
}

// isObjectID matches a full SHA-1 or SHA-256 hex object name.
func isObjectID(s string) bool {
	if len(s) != 40 && len(s) != 64 {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !(c >= '0' && c <= '9' || c >= 'a' && c <= 'f' || c >= 'A' && c <= 'F') {
			return false
		}
	}
	return true
}
