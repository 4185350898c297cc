package git

import (
	"context"
	"fmt"

	"github.com/raphi011/reposet/internal/cmd"
)

// Client runs git subcommands with a configurable executable.
type Client struct {
	// Path is the git executable; "git" (looked up in PATH) when empty.
	Path string
}

func (c Client) path() string {
	if c.Path == "" {
		return "git"
	}
	return c.Path
}

// gitArgs prepends -C <dir> to args if dir is non-empty.
func gitArgs(dir string, args []string) []string {
	if dir == "" {
		return args
	}
	return append([]string{"-C", dir}, args...)
}

// run executes a git command with context support and verbose logging.
func (c Client) run(ctx context.Context, dir string, args ...string) error {
	return cmd.RunEnvContext(ctx, "", nonInteractiveEnv, c.path(), gitArgs(dir, args)...)
}

// Clone clones url into target including submodules. Output is suppressed;
// on failure the error carries git's stderr and cmd.ExitCode reports the
// exit status.
func (c Client) Clone(ctx context.Context, url, target string) error {
	return c.run(ctx, "", "clone", "--recurse-submodules", "--", url, target)
}

// SetIdentity writes user.name and user.email into the repository-local
// config. Empty values are left unset.
func (c Client) SetIdentity(ctx context.Context, repoPath, name, email string) error {
	if name != "" {
		if err := c.run(ctx, repoPath, "config", "--local", "user.name", name); err != nil {
			return fmt.Errorf("set user.name: %w", err)
		}
	}
	if email != "" {
		if err := c.run(ctx, repoPath, "config", "--local", "user.email", email); err != nil {
			return fmt.Errorf("set user.email: %w", err)
		}
	}
	return nil
}
