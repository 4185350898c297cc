// Package cmd provides helpers for executing external commands with proper error handling.
//
// Commands run through [RunContext] or [OutputContext] capture stderr and
// fold it into the returned [ExitError], so a failing "git clone" reports
// git's own message instead of a bare exit status.
//
// # Usage
//
//	if err := cmd.RunContext(ctx, "", "git", "clone", "--", url, dest); err != nil {
//	    code := cmd.ExitCode(err) // -1 if git never ran
//	    return fmt.Errorf("clone %s: %w", url, err)
//	}
//
// Every invocation is echoed through the context logger in verbose mode,
// together with how long it took.
//
// # Design Notes
//
// reposet shells out to git rather than using a Go git library so that
// clones honour the user's SSH keys, credential helpers and URL rewrites.
package cmd
