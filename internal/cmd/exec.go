// Package cmd provides helpers for executing external commands with proper error handling.
package cmd

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/raphi011/reposet/internal/log"
)

// waitDelay bounds how long Wait blocks on inherited pipes after the
// process has been killed.
const waitDelay = 2 * time.Second

// ExitError reports a command that ran but exited with a non-zero status.
type ExitError struct {
	Code   int
	Stderr string
}

func (e *ExitError) Error() string {
	if e.Stderr != "" {
		return e.Stderr
	}
	return fmt.Sprintf("exit status %d", e.Code)
}

// ExitCode extracts the exit status from an error returned by this package.
// Returns 0 for nil and -1 when the process never produced a status
// (spawn failure, cancellation).
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return -1
}

// RunContext executes a command, discarding stdout. Stderr is folded into
// the returned error. A cancelled or expired context is returned as-is.
func RunContext(ctx context.Context, dir, name string, args ...string) error {
	_, err := run(ctx, dir, nil, io.Discard, name, args...)
	return err
}

// RunEnvContext is RunContext with extra environment variables appended to
// the current process environment.
func RunEnvContext(ctx context.Context, dir string, env []string, name string, args ...string) error {
	_, err := run(ctx, dir, env, io.Discard, name, args...)
	return err
}

// OutputContext executes a command and returns its stdout.
func OutputContext(ctx context.Context, dir, name string, args ...string) ([]byte, error) {
	var stdout bytes.Buffer
	if _, err := run(ctx, dir, nil, &stdout, name, args...); err != nil {
		return nil, err
	}
	return stdout.Bytes(), nil
}

func run(ctx context.Context, dir string, env []string, stdout io.Writer, name string, args ...string) (time.Duration, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	done := log.FromContext(ctx).Command(dir, name, args...)

	c := exec.CommandContext(ctx, name, args...)
	c.Dir = dir
	if len(env) > 0 {
		c.Env = append(os.Environ(), env...)
	}
	c.Stdout = stdout
	c.WaitDelay = waitDelay
	var stderr bytes.Buffer
	c.Stderr = &stderr

	start := time.Now()
	err := c.Run()
	elapsed := time.Since(start)
	done(elapsed)

	if err == nil {
		return elapsed, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return elapsed, ctxErr
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return elapsed, &ExitError{Code: exitErr.ExitCode(), Stderr: strings.TrimSpace(stderr.String())}
	}
	return elapsed, err
}
