package cmd

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/raphi011/reposet/internal/log"
)

func logCtx() context.Context {
	l := log.New(&bytes.Buffer{}, false, false)
	return log.WithLogger(context.Background(), l)
}

func TestRunContext_Success(t *testing.T) {
	t.Parallel()
	err := RunContext(logCtx(), "", "echo", "hello")
	if err != nil {
		t.Errorf("RunContext(echo hello) = %v, want nil", err)
	}
}

func TestRunContext_Failure(t *testing.T) {
	t.Parallel()
	err := RunContext(logCtx(), "", "sh", "-c", "exit 1")
	if err == nil {
		t.Error("RunContext(exit 1) = nil, want error")
	}
}

func TestRunContext_StderrMessage(t *testing.T) {
	t.Parallel()
	err := RunContext(logCtx(), "", "sh", "-c", "echo 'bad thing' >&2; exit 1")
	if err == nil {
		t.Fatal("RunContext = nil, want error")
	}
	if err.Error() != "bad thing" {
		t.Errorf("RunContext error = %q, want %q", err.Error(), "bad thing")
	}
}

func TestRunContext_ContextCancelled(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(logCtx())
	cancel()
	err := RunContext(ctx, "", "sleep", "10")
	if err == nil {
		t.Error("RunContext with cancelled context = nil, want error")
	}
	if err != context.Canceled {
		t.Errorf("RunContext error = %v, want context.Canceled", err)
	}
}

func TestRunContext_Dir(t *testing.T) {
	t.Parallel()
	// Verify command runs in specified directory
	err := RunContext(logCtx(), "/tmp", "pwd")
	if err != nil {
		t.Errorf("RunContext with dir = %v, want nil", err)
	}
}

func TestRunContext_ExitCode(t *testing.T) {
	t.Parallel()
	err := RunContext(logCtx(), "", "sh", "-c", "exit 3")
	if got := ExitCode(err); got != 3 {
		t.Errorf("ExitCode() = %d, want 3", got)
	}
}

func TestRunContext_Timeout(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithTimeout(logCtx(), 50*time.Millisecond)
	defer cancel()
	err := RunContext(ctx, "", "sleep", "10")
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("RunContext error = %v, want context.DeadlineExceeded", err)
	}
	if got := ExitCode(err); got != -1 {
		t.Errorf("ExitCode() = %d, want -1", got)
	}
}

func TestExitCode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, 0},
		{"exit error", &ExitError{Code: 128, Stderr: "fatal"}, 128},
		{"wrapped exit error", fmt.Errorf("clone: %w", &ExitError{Code: 1}), 1},
		{"other error", errors.New("exec: not found"), -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := ExitCode(tt.err); got != tt.want {
				t.Errorf("ExitCode(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

func TestExitError_Error(t *testing.T) {
	t.Parallel()
	if got := (&ExitError{Code: 2}).Error(); got != "exit status 2" {
		t.Errorf("Error() = %q, want %q", got, "exit status 2")
	}
	if got := (&ExitError{Code: 2, Stderr: "repository not found"}).Error(); got != "repository not found" {
		t.Errorf("Error() = %q, want %q", got, "repository not found")
	}
}

func TestOutputContext_Success(t *testing.T) {
	t.Parallel()
	out, err := OutputContext(logCtx(), "", "echo", "hello")
	if err != nil {
		t.Fatalf("OutputContext(echo hello) = %v, want nil", err)
	}
	if got := string(out); got != "hello\n" {
		t.Errorf("OutputContext output = %q, want %q", got, "hello\n")
	}
}

func TestOutputContext_Failure(t *testing.T) {
	t.Parallel()
	_, err := OutputContext(logCtx(), "", "sh", "-c", "exit 1")
	if err == nil {
		t.Error("OutputContext(exit 1) = nil, want error")
	}
}

func TestOutputContext_StderrMessage(t *testing.T) {
	t.Parallel()
	_, err := OutputContext(logCtx(), "", "sh", "-c", "echo 'error msg' >&2; exit 1")
	if err == nil {
		t.Fatal("OutputContext = nil, want error")
	}
	if err.Error() != "error msg" {
		t.Errorf("OutputContext error = %q, want %q", err.Error(), "error msg")
	}
}

func TestOutputContext_ContextCancelled(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(logCtx())
	cancel()
	_, err := OutputContext(ctx, "", "sleep", "10")
	if err == nil {
		t.Error("OutputContext with cancelled context = nil, want error")
	}
	if err != context.Canceled {
		t.Errorf("OutputContext error = %v, want context.Canceled", err)
	}
}

func TestRunEnvContext(t *testing.T) {
	t.Parallel()
	err := RunEnvContext(logCtx(), "", []string{"REPOSET_TEST_VALUE=42"}, "sh", "-c", `test "$REPOSET_TEST_VALUE" = 42`)
	if err != nil {
		t.Errorf("RunEnvContext() = %v, want nil", err)
	}
}
