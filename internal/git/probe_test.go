package git

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestProbeReachability_EmptyURL(t *testing.T) {
	t.Parallel()

	// A git path that cannot exist proves no process is started.
	missing := filepath.Join(t.TempDir(), "never-run")
	for _, url := range []string{"", "   ", "\t"} {
		if ProbeReachability(context.Background(), url, missing, time.Second) {
			t.Errorf("ProbeReachability(%q) = true, want false", url)
		}
	}
}

func TestProbeReachability_LocalRepo(t *testing.T) {
	t.Parallel()
	requireGit(t)

	src := setupSourceRepo(t, t.TempDir(), "src")
	if !ProbeReachability(context.Background(), "file://"+src, "", 0) {
		t.Error("ProbeReachability(local repo) = false, want true")
	}

	missing := "file://" + filepath.Join(t.TempDir(), "missing")
	if ProbeReachability(context.Background(), missing, "", 0) {
		t.Error("ProbeReachability(missing repo) = true, want false")
	}
}

func TestProbeReachability_Timeout(t *testing.T) {
	t.Parallel()

	slow := writeScript(t, t.TempDir(), "git", "sleep 10")

	start := time.Now()
	ok := ProbeReachability(context.Background(), "https://example.invalid/x.git", slow, 100*time.Millisecond)
	elapsed := time.Since(start)

	if ok {
		t.Error("ProbeReachability(slow) = true, want false")
	}
	if elapsed > 5*time.Second {
		t.Errorf("ProbeReachability took %v, want it killed near the timeout", elapsed)
	}
}

func TestProbeReachability_SpawnFailure(t *testing.T) {
	t.Parallel()
	missing := filepath.Join(t.TempDir(), "no-git-here")
	if ProbeReachability(context.Background(), "https://example.com/x.git", missing, time.Second) {
		t.Error("ProbeReachability(missing git) = true, want false")
	}
}

func TestProber_CachesPerURL(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	calls := filepath.Join(dir, "calls")
	fake := writeScript(t, dir, "git", `echo "$3" >> "`+calls+`"`)

	p := NewProber(fake, time.Second)
	ctx := context.Background()

	for range 3 {
		if !p.Probe(ctx, "https://example.com/a.git") {
			t.Fatal("Probe(a) = false, want true")
		}
	}
	if !p.Probe(ctx, " https://example.com/b.git ") {
		t.Fatal("Probe(b) = false, want true")
	}
	if p.Probe(ctx, "") {
		t.Error("Probe(empty) = true, want false")
	}

	data, err := os.ReadFile(calls)
	if err != nil {
		t.Fatalf("read calls: %v", err)
	}
	lines := strings.Fields(string(data))
	want := []string{"https://example.com/a.git", "https://example.com/b.git"}
	if len(lines) != len(want) {
		t.Fatalf("git invoked %d times (%v), want %d", len(lines), lines, len(want))
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("call %d = %q, want %q", i, lines[i], want[i])
		}
	}
}
