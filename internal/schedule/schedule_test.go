package schedule

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestParse(t *testing.T) {
	t.Parallel()

	tests := []struct {
		spec    string
		wantErr bool
	}{
		{"@every 1h", false},
		{"@daily", false},
		{"0 */2 * * *", false},
		{" @hourly ", false},
		{"", true},
		{"@fortnightly", true},
		{"* * * * * *", true},
	}

	for _, tt := range tests {
		_, err := Parse(tt.spec)
		if (err != nil) != tt.wantErr {
			t.Errorf("Parse(%q) error = %v, wantErr %v", tt.spec, err, tt.wantErr)
		}
	}
}

func TestRun_InvalidSpec(t *testing.T) {
	t.Parallel()

	err := Run(context.Background(), "nope", func(context.Context) error { return nil }, Options{})
	if err == nil {
		t.Fatal("Run() error = nil, want parse error")
	}
}

func TestRun_ImmediatelyThenStop(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	var calls atomic.Int32
	done := make(chan error, 1)

	go func() {
		done <- Run(ctx, "@every 1h", func(context.Context) error {
			calls.Add(1)
			cancel()
			return nil
		}, Options{Immediately: true})
	}()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run() error = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run() did not return after cancellation")
	}
	if calls.Load() != 1 {
		t.Errorf("job ran %d times, want 1", calls.Load())
	}
}

func TestRun_TicksAndSurvivesErrors(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var calls atomic.Int32
	err := Run(ctx, "@every 1s", func(context.Context) error {
		if calls.Add(1) >= 2 {
			cancel()
		}
		return errors.New("remote unavailable")
	}, Options{})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if calls.Load() < 2 {
		t.Errorf("job ran %d times, want at least 2", calls.Load())
	}
}
