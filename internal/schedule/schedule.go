// Package schedule runs a job periodically on a cron schedule.
package schedule

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/raphi011/reposet/internal/log"
)

// Parser accepts standard five-field specs and descriptors such as
// "@hourly" or "@every 30m".
var Parser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// Parse validates spec and returns its schedule.
func Parse(spec string) (cron.Schedule, error) {
	s, err := Parser.Parse(strings.TrimSpace(spec))
	if err != nil {
		return nil, fmt.Errorf("invalid schedule %q: %w", spec, err)
	}
	return s, nil
}

// Job is one scheduled execution. Errors are logged and do not stop the
// schedule.
type Job func(ctx context.Context) error

// Options controls Run.
type Options struct {
	// Immediately runs the job once before waiting for the first tick.
	Immediately bool
}

// Run executes job on spec until ctx is cancelled. Runs never overlap: a
// tick that fires while the previous run is still going is skipped. Run
// returns after the in-flight run, if any, has finished.
func Run(ctx context.Context, spec string, job Job, opts Options) error {
	sched, err := Parse(spec)
	if err != nil {
		return err
	}

	l := log.FromContext(ctx)
	logger := cronLogger{l}
	c := cron.New(cron.WithParser(Parser), cron.WithLogger(logger))

	runs := 0
	wrapped := cron.FuncJob(func() {
		runs++
		start := time.Now()
		l.Debug("scheduled run starting", "run", runs)
		if err := job(ctx); err != nil {
			l.Warnf("scheduled run %d failed: %v", runs, err)
			return
		}
		l.Debug("scheduled run finished", "run", runs, "duration", time.Since(start).Round(time.Millisecond))
	})
	chained := cron.NewChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)).Then(wrapped)
	c.Schedule(sched, chained)
	c.Start()

	var first sync.WaitGroup
	if opts.Immediately {
		first.Add(1)
		go func() {
			defer first.Done()
			chained.Run()
		}()
	}

	l.Debug("schedule started", "spec", spec, "next", sched.Next(time.Now()).Format(time.RFC3339))

	<-ctx.Done()
	<-c.Stop().Done()
	first.Wait()
	return nil
}

// cronLogger adapts log.Logger to cron.Logger.
type cronLogger struct {
	l *log.Logger
}

func (c cronLogger) Info(msg string, keysAndValues ...any) {
	c.l.Debug("cron: "+msg, keysAndValues...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...any) {
	c.l.Warnf("cron: %s: %v", msg, err)
}
