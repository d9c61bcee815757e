// Package procwatch polls the OS process table for a process whose command
// line contains a marker substring and extracts the arguments that follow it.
package procwatch

import (
	"context"
	"strings"
	"time"
)

// Proc is one process-table row. Fields that could not be read (privilege,
// exit race) are left empty; a partially readable process is still a row.
type Proc struct {
	PID     int32
	Name    string
	Exe     string
	Cmdline []string
}

// ProcessSource enumerates the process table. Implementations skip processes
// whose info is unavailable; only a failure to enumerate the table at all is
// an error.
type ProcessSource interface {
	Snapshot(ctx context.Context) ([]Proc, error)
}

// Logger is the minimal sink the watcher reports progress to.
type Logger interface {
	Printf(format string, v ...any)
}

type noopLogger struct{}

func (noopLogger) Printf(string, ...any) {}

// Watcher polls a ProcessSource on a fixed interval until a marker match,
// timeout, or cancellation. It is a single cooperative loop; one full table
// scan per tick.
type Watcher struct {
	Source   ProcessSource
	Interval time.Duration
	Timeout  time.Duration
	Logger   Logger

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// New returns a watcher over source with the given tick interval and overall
// timeout. Non-positive values fall back to 2s / 120s.
func New(source ProcessSource, interval, timeout time.Duration) *Watcher {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &Watcher{
		Source:   source,
		Interval: interval,
		Timeout:  timeout,
		Logger:   noopLogger{},
		now:      time.Now,
		sleep:    sleepCtx,
	}
}

// Await scans until some process's space-joined command line contains marker,
// then returns the trimmed text following the marker and found=true. An
// elapsed timeout returns found=false with a nil error: no enrichment is a
// valid outcome, not a failure. Cancellation between ticks returns the
// context error without touching anything.
func (w *Watcher) Await(ctx context.Context, marker string) (string, bool, error) {
	deadline := w.now().Add(w.Timeout)
	for {
		if err := ctx.Err(); err != nil {
			return "", false, err
		}

		procs, err := w.Source.Snapshot(ctx)
		if err != nil {
			return "", false, err
		}

		for _, p := range procs {
			if len(p.Cmdline) == 0 {
				continue
			}
			joined := strings.Join(p.Cmdline, " ")
			idx := strings.Index(joined, marker)
			if idx < 0 {
				continue
			}
			tail := extractTail(joined[idx+len(marker):])
			w.logf("marker %q matched pid=%d", marker, p.PID)
			return tail, true, nil
		}

		if !w.now().Before(deadline) {
			w.logf("marker %q not seen within %s", marker, w.Timeout)
			return "", false, nil
		}
		if err := w.sleep(ctx, w.Interval); err != nil {
			return "", false, err
		}
	}
}

// extractTail trims surrounding whitespace and a single pair of enclosing
// quotes from the text following the marker.
func extractTail(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	return s
}

func (w *Watcher) logf(format string, v ...any) {
	if w.Logger == nil {
		return
	}
	w.Logger.Printf(format, v...)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
