package scheduler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync/atomic"
	"testing"
	"time"

	"github.com/desertthunder/wxfm/internal/shared"
)

func noopRun(ctx context.Context) error { return nil }

func discardLogger() Opts {
	return Opts{Logger: shared.NewLogger(io.Discard)}
}

func TestNew(t *testing.T) {
	t.Run("defaults schedule settings", func(t *testing.T) {
		s, err := New(noopRun, discardLogger())
		if err != nil {
			t.Fatalf("New failed: %v", err)
		}

		if s.at != "07:30" {
			t.Errorf("expected default run time 07:30, got %s", s.at)
		}
		if s.location.String() != "UTC" {
			t.Errorf("expected default timezone UTC, got %s", s.location)
		}
	})

	t.Run("accepts valid settings", func(t *testing.T) {
		opts := discardLogger()
		opts.At = "06:15"
		opts.Timezone = "Europe/Dublin"

		s, err := New(noopRun, opts)
		if err != nil {
			t.Fatalf("New failed: %v", err)
		}
		if s.at != "06:15" || s.location.String() != "Europe/Dublin" {
			t.Errorf("settings not applied: at=%s tz=%s", s.at, s.location)
		}
	})

	t.Run("rejects missing run function", func(t *testing.T) {
		_, err := New(nil, discardLogger())
		if !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
	})

	t.Run("rejects malformed times", func(t *testing.T) {
		for _, at := range []string{"25:00", "0730", "7.30pm", "12:61"} {
			opts := discardLogger()
			opts.At = at

			if _, err := New(noopRun, opts); !errors.Is(err, shared.ErrInvalidArgument) {
				t.Errorf("expected ErrInvalidArgument for %q, got %v", at, err)
			}
		}
	})

	t.Run("rejects unknown timezones", func(t *testing.T) {
		opts := discardLogger()
		opts.Timezone = "Mars/Olympus_Mons"

		if _, err := New(noopRun, opts); !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})
}

func TestStart(t *testing.T) {
	t.Run("registers the daily job", func(t *testing.T) {
		opts := discardLogger()
		// Keep the trigger well away from "now" so the job cannot fire
		// during the test.
		opts.At = time.Now().UTC().Add(2 * time.Hour).Format("15:04")

		s, err := New(noopRun, opts)
		if err != nil {
			t.Fatalf("New failed: %v", err)
		}

		if err := s.Start(); err != nil {
			t.Fatalf("Start failed: %v", err)
		}
		defer s.Stop()

		if got := s.sched.Len(); got != 1 {
			t.Errorf("expected 1 scheduled job, got %d", got)
		}
		if !s.sched.IsRunning() {
			t.Error("expected scheduler to be running")
		}
	})

	t.Run("stop halts the loop", func(t *testing.T) {
		opts := discardLogger()
		opts.At = time.Now().UTC().Add(2 * time.Hour).Format("15:04")

		s, err := New(noopRun, opts)
		if err != nil {
			t.Fatalf("New failed: %v", err)
		}
		if err := s.Start(); err != nil {
			t.Fatalf("Start failed: %v", err)
		}

		s.Stop()
		if s.sched.IsRunning() {
			t.Error("expected scheduler to stop")
		}
	})
}

func TestRunNow(t *testing.T) {
	t.Run("executes the run function", func(t *testing.T) {
		var runs atomic.Int32
		s, err := New(func(ctx context.Context) error {
			runs.Add(1)
			return nil
		}, discardLogger())
		if err != nil {
			t.Fatalf("New failed: %v", err)
		}

		s.RunNow()
		s.RunNow()

		if got := runs.Load(); got != 2 {
			t.Errorf("expected 2 runs, got %d", got)
		}
	})

	t.Run("run failures do not propagate", func(t *testing.T) {
		var runs atomic.Int32
		s, err := New(func(ctx context.Context) error {
			runs.Add(1)
			return fmt.Errorf("forecast fetch failed")
		}, discardLogger())
		if err != nil {
			t.Fatalf("New failed: %v", err)
		}

		s.RunNow()
		s.RunNow()

		if got := runs.Load(); got != 2 {
			t.Errorf("failed runs must not stop later ones, got %d runs", got)
		}
	})
}
