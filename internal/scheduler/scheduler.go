// package scheduler triggers daily pipeline runs and serves the
// metrics listener alongside them.
package scheduler

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/wxfm/internal/shared"
	"github.com/go-co-op/gocron"
)

const defaultRunAt = "07:30"

// RunFunc executes one pipeline run.
type RunFunc func(ctx context.Context) error

// Scheduler owns the daily job loop. Runs are singleton: a run still
// in flight when the next trigger fires suppresses the new one. A
// failed run is logged and counted, the schedule keeps going.
type Scheduler struct {
	sched          *gocron.Scheduler
	run            RunFunc
	at             string
	location       *time.Location
	logger         *log.Logger
	metricsAddr    string
	metricsHandler http.Handler
	httpServer     *http.Server
}

// Opts configures a Scheduler. At is a 24-hour "HH:MM" wall clock
// reading in Timezone (IANA name, default UTC).
type Opts struct {
	At             string
	Timezone       string
	MetricsAddr    string
	MetricsHandler http.Handler
	Logger         *log.Logger
}

// New validates the schedule settings and creates a stopped Scheduler.
func New(run RunFunc, opts Opts) (*Scheduler, error) {
	if run == nil {
		return nil, fmt.Errorf("%w: run function", shared.ErrMissingArgument)
	}

	at := opts.At
	if at == "" {
		at = defaultRunAt
	}
	if _, err := time.Parse("15:04", at); err != nil {
		return nil, fmt.Errorf("%w: schedule time %q, expected HH:MM", shared.ErrInvalidArgument, at)
	}

	tz := opts.Timezone
	if tz == "" {
		tz = "UTC"
	}
	location, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("%w: timezone %q: %v", shared.ErrInvalidArgument, tz, err)
	}

	logger := opts.Logger
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	sched := gocron.NewScheduler(location)
	sched.SingletonModeAll()

	return &Scheduler{
		sched:          sched,
		run:            run,
		at:             at,
		location:       location,
		logger:         logger,
		metricsAddr:    opts.MetricsAddr,
		metricsHandler: opts.MetricsHandler,
	}, nil
}

// Start registers the daily job and begins the loop without blocking.
// The metrics listener, when configured, comes up on its own goroutine.
func (s *Scheduler) Start() error {
	job, err := s.sched.Every(1).Day().At(s.at).Do(s.runOnce)
	if err != nil {
		return fmt.Errorf("failed to schedule daily run: %w", err)
	}

	if s.metricsAddr != "" && s.metricsHandler != nil {
		mux := http.NewServeMux()
		mux.Handle("/metrics", s.metricsHandler)
		s.httpServer = &http.Server{Addr: s.metricsAddr, Handler: mux}

		go func() {
			s.logger.Info("metrics listener started", "addr", s.metricsAddr)
			if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				s.logger.Error("metrics listener failed", "error", err)
			}
		}()
	}

	s.sched.StartAsync()
	s.logger.Info("scheduler started", "at", s.at, "timezone", s.location.String(), "next_run", job.NextRun().Format(time.RFC3339))
	return nil
}

// RunNow executes one run immediately, outside the daily schedule.
func (s *Scheduler) RunNow() {
	s.runOnce()
}

// runOnce executes the pipeline and keeps the loop alive on failure.
func (s *Scheduler) runOnce() {
	started := time.Now()
	s.logger.Info("starting scheduled run")

	if err := s.run(context.Background()); err != nil {
		s.logger.Error("scheduled run failed", "error", err, "duration", time.Since(started))
		return
	}

	s.logger.Info("scheduled run finished", "duration", time.Since(started))
}

// Stop halts the schedule and shuts down the metrics listener.
func (s *Scheduler) Stop() {
	s.sched.Stop()

	if s.httpServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.httpServer.Shutdown(ctx); err != nil {
			s.logger.Warn("metrics listener shutdown failed", "error", err)
		}
	}

	s.logger.Info("scheduler stopped")
}
