package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/desertthunder/wxfm/internal/formatter"
	"github.com/desertthunder/wxfm/internal/metrics"
	"github.com/desertthunder/wxfm/internal/scheduler"
	"github.com/desertthunder/wxfm/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Schedule runs the pipeline every day at the configured time until
// interrupted.
func (r *Runner) Schedule(ctx context.Context, cmd *cli.Command) error {
	config, err := r.configFor(cmd)
	if err != nil {
		return err
	}

	at := config.Schedule.At
	if cmd.IsSet("at") {
		at = cmd.String("at")
	}
	if at == "" {
		at = "07:30"
	}

	tz := config.Schedule.Timezone
	if cmd.IsSet("tz") {
		tz = cmd.String("tz")
	}
	if tz == "" {
		tz = "UTC"
	}

	metricsAddr := config.Schedule.MetricsAddr
	if cmd.IsSet("metrics-addr") {
		metricsAddr = cmd.String("metrics-addr")
	}

	m := metrics.New()

	engine, err := r.buildEngine(config, tasks.EngineOpts{
		City:          config.Playlist.City,
		PlaylistID:    config.Playlist.ID,
		TrackCount:    config.Playlist.TrackCount,
		Market:        config.Playlist.Market,
		DryRun:        config.Playlist.DryRun,
		SummaryDir:    config.Summary.Dir,
		SummaryPrefix: formatter.SchedulerSummaryPrefix,
		Metrics:       m,
	})
	if err != nil {
		return err
	}

	run := func(runCtx context.Context) error {
		_, err := engine.Run(runCtx, nil)
		return err
	}

	sched, err := scheduler.New(run, scheduler.Opts{
		At:             at,
		Timezone:       tz,
		MetricsAddr:    metricsAddr,
		MetricsHandler: m.Handler(),
		Logger:         r.logger,
	})
	if err != nil {
		return err
	}

	if err := sched.Start(); err != nil {
		return err
	}

	r.writePlain("Scheduler running, daily at %s (%s). Ctrl+C to stop.\n", at, tz)
	if metricsAddr != "" {
		r.writePlain("Metrics at http://%s/metrics\n", metricsAddr)
	}

	if cmd.Bool("now") {
		r.writePlain("Running immediately...\n")
		sched.RunNow()
	}

	notifyCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	<-notifyCtx.Done()

	r.writePlain("\nShutting down...\n")
	sched.Stop()

	return nil
}
