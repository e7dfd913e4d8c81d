package main

import (
	"context"
	"strings"

	"github.com/desertthunder/wxfm/internal/formatter"
	"github.com/desertthunder/wxfm/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Run executes the full forecast-to-playlist pipeline once.
func (r *Runner) Run(ctx context.Context, cmd *cli.Command) error {
	config, err := r.configFor(cmd)
	if err != nil {
		return err
	}

	dryRun := config.Playlist.DryRun || cmd.Bool("dry-run")
	trackCount := config.Playlist.TrackCount
	if cmd.IsSet("tracks") {
		trackCount = cmd.Int("tracks")
	}

	engine, err := r.buildEngine(config, tasks.EngineOpts{
		City:       config.Playlist.City,
		PlaylistID: config.Playlist.ID,
		TrackCount: trackCount,
		Market:     config.Playlist.Market,
		DryRun:     dryRun,
		SummaryDir: config.Summary.Dir,
	})
	if err != nil {
		return err
	}

	r.logger.Info("starting pipeline run", "city", config.Playlist.City, "dry_run", dryRun)
	r.writePlain("Building tomorrow's playlist for %s...\n\n", config.Playlist.City)

	// Create progress channel and goroutine to handle updates
	progressCh := make(chan tasks.ProgressUpdate, 50)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progressCh {
			switch update.Phase {
			case tasks.FetchForecast:
				r.writePlain("🌤  %s\n", update.Message)
			case tasks.ResolveMood:
				r.writePlain("🎭 %s\n", update.Message)
			case tasks.Authenticate:
				r.writePlain("🔑 %s\n", update.Message)
			case tasks.AcquireTracks:
				r.writePlain("🔍 %s\n", update.Message)
			case tasks.WriteSummary:
				r.writePlain("📝 %s\n", update.Message)
			case tasks.ReplacePlaylist:
				r.writePlain("📀 %s\n", update.Message)
			}
		}
	}()

	// Run the engine operation
	result, err := engine.Run(ctx, progressCh)
	close(progressCh)
	<-done

	if err != nil {
		return err
	}

	// Output summary
	r.writePlain("\n")
	r.writePlainHeader("Run Complete")
	r.writePlain("Run ID: %s\n", result.RunID)
	r.writePlain("Condition: %s (%s)\n", result.Forecast.Condition, formatter.FormatTemp(result.Forecast.TempC))
	r.writePlain("Mood: %s\n", result.Mood.Name)
	r.writePlain("Seeds: %s\n", strings.Join(result.Seeds, ", "))

	if result.NoTracks {
		r.writePlain("\nNo tracks found; playlist left untouched.\n")
		return nil
	}

	if result.UsedFallback {
		r.writePlain("Source: genre search fallback\n")
	} else {
		r.writePlain("Source: recommendations\n")
	}

	r.writePlain("Tracks: %d\n\n", len(result.Tracks))
	for i, track := range result.Tracks {
		r.writePlain("  %s\n", formatter.TrackLine(i+1, track))
	}

	if result.SummaryPath != "" {
		r.writePlain("\nSummary: %s\n", result.SummaryPath)
	}

	if result.DryRun {
		r.writePlain("\nDry run: no playlist was modified.\n")
	} else if result.Replaced {
		r.writePlain("\n✓ Playlist %s replaced with %d tracks\n", config.Playlist.ID, len(result.Tracks))
	}

	return nil
}
