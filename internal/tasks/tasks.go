// package tasks implements the weather-to-playlist pipeline.
//
// The core abstraction is RunEngine, which orchestrates forecast fetch, mood resolution, track acquisition, and playlist replacement.
// Runs emit progress updates via channels for non-blocking status reporting to the CLI layer.
package tasks

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/wxfm/internal/formatter"
	"github.com/desertthunder/wxfm/internal/metrics"
	"github.com/desertthunder/wxfm/internal/models"
	"github.com/desertthunder/wxfm/internal/mood"
	"github.com/desertthunder/wxfm/internal/services"
	"github.com/desertthunder/wxfm/internal/shared"
)

// totalSteps is the number of reported steps in a full run.
const totalSteps = 6

// WeatherSource provides tomorrow's forecast for a city.
type WeatherSource interface {
	TomorrowForecast(ctx context.Context, city string) (*models.Forecast, error)
}

// RunResult contains all data from a completed pipeline run.
type RunResult struct {
	RunID        string           // Unique run identifier
	Forecast     *models.Forecast // Forecast slot the run keyed on
	Mood         models.Mood      // Resolved mood profile
	Seeds        []string         // Sanitized seed genres
	Tracks       []models.Track   // Final track pool, in playlist order
	UsedFallback bool             // Pool came from genre search
	PrimaryErr   error            // Recommendation error downgraded to fallback, if any
	NoTracks     bool             // Both strategies produced nothing
	DryRun       bool             // Replacement was skipped on purpose
	Replaced     bool             // Target playlist was replaced
	SummaryPath  string           // Written summary artifact, if any
}

// RunEngine defines the daily pipeline operation.
type RunEngine interface {
	// Run performs a full forecast → mood → tracks → playlist run.
	Run(ctx context.Context, progress chan<- ProgressUpdate) (*RunResult, error)
}

// PipelineEngine implements RunEngine against a weather source and a
// music service.
type PipelineEngine struct {
	weather WeatherSource
	music   services.MusicService

	city          string
	playlistID    string
	trackCount    int
	market        string
	dryRun        bool
	summaryDir    string
	summaryPrefix string

	logger  *log.Logger
	metrics *metrics.Metrics
	rng     *rand.Rand
}

// EngineOpts configures a PipelineEngine. Zero values fall back to
// sensible defaults, except City and PlaylistID which come from
// configuration.
type EngineOpts struct {
	City          string
	PlaylistID    string
	TrackCount    int
	Market        string
	DryRun        bool
	SummaryDir    string
	SummaryPrefix string
	Logger        *log.Logger
	Metrics       *metrics.Metrics
	Rand          *rand.Rand
}

// NewPipelineEngine creates a PipelineEngine with the provided
// services and options.
func NewPipelineEngine(weather WeatherSource, music services.MusicService, opts EngineOpts) *PipelineEngine {
	if opts.TrackCount <= 0 {
		opts.TrackCount = 12
	}
	if opts.SummaryPrefix == "" {
		opts.SummaryPrefix = formatter.SummaryPrefix
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Metrics == nil {
		opts.Metrics = metrics.New()
	}
	if opts.Rand == nil {
		opts.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	return &PipelineEngine{
		weather:       weather,
		music:         music,
		city:          opts.City,
		playlistID:    opts.PlaylistID,
		trackCount:    opts.TrackCount,
		market:        opts.Market,
		dryRun:        opts.DryRun,
		summaryDir:    opts.SummaryDir,
		summaryPrefix: opts.SummaryPrefix,
		logger:        opts.Logger,
		metrics:       opts.Metrics,
		rng:           opts.Rand,
	}
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default to ensure progress reporting never blocks execution.
func (e *PipelineEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
		// Sent successfully
	default:
		// Channel full or closed, skip this update
	}
}

// Run performs a full pipeline run: fetch tomorrow's forecast, resolve
// the mood profile, acquire tracks, record the summary artifact, and
// replace the target playlist.
//
// An empty track pool ends the run without error and without touching
// the playlist. A dry run stops after the summary.
func (e *PipelineEngine) Run(ctx context.Context, progress chan<- ProgressUpdate) (*RunResult, error) {
	if e.weather == nil {
		return nil, fmt.Errorf("%w: weather source not initialized", shared.ErrServiceUnavailable)
	}
	if e.music == nil {
		return nil, fmt.Errorf("%w: music service not initialized", shared.ErrServiceUnavailable)
	}
	if e.city == "" {
		return nil, fmt.Errorf("%w: city is required", shared.ErrMissingConfig)
	}
	if !e.dryRun && e.playlistID == "" {
		return nil, fmt.Errorf("%w: target playlist id is required", shared.ErrMissingConfig)
	}

	result := &RunResult{RunID: shared.GenerateID(), DryRun: e.dryRun}

	e.sendProgress(progress, fetchForecastUpdate(1, totalSteps, e.city))
	forecast, err := e.weather.TomorrowForecast(ctx, e.city)
	if err != nil {
		e.metrics.WeatherFailures.Inc()
		e.metrics.CountRun(metrics.OutcomeFailed)
		return nil, fmt.Errorf("failed to fetch forecast: %w", err)
	}

	result.Forecast = forecast
	e.logger.Info("forecast fetched", "run_id", result.RunID, "city", e.city, "condition", forecast.Condition, "slot", forecast.At.Format(time.RFC3339))
	e.sendProgress(progress, forecastUpdate(1, totalSteps, forecast))

	profile := mood.Resolve(forecast.Condition, forecast.TempC)
	result.Mood = profile
	e.logger.Info("mood resolved", "run_id", result.RunID, "mood", profile.Name)
	e.sendProgress(progress, moodUpdate(2, totalSteps, profile))

	e.sendProgress(progress, authenticateUpdate(3, totalSteps))
	if err := e.music.Authenticate(ctx); err != nil {
		e.metrics.CountRun(metrics.OutcomeFailed)
		return nil, err
	}

	outcome, err := e.Acquire(ctx, profile, e.trackCount, progress)
	if err != nil {
		e.metrics.CountRun(metrics.OutcomeFailed)
		return nil, err
	}

	result.Seeds = outcome.Seeds
	result.Tracks = outcome.Tracks
	result.UsedFallback = outcome.UsedFallback
	result.PrimaryErr = outcome.PrimaryErr

	if len(outcome.Tracks) == 0 {
		result.NoTracks = true
		e.metrics.CountRun(metrics.OutcomeNoTracks)
		e.logger.Warn("no tracks found, playlist left untouched", "run_id", result.RunID, "seeds", outcome.Seeds)
		e.sendProgress(progress, noTracksUpdate(4, totalSteps, outcome.Seeds))
		return result, nil
	}

	summary := formatter.RunSummary{
		Date:      time.Now(),
		City:      e.city,
		Condition: forecast.Condition,
		TempC:     forecast.TempC,
		Seeds:     outcome.Seeds,
		Tracks:    outcome.Tracks,
	}
	path, err := formatter.WriteRunSummary(e.summaryDir, e.summaryPrefix, summary)
	if err != nil {
		// A failed summary write must not stop the playlist update.
		e.logger.Warn("failed to write run summary", "run_id", result.RunID, "error", err)
	} else {
		result.SummaryPath = path
		e.sendProgress(progress, summaryUpdate(5, totalSteps, path))
	}

	if e.dryRun {
		e.metrics.CountRun(metrics.OutcomeDryRun)
		e.logger.Info("dry run, skipping playlist replace", "run_id", result.RunID, "tracks", len(outcome.Tracks))
		e.sendProgress(progress, dryRunUpdate(6, totalSteps, len(outcome.Tracks)))
		return result, nil
	}

	if err := e.music.ReplacePlaylistTracks(ctx, e.playlistID, models.URIs(outcome.Tracks)); err != nil {
		e.metrics.MusicFailures.Inc()
		e.metrics.CountRun(metrics.OutcomeFailed)
		return result, err
	}

	result.Replaced = true
	e.metrics.CountRun(metrics.OutcomeReplaced)
	e.metrics.TracksAdded.Add(float64(len(outcome.Tracks)))
	e.logger.Info("playlist replaced", "run_id", result.RunID, "playlist", e.playlistID, "tracks", len(outcome.Tracks))
	e.sendProgress(progress, replacedUpdate(6, totalSteps, e.playlistID, len(outcome.Tracks)))

	return result, nil
}
