package tasks

import (
	"fmt"
	"strings"

	"github.com/desertthunder/wxfm/internal/models"
)

// ProgressUpdate represents a progress event during a pipeline run.
//
// Used to send real-time updates to the CLI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Pipeline phase
	Step    int    // Current step number within the run
	Total   int    // Total steps in the run
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced consumers
}

// Pipeline phase enumeration
type Phase int

const (
	FetchForecast Phase = iota
	ResolveMood
	Authenticate
	AcquireTracks
	WriteSummary
	ReplacePlaylist
)

func (p Phase) String() string {
	switch p {
	case FetchForecast:
		return "fetch_forecast"
	case ResolveMood:
		return "resolve_mood"
	case Authenticate:
		return "authenticate"
	case AcquireTracks:
		return "acquire_tracks"
	case WriteSummary:
		return "write_summary"
	case ReplacePlaylist:
		return "replace_playlist"
	default:
		return ""
	}
}

func fetchForecastUpdate(step, total int, city string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchForecast,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Fetching tomorrow's forecast for %s...", city),
	}
}

func forecastUpdate(step, total int, forecast *models.Forecast) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchForecast,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Forecast: %s at %s", forecast.Condition, forecast.At.Format("15:04")),
		Data:    forecast,
	}
}

func moodUpdate(step, total int, mood models.Mood) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ResolveMood,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Mood: %s (%s)", mood.Name, strings.Join(mood.Genres, ", ")),
		Data:    mood,
	}
}

func authenticateUpdate(step, total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Authenticate,
		Step:    step,
		Total:   total,
		Message: "Refreshing Spotify access token...",
	}
}

func acquireUpdate(step, total int, seeds []string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   AcquireTracks,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Gathering tracks for seeds: %s", strings.Join(seeds, ", ")),
	}
}

func fallbackUpdate(step, total int, err error) ProgressUpdate {
	message := "Recommendations empty, falling back to genre search..."
	if err != nil {
		message = fmt.Sprintf("Recommendations failed (%v), falling back to genre search...", err)
	}
	return ProgressUpdate{
		Phase:   AcquireTracks,
		Step:    step,
		Total:   total,
		Message: message,
	}
}

func poolUpdate(step, total int, outcome *AcquireOutcome) ProgressUpdate {
	source := "recommendations"
	if outcome.UsedFallback {
		source = "genre search"
	}
	return ProgressUpdate{
		Phase:   AcquireTracks,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Selected %d tracks via %s", len(outcome.Tracks), source),
		Data:    outcome,
	}
}

func noTracksUpdate(step, total int, seeds []string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   AcquireTracks,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("No tracks found for seeds: %s", strings.Join(seeds, ", ")),
	}
}

func summaryUpdate(step, total int, path string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   WriteSummary,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Summary saved to %s", path),
	}
}

func dryRunUpdate(step, total, count int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ReplacePlaylist,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Dry run: would replace playlist with %d tracks", count),
	}
}

func replacedUpdate(step, total int, playlistID string, count int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ReplacePlaylist,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Playlist %s replaced with %d tracks", playlistID, count),
	}
}
