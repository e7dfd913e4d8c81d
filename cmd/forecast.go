package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/wxfm/internal/formatter"
	"github.com/desertthunder/wxfm/internal/mood"
	"github.com/desertthunder/wxfm/internal/shared"
	"github.com/urfave/cli/v3"
)

// Forecast prints tomorrow's forecast and the mood it resolves to,
// without touching the music service.
func (r *Runner) Forecast(ctx context.Context, cmd *cli.Command) error {
	config, err := r.configFor(cmd)
	if err != nil {
		return err
	}

	city := cmd.String("city")
	if city == "" {
		city = config.Playlist.City
	}
	if city == "" {
		return fmt.Errorf("%w: city is required", shared.ErrMissingConfig)
	}

	weatherSrc, err := r.weatherSource(config)
	if err != nil {
		return err
	}

	r.logger.Infof("fetching tomorrow's forecast for %v", city)

	forecast, err := weatherSrc.TomorrowForecast(ctx, city)
	if err != nil {
		return err
	}

	profile := mood.Resolve(forecast.Condition, forecast.TempC)
	seeds := mood.Sanitize(profile.Genres)

	if cmd.Bool("json") {
		return r.writeJSON(map[string]any{
			"city":      forecast.City,
			"condition": forecast.Condition,
			"temp_c":    forecast.TempC,
			"at":        forecast.At,
			"mood":      profile.Name,
			"genres":    profile.Genres,
			"seeds":     seeds,
		}, cmd.Bool("pretty"))
	}

	r.writePlainHeader(fmt.Sprintf("Tomorrow in %s", city))
	r.writePlain("Condition: %s\n", forecast.Condition)
	r.writePlain("Temperature: %s\n", formatter.FormatTemp(forecast.TempC))
	r.writePlain("Slot: %s\n", forecast.At.Format("Mon 15:04 MST"))

	r.writePlainln("Mood: %s", profile.Name)
	r.writePlain("Genres: %s\n", strings.Join(profile.Genres, ", "))
	r.writePlain("Seeds: %s\n", strings.Join(seeds, ", "))
	r.writePlain("Energy: %.2f to %.2f\n", profile.Energy.Min, profile.Energy.Max)
	r.writePlain("Valence: %.2f to %.2f\n", profile.Valence.Min, profile.Valence.Max)
	r.writePlain("Tempo: %d to %d BPM\n", profile.Tempo.Min, profile.Tempo.Max)

	return nil
}
