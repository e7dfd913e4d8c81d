// package formatter renders run summaries and track listings for the
// pipeline's text artifact and CLI output.
package formatter

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/desertthunder/wxfm/internal/models"
)

// Summary filename prefixes for one-shot and scheduled runs.
const (
	SummaryPrefix          = "playlist_moodify"
	SchedulerSummaryPrefix = "playlist_moodify_scheduler"
)

const defaultSummaryDir = "logs"

// RunSummary captures what a pipeline run records to its text
// artifact: the forecast facts, the seed genres used, and the final
// track pool.
type RunSummary struct {
	Date      time.Time
	City      string
	Condition string
	TempC     *float64
	Seeds     []string
	Tracks    []models.Track
}

// SummaryText renders the artifact layout: a header of run facts
// followed by the numbered track list.
func SummaryText(summary RunSummary) []byte {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "Date: %s\n", summary.Date.Format("2006-01-02"))
	fmt.Fprintf(&buf, "City: %s\n", summary.City)
	fmt.Fprintf(&buf, "Condition: %s\n", summary.Condition)
	fmt.Fprintf(&buf, "Temperature: %s\n", FormatTemp(summary.TempC))
	fmt.Fprintf(&buf, "Mood Genres: %s\n", strings.Join(summary.Seeds, ", "))
	fmt.Fprintf(&buf, "Tracks Added: %d\n\n", len(summary.Tracks))

	buf.WriteString("Track List:\n")
	for i, track := range summary.Tracks {
		buf.WriteString(TrackLine(i+1, track))
		buf.WriteByte('\n')
	}

	return buf.Bytes()
}

// TrackLine renders one numbered track entry, e.g.
// "03. Song Name — Artist One, Artist Two".
func TrackLine(position int, track models.Track) string {
	return fmt.Sprintf("%02d. %s — %s", position, track.Name, strings.Join(track.ArtistNames(), ", "))
}

// FormatTemp renders a Celsius reading, or "n/a" when the forecast
// carried no temperature.
func FormatTemp(tempC *float64) string {
	if tempC == nil {
		return "n/a"
	}

	return strconv.FormatFloat(*tempC, 'f', -1, 64) + "°C"
}

// SummaryFilename returns the artifact name for a run date, e.g.
// "playlist_moodify_2025-11-03.txt".
func SummaryFilename(prefix string, date time.Time) string {
	if prefix == "" {
		prefix = SummaryPrefix
	}

	return fmt.Sprintf("%s_%s.txt", prefix, date.Format("2006-01-02"))
}

// WriteRunSummary writes the rendered summary under dir, creating the
// directory if needed, and returns the written path.
func WriteRunSummary(dir, prefix string, summary RunSummary) (string, error) {
	if dir == "" {
		dir = defaultSummaryDir
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create summary directory: %w", err)
	}

	path := filepath.Join(dir, SummaryFilename(prefix, summary.Date))
	if err := os.WriteFile(path, SummaryText(summary), 0644); err != nil {
		return "", fmt.Errorf("failed to write summary file: %w", err)
	}

	return path, nil
}
