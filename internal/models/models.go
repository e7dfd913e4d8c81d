// package models defines the data model for the weather playlist pipeline
package models

import (
	"strings"
	"time"
)

// Artist identifies a performing artist on a track.
type Artist struct {
	ID   string
	Name string
}

// Track represents a playable track returned by the music service.
// Track data is read-only once fetched; the pipeline never mutates it.
type Track struct {
	ID         string
	URI        string
	Name       string
	Artists    []Artist
	Popularity int
}

// ArtistKey returns the ordered artist-ID tuple as a single string.
// Tracks sharing a key count as duplicates of the same lineup.
func (t Track) ArtistKey() string {
	ids := make([]string, len(t.Artists))
	for i, a := range t.Artists {
		ids[i] = a.ID
	}
	return strings.Join(ids, ",")
}

// ArtistNames returns the artist display names in order.
func (t Track) ArtistNames() []string {
	names := make([]string, len(t.Artists))
	for i, a := range t.Artists {
		names[i] = a.Name
	}
	return names
}

// URIs collects the track URIs in order, as sent to playlist endpoints.
func URIs(tracks []Track) []string {
	uris := make([]string, len(tracks))
	for i, t := range tracks {
		uris[i] = t.URI
	}
	return uris
}

// Playlist represents playlist metadata from the music service.
type Playlist struct {
	ID          string
	Name        string
	Description string
	TrackCount  int
	Public      bool
}

// User represents the authenticated music service account.
type User struct {
	ID          string
	DisplayName string
}

// Forecast is the selected forecast slot for the day after the run:
// the 3-hour entry closest to local noon in the city's timezone.
type Forecast struct {
	City      string
	Condition string
	TempC     *float64
	At        time.Time
}

// Range is an inclusive fractional range for a tunable audio feature.
type Range struct {
	Min float64
	Max float64
}

// TempoRange is an inclusive BPM range.
type TempoRange struct {
	Min int
	Max int
}

// Mood is the musical profile derived from a forecast. Immutable once
// produced for a run.
type Mood struct {
	Name    string
	Genres  []string
	Energy  Range
	Valence Range
	Tempo   TempoRange
}
