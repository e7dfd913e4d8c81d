// Package models defines domain entities shared across the weather
// playlist pipeline.
//
// The package contains plain data transfer objects only:
//   - [Track] and [Artist] : music service track data used for ranking,
//     deduplication, and playlist writes
//   - [Playlist] and [User] : music service account and playlist metadata
//   - [Forecast] : the single forecast slot a run is based on
//   - [Mood] : the genre list and audio feature ranges steering selection
//
// Nothing here performs I/O; services produce these values and the
// pipeline consumes them.
package models
