// Package tasks orchestrates the daily weather-to-playlist pipeline with real-time progress reporting.
//
// # Core Operation
//
// The [RunEngine] interface defines a single operation:
//
//  1. [RunEngine.Run] : Full forecast → playlist run
//     - Fetches tomorrow's forecast for the configured city
//     - Resolves the weather condition into a mood profile
//     - Acquires tracks via recommendations with a genre-search fallback
//     - Records a plain-text summary artifact for the run
//     - Replaces the target playlist's contents in one call
//
// An empty track pool is a valid terminal state: the run reports it
// and leaves the playlist untouched. A dry run computes everything,
// records the summary, and never calls the replace endpoint.
//
// # Track Acquisition
//
// [PipelineEngine.Acquire] tries the recommendation endpoint first,
// seeded with the mood's sanitized genres and audio feature ranges. A
// failed or empty recommendation query downgrades to per-seed genre
// searches at random page offsets. The [AcquireOutcome] records which
// strategy served the pool and any downgraded recommendation error.
//
// Pools are ranked by popularity, deduplicated by ordered artist-ID
// tuple (first seen wins), shuffled with the engine's seedable random
// source, and cut to the configured track count.
//
// # Progress Reporting
//
// All operations use non-blocking channels for progress updates
//
// The [ProgressUpdate] struct contains phase, step counters, messages, and optional data for advanced consumers.
// Updates use select with default to prevent blocking.
//
// # Implementation
//
// [PipelineEngine] implements [RunEngine] with dependencies on:
//   - [WeatherSource] : OpenWeather forecast client
//   - [services.MusicService] : Spotify API client
//   - [metrics.Metrics] : Prometheus counters for run outcomes
package tasks
