// package metrics exposes Prometheus collectors for pipeline runs.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Run outcome label values.
const (
	OutcomeReplaced = "replaced"
	OutcomeDryRun   = "dry_run"
	OutcomeNoTracks = "no_tracks"
	OutcomeFailed   = "failed"
)

// Metrics holds the pipeline collectors. Each process owns one
// instance backed by its own registry, so tests never collide on the
// global default.
type Metrics struct {
	registry *prometheus.Registry

	// Runs counts completed pipeline runs by outcome.
	Runs *prometheus.CounterVec
	// TracksAdded counts tracks written to the target playlist.
	TracksAdded prometheus.Counter
	// RecommendationFailures counts primary-strategy errors that were
	// downgraded to the search fallback.
	RecommendationFailures prometheus.Counter
	// WeatherFailures counts forecast fetches that failed past the
	// transport retries.
	WeatherFailures prometheus.Counter
	// MusicFailures counts music service calls that failed past the
	// transport retries, including skipped fallback seeds.
	MusicFailures prometheus.Counter
}

// New creates a Metrics instance with a dedicated registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,
		Runs: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "wxfm_runs_total",
			Help: "Completed pipeline runs by outcome.",
		}, []string{"outcome"}),
		TracksAdded: factory.NewCounter(prometheus.CounterOpts{
			Name: "wxfm_tracks_added_total",
			Help: "Tracks written to the target playlist.",
		}),
		RecommendationFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "wxfm_recommendation_failures_total",
			Help: "Recommendation queries that failed and fell back to search.",
		}),
		WeatherFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "wxfm_weather_failures_total",
			Help: "Forecast fetches that failed.",
		}),
		MusicFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "wxfm_music_failures_total",
			Help: "Music service calls that failed after transport retries.",
		}),
	}
}

// CountRun records a completed run with the given outcome label.
func (m *Metrics) CountRun(outcome string) {
	m.Runs.WithLabelValues(outcome).Inc()
}

// Handler serves the registry in Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
