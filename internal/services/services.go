// package services implements authenticated HTTP clients for the
// external APIs the pipeline talks to.
package services

import (
	"context"

	"github.com/desertthunder/wxfm/internal/models"
)

// TokenSource supplies a bearer token for outgoing requests,
// refreshing as needed. The auth store satisfies it in production.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// MusicService is the music provider surface consumed by the pipeline
// and the CLI.
type MusicService interface {
	// Authenticate ensures a usable access token before data calls.
	Authenticate(ctx context.Context) error

	// CurrentUser retrieves the authenticated account.
	CurrentUser(ctx context.Context) (*models.User, error)

	// CreatePlaylist creates a playlist owned by the given user.
	CreatePlaylist(ctx context.Context, userID, name, description string, public bool) (*models.Playlist, error)

	// Recommendations fetches tracks matching the seed genres and
	// audio feature ranges.
	Recommendations(ctx context.Context, params RecommendationParams) ([]models.Track, error)

	// SearchTracks runs a track search query with pagination.
	SearchTracks(ctx context.Context, query string, limit, offset int) ([]models.Track, error)

	// AddPlaylistTracks appends tracks to a playlist.
	AddPlaylistTracks(ctx context.Context, playlistID string, uris []string) error

	// ReplacePlaylistTracks overwrites a playlist's contents in one call.
	ReplacePlaylistTracks(ctx context.Context, playlistID string, uris []string) error
}

// RecommendationParams tunes a recommendation query. Seeds are
// service-vocabulary genres; the ranges come from the resolved mood.
type RecommendationParams struct {
	Seeds      []string
	Limit      int
	Market     string
	MinEnergy  float64
	MaxEnergy  float64
	MinValence float64
	MaxValence float64
	MinTempo   int
	MaxTempo   int
}
