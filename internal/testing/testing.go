// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"io"
	"os"
	"testing"

	"github.com/desertthunder/wxfm/internal/models"
	"github.com/desertthunder/wxfm/internal/services"
)

// MockWeather is a test double for [tasks.WeatherSource]. It returns
// the configured forecast or error and records how often it was asked.
type MockWeather struct {
	Forecast *models.Forecast
	Err      error
	Calls    int
}

func (m *MockWeather) TomorrowForecast(ctx context.Context, city string) (*models.Forecast, error) {
	m.Calls++
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Forecast, nil
}

// MockMusic is a test double for [services.MusicService] with settable
// results per operation and call recording for the mutating calls.
type MockMusic struct {
	AuthErr error

	User    *models.User
	UserErr error

	Playlist  *models.Playlist
	CreateErr error

	Tracks  []models.Track
	RecErr  error
	RecN    int

	SearchTracksResult []models.Track
	SearchErr          error

	AddedURIs []string
	AddErr    error

	ReplacedID   string
	ReplacedURIs []string
	ReplaceErr   error
	ReplaceN     int
}

func (m *MockMusic) Authenticate(ctx context.Context) error {
	return m.AuthErr
}

func (m *MockMusic) CurrentUser(ctx context.Context) (*models.User, error) {
	if m.UserErr != nil {
		return nil, m.UserErr
	}
	if m.User != nil {
		return m.User, nil
	}
	return &models.User{ID: "mockuser", DisplayName: "Mock User"}, nil
}

func (m *MockMusic) CreatePlaylist(ctx context.Context, userID, name, description string, public bool) (*models.Playlist, error) {
	if m.CreateErr != nil {
		return nil, m.CreateErr
	}
	if m.Playlist != nil {
		return m.Playlist, nil
	}
	return &models.Playlist{ID: "mockplaylist", Name: name, Description: description, Public: public}, nil
}

func (m *MockMusic) Recommendations(ctx context.Context, params services.RecommendationParams) ([]models.Track, error) {
	m.RecN++
	if m.RecErr != nil {
		return nil, m.RecErr
	}
	return m.Tracks, nil
}

func (m *MockMusic) SearchTracks(ctx context.Context, query string, limit, offset int) ([]models.Track, error) {
	if m.SearchErr != nil {
		return nil, m.SearchErr
	}
	return m.SearchTracksResult, nil
}

func (m *MockMusic) AddPlaylistTracks(ctx context.Context, playlistID string, uris []string) error {
	if m.AddErr != nil {
		return m.AddErr
	}
	m.AddedURIs = append(m.AddedURIs, uris...)
	return nil
}

func (m *MockMusic) ReplacePlaylistTracks(ctx context.Context, playlistID string, uris []string) error {
	m.ReplaceN++
	if m.ReplaceErr != nil {
		return m.ReplaceErr
	}
	m.ReplacedID = playlistID
	m.ReplacedURIs = uris
	return nil
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func AssertDirExists(t *testing.T, path string) {
	t.Helper()
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		t.Errorf("Directory does not exist: %s", path)
		return
	}
	if !info.IsDir() {
		t.Errorf("Path is not a directory: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
