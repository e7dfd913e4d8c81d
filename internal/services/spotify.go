// Spotify API implementation of [MusicService]
//
// Spotify API response types based on https://developer.spotify.com/documentation/web-api/reference/
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/desertthunder/wxfm/internal/models"
	"github.com/desertthunder/wxfm/internal/shared"
	"golang.org/x/time/rate"
)

const spotifyBaseURL = "https://api.spotify.com/v1"

const (
	defaultMaxRetries  = 5
	initialRetryDelay  = 500 * time.Millisecond
	maxRetryDelay      = 8 * time.Second
	defaultHTTPTimeout = 15 * time.Second
)

// SpotifyUser represents a Spotify user profile.
type SpotifyUser struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	Email       string `json:"email"`
	Country     string `json:"country"`
}

// SpotifyArtist represents a Spotify artist.
type SpotifyArtist struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	URI  string `json:"uri"`
}

// SpotifyAlbum represents a Spotify album.
type SpotifyAlbum struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	ReleaseDate string `json:"release_date"`
}

// SpotifyTrack represents a Spotify track.
type SpotifyTrack struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Artists    []SpotifyArtist `json:"artists"`
	Album      SpotifyAlbum    `json:"album"`
	DurationMS int             `json:"duration_ms"`
	Popularity int             `json:"popularity"`
	URI        string          `json:"uri"`
}

type spotifyOwner struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

// SpotifyPlaylist represents a Spotify playlist.
type SpotifyPlaylist struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Description string       `json:"description"`
	Owner       spotifyOwner `json:"owner"`
	Public      bool         `json:"public"`
	URI         string       `json:"uri"`
}

// APIError reports a request the music service rejected, or one the
// transport gave up on after its bounded retries. Status is 0 when no
// response was received.
type APIError struct {
	Method string
	Path   string
	Status int
	Body   string
}

func (e *APIError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("%s %s: %s", e.Method, e.Path, e.Body)
	}
	return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.Path, e.Status, e.Body)
}

// Unwrap ties APIError into the shared sentinel taxonomy.
func (e *APIError) Unwrap() error { return shared.ErrAPIRequest }

// SpotifyService implements [MusicService] against the Spotify Web API.
//
// Credentials come from the token source; any call may refresh and
// persist tokens as a side effect. Requests are rate limited and
// retried with exponential backoff on 429 and 5xx responses and on
// connection errors.
type SpotifyService struct {
	tokens     TokenSource
	httpClient *http.Client
	limiter    *rate.Limiter
	baseURL    string
	maxRetries int
	retryBase  time.Duration
	retryCap   time.Duration
}

var _ MusicService = (*SpotifyService)(nil)

// NewSpotifyService creates a Spotify client backed by the given token source.
func NewSpotifyService(tokens TokenSource) *SpotifyService {
	return &SpotifyService{
		tokens:     tokens,
		httpClient: &http.Client{Timeout: defaultHTTPTimeout},
		limiter:    rate.NewLimiter(rate.Every(100*time.Millisecond), 1),
		baseURL:    spotifyBaseURL,
		maxRetries: defaultMaxRetries,
		retryBase:  initialRetryDelay,
		retryCap:   maxRetryDelay,
	}
}

// Authenticate ensures a usable access token, refreshing through the
// token source when none is held. Pipelines call this before any data
// call so credential problems abort the run early.
func (s *SpotifyService) Authenticate(ctx context.Context) error {
	if _, err := s.tokens.Token(ctx); err != nil {
		return err
	}
	return nil
}

// doRequest performs an authenticated request to the Spotify API with
// bounded retries. Responses with status >= 400 become [APIError].
func (s *SpotifyService) doRequest(ctx context.Context, method, endpoint string, body, result any) error {
	token, err := s.tokens.Token(ctx)
	if err != nil {
		return err
	}

	var payload []byte
	if body != nil {
		payload, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
	}

	var lastErr error
	for attempt := 0; attempt <= s.maxRetries; attempt++ {
		if err := s.limiter.Wait(ctx); err != nil {
			return err
		}

		var reqBody io.Reader
		if payload != nil {
			reqBody = bytes.NewReader(payload)
		}

		req, err := http.NewRequestWithContext(ctx, method, s.baseURL+endpoint, reqBody)
		if err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}

		req.Header.Set("Authorization", "Bearer "+token)
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := s.httpClient.Do(req)
		if err != nil {
			lastErr = err
			if attempt < s.maxRetries {
				if err := sleepWithContext(ctx, s.retryDelay(attempt, "")); err != nil {
					return err
				}
				continue
			}
			break
		}

		if retryableStatus(resp.StatusCode) && attempt < s.maxRetries {
			retryAfter := resp.Header.Get("Retry-After")
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			if err := sleepWithContext(ctx, s.retryDelay(attempt, retryAfter)); err != nil {
				return err
			}
			continue
		}

		if resp.StatusCode >= 400 {
			data, _ := io.ReadAll(resp.Body)
			resp.Body.Close()
			return &APIError{Method: method, Path: endpoint, Status: resp.StatusCode, Body: strings.TrimSpace(string(data))}
		}

		if result != nil {
			if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
				resp.Body.Close()
				return fmt.Errorf("failed to decode response: %w", err)
			}
		}
		resp.Body.Close()
		return nil
	}

	return &APIError{Method: method, Path: endpoint, Body: fmt.Sprintf("request failed after %d attempts: %v", s.maxRetries+1, lastErr)}
}

// retryableStatus reports whether the service signaled a transient
// condition worth another attempt.
func retryableStatus(status int) bool {
	switch status {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	}
	return false
}

// retryDelay doubles per attempt up to a cap; a parseable Retry-After
// header wins.
func (s *SpotifyService) retryDelay(attempt int, retryAfter string) time.Duration {
	if retryAfter != "" {
		if secs, err := strconv.Atoi(retryAfter); err == nil && secs > 0 {
			return time.Duration(secs) * time.Second
		}
	}

	delay := s.retryBase << attempt
	if delay > s.retryCap {
		delay = s.retryCap
	}
	return delay
}

func sleepWithContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// CurrentUser retrieves the authenticated user's profile.
func (s *SpotifyService) CurrentUser(ctx context.Context) (*models.User, error) {
	var user SpotifyUser
	if err := s.doRequest(ctx, http.MethodGet, "/me", nil, &user); err != nil {
		return nil, err
	}

	return &models.User{ID: user.ID, DisplayName: user.DisplayName}, nil
}

// CreatePlaylist creates a playlist owned by the given user.
func (s *SpotifyService) CreatePlaylist(ctx context.Context, userID, name, description string, public bool) (*models.Playlist, error) {
	if userID == "" || name == "" {
		return nil, fmt.Errorf("%w: user id and playlist name", shared.ErrMissingArgument)
	}

	body := map[string]any{
		"name":        name,
		"description": description,
		"public":      public,
	}

	var playlist SpotifyPlaylist
	endpoint := fmt.Sprintf("/users/%s/playlists", url.PathEscape(userID))
	if err := s.doRequest(ctx, http.MethodPost, endpoint, body, &playlist); err != nil {
		return nil, err
	}

	return &models.Playlist{
		ID:          playlist.ID,
		Name:        playlist.Name,
		Description: playlist.Description,
		Public:      playlist.Public,
	}, nil
}

// Recommendations fetches tracks for the seed genres with the mood's
// numeric ranges applied as min/max filters.
func (s *SpotifyService) Recommendations(ctx context.Context, params RecommendationParams) ([]models.Track, error) {
	if len(params.Seeds) == 0 {
		return nil, fmt.Errorf("%w: seed genres", shared.ErrMissingArgument)
	}

	q := url.Values{}
	q.Set("seed_genres", strings.Join(params.Seeds, ","))
	q.Set("limit", strconv.Itoa(params.Limit))
	if params.Market != "" {
		q.Set("market", params.Market)
	}
	q.Set("min_energy", formatFloat(params.MinEnergy))
	q.Set("max_energy", formatFloat(params.MaxEnergy))
	q.Set("min_valence", formatFloat(params.MinValence))
	q.Set("max_valence", formatFloat(params.MaxValence))
	q.Set("min_tempo", strconv.Itoa(params.MinTempo))
	q.Set("max_tempo", strconv.Itoa(params.MaxTempo))

	var response struct {
		Tracks []SpotifyTrack `json:"tracks"`
	}

	if err := s.doRequest(ctx, http.MethodGet, "/recommendations?"+q.Encode(), nil, &response); err != nil {
		return nil, err
	}

	return toModelTracks(response.Tracks), nil
}

// SearchTracks runs a track search query, e.g. `genre:"chill"`, with
// the given page size and offset.
func (s *SpotifyService) SearchTracks(ctx context.Context, query string, limit, offset int) ([]models.Track, error) {
	if query == "" {
		return nil, fmt.Errorf("%w: search query", shared.ErrMissingArgument)
	}

	q := url.Values{}
	q.Set("q", query)
	q.Set("type", "track")
	q.Set("limit", strconv.Itoa(limit))
	q.Set("offset", strconv.Itoa(offset))

	var response struct {
		Tracks struct {
			Items []SpotifyTrack `json:"items"`
		} `json:"tracks"`
	}

	if err := s.doRequest(ctx, http.MethodGet, "/search?"+q.Encode(), nil, &response); err != nil {
		return nil, err
	}

	return toModelTracks(response.Tracks.Items), nil
}

// AddPlaylistTracks appends tracks to a playlist by URI.
func (s *SpotifyService) AddPlaylistTracks(ctx context.Context, playlistID string, uris []string) error {
	if playlistID == "" || len(uris) == 0 {
		return fmt.Errorf("%w: playlist id and track uris", shared.ErrMissingArgument)
	}

	endpoint := fmt.Sprintf("/playlists/%s/tracks", url.PathEscape(playlistID))
	return s.doRequest(ctx, http.MethodPost, endpoint, map[string]any{"uris": uris}, nil)
}

// ReplacePlaylistTracks overwrites the playlist's contents with the
// given URIs in a single call, so an interrupted run never commits a
// partial playlist.
func (s *SpotifyService) ReplacePlaylistTracks(ctx context.Context, playlistID string, uris []string) error {
	if playlistID == "" {
		return fmt.Errorf("%w: playlist id", shared.ErrMissingArgument)
	}

	endpoint := fmt.Sprintf("/playlists/%s/tracks", url.PathEscape(playlistID))
	if err := s.doRequest(ctx, http.MethodPut, endpoint, map[string]any{"uris": uris}, nil); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrPlaylistReplace, err)
	}

	return nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func toModelTracks(tracks []SpotifyTrack) []models.Track {
	out := make([]models.Track, 0, len(tracks))
	for _, t := range tracks {
		artists := make([]models.Artist, 0, len(t.Artists))
		for _, a := range t.Artists {
			artists = append(artists, models.Artist{ID: a.ID, Name: a.Name})
		}
		out = append(out, models.Track{
			ID:         t.ID,
			URI:        t.URI,
			Name:       t.Name,
			Artists:    artists,
			Popularity: t.Popularity,
		})
	}
	return out
}
