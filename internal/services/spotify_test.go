package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/desertthunder/wxfm/internal/shared"
)

type stubTokens struct {
	token string
	err   error
	calls int
}

func (s *stubTokens) Token(ctx context.Context) (string, error) {
	s.calls++
	return s.token, s.err
}

func newTestService(server *httptest.Server) *SpotifyService {
	svc := NewSpotifyService(&stubTokens{token: "test_token"})
	svc.httpClient = server.Client()
	svc.baseURL = server.URL
	svc.maxRetries = 2
	svc.retryBase = time.Millisecond
	svc.retryCap = 2 * time.Millisecond
	return svc
}

func sampleTrackJSON() map[string]any {
	return map[string]any{
		"id":   "t1",
		"name": "Song One",
		"uri":  "spotify:track:t1",
		"artists": []map[string]any{
			{"id": "a1", "name": "Artist One"},
			{"id": "a2", "name": "Artist Two"},
		},
		"popularity": 61,
	}
}

func TestSpotifyService(t *testing.T) {
	t.Run("CurrentUser", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/me" {
				t.Errorf("expected path /me, got %s", r.URL.Path)
			}
			if got := r.Header.Get("Authorization"); got != "Bearer test_token" {
				t.Errorf("expected bearer header, got %q", got)
			}
			json.NewEncoder(w).Encode(map[string]string{"id": "user1", "display_name": "Test User"})
		}))
		defer server.Close()

		user, err := newTestService(server).CurrentUser(context.Background())
		if err != nil {
			t.Fatalf("current user failed: %v", err)
		}

		if user.ID != "user1" || user.DisplayName != "Test User" {
			t.Errorf("unexpected user %+v", user)
		}
	})

	t.Run("Recommendations", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/recommendations" {
				t.Errorf("expected path /recommendations, got %s", r.URL.Path)
			}

			q := r.URL.Query()
			if q.Get("seed_genres") != "chill,folk" {
				t.Errorf("expected seed_genres chill,folk, got %q", q.Get("seed_genres"))
			}
			if q.Get("limit") != "24" {
				t.Errorf("expected limit 24, got %q", q.Get("limit"))
			}
			if q.Get("market") != "IE" {
				t.Errorf("expected market IE, got %q", q.Get("market"))
			}
			if q.Get("min_energy") != "0.3" || q.Get("max_energy") != "0.5" {
				t.Errorf("unexpected energy bounds %q..%q", q.Get("min_energy"), q.Get("max_energy"))
			}
			if q.Get("min_tempo") != "70" || q.Get("max_tempo") != "100" {
				t.Errorf("unexpected tempo bounds %q..%q", q.Get("min_tempo"), q.Get("max_tempo"))
			}

			json.NewEncoder(w).Encode(map[string]any{"tracks": []map[string]any{sampleTrackJSON()}})
		}))
		defer server.Close()

		params := RecommendationParams{
			Seeds:      []string{"chill", "folk"},
			Limit:      24,
			Market:     "IE",
			MinEnergy:  0.3,
			MaxEnergy:  0.5,
			MinValence: 0.3,
			MaxValence: 0.5,
			MinTempo:   70,
			MaxTempo:   100,
		}

		tracks, err := newTestService(server).Recommendations(context.Background(), params)
		if err != nil {
			t.Fatalf("recommendations failed: %v", err)
		}

		if len(tracks) != 1 {
			t.Fatalf("expected 1 track, got %d", len(tracks))
		}
		if tracks[0].ID != "t1" || tracks[0].Popularity != 61 {
			t.Errorf("unexpected track %+v", tracks[0])
		}
		if len(tracks[0].Artists) != 2 || tracks[0].Artists[0].ID != "a1" {
			t.Errorf("artist order should be preserved, got %+v", tracks[0].Artists)
		}
	})

	t.Run("RecommendationsRequireSeeds", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Error("request should not be issued without seeds")
		}))
		defer server.Close()

		_, err := newTestService(server).Recommendations(context.Background(), RecommendationParams{})
		if !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
	})

	t.Run("SearchTracks", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/search" {
				t.Errorf("expected path /search, got %s", r.URL.Path)
			}

			q := r.URL.Query()
			if q.Get("q") != `genre:"chill"` {
				t.Errorf("expected genre query, got %q", q.Get("q"))
			}
			if q.Get("type") != "track" {
				t.Errorf("expected type track, got %q", q.Get("type"))
			}
			if q.Get("limit") != "25" || q.Get("offset") != "17" {
				t.Errorf("unexpected paging %q/%q", q.Get("limit"), q.Get("offset"))
			}

			json.NewEncoder(w).Encode(map[string]any{
				"tracks": map[string]any{"items": []map[string]any{sampleTrackJSON()}},
			})
		}))
		defer server.Close()

		tracks, err := newTestService(server).SearchTracks(context.Background(), `genre:"chill"`, 25, 17)
		if err != nil {
			t.Fatalf("search failed: %v", err)
		}

		if len(tracks) != 1 || tracks[0].URI != "spotify:track:t1" {
			t.Errorf("unexpected tracks %+v", tracks)
		}
	})

	t.Run("CreatePlaylist", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				t.Errorf("expected POST, got %s", r.Method)
			}
			if r.URL.Path != "/users/user1/playlists" {
				t.Errorf("unexpected path %s", r.URL.Path)
			}

			var body map[string]any
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
				t.Errorf("failed to decode body: %v", err)
			}
			if body["name"] != "Weather Mix" {
				t.Errorf("expected name Weather Mix, got %v", body["name"])
			}
			if body["public"] != true {
				t.Errorf("expected public true, got %v", body["public"])
			}

			json.NewEncoder(w).Encode(map[string]any{
				"id":     "pl1",
				"name":   "Weather Mix",
				"public": true,
			})
		}))
		defer server.Close()

		playlist, err := newTestService(server).CreatePlaylist(context.Background(), "user1", "Weather Mix", "", true)
		if err != nil {
			t.Fatalf("create playlist failed: %v", err)
		}

		if playlist.ID != "pl1" || !playlist.Public {
			t.Errorf("unexpected playlist %+v", playlist)
		}
	})

	t.Run("AddPlaylistTracks", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				t.Errorf("expected POST, got %s", r.Method)
			}
			if r.URL.Path != "/playlists/pl1/tracks" {
				t.Errorf("unexpected path %s", r.URL.Path)
			}

			var body struct {
				URIs []string `json:"uris"`
			}
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
				t.Errorf("failed to decode body: %v", err)
			}
			if len(body.URIs) != 2 {
				t.Errorf("expected 2 uris, got %v", body.URIs)
			}

			w.WriteHeader(http.StatusCreated)
		}))
		defer server.Close()

		err := newTestService(server).AddPlaylistTracks(context.Background(), "pl1", []string{"spotify:track:t1", "spotify:track:t2"})
		if err != nil {
			t.Fatalf("add tracks failed: %v", err)
		}
	})

	t.Run("ReplacePlaylistTracks", func(t *testing.T) {
		var gotMethod string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotMethod = r.Method
			w.WriteHeader(http.StatusCreated)
		}))
		defer server.Close()

		err := newTestService(server).ReplacePlaylistTracks(context.Background(), "pl1", []string{"spotify:track:t1"})
		if err != nil {
			t.Fatalf("replace failed: %v", err)
		}
		if gotMethod != http.MethodPut {
			t.Errorf("expected PUT, got %s", gotMethod)
		}
	})

	t.Run("ReplaceFailureWrapsSentinel", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, `{"error":"forbidden"}`, http.StatusForbidden)
		}))
		defer server.Close()

		err := newTestService(server).ReplacePlaylistTracks(context.Background(), "pl1", []string{"spotify:track:t1"})
		if !errors.Is(err, shared.ErrPlaylistReplace) {
			t.Errorf("expected ErrPlaylistReplace, got %v", err)
		}
	})
}

func TestDoRequest(t *testing.T) {
	t.Run("RetriesOn429ThenSucceeds", func(t *testing.T) {
		attempts := 0
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			attempts++
			if attempts <= 2 {
				w.WriteHeader(http.StatusTooManyRequests)
				return
			}
			json.NewEncoder(w).Encode(map[string]string{"id": "user1"})
		}))
		defer server.Close()

		if _, err := newTestService(server).CurrentUser(context.Background()); err != nil {
			t.Fatalf("expected success after retries, got %v", err)
		}
		if attempts != 3 {
			t.Errorf("expected 3 attempts, got %d", attempts)
		}
	})

	t.Run("ClientErrorNotRetried", func(t *testing.T) {
		attempts := 0
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			attempts++
			http.Error(w, `{"error":"bad request"}`, http.StatusBadRequest)
		}))
		defer server.Close()

		_, err := newTestService(server).CurrentUser(context.Background())
		if err == nil {
			t.Fatal("expected error from 400 response")
		}

		var apiErr *APIError
		if !errors.As(err, &apiErr) {
			t.Fatalf("expected APIError, got %T: %v", err, err)
		}
		if apiErr.Status != http.StatusBadRequest {
			t.Errorf("expected status 400, got %d", apiErr.Status)
		}
		if apiErr.Method != http.MethodGet || apiErr.Path != "/me" {
			t.Errorf("unexpected method/path %s %s", apiErr.Method, apiErr.Path)
		}
		if !errors.Is(err, shared.ErrAPIRequest) {
			t.Error("APIError should match shared.ErrAPIRequest")
		}
		if attempts != 1 {
			t.Errorf("4xx must not be retried, got %d attempts", attempts)
		}
	})

	t.Run("ExhaustedRetriesSurfaceLastStatus", func(t *testing.T) {
		attempts := 0
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			attempts++
			http.Error(w, "upstream down", http.StatusServiceUnavailable)
		}))
		defer server.Close()

		_, err := newTestService(server).CurrentUser(context.Background())

		var apiErr *APIError
		if !errors.As(err, &apiErr) {
			t.Fatalf("expected APIError, got %T: %v", err, err)
		}
		if apiErr.Status != http.StatusServiceUnavailable {
			t.Errorf("expected status 503, got %d", apiErr.Status)
		}
		if attempts != 3 {
			t.Errorf("expected maxRetries+1 attempts, got %d", attempts)
		}
	})

	t.Run("ConnectionErrorRetriedThenSurfaced", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		server.Close()

		_, err := newTestService(server).CurrentUser(context.Background())

		var apiErr *APIError
		if !errors.As(err, &apiErr) {
			t.Fatalf("expected APIError, got %T: %v", err, err)
		}
		if apiErr.Status != 0 {
			t.Errorf("expected status 0 for transport failure, got %d", apiErr.Status)
		}
	})

	t.Run("TokenErrorShortCircuits", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Error("no request should be sent without a token")
		}))
		defer server.Close()

		svc := newTestService(server)
		svc.tokens = &stubTokens{err: shared.ErrMissingCredentials}

		_, err := svc.CurrentUser(context.Background())
		if !errors.Is(err, shared.ErrMissingCredentials) {
			t.Errorf("expected ErrMissingCredentials, got %v", err)
		}
	})

	t.Run("RetryAfterHeaderHonored", func(t *testing.T) {
		svc := NewSpotifyService(&stubTokens{token: "t"})
		svc.retryBase = time.Millisecond
		svc.retryCap = 2 * time.Millisecond

		if got := svc.retryDelay(0, "2"); got != 2*time.Second {
			t.Errorf("expected 2s from Retry-After, got %v", got)
		}
		if got := svc.retryDelay(0, "not-a-number"); got != time.Millisecond {
			t.Errorf("expected base delay for bad header, got %v", got)
		}
		if got := svc.retryDelay(5, ""); got != 2*time.Millisecond {
			t.Errorf("expected capped delay, got %v", got)
		}
	})
}
