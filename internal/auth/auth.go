// package auth manages the Spotify OAuth token lifecycle: loading,
// refreshing, exchanging, and persisting the access/refresh token pair.
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/desertthunder/wxfm/internal/shared"
	"golang.org/x/oauth2"
)

const (
	authorizeURL = "https://accounts.spotify.com/authorize"
	tokenURL     = "https://accounts.spotify.com/api/token"

	// RefreshTokenEnv overrides the persisted refresh token on load,
	// for environments without a writable token file.
	RefreshTokenEnv = "SPOTIFY_REFRESH_TOKEN"

	// DefaultRedirectURI stands in when the config leaves the redirect
	// URI empty. The login flow binds its callback server to this
	// host and path.
	DefaultRedirectURI = "http://127.0.0.1:8080/callback"
)

// TokenPair holds the access and refresh tokens for the authenticated
// account. A valid access token always travels with a refresh token in
// this flow.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// ExchangeError reports a non-2xx response from the token endpoint.
// These are credential or configuration problems and are never retried.
type ExchangeError struct {
	Status int
	Body   string
}

func (e *ExchangeError) Error() string {
	return fmt.Sprintf("token endpoint returned %d: %s", e.Status, e.Body)
}

// Store owns the token pair for the process lifetime.
//
// A store built with [PersistedAt] rewrites its JSON record after every
// successful refresh or exchange; one built with [InMemoryOnly] keeps
// the pair in memory. The SPOTIFY_REFRESH_TOKEN environment variable
// beats the persisted record on [Store.Load].
type Store struct {
	creds      shared.SpotifyConfig
	path       string
	httpClient *http.Client
	tokenURL   string

	mu   sync.Mutex
	pair TokenPair
}

// InMemoryOnly creates a store that never touches the filesystem.
func InMemoryOnly(creds shared.SpotifyConfig) (*Store, error) {
	return newStore(creds, "")
}

// PersistedAt creates a store backed by a JSON record at path.
func PersistedAt(creds shared.SpotifyConfig, path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: token file path", shared.ErrMissingArgument)
	}
	return newStore(creds, path)
}

func newStore(creds shared.SpotifyConfig, path string) (*Store, error) {
	if creds.ClientID == "" || creds.ClientSecret == "" {
		return nil, fmt.Errorf("%w: spotify client_id and client_secret are required", shared.ErrMissingCredentials)
	}
	if creds.RedirectURI == "" {
		creds.RedirectURI = DefaultRedirectURI
	}

	return &Store{
		creds:      creds,
		path:       path,
		httpClient: http.DefaultClient,
		tokenURL:   tokenURL,
	}, nil
}

// Load populates the pair from the environment override or the
// persisted record, in that order. A missing record leaves the pair
// empty; only a corrupt one is an error. No network I/O happens here.
func (s *Store) Load() (TokenPair, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if refresh := os.Getenv(RefreshTokenEnv); refresh != "" {
		s.pair = TokenPair{RefreshToken: refresh}
		return s.pair, nil
	}

	if s.path == "" {
		return s.pair, nil
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return s.pair, nil
		}
		return TokenPair{}, fmt.Errorf("failed to read token file: %w", err)
	}

	var pair TokenPair
	if err := json.Unmarshal(data, &pair); err != nil {
		return TokenPair{}, fmt.Errorf("failed to parse token file: %w", err)
	}

	s.pair = pair
	return s.pair, nil
}

// Pair returns a copy of the currently held tokens.
func (s *Store) Pair() TokenPair {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pair
}

// Token returns the held access token, running the refresh path only
// when none is held yet. This is the per-request entry point for the
// API client.
func (s *Store) Token(ctx context.Context) (string, error) {
	s.mu.Lock()
	held := s.pair.AccessToken
	s.mu.Unlock()

	if held != "" {
		return held, nil
	}
	return s.Ensure(ctx, "")
}

// Ensure returns a usable access token. With a refresh token held and
// no code given it refreshes; with a code given and no access token
// held it exchanges the code. When neither path yields an access token
// the caller has to complete the authorization flow first.
func (s *Store) Ensure(ctx context.Context, code string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch {
	case s.pair.RefreshToken != "" && code == "":
		if err := s.refresh(ctx); err != nil {
			return "", err
		}
	case code != "" && s.pair.AccessToken == "":
		if err := s.exchange(ctx, code); err != nil {
			return "", err
		}
	}

	if s.pair.AccessToken == "" {
		return "", fmt.Errorf("%w: run the authorization flow first", shared.ErrMissingCredentials)
	}

	return s.pair.AccessToken, nil
}

// AuthURL returns the authorization URL to open in a browser, carrying
// the state parameter for callback verification.
func (s *Store) AuthURL(state string) string {
	return s.oauthConfig().AuthCodeURL(state, oauth2.AccessTypeOffline)
}

func (s *Store) oauthConfig() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     s.creds.ClientID,
		ClientSecret: s.creds.ClientSecret,
		RedirectURL:  s.creds.RedirectURI,
		Scopes:       strings.Fields(s.creds.Scope),
		Endpoint: oauth2.Endpoint{
			AuthURL:  authorizeURL,
			TokenURL: s.tokenURL,
		},
	}
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// refresh trades the held refresh token for a fresh access token.
// Caller holds the mutex.
func (s *Store) refresh(ctx context.Context) error {
	form := url.Values{}
	form.Set("grant_type", "refresh_token")
	form.Set("refresh_token", s.pair.RefreshToken)

	resp, err := s.postToken(ctx, form)
	if err != nil {
		return err
	}

	s.pair.AccessToken = resp.AccessToken
	if resp.RefreshToken != "" {
		s.pair.RefreshToken = resp.RefreshToken
	}

	return s.persist()
}

// exchange trades an authorization code for the initial token pair.
// Caller holds the mutex.
func (s *Store) exchange(ctx context.Context, code string) error {
	form := url.Values{}
	form.Set("grant_type", "authorization_code")
	form.Set("code", code)
	form.Set("redirect_uri", s.creds.RedirectURI)

	resp, err := s.postToken(ctx, form)
	if err != nil {
		return err
	}

	s.pair.AccessToken = resp.AccessToken
	if resp.RefreshToken != "" {
		s.pair.RefreshToken = resp.RefreshToken
	}

	return s.persist()
}

// postToken submits a form to the token endpoint with Basic client
// credentials and decodes the response.
func (s *Store) postToken(ctx context.Context, form url.Values) (*tokenResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create token request: %w", err)
	}

	req.SetBasicAuth(s.creds.ClientID, s.creds.ClientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("token request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read token response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &ExchangeError{Status: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	var tr tokenResponse
	if err := json.Unmarshal(body, &tr); err != nil {
		return nil, fmt.Errorf("failed to parse token response: %w", err)
	}

	return &tr, nil
}

// persist rewrites the token record. A store without a path holds
// tokens in memory only. Caller holds the mutex.
func (s *Store) persist() error {
	if s.path == "" {
		return nil
	}

	data, err := json.MarshalIndent(s.pair, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode tokens: %w", err)
	}

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return fmt.Errorf("failed to create token directory: %w", err)
		}
	}

	if err := os.WriteFile(s.path, data, 0600); err != nil {
		return fmt.Errorf("failed to write token file: %w", err)
	}

	return nil
}
