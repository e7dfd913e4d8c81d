package main

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/desertthunder/wxfm/internal/auth"
	"github.com/desertthunder/wxfm/internal/server"
	"github.com/desertthunder/wxfm/internal/shared"
	"github.com/urfave/cli/v3"
)

// AuthLogin performs the OAuth2 authorization flow for Spotify.
//
// Starts a local HTTP server on the redirect URI, opens a browser for
// user authorization, and exchanges the returned code for tokens.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	config, err := r.configFor(cmd)
	if err != nil {
		return err
	}

	store, err := r.tokenStore(config)
	if err != nil {
		return err
	}

	redirectURI := config.Credentials.Spotify.RedirectURI
	if redirectURI == "" {
		redirectURI = auth.DefaultRedirectURI
	}

	redirect, err := url.Parse(redirectURI)
	if err != nil {
		return fmt.Errorf("%w: redirect URI %q: %v", shared.ErrInvalidConfig, redirectURI, err)
	}

	state := shared.GenerateID()
	authURL := store.AuthURL(state)

	callbackHandler := server.NewCallbackHandler(state, redirect.Path)
	router := server.NewBasicRouter()
	router.Use(server.LogRequests(r.logger))
	router.Handler(callbackHandler)

	httpServer := &http.Server{
		Addr:    redirect.Host,
		Handler: router,
	}

	serverErrors := make(chan error, 1)
	go func() {
		r.logger.Infof("starting callback server at %v", redirect.Host)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrors <- err
		}
	}()

	time.Sleep(100 * time.Millisecond)

	r.writePlain("→ Opening browser for Spotify authorization...\n")
	if err := shared.OpenBrowser(authURL); err != nil {
		r.logger.Warnf("failed to open browser automatically %v", err)
		r.writePlainln("⚠ Could not open browser automatically.")
		r.writePlain("Please open this URL in your browser:\n%s\n\n", authURL)
	}

	r.writePlain("→ Waiting for authorization (2 minute timeout)...\n")

	timeout := time.NewTimer(2 * time.Minute)
	defer timeout.Stop()

	var result server.CallbackResult

	select {
	case result = <-callbackHandler.Result():
		// Got result from callback
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case <-timeout.C:
		return fmt.Errorf("%w: authorization timed out after 2 minutes", shared.ErrTimeout)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		r.logger.Warn("error shutting down server", "error", err)
	}

	if result.Error() != nil {
		return fmt.Errorf("authorization failed: %w", result.Error())
	}

	if _, err := store.Ensure(ctx, result.Code); err != nil {
		return fmt.Errorf("code exchange failed: %w", err)
	}

	r.writePlainln("✓ Authorization successful")
	if config.Auth.TokenFile != "" {
		r.writePlain("✓ Tokens saved to %s\n\n", config.Auth.TokenFile)
	}
	r.writePlain("You can now use: wxfm run\n")

	return nil
}

// AuthURL prints the authorization URL for manual flows, e.g. on a
// headless machine. The code arrives on the configured redirect URI;
// paste it into `wxfm auth exchange`.
func (r *Runner) AuthURL(ctx context.Context, cmd *cli.Command) error {
	config, err := r.configFor(cmd)
	if err != nil {
		return err
	}

	store, err := r.tokenStore(config)
	if err != nil {
		return err
	}

	r.writePlain("%s\n", store.AuthURL(""))
	r.writePlain("\nAfter approving, copy the \"code\" query parameter and run:\n")
	r.writePlain("  wxfm auth exchange <code>\n")

	return nil
}

// AuthExchange trades an authorization code for tokens.
func (r *Runner) AuthExchange(ctx context.Context, cmd *cli.Command) error {
	code := cmd.StringArg("code")
	if code == "" {
		return fmt.Errorf("%w: authorization code", shared.ErrMissingArgument)
	}

	config, err := r.configFor(cmd)
	if err != nil {
		return err
	}

	store, err := r.tokenStore(config)
	if err != nil {
		return err
	}

	if _, err := store.Ensure(ctx, code); err != nil {
		return fmt.Errorf("code exchange failed: %w", err)
	}

	r.writePlainln("✓ Authorization successful")
	if config.Auth.TokenFile != "" {
		r.writePlain("✓ Tokens saved to %s\n", config.Auth.TokenFile)
	}

	return nil
}

// AuthStatus reports which credentials are configured and where the
// refresh token comes from.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	config, err := r.configFor(cmd)
	if err != nil {
		return err
	}

	r.writePlainHeader("Authorization Status")

	creds := config.Credentials.Spotify
	if creds.ClientID == "" || creds.ClientSecret == "" {
		r.writePlain("Client credentials: ✗ missing, set SPOTIFY_CLIENT_ID and SPOTIFY_CLIENT_SECRET\n")
		return nil
	}
	r.writePlain("Client credentials: ✓ configured\n")

	store, err := r.tokenStore(config)
	if err != nil {
		return err
	}

	pair := store.Pair()
	if pair.RefreshToken == "" {
		r.writePlain("Refresh token: ✗ none, run 'wxfm auth login'\n")
		return nil
	}

	source := config.Auth.TokenFile
	if os.Getenv(auth.RefreshTokenEnv) != "" {
		source = auth.RefreshTokenEnv
	}
	r.writePlain("Refresh token: ✓ present (from %s)\n", source)

	if pair.AccessToken != "" {
		r.writePlain("Access token: ✓ held\n")
	} else {
		r.writePlain("Access token: refreshed on next API call\n")
	}

	return nil
}
