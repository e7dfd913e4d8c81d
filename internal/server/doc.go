// Package server provides the local HTTP plumbing for the CLI's OAuth
// login flow.
//
// # Router Infrastructure
//
// [BasicRouter] wraps [http.ServeMux] with method filtering and a
// [Middleware] stack. Middleware executes in registration order, with
// each wrapping the next, following the standard Go pattern.
//
// # OAuth Callback Handler
//
// [CallbackHandler] receives the OAuth2 authorization-code redirect.
//
// The handler validates the state parameter (CSRF protection) and
// delivers the raw authorization code through a channel; the auth
// store performs the code exchange so token persistence stays in one
// place.
//
// It only processes one callback to prevent replay attacks.
//
// # Current Usage
//
// When the user runs the login command, a temporary HTTP server starts
// on the redirect URI's host and port, receives the callback, and
// shuts down after delivering the code.
package server
