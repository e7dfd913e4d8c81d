// Package services defines the [MusicService] interface for the music
// provider and implements it for the Spotify Web API.
//
// # MusicService Interface
//
// The pipeline and CLI depend on the interface, never on the concrete
// client, so tests substitute a mock service.
//
// # Spotify Implementation
//
// [SpotifyService] talks to the Web API over plain HTTP with a bearer
// token from its [TokenSource] (the auth store in production). Tokens
// refresh lazily: the store only performs the refresh grant when no
// access token is held, and any data call may trigger that refresh
// (and persistence) as a side effect.
//
// Requests run behind a token-bucket rate limiter and a bounded retry
// loop: connection errors and 429/500/502/503/504 responses back off
// exponentially (honoring Retry-After) up to a fixed attempt count.
// Whatever survives the loop surfaces as [APIError].
//
// # Error Handling
//
// Services use errors from the shared package:
//   - [shared.ErrMissingCredentials] : no token and no way to get one
//   - [shared.ErrAPIRequest] : matched by every [APIError] via Unwrap
//   - [shared.ErrPlaylistReplace] : the replace call was rejected
//   - [shared.ErrMissingArgument] : caller-side validation
//
// # API Mappings
//
// Responses convert to models types at the package boundary:
// [SpotifyTrack] becomes [models.Track] with its ordered artist list,
// and [SpotifyPlaylist] becomes [models.Playlist]. Raw wire types do
// not leak into the pipeline.
package services
