// Package services implements the client for the music-catalog REST service.
//
// # Transport
//
// [APIService] performs raw requests and returns an [APIResponse]. Every request carries an X-Request-ID header.
// When an [oauth2.TokenSource] is attached (the session context is one) the bearer token is added through [oauth2.NewClient].
// An optional [rate.Limiter] throttles outgoing calls.
//
// # Catalog Client
//
// [CatalogClient] maps the catalog contract onto the transport:
//   - GET /{type}/all : full collection
//   - GET /playlists?authorId=N : author-scoped playlists
//   - POST /{type}, PATCH /{type}/{id}, DELETE /{type}/{id}
//   - POST /auth/login : {email, password} → {userId, username, email, token}
//
// # Error Handling
//
// Non-2xx responses become an [APIError] classified by status:
//   - 400 : [shared.ErrValidation], body is a field → message(s) map
//   - 409 : [shared.ErrConflict], body is a message (plain text or {"message"})
//   - 404 : [shared.ErrNotFound]
//   - 401/403 : [shared.ErrNotAuthenticated]
//   - 429 : [shared.ErrRateLimited]
//   - otherwise : [shared.ErrAPIRequest]
//
// [Describe] renders any error for display, flattening validation messages into newline-joined lines.
package services
