// Package repositories implements SQLite persistence for the client's local state.
//
// Catalog data is never persisted; the only stored state is the login session.
//
// Key Implementations:
//   - [SettingsRepository] : key/value rows in the settings table
//   - [SessionRepository] : the logged-in user ({id, name, email, token}) as JSON under the "user" key
//
// The schema is created by the embedded migrations in package shared.
package repositories
