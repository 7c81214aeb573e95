// Package models defines the catalog read models, the entity type enumeration and the login session record.
//
// Read models mirror the service's JSON. Relations arrive denormalized as lists of display names:
//   - [Track] : album name, genre names, artist names (via its album)
//   - [Album] : artist names, track names
//   - [Artist] : album names
//   - [Genre] : derived track count only
//   - [Playlist] : author name, track names
//   - [User] : playlist names
//
// Each relation may also carry server-provided identifiers (albumId, genresIds, …).
// When present, they are preferred over name matching by the reconcile package.
//
// Every read model implements [Entity], which is all the store and resolver need to know about a record.
package models
