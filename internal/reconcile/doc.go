// Package reconcile maps the catalog's name-based read model onto identifier-based edit forms and back into write payloads.
//
// # Resolution
//
// Read records express relations as display names (Album.artists = ["Abba"]). [ResolveNames] matches each name
// against the cached collection of the related type, exactly and case-sensitively, collecting ids in first-match
// order without duplicates. A name with no match is dropped and reported in [Resolution.Missing]; a name shared
// by several records is reported through [Resolution.Err] as an [*AmbiguousResolutionError].
// When a record carries server ids (artistsIds, genresIds, ...) they are used instead and filtered to the cache.
//
// The Seed functions build the form state for editing one record.
//
// # Payloads
//
// [Builder] turns a form into the exact body for each mutation:
//
//	Track create     {name, duration, albumId}
//	Track update     {name, duration, albumId, genresIds}
//	Album create     {name, artistsIds}
//	Album update     {name, artistsIds, tracksIds}
//	Artist create    {name}
//	Artist update    {name, albumsIds}
//	Genre            {name}, update skipped when unchanged
//	Playlist         {name, authorId, tracksIds}
//	User create      {name, email, password}
//	User update      sparse diff, password only when non-blank
//
// Empty relation selections encode as [] rather than being omitted. Identifiers absent from the cache and
// client-side rule violations are returned as a [*FormError].
package reconcile
