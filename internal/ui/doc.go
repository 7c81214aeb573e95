// Package ui implements an interactive catalog browser using bubbletea's Elm architecture.
//
// The TUI moves through these views:
//  1. [TypeListView] : Pick a collection (tracks, albums, artists, genres, playlists, users)
//  2. [EntityListView] : Browse records with their relations rendered as bounded tags
//  3. [ConfirmView] : Confirm a delete
//  4. [SubmittingView] : Follow progress while the delete runs
//  5. [ResultView] : Show the outcome; the collection is reloaded on success
//
// Deletes go through a [tasks.Coordinator] whose confirmation step is answered by the confirm view,
// so declining never reaches the service.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, d, r, y/n, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
