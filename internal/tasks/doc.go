// Package tasks runs catalog writes and exports with real-time progress reporting.
//
// # Mutations
//
// [Coordinator] owns the submit lifecycle of one mutation:
//
//  1. [Coordinator.Submit] : create or update
//     - Skipped mutations (nothing changed) return Idle with "No changes detected"
//     - Success invalidates and reloads the owning collection in the [store.Store]
//     - Editing the logged-in user propagates the returned profile to the [session.Context]
//     - Failure is classified with [services.Describe] and never triggers a reload
//
//  2. [Coordinator.Delete] : delete after confirmation
//     - The [Confirmer] is asked first; declining makes no request
//     - Success reloads the owning collection
//
// # Export
//
// [Export] fetches collections through a rate-limited worker pool and writes one file per type plus a manifest.
//
// # Progress Reporting
//
// All operations use non-blocking channels for progress updates.
// The [ProgressUpdate] struct contains phase, step counters, messages, the coordinator state and optional data.
// Updates use select with default to prevent blocking.
package tasks
