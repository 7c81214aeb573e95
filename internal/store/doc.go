// Package store implements the per-type entity cache.
//
// A [Store] holds the last fully fetched collection for each [models.EntityType]. Collections are never patched:
// every load replaces the whole collection, and a successful mutation invalidates and reloads the owning type.
//
// Loads are versioned. Each load takes a monotonic ticket before it is issued; when a response arrives
// after a newer load has already been applied it is discarded. Concurrent loads of the same type are
// coalesced with [singleflight.Group] until [Store.Invalidate] forgets the in-flight call.
//
// [Store.LoadAll] runs independent loads concurrently with [errgroup.Group] and joins every [FetchFailure].
package store
