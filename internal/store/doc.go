// Package store provides SQLite-backed storage for scenario runs.
//
// Each run of a scenario is one row in runs; each call the run made is one
// row in calls, keyed by its content-addressed ID (trace.CallID).
//
// # Ordering
//
// Calls are ordered by their logical seq, never by wall time, so reading a
// run back yields the same trace it was recorded with.
//
// # Idempotency
//
// Writes use ON CONFLICT DO NOTHING. Recording the same run twice, as a
// scenario with a fixed run_id does, leaves the first recording in place.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait up to 5 seconds on lock contention
//   - foreign_keys=ON: calls must belong to a recorded run
package store
