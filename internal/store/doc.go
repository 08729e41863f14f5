// Package store keeps a SQLite log of compiled search requests.
//
// A run is one invocation of the compiler over a definitions directory.
// Each run records, per query, the request fingerprint and the canonical
// JSON of the rendered request. Replaying a run recompiles the same
// queries and compares fingerprints, which catches any change to the
// compiler's output for unchanged input.
//
// Ordering:
//   - Runs and compilations are ordered by seq, never by created_at
//   - Query results include ORDER BY seq ASC, query_name COLLATE BINARY
//
// Database configuration:
//   - WAL mode
//   - synchronous=NORMAL
//   - busy_timeout=5000
//   - foreign_keys=ON
package store
