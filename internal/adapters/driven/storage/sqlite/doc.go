// Package sqlite provides the SQLite-backed signal store.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that
// requires no CGO, enabling easy cross-compilation. Records are keyed by each
// signal's deterministic content hash, making ingestion idempotent: replaying
// the same upstream items updates rows in place instead of duplicating them.
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory, applied in order on startup.
//
// # Data Location
//
// By default, the database is stored at ~/.leadboost/data/signals.db
//
// # Thread Safety
//
// All operations are thread-safe. The store uses database-level locking
// provided by SQLite in WAL mode, so concurrent ingestion cycles and readers
// don't block each other.
package sqlite
