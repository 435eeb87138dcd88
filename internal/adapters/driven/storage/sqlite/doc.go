// Package sqlite provides a SQLite-based implementation of the conversation store.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO, enabling easy cross-compilation.
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql files.
// Conversations are stored one row per document with the message history as a
// JSON array.
//
// # Data Location
//
// By default, the database is stored at ~/.sitenav/data/conversations.db
//
// # Thread Safety
//
// All operations are thread-safe. The store uses database-level locking provided
// by SQLite in WAL mode. Writers to the same conversation are serialised by the
// chat service, not by this package.
package sqlite
