// Package sqlite provides a unified SQLite-based implementation of driven port interfaces.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO, enabling easy cross-compilation. It implements multiple store interfaces
// through a single database connection:
//
//   - AccountStore: Account and OAuth token persistence
//   - ThreadStore: Locally mirrored thread persistence
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql files.
// Thread rows carry a uniqueness constraint on (account_id, thread_id) so the
// sync engine's bulk upsert can never duplicate a conversation.
//
// # Data Location
//
// By default, the database is stored at ~/.mailmirror/data/mailmirror.db
//
// # Thread Safety
//
// All operations are thread-safe. The store uses database-level locking provided
// by SQLite in WAL mode.
package sqlite
