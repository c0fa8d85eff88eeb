// Package sqlite provides the SQLite-backed local upload history.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that
// requires no CGO. The notes themselves live on the notes service; the local
// database only records what this machine uploaded and how each file was
// classified, so repeated runs and the watch command can report history.
//
// # Schema
//
// The schema is managed through versioned migrations stored in the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql
// files. Applied versions are recorded in schema_migrations.
//
// # Data Location
//
// By default, the database is stored at ~/.notely/data/history.db
//
// # Thread Safety
//
// All operations are safe for concurrent use. The store relies on
// SQLite's WAL mode for locking.
package sqlite
