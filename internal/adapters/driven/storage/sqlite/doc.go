// Package sqlite stores scheduler state and indexing run history.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO. It implements two store interfaces over a single database connection:
//
//   - SchedulerStore: scheduled task state and task results
//   - IndexRunStore: one row per indexing run
//
// # Schema
//
// The schema is managed through versioned migrations embedded from the
// migrations/ directory. Applied versions are recorded in schema_migrations.
//
// # Data Location
//
// By default, the database is stored at ~/.sceneseek/data/sceneseek.db
//
// # Thread Safety
//
// All operations are thread-safe. The store uses database-level locking provided
// by SQLite in WAL mode.
package sqlite
