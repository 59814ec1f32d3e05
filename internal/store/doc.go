// Package store provides persistent storage for the file registry using SQLite.
//
// # Architecture
//
// The package exposes a single Store interface implemented by SQLiteStore.
// FileRecord is the sole entity: a flat table of file metadata with no
// relationships. Listing queries are compiled from a tagged ListFilter
// struct into parameterized SQL — user-supplied text never reaches the
// query string except as a bound argument.
//
// # Mutation semantics
//
//   - Insert assigns monotone, never-reused ids (AUTOINCREMENT) and defaults
//     the upload date to the current time.
//   - UpdateFile is a partial update: nil fields keep the stored value, an
//     explicit empty string is a real write. Each update is one SQL
//     statement, so concurrent updates on the same row never interleave
//     field writes.
//   - DeleteFile treats a missing row as a successful no-op and reports
//     whether a row existed.
//
// # SQLite Configuration
//
// The store uses SQLite with WAL mode for concurrent reads:
//
//	PRAGMA journal_mode=WAL;
//
// Writes are synchronously committed before the call returns; there is no
// buffered or asynchronous commit path.
//
// # Error Handling
//
// Common errors:
//
//   - ErrNotFound: Requested record does not exist
//
// All other errors are wrapped driver I/O failures and should be treated as
// retryable storage faults by callers.
package store
