// Package sqlite provides a unified SQLite-based implementation of driven port interfaces.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO, enabling easy cross-compilation. It implements multiple store interfaces
// through a single database connection:
//
//   - FileStore: file records, processing state and claims
//   - ChunkStore: chunk rows with embedding vectors
//   - BlobStore: raw uploaded payloads
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory as .up.sql files embedded at compile time.
//
// # Data Location
//
// By default, the database is stored at ~/.carta/data/carta.db
//
// # Thread Safety
//
// All operations are thread-safe. The store uses database-level locking provided
// by SQLite in WAL mode. Claim acquisition is a single conditional UPDATE, so
// concurrent workers cannot both hold a live claim on the same file.
package sqlite
