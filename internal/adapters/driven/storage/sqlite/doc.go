// Package sqlite provides the default local chunk store and title catalog.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO. A single database file holds both tables:
//
//   - chunks: section text, metadata and embedding blob, keyed by (partition, id)
//   - titles: the canonical subject catalog in insertion order
//
// Similarity ranking happens in-process: Search loads the candidate rows for a
// partition (narrowed by the title filter when one is set), decodes their
// embeddings and ranks them with the shared ranking package.
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql files.
//
// # Data Location
//
// By default, the database is stored at ~/.dpln/data/dpln.db
package sqlite
