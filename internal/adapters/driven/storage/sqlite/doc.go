// Package sqlite provides the local persistence layer backed by a single
// SQLite database file (pure-Go driver, no cgo).
//
// One Store hands out typed views for each port:
//
//   - BookStore and ContentStore for ingestion metadata
//   - QuerySessionStore and SessionStore for chat history
//   - MetricStore for API usage
//   - VectorIndex for brute-force cosine search over stored embeddings
//
// Schema changes live in migrations/ as numbered .up.sql files applied in
// order on open.
package sqlite
