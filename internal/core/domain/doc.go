// Package domain defines the core business entities for bookrag.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - TextChunk: A window of source text produced by the chunker
//   - ContentRecord: The payload stored with each embedding vector
//   - RetrievalMatch and Citation: What a query finds and how it is cited
//   - QueryOutcome: The structured answer returned for a question
//   - Book, UserSession, QuerySession, APIMetric: Persisted metadata
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
