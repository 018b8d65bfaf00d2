package driven

import (
	"context"

	"github.com/Muhammadasif1986/ai-diven-book/internal/core/domain"
)

// Distance is the similarity metric of a collection.
type Distance string

// Supported distances.
const (
	DistanceCosine Distance = "Cosine"
)

// VectorIndex stores content records with their vectors and answers
// filtered nearest-neighbour queries.
// Backend failures are reported wrapping domain.ErrIndexUnavailable.
type VectorIndex interface {
	// EnsureCollection creates the collection and a filterable book_id index
	// if they are absent. Calling it again is a no-op.
	EnsureCollection(ctx context.Context, dimensions int, distance Distance) error

	// Upsert stores records paired 1:1 with vectors and returns their
	// content ids, in order.
	// A record whose ContentID already exists is fully replaced.
	Upsert(ctx context.Context, records []domain.ContentRecord, vectors [][]float32) ([]string, error)

	// Search returns at most limit matches for the filter, ordered by
	// descending score, each scoring at least threshold.
	// No match is an empty slice, not an error.
	Search(ctx context.Context, query []float32, filter domain.VectorFilter, limit int, threshold float64) ([]domain.RetrievalMatch, error)

	// DeleteStale removes a book's records whose chunk index is keep or higher.
	// A missing collection is not an error.
	DeleteStale(ctx context.Context, bookID string, keep int) error

	// Ping checks the backend is reachable.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}
