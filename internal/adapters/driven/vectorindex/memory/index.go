// Package memory provides an in-process vector index using brute-force
// cosine similarity.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/Muhammadasif1986/ai-diven-book/internal/adapters/driven/vectorindex"
	"github.com/Muhammadasif1986/ai-diven-book/internal/core/domain"
	"github.com/Muhammadasif1986/ai-diven-book/internal/core/ports/driven"
)

// Ensure Index implements the interface.
var _ driven.VectorIndex = (*Index)(nil)

type point struct {
	record domain.ContentRecord
	vector []float32
	norm   float64
}

// Index keeps records and vectors in memory, keyed by content id.
type Index struct {
	mu         sync.RWMutex
	dimensions int
	points     map[string]point
}

// New creates an empty in-memory index.
func New() *Index {
	return &Index{
		points: make(map[string]point),
	}
}

// EnsureCollection fixes the vector size on first use.
func (x *Index) EnsureCollection(_ context.Context, dimensions int, distance driven.Distance) error {
	if dimensions <= 0 {
		return fmt.Errorf("%w: invalid dimensions %d", domain.ErrIndexUnavailable, dimensions)
	}
	if distance != driven.DistanceCosine {
		return fmt.Errorf("%w: unsupported distance %q", domain.ErrIndexUnavailable, distance)
	}

	x.mu.Lock()
	defer x.mu.Unlock()
	if x.dimensions == 0 {
		x.dimensions = dimensions
		return nil
	}
	if x.dimensions != dimensions {
		return fmt.Errorf("%w: collection has %d dimensions, got %d",
			domain.ErrIndexUnavailable, x.dimensions, dimensions)
	}
	return nil
}

// Upsert stores or replaces records with their vectors.
func (x *Index) Upsert(_ context.Context, records []domain.ContentRecord, vectors [][]float32) ([]string, error) {
	if len(records) != len(vectors) {
		return nil, fmt.Errorf("%w: %d records for %d vectors", domain.ErrIndexUnavailable, len(records), len(vectors))
	}

	x.mu.Lock()
	defer x.mu.Unlock()
	if x.dimensions == 0 {
		return nil, fmt.Errorf("%w: collection not created", domain.ErrIndexUnavailable)
	}
	for _, v := range vectors {
		if len(v) != x.dimensions {
			return nil, fmt.Errorf("%w: vector has %d dimensions, want %d",
				domain.ErrIndexUnavailable, len(v), x.dimensions)
		}
	}

	ids := make([]string, len(records))
	for i, r := range records {
		v := make([]float32, len(vectors[i]))
		copy(v, vectors[i])
		x.points[r.ContentID] = point{record: r, vector: v, norm: vectorindex.Norm(v)}
		ids[i] = r.ContentID
	}
	return ids, nil
}

// Search scores every record passing the filter.
func (x *Index) Search(
	_ context.Context, query []float32, filter domain.VectorFilter, limit int, threshold float64,
) ([]domain.RetrievalMatch, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()

	if x.dimensions != 0 && len(query) != x.dimensions {
		return nil, fmt.Errorf("%w: query has %d dimensions, want %d",
			domain.ErrIndexUnavailable, len(query), x.dimensions)
	}

	qNorm := vectorindex.Norm(query)
	matches := make([]domain.RetrievalMatch, 0)
	for _, p := range x.points {
		if !vectorindex.Accepts(&p.record, filter) {
			continue
		}
		score := vectorindex.Cosine(query, qNorm, p.vector, p.norm)
		if score < threshold {
			continue
		}
		matches = append(matches, vectorindex.ToMatch(&p.record, score))
	}
	return vectorindex.TopK(matches, limit), nil
}

// DeleteStale removes a book's records whose chunk index is keep or higher.
func (x *Index) DeleteStale(_ context.Context, bookID string, keep int) error {
	x.mu.Lock()
	defer x.mu.Unlock()
	for id, p := range x.points {
		if p.record.BookID == bookID && p.record.ChunkIndex >= keep {
			delete(x.points, id)
		}
	}
	return nil
}

// Len returns the number of stored records.
func (x *Index) Len() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.points)
}

// Ping always succeeds.
func (x *Index) Ping(_ context.Context) error {
	return nil
}

// Close is a no-op.
func (x *Index) Close() error {
	return nil
}
