package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/Muhammadasif1986/ai-diven-book/internal/core/domain"
	"github.com/Muhammadasif1986/ai-diven-book/internal/core/ports/driven"
)

// Ensure ContentStore implements the interface.
var _ driven.ContentStore = (*ContentStore)(nil)

// ContentStore is an in-memory implementation of driven.ContentStore.
type ContentStore struct {
	mu     sync.RWMutex
	byBook map[string][]domain.ContentEmbedding
}

// NewContentStore creates a new in-memory content store.
func NewContentStore() *ContentStore {
	return &ContentStore{
		byBook: make(map[string][]domain.ContentEmbedding),
	}
}

// ReplaceContent swaps a book's rows for the given ones.
func (s *ContentStore) ReplaceContent(_ context.Context, bookID string, rows []domain.ContentEmbedding) error {
	cp := make([]domain.ContentEmbedding, len(rows))
	copy(cp, rows)
	sort.Slice(cp, func(i, j int) bool { return cp[i].ChunkIndex < cp[j].ChunkIndex })

	s.mu.Lock()
	defer s.mu.Unlock()
	if len(cp) == 0 {
		delete(s.byBook, bookID)
		return nil
	}
	s.byBook[bookID] = cp
	return nil
}

// ListContent returns a book's rows ordered by chunk index.
func (s *ContentStore) ListContent(_ context.Context, bookID string) ([]domain.ContentEmbedding, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rows := s.byBook[bookID]
	result := make([]domain.ContentEmbedding, len(rows))
	copy(result, rows)
	return result, nil
}
