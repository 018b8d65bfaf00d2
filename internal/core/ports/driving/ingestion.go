package driving

import (
	"context"

	"github.com/Muhammadasif1986/ai-diven-book/internal/core/domain"
)

// IngestionService populates the index from book content.
type IngestionService interface {
	// Ingest chunks, embeds and stores a book, replacing any previous run.
	Ingest(ctx context.Context, req domain.IngestRequest) (*domain.IngestResult, error)

	// Book returns stored metadata for a book.
	Book(ctx context.Context, bookID string) (*domain.Book, error)

	// Books lists all ingested books.
	Books(ctx context.Context) ([]domain.Book, error)
}
