package driving

import (
	"context"

	"github.com/Muhammadasif1986/ai-diven-book/internal/core/domain"
)

// AnswerService answers questions about a book.
type AnswerService interface {
	// Query validates the request, retrieves context and composes an answer.
	// Only validation failures return an error; retrieval and generation
	// failures degrade into a fallback answer.
	Query(ctx context.Context, req domain.QueryRequest) (*domain.QueryOutcome, error)

	// HasContext reports whether at least one passage matches the question.
	HasContext(ctx context.Context, req domain.QueryRequest) bool
}
