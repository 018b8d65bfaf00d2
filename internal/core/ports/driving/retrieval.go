package driving

import (
	"context"

	"github.com/Muhammadasif1986/ai-diven-book/internal/core/domain"
)

// RetrievalService finds book passages relevant to a query.
type RetrievalService interface {
	// Retrieve returns ranked matches, or an Err holding a validation
	// failure or domain.ErrRetrieval.
	Retrieve(ctx context.Context, req domain.RetrievalRequest) domain.Result[[]domain.RetrievalMatch]
}
