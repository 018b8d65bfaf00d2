package driven

import (
	"context"

	"github.com/Muhammadasif1986/ai-diven-book/internal/core/domain"
)

// Normaliser turns a raw book file into plain text for ingestion.
// Each normaliser handles specific MIME types (e.g., Markdown, plain text).
type Normaliser interface {
	// SupportedMIMETypes returns the MIME types this normaliser handles.
	SupportedMIMETypes() []string

	// Priority returns the selection priority (higher = preferred).
	// Format-specific normalisers should return 50-89.
	// Fallback normalisers should return 1-9.
	Priority() int

	// Normalise extracts the title and plain-text content.
	Normalise(ctx context.Context, raw *domain.RawBook) (*domain.NormalisedBook, error)
}
