package driven

import (
	"context"

	"github.com/Muhammadasif1986/ai-diven-book/internal/core/domain"
)

// NormaliserRegistry selects the appropriate normaliser for a book file.
// It dispatches on MIME type, preferring the highest priority normaliser.
type NormaliserRegistry interface {
	// Normalise transforms a raw book using the best matching normaliser.
	Normalise(ctx context.Context, raw *domain.RawBook) (*domain.NormalisedBook, error)

	// Register adds a normaliser to the registry.
	Register(normaliser Normaliser)

	// SupportedMIMETypes returns all MIME types that can be normalised.
	SupportedMIMETypes() []string
}
