package plaintext

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/Muhammadasif1986/ai-diven-book/internal/core/domain"
	"github.com/Muhammadasif1986/ai-diven-book/internal/core/ports/driven"
	"github.com/Muhammadasif1986/ai-diven-book/internal/normalisers/markdown"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// Normaliser handles plain text book files.
type Normaliser struct{}

// New creates a new plain text normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// SupportedMIMETypes returns the MIME types this normaliser handles.
func (n *Normaliser) SupportedMIMETypes() []string {
	return []string{"text/plain"}
}

// Priority returns the selection priority.
func (n *Normaliser) Priority() int {
	return 5 // Fallback normaliser
}

// Normalise keeps the text as is, apart from a leading BOM and CRLF line endings.
// The title comes from the file name.
func (n *Normaliser) Normalise(_ context.Context, raw *domain.RawBook) (*domain.NormalisedBook, error) {
	if raw == nil {
		return nil, domain.NewValidationError("file", "no content")
	}
	if !utf8.Valid(raw.Content) {
		return nil, domain.NewValidationError("file", "%s is not valid UTF-8 text", raw.URI)
	}

	content := strings.TrimPrefix(string(raw.Content), "\uFEFF")
	content = strings.ReplaceAll(content, "\r\n", "\n")

	return &domain.NormalisedBook{
		Title:   markdown.TitleFromPath(raw.URI),
		Content: strings.TrimSpace(content),
		Format:  "plaintext",
	}, nil
}
