package services

import (
	"fmt"
	"strings"

	"github.com/Muhammadasif1986/ai-diven-book/internal/core/domain"
)

// previewRunes is how much of a passage a citation previews.
const previewRunes = 200

// CitationBuilder turns retrieval matches into citations.
type CitationBuilder struct{}

// NewCitationBuilder creates a citation builder.
func NewCitationBuilder() *CitationBuilder {
	return &CitationBuilder{}
}

// Build maps matches 1:1 to citations, preserving order.
func (b *CitationBuilder) Build(matches []domain.RetrievalMatch) []domain.Citation {
	citations := make([]domain.Citation, 0, len(matches))
	for _, m := range matches {
		citations = append(citations, domain.Citation{
			Title:          m.Source.Title,
			Section:        m.Source.Section,
			PageNumber:     m.Source.PageNumber,
			RelevanceScore: m.Score,
			TextPreview:    preview(m.Text),
		})
	}
	return citations
}

// Format renders citations as a numbered "Sources:" block.
// Returns an empty string when there are no citations.
func (b *CitationBuilder) Format(citations []domain.Citation) string {
	if len(citations) == 0 {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("Sources:")
	for i, c := range citations {
		fmt.Fprintf(&sb, "\n%d. %s (%s)", i+1, orUnknown(c.Title, "Title"), orUnknown(c.Section, "Section"))
		if c.PageNumber != nil && *c.PageNumber != 0 {
			fmt.Fprintf(&sb, ", p. %d", *c.PageNumber)
		}
		fmt.Fprintf(&sb, " [Relevance: %.2f]", c.RelevanceScore)
	}
	return sb.String()
}

// preview returns the first previewRunes characters, marking truncation.
func preview(text string) string {
	runes := []rune(text)
	if len(runes) <= previewRunes {
		return text
	}
	return string(runes[:previewRunes]) + "..."
}

func orUnknown(value, field string) string {
	if strings.TrimSpace(value) == "" {
		return "Unknown " + field
	}
	return value
}
