package mcp

import (
	"github.com/Muhammadasif1986/ai-diven-book/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
type Ports struct {
	// Answer answers questions about a book.
	Answer driving.AnswerService

	// Ingestion adds books and lists them. Optional; without it the
	// ingest_book tool is not registered and the books resource is empty.
	Ingestion driving.IngestionService
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Answer == nil {
		return ErrMissingAnswerService
	}
	return nil
}
