package tui

import (
	"github.com/Muhammadasif1986/ai-diven-book/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the TUI.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Answer answers questions about a book.
	Answer driving.AnswerService

	// Ingestion lists ingested books. Optional; without it the books
	// view is empty and questions go to the default book.
	Ingestion driving.IngestionService

	// Sessions issues the session token that tags the TUI's query history. Optional.
	Sessions driving.SessionService
}

// NewPorts creates a new Ports aggregate with the given services.
func NewPorts(answer driving.AnswerService, ingestion driving.IngestionService) *Ports {
	return &Ports{
		Answer:    answer,
		Ingestion: ingestion,
	}
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Answer == nil {
		return ErrMissingAnswerService
	}
	return nil
}
