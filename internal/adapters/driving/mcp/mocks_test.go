package mcp

import (
	"context"

	"github.com/Muhammadasif1986/ai-diven-book/internal/core/domain"
)

// mockAnswerService is a mock implementation of driving.AnswerService.
type mockAnswerService struct {
	outcome *domain.QueryOutcome
	err     error
	last    domain.QueryRequest
}

func (m *mockAnswerService) Query(_ context.Context, req domain.QueryRequest) (*domain.QueryOutcome, error) {
	m.last = req
	if m.err != nil {
		return nil, m.err
	}
	if m.outcome == nil {
		return &domain.QueryOutcome{ContextType: req.ContextType}, nil
	}
	return m.outcome, nil
}

func (m *mockAnswerService) HasContext(_ context.Context, _ domain.QueryRequest) bool {
	return m.outcome != nil
}

// mockIngestionService is a mock implementation of driving.IngestionService.
type mockIngestionService struct {
	result *domain.IngestResult
	books  []domain.Book
	book   *domain.Book
	err    error
	last   domain.IngestRequest
}

func (m *mockIngestionService) Ingest(_ context.Context, req domain.IngestRequest) (*domain.IngestResult, error) {
	m.last = req
	return m.result, m.err
}

func (m *mockIngestionService) Book(_ context.Context, _ string) (*domain.Book, error) {
	if m.book == nil && m.err == nil {
		return nil, domain.ErrNotFound
	}
	return m.book, m.err
}

func (m *mockIngestionService) Books(_ context.Context) ([]domain.Book, error) {
	return m.books, m.err
}
