package httpapi

import (
	"context"
	"sync"
	"time"

	"github.com/Muhammadasif1986/ai-diven-book/internal/core/domain"
)

type stubAnswer struct {
	mu   sync.Mutex
	last domain.QueryRequest
	err  error
}

func (s *stubAnswer) Query(_ context.Context, req domain.QueryRequest) (*domain.QueryOutcome, error) {
	s.mu.Lock()
	s.last = req
	s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	return &domain.QueryOutcome{
		Answer:      "Photosynthesis turns light into chemical energy.",
		Citations:   []domain.Citation{{Title: "Chapter 2", Section: "Plants", RelevanceScore: 0.9}},
		ContextType: req.ContextType,
	}, nil
}

func (s *stubAnswer) HasContext(context.Context, domain.QueryRequest) bool { return true }

func (s *stubAnswer) lastRequest() domain.QueryRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

type stubIngestion struct {
	books map[string]domain.Book
	err   error
	calls int
}

func (s *stubIngestion) Ingest(_ context.Context, req domain.IngestRequest) (*domain.IngestResult, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return &domain.IngestResult{Status: "success", TotalChunks: 3, Message: "ingested " + req.BookID}, nil
}

func (s *stubIngestion) Book(_ context.Context, id string) (*domain.Book, error) {
	b, ok := s.books[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &b, nil
}

func (s *stubIngestion) Books(context.Context) ([]domain.Book, error) {
	out := make([]domain.Book, 0, len(s.books))
	for _, b := range s.books {
		out = append(out, b)
	}
	return out, nil
}

type stubSessions struct {
	history []domain.QuerySession
	deleted []string
}

func (s *stubSessions) Create(_ context.Context, authenticated bool, userID string) (*domain.UserSession, error) {
	now := time.Now()
	return &domain.UserSession{
		Token:           "sess_0123456789abcdef",
		IsAuthenticated: authenticated,
		UserID:          userID,
		CreatedAt:       now,
		ExpiresAt:       now.Add(domain.SessionTTL),
	}, nil
}

func (s *stubSessions) Get(context.Context, string) (*domain.UserSession, error) {
	return nil, domain.ErrNotFound
}

func (s *stubSessions) Validate(context.Context, string) bool { return true }

func (s *stubSessions) Extend(context.Context, string) (*domain.UserSession, error) {
	return nil, domain.ErrNotFound
}

func (s *stubSessions) Delete(_ context.Context, token string) error {
	if token == "missing-token-0000" {
		return domain.ErrNotFound
	}
	s.deleted = append(s.deleted, token)
	return nil
}

func (s *stubSessions) CleanupExpired(context.Context) (int, error) { return 0, nil }

func (s *stubSessions) History(_ context.Context, _ string, limit int) ([]domain.QuerySession, error) {
	if limit < len(s.history) {
		return s.history[:limit], nil
	}
	return s.history, nil
}

type spyUsage struct {
	mu    sync.Mutex
	calls []domain.APIMetric
}

func (s *spyUsage) LogAPICall(_ context.Context, m domain.APIMetric) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, m)
}

func (s *spyUsage) recorded() []domain.APIMetric {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.APIMetric(nil), s.calls...)
}

func (s *spyUsage) SessionMetrics(context.Context, string, time.Duration) (domain.MetricsSummary, error) {
	return domain.MetricsSummary{}, nil
}

func (s *spyUsage) EndpointMetrics(context.Context, string, time.Duration) (domain.MetricsSummary, error) {
	return domain.MetricsSummary{}, nil
}

func (s *spyUsage) RateLimitedCount(context.Context, string) (int, error) { return 0, nil }

func (s *spyUsage) AverageResponseTime(context.Context, string) (float64, error) { return 0, nil }

func (s *spyUsage) CleanupOld(context.Context, int) (int, error) { return 0, nil }
