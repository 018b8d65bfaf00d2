package driven

import (
	"context"
	"time"

	"github.com/Muhammadasif1986/ai-diven-book/internal/core/domain"
)

// BookStore persists book metadata.
type BookStore interface {
	// SaveBook creates or fully replaces the book keyed by ID.
	SaveBook(ctx context.Context, book domain.Book) error

	// GetBook returns the book or domain.ErrNotFound.
	GetBook(ctx context.Context, id string) (*domain.Book, error)

	// ListBooks returns all books ordered by ID.
	ListBooks(ctx context.Context) ([]domain.Book, error)
}

// ContentStore persists the relational mirror of indexed content records.
type ContentStore interface {
	// ReplaceContent atomically swaps a book's rows for the given ones.
	ReplaceContent(ctx context.Context, bookID string, rows []domain.ContentEmbedding) error

	// ListContent returns a book's rows ordered by chunk index.
	ListContent(ctx context.Context, bookID string) ([]domain.ContentEmbedding, error)
}

// QuerySessionStore records answered questions.
type QuerySessionStore interface {
	// SaveQuerySession stores one answered question.
	SaveQuerySession(ctx context.Context, qs *domain.QuerySession) error

	// ListQuerySessions returns the most recent questions for a session token, newest first.
	ListQuerySessions(ctx context.Context, sessionToken string, limit int) ([]domain.QuerySession, error)
}

// SessionStore persists user sessions.
type SessionStore interface {
	// SaveSession creates or replaces the session keyed by Token.
	SaveSession(ctx context.Context, session *domain.UserSession) error

	// GetSession returns the session or domain.ErrNotFound.
	GetSession(ctx context.Context, token string) (*domain.UserSession, error)

	// DeleteSession removes a session. Returns domain.ErrNotFound if absent.
	DeleteSession(ctx context.Context, token string) error

	// DeleteExpiredSessions removes sessions that expired before the cutoff.
	DeleteExpiredSessions(ctx context.Context, cutoff time.Time) (int, error)
}

// MetricStore persists API usage metrics.
type MetricStore interface {
	// SaveMetric stores one served request.
	SaveMetric(ctx context.Context, metric *domain.APIMetric) error

	// SummariseSession aggregates a session's calls made at or after since.
	SummariseSession(ctx context.Context, sessionToken string, since time.Time) (domain.MetricsSummary, error)

	// SummariseEndpoint aggregates an endpoint's calls made at or after since.
	SummariseEndpoint(ctx context.Context, endpoint string, since time.Time) (domain.MetricsSummary, error)

	// DeleteMetricsBefore removes metrics older than the cutoff.
	DeleteMetricsBefore(ctx context.Context, cutoff time.Time) (int, error)
}
