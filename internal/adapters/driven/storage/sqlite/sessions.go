package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Muhammadasif1986/ai-diven-book/internal/core/domain"
	"github.com/Muhammadasif1986/ai-diven-book/internal/core/ports/driven"
)

// ==================== User Session Store ====================

// sessionStore implements driven.SessionStore.
type sessionStore struct {
	store *Store
}

var _ driven.SessionStore = (*sessionStore)(nil)

// SaveSession creates or replaces a session.
func (s *sessionStore) SaveSession(ctx context.Context, session *domain.UserSession) error {
	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO user_sessions (token, is_authenticated, user_id, created_at, last_activity_at, expires_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(token) DO UPDATE SET
			is_authenticated = excluded.is_authenticated,
			user_id = excluded.user_id,
			last_activity_at = excluded.last_activity_at,
			expires_at = excluded.expires_at
	`, session.Token, boolToInt(session.IsAuthenticated), session.UserID,
		toNanos(session.CreatedAt), toNanos(session.LastActivityAt), toNanos(session.ExpiresAt))
	if err != nil {
		return fmt.Errorf("saving session: %w", err)
	}
	return nil
}

// GetSession retrieves a session by token.
func (s *sessionStore) GetSession(ctx context.Context, token string) (*domain.UserSession, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT token, is_authenticated, user_id, created_at, last_activity_at, expires_at
		FROM user_sessions WHERE token = ?
	`, token)

	var session domain.UserSession
	var authenticated int
	var createdAt, lastActivity, expiresAt int64
	if err := row.Scan(&session.Token, &authenticated, &session.UserID,
		&createdAt, &lastActivity, &expiresAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning session: %w", err)
	}
	session.IsAuthenticated = authenticated != 0
	session.CreatedAt = fromNanos(createdAt)
	session.LastActivityAt = fromNanos(lastActivity)
	session.ExpiresAt = fromNanos(expiresAt)
	return &session, nil
}

// DeleteSession removes a session.
func (s *sessionStore) DeleteSession(ctx context.Context, token string) error {
	res, err := s.store.db.ExecContext(ctx, "DELETE FROM user_sessions WHERE token = ?", token)
	if err != nil {
		return fmt.Errorf("deleting session: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// DeleteExpiredSessions removes sessions that expired before the cutoff.
func (s *sessionStore) DeleteExpiredSessions(ctx context.Context, cutoff time.Time) (int, error) {
	res, err := s.store.db.ExecContext(ctx, "DELETE FROM user_sessions WHERE expires_at < ?", toNanos(cutoff))
	if err != nil {
		return 0, fmt.Errorf("deleting expired sessions: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("counting expired sessions: %w", err)
	}
	return int(n), nil
}

// ==================== Query Session Store ====================

// querySessionStore implements driven.QuerySessionStore.
type querySessionStore struct {
	store *Store
}

var _ driven.QuerySessionStore = (*querySessionStore)(nil)

// SaveQuerySession stores one answered question.
func (s *querySessionStore) SaveQuerySession(ctx context.Context, qs *domain.QuerySession) error {
	chunksJSON, err := json.Marshal(qs.RetrievedChunks)
	if err != nil {
		return fmt.Errorf("marshalling retrieved chunks: %w", err)
	}
	citationsJSON, err := json.Marshal(qs.Citations)
	if err != nil {
		return fmt.Errorf("marshalling citations: %w", err)
	}
	createdAt := qs.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	_, err = s.store.db.ExecContext(ctx, `
		INSERT INTO query_sessions (id, session_token, book_id, question, context_type, selected_text,
			retrieved_chunks, answer, citations, response_time_ms, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, qs.ID, qs.SessionToken, qs.BookID, qs.Question, string(qs.ContextType), qs.SelectedText,
		string(chunksJSON), qs.Answer, string(citationsJSON), qs.ResponseTimeMS, toNanos(createdAt))
	if err != nil {
		return fmt.Errorf("saving query session: %w", err)
	}
	return nil
}

// ListQuerySessions returns the most recent questions for a session token, newest first.
func (s *querySessionStore) ListQuerySessions(
	ctx context.Context, sessionToken string, limit int,
) ([]domain.QuerySession, error) {
	query := `
		SELECT id, session_token, book_id, question, context_type, selected_text,
			retrieved_chunks, answer, citations, response_time_ms, created_at
		FROM query_sessions WHERE session_token = ?
		ORDER BY created_at DESC`
	args := []any{sessionToken}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying query sessions: %w", err)
	}
	defer rows.Close()

	result := make([]domain.QuerySession, 0)
	for rows.Next() {
		var qs domain.QuerySession
		var contextType, chunksJSON, citationsJSON string
		var createdAt int64
		if err := rows.Scan(&qs.ID, &qs.SessionToken, &qs.BookID, &qs.Question, &contextType,
			&qs.SelectedText, &chunksJSON, &qs.Answer, &citationsJSON, &qs.ResponseTimeMS, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning query session: %w", err)
		}
		qs.ContextType = domain.ContextType(contextType)
		if chunksJSON != jsonNull {
			if err := json.Unmarshal([]byte(chunksJSON), &qs.RetrievedChunks); err != nil {
				return nil, fmt.Errorf("unmarshalling retrieved chunks: %w", err)
			}
		}
		if citationsJSON != jsonNull {
			if err := json.Unmarshal([]byte(citationsJSON), &qs.Citations); err != nil {
				return nil, fmt.Errorf("unmarshalling citations: %w", err)
			}
		}
		qs.CreatedAt = fromNanos(createdAt)
		result = append(result, qs)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating query sessions: %w", err)
	}
	return result, nil
}

// ==================== Metric Store ====================

// metricStore implements driven.MetricStore.
type metricStore struct {
	store *Store
}

var _ driven.MetricStore = (*metricStore)(nil)

// SaveMetric stores one served request.
func (s *metricStore) SaveMetric(ctx context.Context, m *domain.APIMetric) error {
	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO api_metrics (id, session_token, endpoint, request_data, response_time_ms,
			status_code, rate_limited, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, m.ID, m.SessionToken, m.Endpoint, m.RequestData, m.ResponseTimeMS,
		m.StatusCode, boolToInt(m.RateLimited), toNanos(m.CreatedAt))
	if err != nil {
		return fmt.Errorf("saving metric: %w", err)
	}
	return nil
}

// SummariseSession aggregates a session's calls made at or after since.
func (s *metricStore) SummariseSession(
	ctx context.Context, sessionToken string, since time.Time,
) (domain.MetricsSummary, error) {
	return s.summarise(ctx, "session_token", sessionToken, since)
}

// SummariseEndpoint aggregates an endpoint's calls made at or after since.
func (s *metricStore) SummariseEndpoint(
	ctx context.Context, endpoint string, since time.Time,
) (domain.MetricsSummary, error) {
	return s.summarise(ctx, "endpoint", endpoint, since)
}

// summarise aggregates rows where column equals value. column is never user input.
func (s *metricStore) summarise(
	ctx context.Context, column, value string, since time.Time,
) (domain.MetricsSummary, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
			COALESCE(SUM(rate_limited), 0),
			COALESCE(SUM(CASE WHEN status_code >= 400 THEN 1 ELSE 0 END), 0),
			COALESCE(AVG(response_time_ms), 0)
		FROM api_metrics WHERE `+column+` = ? AND created_at >= ?
	`, value, toNanos(since))

	var summary domain.MetricsSummary
	if err := row.Scan(&summary.TotalCalls, &summary.RateLimitedCalls,
		&summary.ErrorCalls, &summary.AverageResponseTime); err != nil {
		return domain.MetricsSummary{}, fmt.Errorf("summarising metrics: %w", err)
	}
	return summary, nil
}

// DeleteMetricsBefore removes metrics older than the cutoff.
func (s *metricStore) DeleteMetricsBefore(ctx context.Context, cutoff time.Time) (int, error) {
	res, err := s.store.db.ExecContext(ctx, "DELETE FROM api_metrics WHERE created_at < ?", toNanos(cutoff))
	if err != nil {
		return 0, fmt.Errorf("deleting metrics: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("counting deleted metrics: %w", err)
	}
	return int(n), nil
}
