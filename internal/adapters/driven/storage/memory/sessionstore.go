package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Muhammadasif1986/ai-diven-book/internal/core/domain"
	"github.com/Muhammadasif1986/ai-diven-book/internal/core/ports/driven"
)

// Ensure the session stores implement the interfaces.
var (
	_ driven.SessionStore      = (*SessionStore)(nil)
	_ driven.QuerySessionStore = (*QuerySessionStore)(nil)
)

// SessionStore is an in-memory implementation of driven.SessionStore.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]domain.UserSession
}

// NewSessionStore creates a new in-memory session store.
func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[string]domain.UserSession),
	}
}

// SaveSession stores or replaces a session.
func (s *SessionStore) SaveSession(_ context.Context, session *domain.UserSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.Token] = *session
	return nil
}

// GetSession retrieves a session by token.
func (s *SessionStore) GetSession(_ context.Context, token string) (*domain.UserSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[token]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &session, nil
}

// DeleteSession removes a session.
func (s *SessionStore) DeleteSession(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[token]; !ok {
		return domain.ErrNotFound
	}
	delete(s.sessions, token)
	return nil
}

// DeleteExpiredSessions removes sessions that expired before the cutoff.
func (s *SessionStore) DeleteExpiredSessions(_ context.Context, cutoff time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for token, session := range s.sessions {
		if !session.ExpiresAt.IsZero() && session.ExpiresAt.Before(cutoff) {
			delete(s.sessions, token)
			removed++
		}
	}
	return removed, nil
}

// QuerySessionStore is an in-memory implementation of driven.QuerySessionStore.
type QuerySessionStore struct {
	mu      sync.RWMutex
	queries []domain.QuerySession
}

// NewQuerySessionStore creates a new in-memory query session store.
func NewQuerySessionStore() *QuerySessionStore {
	return &QuerySessionStore{}
}

// SaveQuerySession stores one answered question.
func (s *QuerySessionStore) SaveQuerySession(_ context.Context, qs *domain.QuerySession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queries = append(s.queries, *qs)
	return nil
}

// ListQuerySessions returns the most recent questions for a session token, newest first.
func (s *QuerySessionStore) ListQuerySessions(
	_ context.Context, sessionToken string, limit int,
) ([]domain.QuerySession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]domain.QuerySession, 0)
	for _, qs := range s.queries {
		if qs.SessionToken == sessionToken {
			result = append(result, qs)
		}
	}
	sort.SliceStable(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}
