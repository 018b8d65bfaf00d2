package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Muhammadasif1986/ai-diven-book/internal/core/domain"
	"github.com/Muhammadasif1986/ai-diven-book/internal/core/ports/driven"
	"github.com/Muhammadasif1986/ai-diven-book/internal/core/ports/driving"
	"github.com/Muhammadasif1986/ai-diven-book/internal/logger"
)

// Ensure SessionService implements the interface.
var _ driving.SessionService = (*SessionService)(nil)

// DefaultHistoryLimit caps History when no limit is given.
const DefaultHistoryLimit = 20

// SessionService manages chat sessions.
type SessionService struct {
	store   driven.SessionStore
	queries driven.QuerySessionStore
	now     func() time.Time
}

// NewSessionService creates a new session service.
// The queries store is optional; without it History is always empty.
func NewSessionService(store driven.SessionStore, queries driven.QuerySessionStore) *SessionService {
	return &SessionService{
		store:   store,
		queries: queries,
		now:     time.Now,
	}
}

// Create starts a new session valid for domain.SessionTTL.
func (s *SessionService) Create(ctx context.Context, authenticated bool, userID string) (*domain.UserSession, error) {
	now := s.now()
	session := &domain.UserSession{
		Token:           newSessionToken(),
		IsAuthenticated: authenticated,
		UserID:          userID,
		CreatedAt:       now,
		LastActivityAt:  now,
		ExpiresAt:       now.Add(domain.SessionTTL),
	}

	if err := s.store.SaveSession(ctx, session); err != nil {
		return nil, fmt.Errorf("%w: save session: %w", domain.ErrStorage, err)
	}
	logger.Debug("Created session %s", session.Token)
	return session, nil
}

// Get returns a live session and touches its last activity time.
// An expired session is removed and reported as domain.ErrSessionExpired.
func (s *SessionService) Get(ctx context.Context, token string) (*domain.UserSession, error) {
	session, err := s.store.GetSession(ctx, token)
	if err != nil {
		return nil, err
	}

	now := s.now()
	if session.Expired(now) {
		if err := s.store.DeleteSession(ctx, token); err != nil && !errors.Is(err, domain.ErrNotFound) {
			logger.Warn("Failed to remove expired session: %v", err)
		}
		return nil, domain.ErrSessionExpired
	}

	session.LastActivityAt = now
	if err := s.store.SaveSession(ctx, session); err != nil {
		logger.Warn("Failed to record session activity: %v", err)
	}
	return session, nil
}

// Validate reports whether the token names a live session.
func (s *SessionService) Validate(ctx context.Context, token string) bool {
	if strings.TrimSpace(token) == "" {
		return false
	}
	_, err := s.Get(ctx, token)
	return err == nil
}

// Extend moves the expiry a full session lifetime past now.
func (s *SessionService) Extend(ctx context.Context, token string) (*domain.UserSession, error) {
	session, err := s.Get(ctx, token)
	if err != nil {
		return nil, err
	}

	session.ExpiresAt = s.now().Add(domain.SessionTTL)
	if err := s.store.SaveSession(ctx, session); err != nil {
		return nil, fmt.Errorf("%w: save session: %w", domain.ErrStorage, err)
	}
	return session, nil
}

// Delete ends a session.
func (s *SessionService) Delete(ctx context.Context, token string) error {
	return s.store.DeleteSession(ctx, token)
}

// CleanupExpired removes every session past its expiry.
func (s *SessionService) CleanupExpired(ctx context.Context) (int, error) {
	n, err := s.store.DeleteExpiredSessions(ctx, s.now())
	if err != nil {
		return 0, fmt.Errorf("%w: cleanup sessions: %w", domain.ErrStorage, err)
	}
	if n > 0 {
		logger.Info("Removed %d expired sessions", n)
	}
	return n, nil
}

// History returns the most recent answered questions for a session.
func (s *SessionService) History(ctx context.Context, token string, limit int) ([]domain.QuerySession, error) {
	if s.queries == nil {
		return []domain.QuerySession{}, nil
	}
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return s.queries.ListQuerySessions(ctx, token, limit)
}

// newSessionToken returns "sess_" followed by 32 hex characters.
func newSessionToken() string {
	return domain.SessionTokenPrefix + strings.ReplaceAll(uuid.NewString(), "-", "")
}
