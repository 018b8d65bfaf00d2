package driving

import (
	"context"

	"github.com/Muhammadasif1986/ai-diven-book/internal/core/domain"
)

// SessionService manages chat sessions.
type SessionService interface {
	// Create starts a new session and returns it.
	Create(ctx context.Context, authenticated bool, userID string) (*domain.UserSession, error)

	// Get returns an unexpired session. Expired sessions report domain.ErrSessionExpired.
	Get(ctx context.Context, token string) (*domain.UserSession, error)

	// Validate reports whether the token names a live session.
	Validate(ctx context.Context, token string) bool

	// Extend pushes the expiry out by a full session lifetime.
	Extend(ctx context.Context, token string) (*domain.UserSession, error)

	// Delete ends a session.
	Delete(ctx context.Context, token string) error

	// CleanupExpired removes expired sessions and returns how many were removed.
	CleanupExpired(ctx context.Context) (int, error)

	// History returns the most recent answered questions for a session.
	History(ctx context.Context, token string, limit int) ([]domain.QuerySession, error)
}
