package services

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Muhammadasif1986/ai-diven-book/internal/adapters/driven/storage/memory"
	"github.com/Muhammadasif1986/ai-diven-book/internal/core/domain"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newSessionFixture() (*SessionService, *memory.SessionStore, *memory.QuerySessionStore, *fakeClock) {
	store := memory.NewSessionStore()
	queries := memory.NewQuerySessionStore()
	clock := &fakeClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	svc := NewSessionService(store, queries)
	svc.now = clock.Now
	return svc, store, queries, clock
}

func TestSessionService_Create(t *testing.T) {
	svc, store, _, clock := newSessionFixture()
	ctx := context.Background()

	session, err := svc.Create(ctx, true, "user-1")
	require.NoError(t, err)

	assert.Regexp(t, regexp.MustCompile(`^sess_[0-9a-f]{32}$`), session.Token)
	assert.NoError(t, domain.ValidateSessionToken(session.Token))
	assert.True(t, session.IsAuthenticated)
	assert.Equal(t, "user-1", session.UserID)
	assert.Equal(t, clock.now.Add(domain.SessionTTL), session.ExpiresAt)

	stored, err := store.GetSession(ctx, session.Token)
	require.NoError(t, err)
	assert.Equal(t, session.Token, stored.Token)

	other, err := svc.Create(ctx, false, "")
	require.NoError(t, err)
	assert.NotEqual(t, session.Token, other.Token)
}

func TestSessionService_GetTouchesActivity(t *testing.T) {
	svc, _, _, clock := newSessionFixture()
	ctx := context.Background()

	session, err := svc.Create(ctx, false, "")
	require.NoError(t, err)

	clock.Advance(time.Hour)
	got, err := svc.Get(ctx, session.Token)
	require.NoError(t, err)
	assert.Equal(t, clock.now, got.LastActivityAt)
	assert.Equal(t, session.ExpiresAt, got.ExpiresAt)
}

func TestSessionService_Expiry(t *testing.T) {
	svc, store, _, clock := newSessionFixture()
	ctx := context.Background()

	session, err := svc.Create(ctx, false, "")
	require.NoError(t, err)

	clock.Advance(domain.SessionTTL)
	_, err = svc.Get(ctx, session.Token)
	assert.ErrorIs(t, err, domain.ErrSessionExpired)
	assert.False(t, svc.Validate(ctx, session.Token))

	_, err = store.GetSession(ctx, session.Token)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSessionService_Extend(t *testing.T) {
	svc, _, _, clock := newSessionFixture()
	ctx := context.Background()

	session, err := svc.Create(ctx, false, "")
	require.NoError(t, err)

	clock.Advance(20 * time.Hour)
	extended, err := svc.Extend(ctx, session.Token)
	require.NoError(t, err)
	assert.Equal(t, clock.now.Add(domain.SessionTTL), extended.ExpiresAt)

	clock.Advance(10 * time.Hour)
	assert.True(t, svc.Validate(ctx, session.Token))
}

func TestSessionService_ValidateUnknown(t *testing.T) {
	svc, _, _, _ := newSessionFixture()
	ctx := context.Background()

	assert.False(t, svc.Validate(ctx, ""))
	assert.False(t, svc.Validate(ctx, "sess_missing000000"))

	_, err := svc.Extend(ctx, "sess_missing000000")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSessionService_DeleteAndCleanup(t *testing.T) {
	svc, _, _, clock := newSessionFixture()
	ctx := context.Background()

	a, err := svc.Create(ctx, false, "")
	require.NoError(t, err)
	clock.Advance(12 * time.Hour)
	b, err := svc.Create(ctx, false, "")
	require.NoError(t, err)
	c, err := svc.Create(ctx, false, "")
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, c.Token))
	assert.ErrorIs(t, svc.Delete(ctx, c.Token), domain.ErrNotFound)

	clock.Advance(13 * time.Hour)
	n, err := svc.CleanupExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	assert.False(t, svc.Validate(ctx, a.Token))
	assert.True(t, svc.Validate(ctx, b.Token))
}

func TestSessionService_History(t *testing.T) {
	svc, _, queries, clock := newSessionFixture()
	ctx := context.Background()

	for i, q := range []string{"first question", "second question", "third question"} {
		require.NoError(t, queries.SaveQuerySession(ctx, &domain.QuerySession{
			ID:           string(rune('a' + i)),
			SessionToken: "sess_history0001",
			Question:     q,
			CreatedAt:    clock.now.Add(time.Duration(i) * time.Minute),
		}))
	}

	history, err := svc.History(ctx, "sess_history0001", 2)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "third question", history[0].Question)

	history, err = svc.History(ctx, "sess_history0001", 0)
	require.NoError(t, err)
	assert.Len(t, history, 3)

	bare := NewSessionService(memory.NewSessionStore(), nil)
	history, err = bare.History(ctx, "sess_history0001", 5)
	require.NoError(t, err)
	assert.Empty(t, history)
}
