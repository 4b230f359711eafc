package memory

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/teamwell/staffd/internal/models"
	"github.com/teamwell/staffd/internal/store"
)

func newTestSession(userID uuid.UUID, ttl time.Duration) *models.Session {
	now := time.Now()
	return &models.Session{
		SessionID:  uuid.Must(uuid.NewV7()),
		UserID:     userID,
		CreatedAt:  now,
		ExpiresAt:  now.Add(ttl),
		LastUsedAt: now,
	}
}

func TestSessionStoreLifecycle(t *testing.T) {
	s := NewSessionStore()
	userID := uuid.Must(uuid.NewV7())

	session := newTestSession(userID, time.Hour)
	require.NoError(t, s.Create(t.Context(), session))

	got, err := s.Get(t.Context(), session.SessionID)
	require.NoError(t, err)
	require.Equal(t, userID, got.UserID)

	require.NoError(t, s.Delete(t.Context(), session.SessionID))

	_, err = s.Get(t.Context(), session.SessionID)
	require.ErrorIs(t, err, store.ErrSessionNotFound)

	require.ErrorIs(t, s.Delete(t.Context(), session.SessionID), store.ErrSessionNotFound)
}

func TestSessionStoreExpiry(t *testing.T) {
	s := NewSessionStore()
	userID := uuid.Must(uuid.NewV7())

	expired := newTestSession(userID, -time.Minute)
	require.NoError(t, s.Create(t.Context(), expired))

	_, err := s.Get(t.Context(), expired.SessionID)
	require.ErrorIs(t, err, store.ErrSessionExpired)

	live := newTestSession(userID, time.Hour)
	require.NoError(t, s.Create(t.Context(), live))

	removed, err := s.DeleteExpired(t.Context())
	require.NoError(t, err)
	require.Equal(t, 1, removed)

	_, err = s.Get(t.Context(), live.SessionID)
	require.NoError(t, err)
}

func TestSessionStoreDeleteByUser(t *testing.T) {
	s := NewSessionStore()
	userID := uuid.Must(uuid.NewV7())
	otherID := uuid.Must(uuid.NewV7())

	require.NoError(t, s.Create(t.Context(), newTestSession(userID, time.Hour)))
	require.NoError(t, s.Create(t.Context(), newTestSession(userID, time.Hour)))
	keep := newTestSession(otherID, time.Hour)
	require.NoError(t, s.Create(t.Context(), keep))

	removed, err := s.DeleteByUser(t.Context(), userID)
	require.NoError(t, err)
	require.Equal(t, 2, removed)

	_, err = s.Get(t.Context(), keep.SessionID)
	require.NoError(t, err)
}

func TestSessionStoreUpdateLastUsed(t *testing.T) {
	s := NewSessionStore()
	session := newTestSession(uuid.Must(uuid.NewV7()), time.Hour)
	session.LastUsedAt = time.Now().Add(-time.Hour)
	require.NoError(t, s.Create(t.Context(), session))

	require.NoError(t, s.UpdateLastUsed(t.Context(), session.SessionID))

	got, err := s.Get(t.Context(), session.SessionID)
	require.NoError(t, err)
	require.True(t, got.LastUsedAt.After(session.LastUsedAt))

	require.ErrorIs(t, s.UpdateLastUsed(t.Context(), uuid.Must(uuid.NewV7())), store.ErrSessionNotFound)
}
