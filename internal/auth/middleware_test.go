package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/teamwell/staffd/internal/models"
	"github.com/teamwell/staffd/internal/roles"
	"github.com/teamwell/staffd/internal/store/memory"
)

type authFixture struct {
	middleware *Middleware
	codec      *TokenCodec
	user       *models.User
	session    *models.Session
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()

	codec, err := NewTokenCodec(testSecret)
	require.NoError(t, err)

	users := memory.NewUserStore()
	sessions := memory.NewSessionStore()

	orgID := uuid.Must(uuid.NewV7())
	now := time.Now()

	user := &models.User{
		UserID:       uuid.Must(uuid.NewV7()),
		OrgID:        &orgID,
		Email:        "worker@example.com",
		PasswordHash: "x",
		Name:         "Worker",
		Role:         roles.RoleHRAdmin,
		Status:       models.UserStatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	require.NoError(t, users.Create(t.Context(), user))

	session := &models.Session{
		SessionID:  uuid.Must(uuid.NewV7()),
		UserID:     user.UserID,
		OrgID:      &orgID,
		CreatedAt:  now,
		ExpiresAt:  now.Add(time.Hour),
		LastUsedAt: now,
	}
	require.NoError(t, sessions.Create(t.Context(), session))

	return &authFixture{
		middleware: NewMiddleware(codec, sessions, users),
		codec:      codec,
		user:       user,
		session:    session,
	}
}

func (f *authFixture) issueToken(t *testing.T) string {
	t.Helper()
	token, err := f.codec.Issue(f.user.UserID, f.user.OrgID, f.session.SessionID, f.session.ExpiresAt)
	require.NoError(t, err)
	return token
}

func TestAuthenticate(t *testing.T) {
	echo := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		viewer, err := ViewerFromContext(r.Context())
		require.NoError(t, err)
		require.Equal(t, roles.RoleHRAdmin, viewer.Role)
		w.WriteHeader(http.StatusOK)
	})

	t.Run("valid bearer token", func(t *testing.T) {
		f := newAuthFixture(t)
		handler := f.middleware.Authenticate(echo)

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+f.issueToken(t))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("valid cookie", func(t *testing.T) {
		f := newAuthFixture(t)
		handler := f.middleware.Authenticate(echo)

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: f.issueToken(t)})
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("missing token", func(t *testing.T) {
		f := newAuthFixture(t)
		handler := f.middleware.Authenticate(echo)

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("revoked session", func(t *testing.T) {
		f := newAuthFixture(t)
		handler := f.middleware.Authenticate(echo)
		token := f.issueToken(t)

		_, err := f.middleware.sessions.DeleteByUser(t.Context(), f.user.UserID)
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("terminated user rejected even with live session", func(t *testing.T) {
		f := newAuthFixture(t)
		handler := f.middleware.Authenticate(echo)
		token := f.issueToken(t)

		now := time.Now()
		f.user.Status = models.UserStatusTerminated
		f.user.TerminatedAt = &now
		require.NoError(t, f.middleware.users.Update(t.Context(), f.user))

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestRequireCapability(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	t.Run("granted", func(t *testing.T) {
		handler := RequireCapability(roles.CapManageDepartments)(ok)

		viewer := &Viewer{UserID: uuid.Must(uuid.NewV7()), Role: roles.RoleHRAdmin}
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req = req.WithContext(WithViewer(req.Context(), viewer))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("denied for employee", func(t *testing.T) {
		handler := RequireCapability(roles.CapManageDepartments)(ok)

		viewer := &Viewer{UserID: uuid.Must(uuid.NewV7()), Role: roles.RoleEmployee}
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req = req.WithContext(WithViewer(req.Context(), viewer))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		require.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("unauthenticated", func(t *testing.T) {
		handler := RequireCapability(roles.CapManageDepartments)(ok)

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}
