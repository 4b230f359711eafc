package auth

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/teamwell/staffd/internal/roles"
	"github.com/teamwell/staffd/internal/store"
)

// SessionCookieName is the cookie the browser client uses to carry the
// session token. API clients may send the same token as a bearer header.
const SessionCookieName = "_staffd_session"

// Middleware authenticates requests. Every request re-validates the
// session row and re-reads the user, so role changes, terminations and
// session revocation take effect on the next request.
type Middleware struct {
	codec    *TokenCodec
	sessions store.SessionStore
	users    store.UserStore
}

// NewMiddleware creates the authentication middleware.
func NewMiddleware(codec *TokenCodec, sessions store.SessionStore, users store.UserStore) *Middleware {
	return &Middleware{
		codec:    codec,
		sessions: sessions,
		users:    users,
	}
}

// Authenticate wraps a handler and requires a valid session. On success
// the resolved Viewer is placed in the request context.
func (m *Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenString := extractToken(r)
		if tokenString == "" {
			writeUnauthenticated(w)
			return
		}

		claims, err := m.codec.Verify(tokenString)
		if err != nil {
			log.Debug().Err(err).Msg("Token verification failed")
			writeUnauthenticated(w)
			return
		}

		ctx := r.Context()

		session, err := m.sessions.Get(ctx, claims.SessionID)
		if err != nil {
			log.Debug().Err(err).Str("session_id", claims.SessionID.String()).Msg("Session lookup failed")
			writeUnauthenticated(w)
			return
		}

		if session.UserID != claims.UserID {
			log.Warn().Str("session_id", claims.SessionID.String()).Msg("Session user mismatch")
			writeUnauthenticated(w)
			return
		}

		user, err := m.users.Get(ctx, claims.UserID)
		if err != nil {
			writeUnauthenticated(w)
			return
		}

		if user.IsTerminated() {
			writeUnauthenticated(w)
			return
		}

		if err := m.sessions.UpdateLastUsed(ctx, session.SessionID); err != nil {
			// Not fatal; the session was already validated.
			log.Debug().Err(err).Msg("Failed to update session last_used_at")
		}

		viewer := &Viewer{
			UserID:    user.UserID,
			OrgID:     user.OrgID,
			Role:      user.Role,
			SessionID: session.SessionID,
		}

		next.ServeHTTP(w, r.WithContext(WithViewer(ctx, viewer)))
	})
}

// RequireCapability wraps a handler and requires the viewer's role to
// grant the capability. Must run after Authenticate.
func RequireCapability(cap roles.Capability) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			viewer, err := ViewerFromContext(r.Context())
			if err != nil {
				writeUnauthenticated(w)
				return
			}

			if !viewer.Can(cap) {
				writeForbidden(w)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// extractToken pulls the session token from the cookie or, failing that,
// from a bearer authorization header.
func extractToken(r *http.Request) string {
	if cookie, err := r.Cookie(SessionCookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	header := r.Header.Get("Authorization")
	if token, found := strings.CutPrefix(header, "Bearer "); found {
		return token
	}

	return ""
}

func writeUnauthenticated(w http.ResponseWriter) {
	writeAuthError(w, http.StatusUnauthorized, "Authentication required")
}

func writeForbidden(w http.ResponseWriter) {
	writeAuthError(w, http.StatusForbidden, "You do not have permission to perform this action")
}

func writeAuthError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
