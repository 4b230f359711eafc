package server

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/teamwell/staffd/internal/auth"
	"github.com/teamwell/staffd/internal/errs"
	"github.com/teamwell/staffd/internal/models"
	"github.com/teamwell/staffd/internal/roles"
	"github.com/teamwell/staffd/internal/store"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	User      meView    `json:"user"`
}

type meView struct {
	UserID uuid.UUID         `json:"userId"`
	OrgID  *uuid.UUID        `json:"orgId,omitempty"`
	Email  string            `json:"email"`
	Name   string            `json:"name"`
	Role   roles.Role        `json:"role"`
	Status models.UserStatus `json:"status"`
	Title  string            `json:"title,omitempty"`
}

func newMeView(user *models.User) meView {
	return meView{
		UserID: user.UserID,
		OrgID:  user.OrgID,
		Email:  user.Email,
		Name:   user.Name,
		Role:   user.Role,
		Status: user.Status,
		Title:  user.Title,
	}
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	if req.Email == "" || req.Password == "" {
		writeError(w, r, errs.Validation("Email and password are required"))
		return
	}

	ctx := r.Context()

	user, err := s.stores.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		// Run the hash comparison anyway so unknown emails cost the same
		// as wrong passwords.
		_ = bcrypt.CompareHashAndPassword([]byte("$2a$10$000000000000000000000u1111111111111111111111111111111"), []byte(req.Password))
		writeError(w, r, &errs.Error{Kind: errs.KindUnauthenticated, Msg: "Invalid email or password"})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		writeError(w, r, &errs.Error{Kind: errs.KindUnauthenticated, Msg: "Invalid email or password"})
		return
	}

	if user.IsTerminated() {
		writeError(w, r, &errs.Error{Kind: errs.KindUnauthenticated, Msg: "Invalid email or password"})
		return
	}

	now := time.Now()
	session := &models.Session{
		SessionID:  uuid.Must(uuid.NewV7()),
		UserID:     user.UserID,
		OrgID:      user.OrgID,
		CreatedAt:  now,
		ExpiresAt:  now.Add(s.cfg.SessionTTL),
		LastUsedAt: now,
		UserAgent:  r.UserAgent(),
		IPAddress:  r.RemoteAddr,
	}
	if err := s.stores.Sessions.Create(ctx, session); err != nil {
		writeError(w, r, errs.Internal(err))
		return
	}

	token, err := s.tokens.Issue(user.UserID, user.OrgID, session.SessionID, session.ExpiresAt)
	if err != nil {
		writeError(w, r, errs.Internal(err))
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookieName,
		Value:    token,
		Path:     "/",
		Expires:  session.ExpiresAt,
		HttpOnly: true,
		Secure:   s.cfg.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})

	zerolog.Ctx(ctx).Info().Str("user_id", user.UserID.String()).Msg("Login")

	writeJSON(w, http.StatusOK, loginResponse{
		Token:     token,
		ExpiresAt: session.ExpiresAt,
		User:      newMeView(user),
	})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	viewer, err := auth.ViewerFromContext(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := s.stores.Sessions.Delete(r.Context(), viewer.SessionID); err != nil && err != store.ErrSessionNotFound {
		writeError(w, r, errs.Internal(err))
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.cfg.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})

	writeJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	viewer, err := auth.ViewerFromContext(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	user, err := s.stores.Users.Get(r.Context(), viewer.UserID)
	if err != nil {
		writeError(w, r, errs.Internal(err))
		return
	}

	writeJSON(w, http.StatusOK, newMeView(user))
}
