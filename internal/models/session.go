package models

import (
	"time"

	"github.com/google/uuid"
)

// Session represents a user's authenticated session. The signed token
// handed to the client carries only ids; all session state lives
// server-side.
type Session struct {
	SessionID uuid.UUID // UUIDv7
	UserID    uuid.UUID
	OrgID     *uuid.UUID // denormalized from the user at login

	CreatedAt  time.Time
	ExpiresAt  time.Time
	LastUsedAt time.Time

	// Optional audit metadata
	UserAgent string
	IPAddress string
}

// IsExpired returns true if the session has expired.
func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}
