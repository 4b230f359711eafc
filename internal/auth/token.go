// Package auth implements session token issuing and verification plus the
// HTTP middleware that resolves a request to a Viewer.
package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenCodec signs and verifies session tokens. Tokens carry only ids;
// role and status are always re-read from storage on each request so
// revocation takes effect immediately.
type TokenCodec struct {
	secret []byte
	issuer string
}

// NewTokenCodec creates a codec with the given HMAC signing secret.
func NewTokenCodec(secret []byte) (*TokenCodec, error) {
	if len(secret) < 32 {
		return nil, fmt.Errorf("signing secret must be at least 32 bytes, got %d", len(secret))
	}

	return &TokenCodec{
		secret: secret,
		issuer: "staffd",
	}, nil
}

// TokenClaims is what a verified session token resolves to.
type TokenClaims struct {
	UserID    uuid.UUID
	OrgID     *uuid.UUID
	SessionID uuid.UUID
}

type sessionClaims struct {
	OrgID     string `json:"org,omitempty"`
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

// Issue creates a signed token bound to the given session.
func (c *TokenCodec) Issue(userID uuid.UUID, orgID *uuid.UUID, sessionID uuid.UUID, expiresAt time.Time) (string, error) {
	claims := sessionClaims{
		SessionID: sessionID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    c.issuer,
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	if orgID != nil {
		claims.OrgID = orgID.String()
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signed, err := token.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return signed, nil
}

// Verify parses and validates a signed token, returning its claims.
func (c *TokenCodec) Verify(tokenString string) (*TokenClaims, error) {
	var claims sessionClaims
	_, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return c.secret, nil
	}, jwt.WithIssuer(c.issuer), jwt.WithExpirationRequired())
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, fmt.Errorf("invalid subject claim: %w", err)
	}

	sessionID, err := uuid.Parse(claims.SessionID)
	if err != nil {
		return nil, fmt.Errorf("invalid session claim: %w", err)
	}

	result := &TokenClaims{
		UserID:    userID,
		SessionID: sessionID,
	}

	if claims.OrgID != "" {
		orgID, err := uuid.Parse(claims.OrgID)
		if err != nil {
			return nil, fmt.Errorf("invalid org claim: %w", err)
		}
		result.OrgID = &orgID
	}

	return result, nil
}
