package diary

import (
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenType discriminates the two session token kinds. The type is part of
// the signed payload: an access token presented where a refresh is required
// is rejected after decode, independent of signature validity.
type TokenType string

const (
	TokenTypeAccess  TokenType = "access"
	TokenTypeRefresh TokenType = "refresh"
)

func (t TokenType) Valid() bool {
	return t == TokenTypeAccess || t == TokenTypeRefresh
}

// SessionClaims is the signed token payload: subject, type, unique id,
// issued-at, and expiry.
type SessionClaims struct {
	jwt.RegisteredClaims
	Typ TokenType `json:"typ,omitempty"`
}

// UserID parses the subject as a user id.
func (c *SessionClaims) UserID() (uuid.UUID, error) {
	return uuid.Parse(c.RegisteredClaims.Subject)
}

// TokenID returns the jti.
func (c *SessionClaims) TokenID() string {
	return c.RegisteredClaims.ID
}

// Expires returns the expiry as an absolute time.
func (c *SessionClaims) Expires() time.Time {
	if c.RegisteredClaims.ExpiresAt != nil {
		return c.RegisteredClaims.ExpiresAt.Time
	}
	return time.Time{}
}

// Issued returns the issued-at as an absolute time.
func (c *SessionClaims) Issued() time.Time {
	if c.RegisteredClaims.IssuedAt != nil {
		return c.RegisteredClaims.IssuedAt.Time
	}
	return time.Time{}
}

// newTokenID generates a fresh random jti: a v4 UUID in compact hex form.
func newTokenID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

func ensureTokenID(claims *jwt.RegisteredClaims) {
	if claims.ID == "" {
		claims.ID = newTokenID()
	}
}
