package diary

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

// CredentialStore persists user records. FindByEmail is case-insensitive.
type CredentialStore interface {
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)
	Create(ctx context.Context, user *User) (*User, error)
	UpdateFields(ctx context.Context, id uuid.UUID, patch UserPatch) (*User, error)
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
}

// RevocationStore tracks revoked token ids until their natural expiry.
type RevocationStore interface {
	// Revoke upserts an entry; revoking an already revoked id takes the
	// latest expiry.
	Revoke(ctx context.Context, jti string, expiresAt time.Time) error
	// RevokeNX records the id only if it is not already revoked. It returns
	// false when a live entry exists, which makes it the single-writer gate
	// for refresh rotation: of two concurrent calls with the same id exactly
	// one observes true.
	RevokeNX(ctx context.Context, jti string, expiresAt time.Time) (bool, error)
	// IsRevoked reports a hit only while the recorded expiry is in the
	// future. Entries past expiry read as absent even before a purge runs.
	IsRevoked(ctx context.Context, jti string) (bool, error)
	// PurgeExpired deletes every entry with expires_at <= now and returns the
	// number removed. Safe to call concurrently and repeatedly.
	PurgeExpired(ctx context.Context, now time.Time) (int, error)
}

// TokenService signs and verifies the compact session tokens.
type TokenService interface {
	Issue(subject string, typ TokenType, ttl time.Duration) (string, *SessionClaims, error)
	// Decode verifies signature and expiry, then checks the embedded type.
	// Signature, format, expiry, and type failures all surface as auth
	// category errors so callers cannot leak which one occurred.
	Decode(raw string, expected TokenType) (*SessionClaims, error)
}

// Summarizer and Analyzer describe the AI capability consumed by the diary
// endpoints. Implementations may be rule based or model backed.
type Summarizer interface {
	Summarize(ctx context.Context, title, content string) (string, error)
}

type Analyzer interface {
	Analyze(ctx context.Context, text string) (emotion string, keywords []string, err error)
}

type AIProvider interface {
	Summarizer
	Analyzer
}

type defLogger struct{}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Printf("[DBG] DIARY "+newline(format), args...)
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Printf("[INF] DIARY "+newline(format), args...)
}

func (d defLogger) Warn(format string, args ...any) {
	fmt.Printf("[WRN] DIARY "+newline(format), args...)
}

func (d defLogger) Error(format string, args ...any) {
	fmt.Printf("[ERR] DIARY "+newline(format), args...)
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}
