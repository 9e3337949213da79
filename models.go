package diary

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// User is the account model. The password hash never serializes.
type User struct {
	bun.BaseModel `bun:"table:users,alias:usr"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Email         string     `bun:"email,notnull,unique" json:"email,omitempty"`
	Name          string     `bun:"name,notnull" json:"name,omitempty"`
	Nickname      string     `bun:"nickname" json:"nickname,omitempty"`
	Phone         string     `bun:"phone_number" json:"phone_number,omitempty"`
	PasswordHash  string     `bun:"password_hash,notnull" json:"-"`
	IsActive      bool       `bun:"is_active,notnull,default:true" json:"is_active"`
	IsVerified    bool       `bun:"is_verified,notnull,default:false" json:"is_verified"`
	LastLoginAt   *time.Time `bun:"last_login_at,nullzero" json:"last_login_at,omitempty"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
}

// UserPatch carries the mutable profile fields; nil means leave unchanged.
type UserPatch struct {
	Name         *string
	Nickname     *string
	Phone        *string
	PasswordHash *string
	IsVerified   *bool
	LastLoginAt  *time.Time
}

// Empty reports whether the patch would change nothing.
func (p UserPatch) Empty() bool {
	return p.Name == nil && p.Nickname == nil && p.Phone == nil &&
		p.PasswordHash == nil && p.IsVerified == nil && p.LastLoginAt == nil
}

// RevokedToken is one blacklist entry: a token id and the moment the entry
// stops mattering. The jti is the primary key so upserts stay a single
// ON CONFLICT statement.
type RevokedToken struct {
	bun.BaseModel `bun:"table:revoked_tokens,alias:rvt"`
	JTI           string     `bun:"jti,pk" json:"jti"`
	ExpiresAt     time.Time  `bun:"expires_at,notnull" json:"expires_at"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
}

// TokenPair is one conceptual auth session: an access token and the refresh
// token issued with it. ExpiresIn is the access TTL in seconds.
type TokenPair struct {
	TokenType    string `json:"token_type"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	ExpiresIn    int    `json:"expires_in"`
}
