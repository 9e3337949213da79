package diary

import (
	"context"
	"strings"
	"time"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
)

// Auther coordinates the credential store, token codec, and revocation store
// for the register/login/refresh/logout/current-user flows. It depends on the
// narrow store interfaces only.
type Auther struct {
	users   CredentialStore
	revoked RevocationStore
	tokens  TokenService
	cfg     Config
	logger  Logger
}

// NewAuthenticator returns a new Auther
func NewAuthenticator(users CredentialStore, revoked RevocationStore, cfg Config) *Auther {
	return &Auther{
		users:   users,
		revoked: revoked,
		tokens:  NewTokenService(cfg, defLogger{}),
		cfg:     cfg,
		logger:  defLogger{},
	}
}

func (s *Auther) WithLogger(logger Logger) *Auther {
	s.logger = logger
	s.tokens = NewTokenService(s.cfg, logger)
	return s
}

// WithTokenService sets a custom token codec.
func (s *Auther) WithTokenService(tokens TokenService) *Auther {
	s.tokens = tokens
	return s
}

// TokenService returns the token codec used by this Auther
func (s *Auther) TokenService() TokenService {
	return s.tokens
}

// RegisterInput is the registration payload after transport-level binding.
type RegisterInput struct {
	Email           string
	Name            string
	Password        string
	PasswordConfirm string
}

// Register creates an account. The plaintext password and the resulting hash
// never appear in logs or return payloads.
func (s *Auther) Register(ctx context.Context, input RegisterInput) (*User, error) {
	email := NormalizeEmail(input.Email)

	if input.Password == "" {
		return nil, ErrNoEmptyString
	}

	if input.Password != input.PasswordConfirm {
		return nil, NewValidation("passwords do not match", map[string]any{
			"password_confirm": "must match password",
		})
	}

	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.IsNotFound(err) {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to check existing email")
	}

	hash, err := HashPassword(input.Password)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to hash password")
	}

	user := &User{
		Email:        email,
		Name:         input.Name,
		PasswordHash: hash,
		IsActive:     true,
	}

	// Deterministic id from the email keeps registrations idempotent across
	// retries; fall back to a random id if derivation fails.
	if id, err := hashid.NewUUID(email); err == nil {
		user.ID = id
	} else {
		user.ID = uuid.New()
	}

	created, err := s.users.Create(ctx, user)
	if err != nil {
		return nil, err
	}

	s.logger.Info("registered user %s", created.ID.String())
	return created, nil
}

// Login verifies credentials and issues a fresh access+refresh pair. Unknown
// email and wrong password produce the identical error so accounts cannot be
// enumerated.
func (s *Auther) Login(ctx context.Context, email, password string) (*TokenPair, error) {
	user, err := s.users.FindByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if errors.IsNotFound(err) {
			return nil, ErrInvalidCredentials
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to load user during login")
	}

	if !user.IsActive || !VerifyPassword(password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	now := time.Now()
	if _, err := s.users.UpdateFields(ctx, user.ID, UserPatch{LastLoginAt: &now}); err != nil {
		s.logger.Warn("failed to track login time: %v", err)
	}

	return s.issuePair(user.ID.String())
}

// Refresh rotates a refresh token: the presented token's id is revoked (keyed
// to that token's own expiry) before a brand new pair is issued. Replaying a
// consumed refresh token fails, and of two concurrent calls with the same
// token at most one succeeds.
func (s *Auther) Refresh(ctx context.Context, rawRefresh string) (*TokenPair, error) {
	if rawRefresh == "" {
		return nil, ErrNotAuthenticated
	}

	claims, err := s.tokens.Decode(rawRefresh, TokenTypeRefresh)
	if err != nil {
		return nil, err
	}

	jti := claims.TokenID()
	if jti == "" {
		return nil, ErrTokenInvalid
	}

	if revoked, err := s.revoked.IsRevoked(ctx, jti); err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to check revocation")
	} else if revoked {
		return nil, ErrTokenRevoked
	}

	uid, err := claims.UserID()
	if err != nil {
		return nil, ErrTokenInvalid
	}

	user, err := s.users.FindByID(ctx, uid)
	if err != nil {
		if errors.IsNotFound(err) {
			return nil, ErrNotAuthenticated
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to load user during refresh")
	}
	if !user.IsActive {
		return nil, ErrNotAuthenticated
	}

	// Single-writer gate: the revocation entry expires exactly when the
	// token itself would have.
	ok, err := s.revoked.RevokeNX(ctx, jti, claims.Expires())
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to rotate refresh token")
	}
	if !ok {
		return nil, ErrTokenRevoked
	}

	return s.issuePair(user.ID.String())
}

// LogoutResult reports which token ids a best-effort logout revoked. Callers
// may ignore it.
type LogoutResult struct {
	AccessRevoked  bool
	RefreshRevoked bool
}

// Logout revokes whatever tokens are presented, both the access and the
// refresh id when available, each keyed to its own expiry. Decode and store
// failures are swallowed: logging out with an already invalid token still
// succeeds.
func (s *Auther) Logout(ctx context.Context, rawAccess, rawRefresh string) LogoutResult {
	result := LogoutResult{}

	if rawRefresh != "" {
		if claims, err := s.tokens.Decode(rawRefresh, TokenTypeRefresh); err == nil && claims.TokenID() != "" {
			if err := s.revoked.Revoke(ctx, claims.TokenID(), claims.Expires()); err != nil {
				s.logger.Warn("logout failed to revoke refresh token: %v", err)
			} else {
				result.RefreshRevoked = true
			}
		}
	}

	if rawAccess != "" {
		if claims, err := s.tokens.Decode(rawAccess, TokenTypeAccess); err == nil && claims.TokenID() != "" {
			if err := s.revoked.Revoke(ctx, claims.TokenID(), claims.Expires()); err != nil {
				s.logger.Warn("logout failed to revoke access token: %v", err)
			} else {
				result.AccessRevoked = true
			}
		}
	}

	return result
}

// CurrentUser resolves the subject of an access token, rejecting missing,
// invalid, revoked, and id-less tokens, and subjects that no longer resolve
// to an active account.
func (s *Auther) CurrentUser(ctx context.Context, rawAccess string) (*User, error) {
	if rawAccess == "" {
		return nil, ErrNotAuthenticated
	}

	claims, err := s.tokens.Decode(rawAccess, TokenTypeAccess)
	if err != nil {
		return nil, err
	}

	jti := claims.TokenID()
	if jti == "" {
		return nil, ErrTokenInvalid
	}

	if revoked, err := s.revoked.IsRevoked(ctx, jti); err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to check revocation")
	} else if revoked {
		return nil, ErrTokenRevoked
	}

	uid, err := claims.UserID()
	if err != nil {
		return nil, ErrTokenInvalid
	}

	user, err := s.users.FindByID(ctx, uid)
	if err != nil {
		if errors.IsNotFound(err) {
			return nil, ErrNotAuthenticated
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to load current user")
	}
	if !user.IsActive {
		return nil, ErrNotAuthenticated
	}

	return user, nil
}

func (s *Auther) issuePair(subject string) (*TokenPair, error) {
	accessTTL := AccessTTL(s.cfg)

	access, _, err := s.tokens.Issue(subject, TokenTypeAccess, accessTTL)
	if err != nil {
		return nil, err
	}

	refresh, _, err := s.tokens.Issue(subject, TokenTypeRefresh, RefreshTTL(s.cfg))
	if err != nil {
		return nil, err
	}

	return &TokenPair{
		TokenType:    "bearer",
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int(accessTTL / time.Second),
	}, nil
}

// NormalizeEmail lowers and trims an email so lookups stay case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
