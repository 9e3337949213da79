package diary

import "time"

// Config holds the auth and cookie options the token codec and session
// transport need. It is read-only: build it once at process start and inject
// it, do not mutate it afterwards.
type Config interface {
	GetSigningKey() string
	GetSigningMethod() string
	GetAccessTokenMinutes() int
	GetRefreshTokenDays() int
	GetIssuer() string
	GetCookieSecure() bool
	GetCookieDomain() string
}

// StaticConfig is the immutable value implementation of Config.
type StaticConfig struct {
	SigningKey         string
	SigningMethod      string
	AccessTokenMinutes int
	RefreshTokenDays   int
	Issuer             string
	CookieSecure       bool
	CookieDomain       string
}

// DefaultConfig returns the recognized defaults: HS256, 60 minute access
// tokens, 7 day refresh tokens.
func DefaultConfig() StaticConfig {
	return StaticConfig{
		SigningMethod:      "HS256",
		AccessTokenMinutes: 60,
		RefreshTokenDays:   7,
	}
}

func (c StaticConfig) GetSigningKey() string { return c.SigningKey }

func (c StaticConfig) GetSigningMethod() string {
	if c.SigningMethod == "" {
		return "HS256"
	}
	return c.SigningMethod
}

func (c StaticConfig) GetAccessTokenMinutes() int {
	if c.AccessTokenMinutes <= 0 {
		return 60
	}
	return c.AccessTokenMinutes
}

func (c StaticConfig) GetRefreshTokenDays() int {
	if c.RefreshTokenDays <= 0 {
		return 7
	}
	return c.RefreshTokenDays
}

func (c StaticConfig) GetIssuer() string { return c.Issuer }

func (c StaticConfig) GetCookieSecure() bool { return c.CookieSecure }

func (c StaticConfig) GetCookieDomain() string { return c.CookieDomain }

// AccessTTL is the configured access token lifetime.
func AccessTTL(cfg Config) time.Duration {
	return time.Duration(cfg.GetAccessTokenMinutes()) * time.Minute
}

// RefreshTTL is the configured refresh token lifetime.
func RefreshTTL(cfg Config) time.Duration {
	return time.Duration(cfg.GetRefreshTokenDays()) * 24 * time.Hour
}

var _ Config = StaticConfig{}
