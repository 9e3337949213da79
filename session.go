package diary

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
)

// Session cookie names. Each cookie carries exactly one token kind.
const (
	CookieAccessToken  = "access_token"
	CookieRefreshToken = "refresh_token"
)

// SessionTransport binds token pairs to HTTP: http-only cookies on the way
// out, bearer-header-then-cookie on the way in.
type SessionTransport struct {
	cfg Config
}

func NewSessionTransport(cfg Config) *SessionTransport {
	return &SessionTransport{cfg: cfg}
}

// SetSessionCookies delivers both tokens as cookies. Max age matches each
// token's TTL; SameSite is Lax; Secure and Domain come from config.
func (t *SessionTransport) SetSessionCookies(c *fiber.Ctx, pair *TokenPair) {
	t.setCookie(c, CookieAccessToken, pair.AccessToken, AccessTTL(t.cfg))
	t.setCookie(c, CookieRefreshToken, pair.RefreshToken, RefreshTTL(t.cfg))
}

// ClearSessionCookies expires both cookies immediately.
func (t *SessionTransport) ClearSessionCookies(c *fiber.Ctx) {
	t.deleteCookie(c, CookieAccessToken)
	t.deleteCookie(c, CookieRefreshToken)
}

// ExtractToken reads the raw token of the given kind from the request: the
// bearer header when present, else the matching cookie. The bearer header
// wins at every extraction point.
func (t *SessionTransport) ExtractToken(c *fiber.Ctx, typ TokenType) string {
	if bearer := BearerToken(c); bearer != "" {
		return bearer
	}

	switch typ {
	case TokenTypeRefresh:
		return c.Cookies(CookieRefreshToken)
	default:
		return c.Cookies(CookieAccessToken)
	}
}

// BearerToken returns the Authorization bearer credential, or "".
func BearerToken(c *fiber.Ctx) string {
	header := c.Get(fiber.HeaderAuthorization)
	if header == "" {
		return ""
	}

	const prefix = "bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return ""
	}

	return strings.TrimSpace(header[len(prefix):])
}

func (t *SessionTransport) setCookie(c *fiber.Ctx, name, value string, ttl time.Duration) {
	c.Cookie(&fiber.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Domain:   t.cfg.GetCookieDomain(),
		MaxAge:   int(ttl / time.Second),
		Expires:  time.Now().Add(ttl),
		HTTPOnly: true,
		Secure:   t.cfg.GetCookieSecure(),
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

func (t *SessionTransport) deleteCookie(c *fiber.Ctx, name string) {
	c.Cookie(&fiber.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		Domain:   t.cfg.GetCookieDomain(),
		MaxAge:   -1,
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
		Secure:   t.cfg.GetCookieSecure(),
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}
