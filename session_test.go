package diary_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	diary "github.com/goliatone/go-diary"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func findCookie(resp *http.Response, name string) *http.Cookie {
	for _, cookie := range resp.Cookies() {
		if cookie.Name == name {
			return cookie
		}
	}
	return nil
}

func TestSessionTransportSetCookies(t *testing.T) {
	cfg := testConfig()
	transport := diary.NewSessionTransport(cfg)

	app := fiber.New()
	app.Get("/set", func(c *fiber.Ctx) error {
		transport.SetSessionCookies(c, &diary.TokenPair{
			AccessToken:  "access-value",
			RefreshToken: "refresh-value",
		})
		return c.SendStatus(fiber.StatusOK)
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/set", nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	access := findCookie(resp, diary.CookieAccessToken)
	require.NotNil(t, access)
	assert.Equal(t, "access-value", access.Value)
	assert.Equal(t, "/", access.Path)
	assert.True(t, access.HttpOnly)
	assert.False(t, access.Secure)
	assert.Equal(t, http.SameSiteLaxMode, access.SameSite)
	assert.Equal(t, cfg.GetAccessTokenMinutes()*60, access.MaxAge)

	refresh := findCookie(resp, diary.CookieRefreshToken)
	require.NotNil(t, refresh)
	assert.Equal(t, "refresh-value", refresh.Value)
	assert.True(t, refresh.HttpOnly)
	assert.Equal(t, cfg.GetRefreshTokenDays()*24*3600, refresh.MaxAge)
}

func TestSessionTransportClearCookies(t *testing.T) {
	transport := diary.NewSessionTransport(testConfig())

	app := fiber.New()
	app.Get("/clear", func(c *fiber.Ctx) error {
		transport.ClearSessionCookies(c)
		return c.SendStatus(fiber.StatusOK)
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/clear", nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	for _, name := range []string{diary.CookieAccessToken, diary.CookieRefreshToken} {
		cookie := findCookie(resp, name)
		require.NotNil(t, cookie, name)
		assert.Empty(t, cookie.Value)
		assert.True(t, cookie.Expires.Before(time.Now()), "%s should expire in the past", name)
	}
}

func TestSessionTransportExtractToken(t *testing.T) {
	transport := diary.NewSessionTransport(testConfig())

	var gotAccess, gotRefresh string
	app := fiber.New()
	app.Get("/extract", func(c *fiber.Ctx) error {
		gotAccess = transport.ExtractToken(c, diary.TokenTypeAccess)
		gotRefresh = transport.ExtractToken(c, diary.TokenTypeRefresh)
		return c.SendStatus(fiber.StatusOK)
	})

	t.Run("cookie only", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/extract", nil)
		req.AddCookie(&http.Cookie{Name: diary.CookieAccessToken, Value: "cookie-access"})
		req.AddCookie(&http.Cookie{Name: diary.CookieRefreshToken, Value: "cookie-refresh"})

		_, err := app.Test(req)
		require.NoError(t, err)

		assert.Equal(t, "cookie-access", gotAccess)
		assert.Equal(t, "cookie-refresh", gotRefresh)
	})

	t.Run("bearer header wins over cookie", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/extract", nil)
		req.Header.Set("Authorization", "Bearer header-token")
		req.AddCookie(&http.Cookie{Name: diary.CookieAccessToken, Value: "cookie-access"})
		req.AddCookie(&http.Cookie{Name: diary.CookieRefreshToken, Value: "cookie-refresh"})

		_, err := app.Test(req)
		require.NoError(t, err)

		assert.Equal(t, "header-token", gotAccess)
		assert.Equal(t, "header-token", gotRefresh)
	})

	t.Run("nothing present", func(t *testing.T) {
		_, err := app.Test(httptest.NewRequest(http.MethodGet, "/extract", nil))
		require.NoError(t, err)

		assert.Empty(t, gotAccess)
		assert.Empty(t, gotRefresh)
	})
}

func TestBearerToken(t *testing.T) {
	var got string
	app := fiber.New()
	app.Get("/bearer", func(c *fiber.Ctx) error {
		got = diary.BearerToken(c)
		return c.SendStatus(fiber.StatusOK)
	})

	tests := []struct {
		name   string
		header string
		want   string
	}{
		{"lowercase scheme", "bearer tok-1", "tok-1"},
		{"canonical scheme", "Bearer tok-2", "tok-2"},
		{"no header", "", ""},
		{"wrong scheme", "Basic dXNlcjpwYXNz", ""},
		{"scheme only", "Bearer", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/bearer", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}

			_, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
