package diary_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	diary "github.com/goliatone/go-diary"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *fiber.App {
	t.Helper()

	cfg := testConfig()
	repo := newMemRepoManager()
	auther := diary.NewAuthenticator(repo.users, repo.revoked, cfg)
	api := diary.NewAPI(auther, repo, cfg)

	return diary.NewServer(api)
}

func jsonRequest(method, target string, body any) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}

	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return req
}

func decodeBody(t *testing.T, resp *http.Response, out any) {
	t.Helper()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, out), string(raw))
}

func registerHTTP(t *testing.T, app *fiber.App, email, password string) {
	t.Helper()

	resp, err := app.Test(jsonRequest(http.MethodPost, "/api/v1/auth/register", fiber.Map{
		"email":            email,
		"name":             "Test User",
		"password":         password,
		"confirm_password": password,
	}), 30000)
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
}

func loginHTTP(t *testing.T, app *fiber.App, email, password string) diary.TokenPair {
	t.Helper()

	resp, err := app.Test(jsonRequest(http.MethodPost, "/api/v1/auth/login", fiber.Map{
		"email":    email,
		"password": password,
	}), 30000)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var pair diary.TokenPair
	decodeBody(t, resp, &pair)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)

	return pair
}

func TestHTTPRegister(t *testing.T) {
	app := newTestServer(t)

	t.Run("creates account", func(t *testing.T) {
		resp, err := app.Test(jsonRequest(http.MethodPost, "/api/v1/auth/register", fiber.Map{
			"email":            "alice@example.com",
			"name":             "Alice",
			"password":         "password1234",
			"confirm_password": "password1234",
		}), 30000)
		require.NoError(t, err)
		assert.Equal(t, http.StatusCreated, resp.StatusCode)

		var user diary.User
		decodeBody(t, resp, &user)
		assert.Equal(t, "alice@example.com", user.Email)
		assert.Empty(t, user.PasswordHash, "password hash must never serialize")
	})

	t.Run("duplicate email returns 409", func(t *testing.T) {
		resp, err := app.Test(jsonRequest(http.MethodPost, "/api/v1/auth/register", fiber.Map{
			"email":            "alice@example.com",
			"password":         "password1234",
			"confirm_password": "password1234",
		}), 30000)
		require.NoError(t, err)
		assert.Equal(t, http.StatusConflict, resp.StatusCode)
	})

	t.Run("invalid payload returns 400", func(t *testing.T) {
		resp, err := app.Test(jsonRequest(http.MethodPost, "/api/v1/auth/register", fiber.Map{
			"email":            "not-an-email",
			"password":         "password1234",
			"confirm_password": "password1234",
		}), 30000)
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("mismatched confirmation returns 400", func(t *testing.T) {
		resp, err := app.Test(jsonRequest(http.MethodPost, "/api/v1/auth/register", fiber.Map{
			"email":            "bob@example.com",
			"password":         "password1234",
			"confirm_password": "different1234",
		}), 30000)
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestHTTPLogin(t *testing.T) {
	app := newTestServer(t)
	registerHTTP(t, app, "alice@example.com", "password1234")

	t.Run("returns a token pair", func(t *testing.T) {
		pair := loginHTTP(t, app, "alice@example.com", "password1234")
		assert.Equal(t, "bearer", pair.TokenType)
		assert.Equal(t, 3600, pair.ExpiresIn)
	})

	t.Run("sets cookies when requested", func(t *testing.T) {
		resp, err := app.Test(jsonRequest(http.MethodPost, "/api/v1/auth/login?as_cookie=true", fiber.Map{
			"email":    "alice@example.com",
			"password": "password1234",
		}), 30000)
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		require.NotNil(t, findCookie(resp, diary.CookieAccessToken))
		require.NotNil(t, findCookie(resp, diary.CookieRefreshToken))
	})

	t.Run("wrong password and unknown email render identically", func(t *testing.T) {
		wrong, err := app.Test(jsonRequest(http.MethodPost, "/api/v1/auth/login", fiber.Map{
			"email":    "alice@example.com",
			"password": "not-the-password",
		}), 30000)
		require.NoError(t, err)

		unknown, err := app.Test(jsonRequest(http.MethodPost, "/api/v1/auth/login", fiber.Map{
			"email":    "nobody@example.com",
			"password": "password1234",
		}), 30000)
		require.NoError(t, err)

		assert.Equal(t, http.StatusUnauthorized, wrong.StatusCode)
		assert.Equal(t, http.StatusUnauthorized, unknown.StatusCode)

		wrongBody, err := io.ReadAll(wrong.Body)
		require.NoError(t, err)
		unknownBody, err := io.ReadAll(unknown.Body)
		require.NoError(t, err)
		assert.Equal(t, string(wrongBody), string(unknownBody))
	})
}

func TestHTTPCurrentUser(t *testing.T) {
	app := newTestServer(t)
	registerHTTP(t, app, "alice@example.com", "password1234")
	pair := loginHTTP(t, app, "alice@example.com", "password1234")

	t.Run("bearer header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/users/me", nil)
		req.Header.Set("Authorization", "Bearer "+pair.AccessToken)

		resp, err := app.Test(req, 30000)
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var user diary.User
		decodeBody(t, resp, &user)
		assert.Equal(t, "alice@example.com", user.Email)
	})

	t.Run("access cookie", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/users/me", nil)
		req.AddCookie(&http.Cookie{Name: diary.CookieAccessToken, Value: pair.AccessToken})

		resp, err := app.Test(req, 30000)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("bearer subject wins over cookie subject", func(t *testing.T) {
		registerHTTP(t, app, "carol@example.com", "password1234")
		carolPair := loginHTTP(t, app, "carol@example.com", "password1234")

		req := httptest.NewRequest(http.MethodGet, "/api/v1/users/me", nil)
		req.Header.Set("Authorization", "Bearer "+carolPair.AccessToken)
		req.AddCookie(&http.Cookie{Name: diary.CookieAccessToken, Value: pair.AccessToken})

		resp, err := app.Test(req, 30000)
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var user diary.User
		decodeBody(t, resp, &user)
		assert.Equal(t, "carol@example.com", user.Email)
	})

	t.Run("bad bearer wins over good cookie", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/users/me", nil)
		req.Header.Set("Authorization", "Bearer invalid-token")
		req.AddCookie(&http.Cookie{Name: diary.CookieAccessToken, Value: pair.AccessToken})

		resp, err := app.Test(req, 30000)
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("no credentials", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/users/me", nil), 30000)
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("refresh token is not an access token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/users/me", nil)
		req.Header.Set("Authorization", "Bearer "+pair.RefreshToken)

		resp, err := app.Test(req, 30000)
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})
}

func TestHTTPRefresh(t *testing.T) {
	app := newTestServer(t)
	registerHTTP(t, app, "alice@example.com", "password1234")

	t.Run("body token rotates", func(t *testing.T) {
		pair := loginHTTP(t, app, "alice@example.com", "password1234")

		resp, err := app.Test(jsonRequest(http.MethodPost, "/api/v1/auth/refresh", fiber.Map{
			"refresh_token": pair.RefreshToken,
		}), 30000)
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var next diary.TokenPair
		decodeBody(t, resp, &next)
		assert.NotEqual(t, pair.RefreshToken, next.RefreshToken)

		// The consumed token is single use.
		replay, err := app.Test(jsonRequest(http.MethodPost, "/api/v1/auth/refresh", fiber.Map{
			"refresh_token": pair.RefreshToken,
		}), 30000)
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, replay.StatusCode)

		// The fresh pair works.
		req := httptest.NewRequest(http.MethodGet, "/api/v1/users/me", nil)
		req.Header.Set("Authorization", "Bearer "+next.AccessToken)
		me, err := app.Test(req, 30000)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, me.StatusCode)
	})

	t.Run("cookie token rotates and re-sets cookies", func(t *testing.T) {
		pair := loginHTTP(t, app, "alice@example.com", "password1234")

		req := jsonRequest(http.MethodPost, "/api/v1/auth/refresh", nil)
		req.AddCookie(&http.Cookie{Name: diary.CookieRefreshToken, Value: pair.RefreshToken})

		resp, err := app.Test(req, 30000)
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		cookie := findCookie(resp, diary.CookieRefreshToken)
		require.NotNil(t, cookie)
		assert.NotEqual(t, pair.RefreshToken, cookie.Value)
	})

	t.Run("no token returns 401", func(t *testing.T) {
		resp, err := app.Test(jsonRequest(http.MethodPost, "/api/v1/auth/refresh", nil), 30000)
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})
}

func TestHTTPLogout(t *testing.T) {
	app := newTestServer(t)
	registerHTTP(t, app, "alice@example.com", "password1234")
	pair := loginHTTP(t, app, "alice@example.com", "password1234")

	req := jsonRequest(http.MethodPost, "/api/v1/auth/logout", fiber.Map{
		"refresh_token": pair.RefreshToken,
	})
	req.Header.Set("Authorization", "Bearer "+pair.AccessToken)

	resp, err := app.Test(req, 30000)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var result map[string]any
	decodeBody(t, resp, &result)
	assert.Equal(t, true, result["access_revoked"])
	assert.Equal(t, true, result["refresh_revoked"])

	// Cookies are cleared.
	for _, name := range []string{diary.CookieAccessToken, diary.CookieRefreshToken} {
		cookie := findCookie(resp, name)
		require.NotNil(t, cookie, name)
		assert.Empty(t, cookie.Value)
	}

	// The revoked access token is dead.
	me := httptest.NewRequest(http.MethodGet, "/api/v1/users/me", nil)
	me.Header.Set("Authorization", "Bearer "+pair.AccessToken)
	meResp, err := app.Test(me, 30000)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, meResp.StatusCode)

	// So is the revoked refresh token.
	refreshResp, err := app.Test(jsonRequest(http.MethodPost, "/api/v1/auth/refresh", fiber.Map{
		"refresh_token": pair.RefreshToken,
	}), 30000)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, refreshResp.StatusCode)

	// Logout with dead tokens still succeeds.
	again := jsonRequest(http.MethodPost, "/api/v1/auth/logout", nil)
	againResp, err := app.Test(again, 30000)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, againResp.StatusCode)
}

func TestHTTPUniform401Body(t *testing.T) {
	app := newTestServer(t)
	registerHTTP(t, app, "alice@example.com", "password1234")
	pair := loginHTTP(t, app, "alice@example.com", "password1234")

	// Consume the refresh token so a revoked one is available.
	resp, err := app.Test(jsonRequest(http.MethodPost, "/api/v1/auth/refresh", fiber.Map{
		"refresh_token": pair.RefreshToken,
	}), 30000)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	requests := map[string]*http.Request{
		"missing":   httptest.NewRequest(http.MethodGet, "/api/v1/users/me", nil),
		"malformed": httptest.NewRequest(http.MethodGet, "/api/v1/users/me", nil),
		"revoked": jsonRequest(http.MethodPost, "/api/v1/auth/refresh", fiber.Map{
			"refresh_token": pair.RefreshToken,
		}),
	}
	requests["malformed"].Header.Set("Authorization", "Bearer not-a-token")

	bodies := map[string]string{}
	for name, req := range requests {
		resp, err := app.Test(req, 30000)
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, name)

		raw, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		bodies[name] = string(raw)
	}

	assert.Equal(t, bodies["missing"], bodies["malformed"])
	assert.Equal(t, bodies["missing"], bodies["revoked"])
}
