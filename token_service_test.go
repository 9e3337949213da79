package diary_test

import (
	"testing"
	"time"

	diary "github.com/goliatone/go-diary"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenServiceIssueAndDecode(t *testing.T) {
	service := diary.NewTokenService(testConfig(), nil)
	subject := uuid.NewString()

	raw, claims, err := service.Issue(subject, diary.TokenTypeAccess, time.Minute)
	require.NoError(t, err)
	require.NotEmpty(t, raw)
	require.NotNil(t, claims)

	assert.Equal(t, subject, claims.Subject)
	assert.Equal(t, diary.TokenTypeAccess, claims.Typ)
	assert.NotEmpty(t, claims.TokenID())

	decoded, err := service.Decode(raw, diary.TokenTypeAccess)
	require.NoError(t, err)
	assert.Equal(t, subject, decoded.Subject)
	assert.Equal(t, claims.TokenID(), decoded.TokenID())
}

func TestTokenServiceIssueValidation(t *testing.T) {
	service := diary.NewTokenService(testConfig(), nil)

	t.Run("rejects unknown type", func(t *testing.T) {
		_, _, err := service.Issue("subject", diary.TokenType("session"), time.Minute)
		assert.Error(t, err)
	})

	t.Run("rejects non-positive ttl", func(t *testing.T) {
		_, _, err := service.Issue("subject", diary.TokenTypeAccess, 0)
		assert.Error(t, err)
	})
}

func TestTokenServiceUniqueTokenIDs(t *testing.T) {
	service := diary.NewTokenService(testConfig(), nil)

	seen := map[string]bool{}
	for i := 0; i < 20; i++ {
		_, claims, err := service.Issue("subject", diary.TokenTypeAccess, time.Minute)
		require.NoError(t, err)
		assert.False(t, seen[claims.TokenID()], "token id reused")
		seen[claims.TokenID()] = true
	}
}

func TestTokenServiceTypeIsolation(t *testing.T) {
	service := diary.NewTokenService(testConfig(), nil)

	access, _, err := service.Issue("subject", diary.TokenTypeAccess, time.Minute)
	require.NoError(t, err)
	refresh, _, err := service.Issue("subject", diary.TokenTypeRefresh, time.Minute)
	require.NoError(t, err)

	_, err = service.Decode(access, diary.TokenTypeRefresh)
	assert.Error(t, err)
	assert.True(t, diary.IsAuthError(err))

	_, err = service.Decode(refresh, diary.TokenTypeAccess)
	assert.Error(t, err)
	assert.True(t, diary.IsAuthError(err))
}

func TestTokenServiceRejectsExpired(t *testing.T) {
	service := diary.NewTokenService(testConfig(), nil)

	raw, _, err := service.Issue("subject", diary.TokenTypeAccess, 10*time.Millisecond)
	require.NoError(t, err)

	waitExpiry(10 * time.Millisecond)

	_, err = service.Decode(raw, diary.TokenTypeAccess)
	assert.ErrorIs(t, err, diary.ErrTokenInvalid)
}

func TestTokenServiceRejectsTampered(t *testing.T) {
	service := diary.NewTokenService(testConfig(), nil)

	raw, _, err := service.Issue("subject", diary.TokenTypeAccess, time.Minute)
	require.NoError(t, err)

	tampered := raw[:len(raw)-3] + "xyz"
	_, err = service.Decode(tampered, diary.TokenTypeAccess)
	assert.ErrorIs(t, err, diary.ErrTokenInvalid)

	_, err = service.Decode("not.a.token", diary.TokenTypeAccess)
	assert.ErrorIs(t, err, diary.ErrTokenInvalid)

	_, err = service.Decode("", diary.TokenTypeAccess)
	assert.ErrorIs(t, err, diary.ErrTokenInvalid)
}

func TestTokenServiceRejectsForeignKey(t *testing.T) {
	service := diary.NewTokenService(testConfig(), nil)

	other := testConfig()
	other.SigningKey = "a-different-signing-key"
	otherService := diary.NewTokenService(other, nil)

	raw, _, err := otherService.Issue("subject", diary.TokenTypeAccess, time.Minute)
	require.NoError(t, err)

	_, err = service.Decode(raw, diary.TokenTypeAccess)
	assert.ErrorIs(t, err, diary.ErrTokenInvalid)
}

func TestTokenServiceExpiryMonotonic(t *testing.T) {
	service := diary.NewTokenService(testConfig(), nil)

	before := time.Now()
	_, claims, err := service.Issue("subject", diary.TokenTypeRefresh, time.Hour)
	require.NoError(t, err)

	assert.True(t, claims.Expires().After(claims.Issued()))
	assert.WithinDuration(t, before.Add(time.Hour), claims.Expires(), 5*time.Second)
}
