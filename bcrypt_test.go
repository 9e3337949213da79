package diary_test

import (
	"testing"

	diary "github.com/goliatone/go-diary"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		wantErr  bool
	}{
		{
			name:     "Valid password",
			password: "securePassword123!",
			wantErr:  false,
		},
		{
			name:     "Empty password",
			password: "",
			wantErr:  true, // bcrypt can hash empty strings, we reject them first
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hash, err := diary.HashPassword(tt.password)

			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			assert.NoError(t, err)
			assert.NotEmpty(t, hash)
			assert.NotEqual(t, tt.password, hash)

			assert.NoError(t, diary.ComparePasswordAndHash(tt.password, hash))
		})
	}
}

func TestComparePasswordAndHash(t *testing.T) {
	password := "testPassword123!"
	hash, err := diary.HashPassword(password)
	require.NoError(t, err)

	t.Run("matching password", func(t *testing.T) {
		assert.NoError(t, diary.ComparePasswordAndHash(password, hash))
	})

	t.Run("wrong password", func(t *testing.T) {
		err := diary.ComparePasswordAndHash("wrongPassword", hash)
		assert.ErrorIs(t, err, diary.ErrMismatchedHashAndPassword)
	})

	t.Run("malformed hash", func(t *testing.T) {
		assert.Error(t, diary.ComparePasswordAndHash(password, "not-a-hash"))
	})
}

func TestVerifyPassword(t *testing.T) {
	password := "testPassword123!"
	hash, err := diary.HashPassword(password)
	require.NoError(t, err)

	assert.True(t, diary.VerifyPassword(password, hash))
	assert.False(t, diary.VerifyPassword("wrongPassword", hash))
	assert.False(t, diary.VerifyPassword(password, ""))
	assert.False(t, diary.VerifyPassword(password, "not-a-hash"))
}
