package diary_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	diary "github.com/goliatone/go-diary"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
)

func testConfig() diary.StaticConfig {
	return diary.StaticConfig{
		SigningKey:         "test-signing-key-0123456789",
		SigningMethod:      "HS256",
		AccessTokenMinutes: 60,
		RefreshTokenDays:   7,
		Issuer:             "diary-test",
	}
}

// memRepoManager backs the HTTP tests that never touch SQL: the credential
// and revocation stores are in memory, the rest is unused.
type memRepoManager struct {
	users   diary.CredentialStore
	revoked diary.RevocationStore
}

func newMemRepoManager() *memRepoManager {
	return &memRepoManager{
		users:   diary.NewMemoryCredentialStore(),
		revoked: diary.NewMemoryRevocationStore(),
	}
}

func (m *memRepoManager) Users() diary.Users                   { return nil }
func (m *memRepoManager) Diaries() diary.Diaries               { return nil }
func (m *memRepoManager) Tags() diary.Tags                     { return nil }
func (m *memRepoManager) Notifications() diary.Notifications   { return nil }
func (m *memRepoManager) RevokedTokens() diary.RevocationStore { return m.revoked }
func (m *memRepoManager) Validate() error                      { return nil }
func (m *memRepoManager) MustValidate()                        {}

func (m *memRepoManager) RunInTx(ctx context.Context, opts *sql.TxOptions, f func(ctx context.Context, tx bun.Tx) error) error {
	return nil
}

func setupDB(t *testing.T) *bun.DB {
	t.Helper()

	db, err := diary.OpenDB(":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)

	require.NoError(t, diary.Migrate(context.Background(), db))

	t.Cleanup(func() {
		_ = db.Close()
	})

	return db
}

func registerUser(t *testing.T, auther *diary.Auther, email, password string) *diary.User {
	t.Helper()

	user, err := auther.Register(context.Background(), diary.RegisterInput{
		Email:           email,
		Name:            "Test User",
		Password:        password,
		PasswordConfirm: password,
	})
	require.NoError(t, err)
	require.NotNil(t, user)

	return user
}

func waitExpiry(ttl time.Duration) {
	time.Sleep(ttl + 50*time.Millisecond)
}
