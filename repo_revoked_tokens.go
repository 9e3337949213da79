package diary

import (
	"context"
	"database/sql"
	"time"

	"github.com/uptrace/bun"
)

// RevokedTokens is the Bun-backed RevocationStore. The jti primary key lets
// every write stay a single ON CONFLICT statement, so two concurrent revokes
// of the same id converge without a read-then-write race.
type RevokedTokens struct {
	db *bun.DB
}

func NewRevokedTokensRepository(db *bun.DB) *RevokedTokens {
	return &RevokedTokens{db: db}
}

func (r *RevokedTokens) Revoke(ctx context.Context, jti string, expiresAt time.Time) error {
	entry := &RevokedToken{JTI: jti, ExpiresAt: expiresAt}

	_, err := r.db.NewInsert().
		Model(entry).
		On("CONFLICT (jti) DO UPDATE").
		Set("expires_at = EXCLUDED.expires_at").
		Exec(ctx)

	return err
}

func (r *RevokedTokens) RevokeNX(ctx context.Context, jti string, expiresAt time.Time) (bool, error) {
	entry := &RevokedToken{JTI: jti, ExpiresAt: expiresAt}

	res, err := r.db.NewInsert().
		Model(entry).
		On("CONFLICT (jti) DO NOTHING").
		Exec(ctx)
	if err != nil {
		return false, err
	}

	if n, err := res.RowsAffected(); err == nil && n > 0 {
		return true, nil
	}

	// An entry already exists. If it is past expiry it counts as absent, so
	// take it over; the expiry guard keeps this a single-winner update.
	res, err = r.db.NewUpdate().
		Model((*RevokedToken)(nil)).
		Set("expires_at = ?", expiresAt).
		Where("jti = ?", jti).
		Where("expires_at <= ?", time.Now()).
		Exec(ctx)
	if err != nil {
		return false, err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *RevokedTokens) IsRevoked(ctx context.Context, jti string) (bool, error) {
	entry := &RevokedToken{}
	err := r.db.NewSelect().
		Model(entry).
		Where("?TableAlias.jti = ?", jti).
		Where("?TableAlias.expires_at > ?", time.Now()).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, err
	}

	return true, nil
}

func (r *RevokedTokens) PurgeExpired(ctx context.Context, now time.Time) (int, error) {
	res, err := r.db.NewDelete().
		Model((*RevokedToken)(nil)).
		Where("?TableAlias.expires_at <= ?", now).
		Exec(ctx)
	if err != nil {
		return 0, err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

var _ RevocationStore = (*RevokedTokens)(nil)
