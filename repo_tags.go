package diary

import (
	"context"
	"database/sql"
	"strings"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Tags is the per-user label store. Names are unique per user.
type Tags interface {
	ListForUser(ctx context.Context, userID uuid.UUID) ([]*Tag, error)
	Create(ctx context.Context, userID uuid.UUID, name string) (*Tag, error)
	Delete(ctx context.Context, userID uuid.UUID, id int64) (bool, error)
	GetOrCreateTx(ctx context.Context, tx bun.IDB, userID uuid.UUID, name string) (*Tag, error)
}

type tags struct {
	db *bun.DB
}

func NewTagsRepository(db *bun.DB) Tags {
	return &tags{db: db}
}

func (r *tags) ListForUser(ctx context.Context, userID uuid.UUID) ([]*Tag, error) {
	var records []*Tag
	err := r.db.NewSelect().
		Model(&records).
		Where("?TableAlias.user_id = ?", userID.String()).
		Order("name ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (r *tags) Create(ctx context.Context, userID uuid.UUID, name string) (*Tag, error) {
	name = normalizeTagName(name)
	if name == "" {
		return nil, ErrNoEmptyString
	}

	record := &Tag{UserID: userID, Name: name}
	if _, err := r.db.NewInsert().Model(record).Exec(ctx); err != nil {
		if isUniqueViolation(err) {
			return nil, ErrTagExists
		}
		return nil, err
	}
	return record, nil
}

func (r *tags) Delete(ctx context.Context, userID uuid.UUID, id int64) (bool, error) {
	deleted := false

	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		res, err := tx.NewDelete().
			Model((*Tag)(nil)).
			Where("?TableAlias.id = ?", id).
			Where("?TableAlias.user_id = ?", userID.String()).
			Exec(ctx)
		if err != nil {
			return err
		}

		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return nil
		}
		deleted = true

		_, err = tx.NewDelete().
			Model((*DiaryTag)(nil)).
			Where("tag_id = ?", id).
			Exec(ctx)
		return err
	})

	return deleted, err
}

func (r *tags) GetOrCreateTx(ctx context.Context, tx bun.IDB, userID uuid.UUID, name string) (*Tag, error) {
	name = normalizeTagName(name)
	if name == "" {
		return nil, ErrNoEmptyString
	}

	record := &Tag{UserID: userID, Name: name}

	if _, err := tx.NewInsert().
		Model(record).
		On("CONFLICT (user_id, name) DO NOTHING").
		Exec(ctx); err != nil {
		return nil, err
	}

	err := tx.NewSelect().
		Model(record).
		Where("?TableAlias.user_id = ?", userID.String()).
		Where("?TableAlias.name = ?", name).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, NewNotFound("tag").
				WithMetadata(map[string]any{"name": name})
		}
		return nil, err
	}

	return record, nil
}

func normalizeTagName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

var _ Tags = (*tags)(nil)
