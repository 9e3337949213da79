package diary

import (
	"context"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Notifications is the per-user inbox store.
type Notifications interface {
	Push(ctx context.Context, record *Notification) (*Notification, error)
	ListForUser(ctx context.Context, userID uuid.UUID, unreadOnly bool) ([]*Notification, error)
	MarkRead(ctx context.Context, userID uuid.UUID, id int64) (bool, error)
	MarkAllRead(ctx context.Context, userID uuid.UUID) (int, error)
}

type notifications struct {
	db *bun.DB
}

func NewNotificationsRepository(db *bun.DB) Notifications {
	return &notifications{db: db}
}

func (r *notifications) Push(ctx context.Context, record *Notification) (*Notification, error) {
	if record.Title == "" {
		return nil, ErrNoEmptyString
	}

	if _, err := r.db.NewInsert().Model(record).Exec(ctx); err != nil {
		return nil, err
	}
	return record, nil
}

func (r *notifications) ListForUser(ctx context.Context, userID uuid.UUID, unreadOnly bool) ([]*Notification, error) {
	var records []*Notification

	q := r.db.NewSelect().
		Model(&records).
		Where("?TableAlias.user_id = ?", userID.String()).
		Order("id DESC")

	if unreadOnly {
		q = q.Where("?TableAlias.is_read = ?", false)
	}

	if err := q.Scan(ctx); err != nil {
		return nil, err
	}
	return records, nil
}

func (r *notifications) MarkRead(ctx context.Context, userID uuid.UUID, id int64) (bool, error) {
	res, err := r.db.NewUpdate().
		Model((*Notification)(nil)).
		Set("is_read = ?", true).
		Where("?TableAlias.id = ?", id).
		Where("?TableAlias.user_id = ?", userID.String()).
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

func (r *notifications) MarkAllRead(ctx context.Context, userID uuid.UUID) (int, error) {
	res, err := r.db.NewUpdate().
		Model((*Notification)(nil)).
		Set("is_read = ?", true).
		Where("?TableAlias.user_id = ?", userID.String()).
		Where("?TableAlias.is_read = ?", false).
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

var _ Notifications = (*notifications)(nil)
