package diary

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// ListDiariesParams are the list filters: free-text search over title and
// content, an inclusive date window, sort direction, and paging.
type ListDiariesParams struct {
	Query    string
	DateFrom *time.Time
	DateTo   *time.Time
	Order    string // "asc" or "desc" (default)
	Page     int
	PageSize int
}

func (p ListDiariesParams) limitOffset() (int, int) {
	size := p.PageSize
	if size <= 0 {
		size = 20
	}
	page := p.Page
	if page < 1 {
		page = 1
	}
	return size, (page - 1) * size
}

// Diaries is the diary entry store. Every operation is scoped to the owning
// user; an entry that belongs to someone else reads as not found.
type Diaries interface {
	Create(ctx context.Context, entry *Diary) (*Diary, error)
	GetForUser(ctx context.Context, userID uuid.UUID, id int64) (*Diary, error)
	List(ctx context.Context, userID uuid.UUID, params ListDiariesParams) ([]*Diary, error)
	Update(ctx context.Context, entry *Diary) (*Diary, error)
	Delete(ctx context.Context, userID uuid.UUID, id int64) (bool, error)
	SetSummary(ctx context.Context, userID uuid.UUID, id int64, summary string) error
	SetEmotion(ctx context.Context, userID uuid.UUID, id int64, emotion string, keywords []string) error
	SetTags(ctx context.Context, entry *Diary, names []string) error
}

type diaries struct {
	db   *bun.DB
	tags Tags
}

func NewDiariesRepository(db *bun.DB, tags Tags) Diaries {
	return &diaries{db: db, tags: tags}
}

func (r *diaries) Create(ctx context.Context, entry *Diary) (*Diary, error) {
	if entry.Date.IsZero() {
		entry.Date = time.Now()
	}

	if _, err := r.db.NewInsert().Model(entry).Exec(ctx); err != nil {
		return nil, err
	}
	return entry, nil
}

func (r *diaries) GetForUser(ctx context.Context, userID uuid.UUID, id int64) (*Diary, error) {
	entry := &Diary{}
	err := r.db.NewSelect().
		Model(entry).
		Relation("Tags").
		Relation("EmotionKeywords").
		Where("?TableAlias.id = ?", id).
		Where("?TableAlias.user_id = ?", userID.String()).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, NewNotFound("diary").
				WithMetadata(map[string]any{"id": id})
		}
		return nil, err
	}

	return entry, nil
}

func (r *diaries) List(ctx context.Context, userID uuid.UUID, params ListDiariesParams) ([]*Diary, error) {
	var entries []*Diary

	q := r.db.NewSelect().
		Model(&entries).
		Relation("Tags").
		Relation("EmotionKeywords").
		Where("?TableAlias.user_id = ?", userID.String())

	if params.Query != "" {
		pattern := "%" + strings.ToLower(strings.TrimSpace(params.Query)) + "%"
		q = q.WhereGroup(" AND ", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.
				Where("lower(?TableAlias.title) LIKE ?", pattern).
				WhereOr("lower(?TableAlias.content) LIKE ?", pattern)
		})
	}

	if params.DateFrom != nil {
		q = q.Where("?TableAlias.date >= ?", *params.DateFrom)
	}
	if params.DateTo != nil {
		q = q.Where("?TableAlias.date <= ?", *params.DateTo)
	}

	if params.Order == "asc" {
		q = q.Order("date ASC")
	} else {
		q = q.Order("date DESC")
	}
	q = q.Order("id DESC")

	limit, offset := params.limitOffset()
	if err := q.Limit(limit).Offset(offset).Scan(ctx); err != nil {
		return nil, err
	}

	return entries, nil
}

func (r *diaries) Update(ctx context.Context, entry *Diary) (*Diary, error) {
	now := time.Now()
	entry.UpdatedAt = &now

	res, err := r.db.NewUpdate().
		Model(entry).
		Column("title", "content", "mood", "date", "is_private", "updated_at").
		Where("?TableAlias.id = ?", entry.ID).
		Where("?TableAlias.user_id = ?", entry.UserID.String()).
		Exec(ctx)
	if err != nil {
		return nil, err
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, NewNotFound("diary").
			WithMetadata(map[string]any{"id": entry.ID})
	}

	return r.GetForUser(ctx, entry.UserID, entry.ID)
}

func (r *diaries) Delete(ctx context.Context, userID uuid.UUID, id int64) (bool, error) {
	return r.deleteTx(ctx, userID, id)
}

func (r *diaries) deleteTx(ctx context.Context, userID uuid.UUID, id int64) (bool, error) {
	deleted := false

	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		res, err := tx.NewDelete().
			Model((*Diary)(nil)).
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

		if _, err := tx.NewDelete().
			Model((*DiaryTag)(nil)).
			Where("diary_id = ?", id).
			Exec(ctx); err != nil {
			return err
		}

		_, err = tx.NewDelete().
			Model((*DiaryEmotionKeyword)(nil)).
			Where("diary_id = ?", id).
			Exec(ctx)
		return err
	})

	return deleted, err
}

func (r *diaries) SetSummary(ctx context.Context, userID uuid.UUID, id int64, summary string) error {
	res, err := r.db.NewUpdate().
		Model((*Diary)(nil)).
		Set("ai_summary = ?", summary).
		Set("updated_at = ?", time.Now()).
		Where("?TableAlias.id = ?", id).
		Where("?TableAlias.user_id = ?", userID.String()).
		Exec(ctx)
	if err != nil {
		return err
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return NewNotFound("diary").
			WithMetadata(map[string]any{"id": id})
	}
	return nil
}

// SetEmotion stores the analyzed emotion and replaces the entry's keyword
// set: keywords are get-or-created globally, join rows are swapped in one
// transaction.
func (r *diaries) SetEmotion(ctx context.Context, userID uuid.UUID, id int64, emotion string, keywords []string) error {
	return r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		res, err := tx.NewUpdate().
			Model((*Diary)(nil)).
			Set("main_emotion = ?", emotion).
			Set("updated_at = ?", time.Now()).
			Where("?TableAlias.id = ?", id).
			Where("?TableAlias.user_id = ?", userID.String()).
			Exec(ctx)
		if err != nil {
			return err
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return NewNotFound("diary").
				WithMetadata(map[string]any{"id": id})
		}

		if _, err := tx.NewDelete().
			Model((*DiaryEmotionKeyword)(nil)).
			Where("diary_id = ?", id).
			Exec(ctx); err != nil {
			return err
		}

		for _, name := range keywords {
			keyword, err := getOrCreateKeyword(ctx, tx, name)
			if err != nil {
				return err
			}

			join := &DiaryEmotionKeyword{DiaryID: id, EmotionKeywordID: keyword.ID}
			if _, err := tx.NewInsert().
				Model(join).
				On("CONFLICT (diary_id, emotion_keyword_id) DO NOTHING").
				Exec(ctx); err != nil {
				return err
			}
		}

		return nil
	})
}

// SetTags replaces the entry's tag set with the named per-user tags,
// creating missing ones.
func (r *diaries) SetTags(ctx context.Context, entry *Diary, names []string) error {
	return r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().
			Model((*DiaryTag)(nil)).
			Where("diary_id = ?", entry.ID).
			Exec(ctx); err != nil {
			return err
		}

		for _, name := range names {
			tag, err := r.tags.GetOrCreateTx(ctx, tx, entry.UserID, name)
			if err != nil {
				return err
			}

			join := &DiaryTag{DiaryID: entry.ID, TagID: tag.ID}
			if _, err := tx.NewInsert().
				Model(join).
				On("CONFLICT (diary_id, tag_id) DO NOTHING").
				Exec(ctx); err != nil {
				return err
			}
		}

		return nil
	})
}

func getOrCreateKeyword(ctx context.Context, tx bun.IDB, name string) (*EmotionKeyword, error) {
	keyword := &EmotionKeyword{Name: name}

	if _, err := tx.NewInsert().
		Model(keyword).
		On("CONFLICT (name) DO NOTHING").
		Exec(ctx); err != nil {
		return nil, err
	}

	err := tx.NewSelect().
		Model(keyword).
		Where("?TableAlias.name = ?", name).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	return keyword, nil
}

var _ Diaries = (*diaries)(nil)
