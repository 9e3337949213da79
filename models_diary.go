package diary

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Diary is one entry. Tags and emotion keywords are many-to-many; the join
// models below must be registered with Bun before querying relations.
type Diary struct {
	bun.BaseModel   `bun:"table:diaries,alias:dry"`
	ID              int64             `bun:"id,pk,autoincrement" json:"id,omitempty"`
	UserID          uuid.UUID         `bun:"user_id,notnull,type:uuid" json:"-"`
	Title           string            `bun:"title,notnull" json:"title"`
	Content         string            `bun:"content,notnull" json:"content"`
	Mood            string            `bun:"mood" json:"mood,omitempty"`
	Date            time.Time         `bun:"date,nullzero" json:"date"`
	IsPrivate       bool              `bun:"is_private,notnull,default:true" json:"is_private"`
	AISummary       string            `bun:"ai_summary" json:"ai_summary,omitempty"`
	MainEmotion     string            `bun:"main_emotion" json:"main_emotion,omitempty"`
	Tags            []*Tag            `bun:"m2m:diary_tags,join:Diary=Tag" json:"tags,omitempty"`
	EmotionKeywords []*EmotionKeyword `bun:"m2m:diary_emotion_keywords,join:Diary=EmotionKeyword" json:"emotion_keywords,omitempty"`
	CreatedAt       *time.Time        `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt       *time.Time        `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
}

// Tag is a per-user label; (user_id, name) is unique.
type Tag struct {
	bun.BaseModel `bun:"table:tags,alias:tag"`
	ID            int64     `bun:"id,pk,autoincrement" json:"id,omitempty"`
	UserID        uuid.UUID `bun:"user_id,notnull,type:uuid" json:"-"`
	Name          string    `bun:"name,notnull" json:"name"`
}

// EmotionKeyword is a globally unique keyword produced by analysis.
type EmotionKeyword struct {
	bun.BaseModel `bun:"table:emotion_keywords,alias:emk"`
	ID            int64  `bun:"id,pk,autoincrement" json:"id,omitempty"`
	Name          string `bun:"name,notnull,unique" json:"name"`
}

type DiaryTag struct {
	bun.BaseModel `bun:"table:diary_tags,alias:dtg"`
	DiaryID       int64  `bun:"diary_id,pk"`
	Diary         *Diary `bun:"rel:belongs-to,join:diary_id=id"`
	TagID         int64  `bun:"tag_id,pk"`
	Tag           *Tag   `bun:"rel:belongs-to,join:tag_id=id"`
}

type DiaryEmotionKeyword struct {
	bun.BaseModel    `bun:"table:diary_emotion_keywords,alias:dek"`
	DiaryID          int64           `bun:"diary_id,pk"`
	Diary            *Diary          `bun:"rel:belongs-to,join:diary_id=id"`
	EmotionKeywordID int64           `bun:"emotion_keyword_id,pk"`
	EmotionKeyword   *EmotionKeyword `bun:"rel:belongs-to,join:emotion_keyword_id=id"`
}

// Notification is a minimal per-user inbox item.
type Notification struct {
	bun.BaseModel `bun:"table:notifications,alias:ntf"`
	ID            int64      `bun:"id,pk,autoincrement" json:"id,omitempty"`
	UserID        uuid.UUID  `bun:"user_id,notnull,type:uuid" json:"-"`
	Title         string     `bun:"title,notnull" json:"title"`
	Body          string     `bun:"body" json:"body,omitempty"`
	IsRead        bool       `bun:"is_read,notnull,default:false" json:"is_read"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
}

// RegisterModels registers the many-to-many join models. Call it once per
// *bun.DB before touching diary relations.
func RegisterModels(db *bun.DB) {
	db.RegisterModel((*DiaryTag)(nil))
	db.RegisterModel((*DiaryEmotionKeyword)(nil))
}
