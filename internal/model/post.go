package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	CategoryQuestion = "question"
	CategorySearch   = "search"
	CategoryTip      = "tip"
)

// MaxPostContentLen bounds post content, MaxReplyContentLen reply content.
const (
	MaxPostContentLen  = 500
	MaxReplyContentLen = 300
)

type Post struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	AuthorID   string     `gorm:"size:128;not null;index" json:"author_id"`
	AuthorName string     `gorm:"size:255;not null" json:"author_name"`
	Category   string     `gorm:"size:20;not null" json:"category"`
	Content    string     `gorm:"type:text;not null" json:"content"`
	ReplyCount int        `gorm:"default:0" json:"reply_count"`
	EditedAt   *time.Time `json:"edited_at,omitempty"`
	CreatedAt  time.Time  `gorm:"autoCreateTime" json:"created_at"`

	Likes   []PostLike `gorm:"foreignKey:PostID" json:"-"`
	Replies []Reply    `gorm:"foreignKey:PostID" json:"-"`
}

func (p *Post) BeforeCreate(tx *gorm.DB) (err error) {
	if p.ID == uuid.Nil {
		p.ID, err = uuid.NewV7()
	}
	return
}

type Reply struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	PostID     uuid.UUID `gorm:"type:uuid;not null;index" json:"post_id"`
	Post       Post      `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	AuthorID   string    `gorm:"size:128;not null" json:"author_id"`
	AuthorName string    `gorm:"size:255;not null" json:"author_name"`
	Content    string    `gorm:"type:text;not null" json:"content"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (r *Reply) BeforeCreate(tx *gorm.DB) (err error) {
	if r.ID == uuid.Nil {
		r.ID, err = uuid.NewV7()
	}
	return
}
