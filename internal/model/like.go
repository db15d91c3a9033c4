package model

import (
	"time"

	"github.com/google/uuid"
)

// PostLike and JobLike are membership rows: the likes "set" of an entity is
// the set of user ids having a row for it. The composite primary key makes
// repeated set-adds no-ops instead of duplicates.

type PostLike struct {
	PostID    uuid.UUID `gorm:"type:uuid;primaryKey" json:"post_id"`
	Post      Post      `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	UserID    string    `gorm:"size:128;primaryKey" json:"user_id"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (PostLike) TableName() string {
	return "post_likes"
}

type JobLike struct {
	JobID     uuid.UUID `gorm:"type:uuid;primaryKey" json:"job_id"`
	Job       Job       `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	UserID    string    `gorm:"size:128;primaryKey" json:"user_id"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (JobLike) TableName() string {
	return "job_likes"
}
