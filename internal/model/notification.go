package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	NotifLikePost    = "like_post"
	NotifLikeJob     = "like_job"
	NotifReply       = "reply"
	NotifApplication = "application"
)

type Notification struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	RecipientID string    `gorm:"size:128;not null;index" json:"recipient_id"`
	Kind        string    `gorm:"size:50;not null" json:"kind"`
	Message     string    `gorm:"type:text;not null" json:"message"`
	Read        bool      `gorm:"default:false" json:"read"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (n *Notification) BeforeCreate(tx *gorm.DB) (err error) {
	if n.ID == uuid.Nil {
		n.ID, err = uuid.NewV7()
	}
	return
}
