package repository

import (
	"context"

	"github.com/evjobsch/backend/internal/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ReplyRepository interface {
	Create(ctx context.Context, reply *model.Reply) error
	ListByPost(ctx context.Context, postID uuid.UUID) ([]model.Reply, error)
}

type replyRepository struct {
	db *gorm.DB
}

func NewReplyRepository(db *gorm.DB) ReplyRepository {
	return &replyRepository{db: db}
}

func (r *replyRepository) Create(ctx context.Context, reply *model.Reply) error {
	return r.db.WithContext(ctx).Create(reply).Error
}

func (r *replyRepository) ListByPost(ctx context.Context, postID uuid.UUID) ([]model.Reply, error) {
	var replies []model.Reply
	err := r.db.WithContext(ctx).
		Where("post_id = ?", postID).
		Order("created_at asc").
		Find(&replies).Error
	return replies, err
}
