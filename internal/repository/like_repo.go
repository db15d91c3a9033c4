package repository

import (
	"context"

	"github.com/evjobsch/backend/internal/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LikeRepository exposes the likes sets as native set-add/set-remove
// primitives. Add and remove are idempotent on the storage side, which
// keeps concurrent likes from different users safe without locking.
type LikeRepository interface {
	LikePost(ctx context.Context, userID string, postID uuid.UUID) error
	UnlikePost(ctx context.Context, userID string, postID uuid.UUID) error
	IsPostLiked(ctx context.Context, userID string, postID uuid.UUID) (bool, error)
	LikeJob(ctx context.Context, userID string, jobID uuid.UUID) error
	UnlikeJob(ctx context.Context, userID string, jobID uuid.UUID) error
	IsJobLiked(ctx context.Context, userID string, jobID uuid.UUID) (bool, error)
}

type likeRepository struct {
	db *gorm.DB
}

func NewLikeRepository(db *gorm.DB) LikeRepository {
	return &likeRepository{db: db}
}

func (r *likeRepository) LikePost(ctx context.Context, userID string, postID uuid.UUID) error {
	like := model.PostLike{
		UserID: userID,
		PostID: postID,
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&like).Error
}

func (r *likeRepository) UnlikePost(ctx context.Context, userID string, postID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND post_id = ?", userID, postID).
		Delete(&model.PostLike{}).Error
}

func (r *likeRepository) IsPostLiked(ctx context.Context, userID string, postID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.PostLike{}).
		Where("user_id = ? AND post_id = ?", userID, postID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *likeRepository) LikeJob(ctx context.Context, userID string, jobID uuid.UUID) error {
	like := model.JobLike{
		UserID: userID,
		JobID:  jobID,
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&like).Error
}

func (r *likeRepository) UnlikeJob(ctx context.Context, userID string, jobID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND job_id = ?", userID, jobID).
		Delete(&model.JobLike{}).Error
}

func (r *likeRepository) IsJobLiked(ctx context.Context, userID string, jobID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.JobLike{}).
		Where("user_id = ? AND job_id = ?", userID, jobID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
