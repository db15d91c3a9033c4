package repository

import (
	"context"
	"time"

	"github.com/evjobsch/backend/internal/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PostRepository interface {
	Create(ctx context.Context, post *model.Post) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Post, error)
	List(ctx context.Context) ([]model.Post, error)
	UpdateContent(ctx context.Context, id uuid.UUID, content string, editedAt time.Time) error
	Delete(ctx context.Context, id uuid.UUID) error
	IncrementReplyCount(ctx context.Context, id uuid.UUID) error
	ReconcileReplyCounts(ctx context.Context) (int64, error)
}

type postRepository struct {
	db *gorm.DB
}

func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) Create(ctx context.Context, post *model.Post) error {
	return r.db.WithContext(ctx).Create(post).Error
}

func (r *postRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Post, error) {
	var post model.Post
	err := r.db.WithContext(ctx).
		Preload("Likes").
		First(&post, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *postRepository) List(ctx context.Context) ([]model.Post, error) {
	var posts []model.Post
	err := r.db.WithContext(ctx).
		Preload("Likes").
		Order("created_at desc").
		Find(&posts).Error
	return posts, err
}

func (r *postRepository) UpdateContent(ctx context.Context, id uuid.UUID, content string, editedAt time.Time) error {
	return r.db.WithContext(ctx).
		Model(&model.Post{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"content":   content,
			"edited_at": editedAt,
		}).Error
}

func (r *postRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.Post{}, "id = ?", id).Error
}

func (r *postRepository) IncrementReplyCount(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&model.Post{}).
		Where("id = ?", id).
		UpdateColumn("reply_count", gorm.Expr("reply_count + ?", 1)).Error
}

// ReconcileReplyCounts recomputes every post's reply_count from the true
// reply set and returns how many rows were corrected. The denormalized
// counter is a cache; the paired reply-insert/increment writes are not
// atomic, so the sweep bounds its staleness.
func (r *postRepository) ReconcileReplyCounts(ctx context.Context) (int64, error) {
	fix := r.db.WithContext(ctx).Exec(`
		UPDATE posts SET reply_count = sub.cnt
		FROM (SELECT post_id, count(*) AS cnt FROM replies GROUP BY post_id) sub
		WHERE posts.id = sub.post_id AND posts.reply_count <> sub.cnt`)
	if fix.Error != nil {
		return 0, fix.Error
	}

	zero := r.db.WithContext(ctx).Exec(`
		UPDATE posts SET reply_count = 0
		WHERE reply_count <> 0
		AND NOT EXISTS (SELECT 1 FROM replies WHERE replies.post_id = posts.id)`)
	if zero.Error != nil {
		return fix.RowsAffected, zero.Error
	}

	return fix.RowsAffected + zero.RowsAffected, nil
}
