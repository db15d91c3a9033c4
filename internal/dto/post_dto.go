package dto

import (
	"time"

	"github.com/evjobsch/backend/internal/model"
	"github.com/google/uuid"
)

type CreatePostRequest struct {
	Category string `json:"category" binding:"required,oneof=question search tip"`
	Content  string `json:"content" binding:"required,max=500"`
}

type UpdatePostRequest struct {
	Content string `json:"content" binding:"required,max=500"`
}

type CreateReplyRequest struct {
	Content string `json:"content" binding:"required,max=300"`
}

type PostResponse struct {
	ID         uuid.UUID  `json:"id"`
	AuthorID   string     `json:"author_id"`
	AuthorName string     `json:"author_name"`
	Category   string     `json:"category"`
	Content    string     `json:"content"`
	Likes      []string   `json:"likes"`
	LikeCount  int        `json:"like_count"`
	ReplyCount int        `json:"reply_count"`
	EditedAt   *time.Time `json:"edited_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

type ReplyResponse struct {
	ID         uuid.UUID `json:"id"`
	PostID     uuid.UUID `json:"post_id"`
	AuthorID   string    `json:"author_id"`
	AuthorName string    `json:"author_name"`
	Content    string    `json:"content"`
	CreatedAt  time.Time `json:"created_at"`
}

func NewPostResponse(post *model.Post) PostResponse {
	likes := make([]string, 0, len(post.Likes))
	for _, like := range post.Likes {
		likes = append(likes, like.UserID)
	}

	return PostResponse{
		ID:         post.ID,
		AuthorID:   post.AuthorID,
		AuthorName: post.AuthorName,
		Category:   post.Category,
		Content:    post.Content,
		Likes:      likes,
		LikeCount:  len(likes),
		ReplyCount: post.ReplyCount,
		EditedAt:   post.EditedAt,
		CreatedAt:  post.CreatedAt,
	}
}

func NewReplyResponse(reply *model.Reply) ReplyResponse {
	return ReplyResponse{
		ID:         reply.ID,
		PostID:     reply.PostID,
		AuthorID:   reply.AuthorID,
		AuthorName: reply.AuthorName,
		Content:    reply.Content,
		CreatedAt:  reply.CreatedAt,
	}
}
