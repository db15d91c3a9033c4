package handler

import (
	"context"
	"net/http"

	"github.com/evjobsch/backend/internal/dto"
	"github.com/evjobsch/backend/internal/realtime"
	"github.com/evjobsch/backend/internal/service"
	"github.com/evjobsch/backend/pkg/apperror"
	"github.com/evjobsch/backend/pkg/response"
	"github.com/evjobsch/backend/pkg/validator"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

type PostHandler struct {
	service  service.PostService
	bus      realtime.Bus
	upgrader websocket.Upgrader
}

func NewPostHandler(service service.PostService, bus realtime.Bus) *PostHandler {
	return &PostHandler{
		service:  service,
		bus:      bus,
		upgrader: newUpgrader(),
	}
}

func (h *PostHandler) CreatePost(c *gin.Context) {
	actor, err := response.GetIdentity(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var req dto.CreatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	post, err := h.service.Create(c.Request.Context(), actor, req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": post})
}

func (h *PostHandler) ListPosts(c *gin.Context) {
	posts, err := h.service.List(c.Request.Context())
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": posts})
}

func (h *PostHandler) UpdatePost(c *gin.Context) {
	actor, err := response.GetIdentity(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	postID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.ResponseError(c, apperror.ErrValidation)
		return
	}

	var req dto.UpdatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	if err := h.service.Edit(c.Request.Context(), postID, actor.ID, req.Content); err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "post updated"})
}

func (h *PostHandler) DeletePost(c *gin.Context) {
	actor, err := response.GetIdentity(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	postID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.ResponseError(c, apperror.ErrValidation)
		return
	}

	if err := h.service.Delete(c.Request.Context(), postID, actor.ID); err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "post deleted"})
}

func (h *PostHandler) ToggleLike(c *gin.Context) {
	actor, err := response.GetIdentity(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	postID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.ResponseError(c, apperror.ErrValidation)
		return
	}

	liked, err := h.service.ToggleLike(c.Request.Context(), postID, actor)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"liked": liked})
}

func (h *PostHandler) CreateReply(c *gin.Context) {
	actor, err := response.GetIdentity(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	postID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.ResponseError(c, apperror.ErrValidation)
		return
	}

	var req dto.CreateReplyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	reply, err := h.service.CreateReply(c.Request.Context(), postID, actor, req.Content)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": reply})
}

func (h *PostHandler) ListReplies(c *gin.Context) {
	postID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.ResponseError(c, apperror.ErrValidation)
		return
	}

	replies, err := h.service.ListReplies(c.Request.Context(), postID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": replies})
}

// StreamPosts pushes the full post feed on every change.
func (h *PostHandler) StreamPosts(c *gin.Context) {
	q := realtime.Query{Collection: service.CollectionPosts}
	streamView(c, h.upgrader, h.bus, q, func(ctx context.Context) ([]dto.PostResponse, error) {
		return h.service.List(ctx)
	})
}

// StreamReplies pushes the reply thread of one post on every change.
func (h *PostHandler) StreamReplies(c *gin.Context) {
	postID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.ResponseError(c, apperror.ErrValidation)
		return
	}

	q := realtime.Query{Collection: service.CollectionReplies, Scope: postID.String()}
	streamView(c, h.upgrader, h.bus, q, func(ctx context.Context) ([]dto.ReplyResponse, error) {
		return h.service.ListReplies(ctx, postID)
	})
}
