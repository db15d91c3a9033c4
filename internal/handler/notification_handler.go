package handler

import (
	"context"
	"net/http"

	"github.com/evjobsch/backend/internal/dto"
	"github.com/evjobsch/backend/internal/realtime"
	"github.com/evjobsch/backend/internal/service"
	"github.com/evjobsch/backend/pkg/response"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

type NotificationHandler struct {
	service  service.NotificationService
	panel    service.PanelService
	bus      realtime.Bus
	upgrader websocket.Upgrader
}

func NewNotificationHandler(service service.NotificationService, panel service.PanelService, bus realtime.Bus) *NotificationHandler {
	return &NotificationHandler{
		service:  service,
		panel:    panel,
		bus:      bus,
		upgrader: newUpgrader(),
	}
}

func (h *NotificationHandler) GetNotifications(c *gin.Context) {
	actor, err := response.GetIdentity(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	limit := 20
	offset := 0

	notifications, err := h.service.List(c.Request.Context(), actor.ID, limit, offset)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	responses := make([]dto.NotificationResponse, 0, len(notifications))
	for i := range notifications {
		responses = append(responses, dto.NewNotificationResponse(&notifications[i]))
	}

	c.JSON(http.StatusOK, gin.H{"data": responses})
}

func (h *NotificationHandler) MarkAllAsRead(c *gin.Context) {
	actor, err := response.GetIdentity(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	if err := h.service.MarkAllRead(c.Request.Context(), actor.ID); err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "all notifications marked as read"})
}

func (h *NotificationHandler) UnreadCount(c *gin.Context) {
	actor, err := response.GetIdentity(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	count, err := h.service.UnreadCount(c.Request.Context(), actor.ID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.UnreadResponse{
		Count: count,
		Badge: service.Badge(count),
	})
}

// OpenPanel records a panel open and schedules the deferred
// mark-all-read for this user.
func (h *NotificationHandler) OpenPanel(c *gin.Context) {
	actor, err := response.GetIdentity(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	h.panel.Open(actor.ID)
	c.JSON(http.StatusOK, gin.H{"message": "panel opened"})
}

// EndPanelSession drops the per-user panel state on sign-out.
func (h *NotificationHandler) EndPanelSession(c *gin.Context) {
	actor, err := response.GetIdentity(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	h.panel.EndSession(actor.ID)
	c.JSON(http.StatusOK, gin.H{"message": "panel session ended"})
}

// Stream pushes the user's notification feed on every change.
func (h *NotificationHandler) Stream(c *gin.Context) {
	actor, err := response.GetIdentity(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	q := realtime.Query{Collection: service.CollectionNotifications, Scope: actor.ID}
	streamView(c, h.upgrader, h.bus, q, func(ctx context.Context) ([]dto.NotificationResponse, error) {
		notifications, err := h.service.List(ctx, actor.ID, 50, 0)
		if err != nil {
			return nil, err
		}
		responses := make([]dto.NotificationResponse, 0, len(notifications))
		for i := range notifications {
			responses = append(responses, dto.NewNotificationResponse(&notifications[i]))
		}
		return responses, nil
	})
}
