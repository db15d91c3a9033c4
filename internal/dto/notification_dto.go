package dto

import (
	"time"

	"github.com/evjobsch/backend/internal/model"
	"github.com/google/uuid"
)

type NotificationResponse struct {
	ID        uuid.UUID `json:"id"`
	Kind      string    `json:"kind"`
	Message   string    `json:"message"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"`
}

type UnreadResponse struct {
	Count int64  `json:"count"`
	Badge string `json:"badge"`
}

func NewNotificationResponse(notification *model.Notification) NotificationResponse {
	return NotificationResponse{
		ID:        notification.ID,
		Kind:      notification.Kind,
		Message:   notification.Message,
		Read:      notification.Read,
		CreatedAt: notification.CreatedAt,
	}
}
