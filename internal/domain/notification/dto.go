package notification

import (
	"time"

	"github.com/google/uuid"
)

// NotificationResponse is the public notification representation
type NotificationResponse struct {
	ID        uuid.UUID         `json:"id"`
	Type      Type              `json:"type"`
	Title     string            `json:"title"`
	Body      string            `json:"body,omitempty"`
	Data      *NotificationData `json:"data,omitempty"`
	IsRead    bool              `json:"is_read"`
	ReadAt    *time.Time        `json:"read_at,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
}

// UnreadCountResponse for the unread badge
type UnreadCountResponse struct {
	UnreadCount int `json:"unread_count"`
}

// NotificationResponseFromEntity converts entity to response
func NotificationResponseFromEntity(n *Notification) *NotificationResponse {
	resp := &NotificationResponse{
		ID:        n.ID,
		Type:      n.Type,
		Title:     n.Title,
		Data:      n.GetData(),
		IsRead:    n.IsRead,
		CreatedAt: n.CreatedAt,
	}
	if n.Body.Valid {
		resp.Body = n.Body.String
	}
	if n.ReadAt.Valid {
		t := n.ReadAt.Time
		resp.ReadAt = &t
	}
	return resp
}
