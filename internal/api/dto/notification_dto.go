package dto

import (
	"time"

	"github.com/spec-kit/support-ticket-service/internal/domain"
)

// SendNotificationRequest payload.
type SendNotificationRequest struct {
	UserID   string                  `json:"user_id"`
	Message  string                  `json:"message"`
	Type     domain.NotificationType `json:"type"`
	TicketID *string                 `json:"ticket_id"`
}

// NotificationResponse is the public representation of a notification.
type NotificationResponse struct {
	ID        string                  `json:"id"`
	UserID    string                  `json:"user_id"`
	Message   string                  `json:"message"`
	Type      domain.NotificationType `json:"type"`
	IsRead    bool                    `json:"is_read"`
	TicketID  *string                 `json:"ticket_id"`
	CreatedAt time.Time               `json:"created_at"`
	UpdatedAt time.Time               `json:"updated_at"`
}

// NewNotificationResponse maps a domain notification.
func NewNotificationResponse(n *domain.Notification) NotificationResponse {
	return NotificationResponse{
		ID:        n.ID,
		UserID:    n.UserID,
		Message:   n.Message,
		Type:      n.Type,
		IsRead:    n.IsRead,
		TicketID:  n.TicketID,
		CreatedAt: n.CreatedAt,
		UpdatedAt: n.UpdatedAt,
	}
}
