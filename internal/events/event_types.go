package events

import (
	"time"

	"github.com/spec-kit/support-ticket-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventNotificationCreated EventType = "notification_created"
)

// Event represents a domain event emitted by services after a commit.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	TicketID  string      `json:"ticket_id,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// NotificationCreatedPayload carries a persisted notification to downstream transports.
type NotificationCreatedPayload struct {
	NotificationID string                  `json:"notification_id"`
	UserID         string                  `json:"user_id"`
	Message        string                  `json:"message"`
	Type           domain.NotificationType `json:"type"`
	TicketID       *string                 `json:"ticket_id,omitempty"`
	CreatedAt      time.Time               `json:"created_at"`
}
