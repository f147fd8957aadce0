package domain

import "time"

// NotificationType names the channel a notification is meant for.
type NotificationType string

const (
	NotificationTypeEmail  NotificationType = "Email"
	NotificationTypePush   NotificationType = "Push"
	NotificationTypeSystem NotificationType = "System"
)

// Valid reports whether t is a known notification type.
func (t NotificationType) Valid() bool {
	switch t {
	case NotificationTypeEmail, NotificationTypePush, NotificationTypeSystem:
		return true
	}
	return false
}

// Notification is a message addressed to one user.
type Notification struct {
	ID        string
	UserID    string
	Message   string
	Type      NotificationType
	IsRead    bool
	TicketID  *string
	CreatedAt time.Time
	UpdatedAt time.Time
}
