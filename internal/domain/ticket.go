package domain

import "time"

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusOpen         TicketStatus = "Open"
	TicketStatusInProgress   TicketStatus = "InProgress"
	TicketStatusAwaitingUser TicketStatus = "AwaitingUser"
	TicketStatusResolved     TicketStatus = "Resolved"
	TicketStatusClosed       TicketStatus = "Closed"
	TicketStatusReopened     TicketStatus = "Reopened"
)

// Valid reports whether s is a known status.
func (s TicketStatus) Valid() bool {
	switch s {
	case TicketStatusOpen, TicketStatusInProgress, TicketStatusAwaitingUser,
		TicketStatusResolved, TicketStatusClosed, TicketStatusReopened:
		return true
	}
	return false
}

// SetsClosedAt reports whether moving into s stamps the ticket's closing time.
func (s TicketStatus) SetsClosedAt() bool {
	return s == TicketStatusResolved || s == TicketStatusClosed
}

// TicketPriority enumerates SLA urgency.
type TicketPriority string

const (
	TicketPriorityLow      TicketPriority = "Low"
	TicketPriorityMedium   TicketPriority = "Medium"
	TicketPriorityHigh     TicketPriority = "High"
	TicketPriorityCritical TicketPriority = "Critical"
)

// Valid reports whether p is a known priority.
func (p TicketPriority) Valid() bool {
	switch p {
	case TicketPriorityLow, TicketPriorityMedium, TicketPriorityHigh, TicketPriorityCritical:
		return true
	}
	return false
}

// Ticket is the aggregate for support requests.
type Ticket struct {
	ID             string
	Title          string
	Description    string
	Category       string
	Priority       TicketPriority
	Status         TicketStatus
	RequesterID    string
	AssigneeID     *string
	CreatedAt      time.Time
	UpdatedAt      time.Time
	DueDate        *time.Time
	ClosedAt       *time.Time
	ReopenDeadline *time.Time
}
