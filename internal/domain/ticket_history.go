package domain

import "time"

// TicketHistory is an immutable audit trail entry.
type TicketHistory struct {
	ID             string
	TicketID       string
	AuthorID       string
	Message        string
	StatusSnapshot string
	CreatedAt      time.Time
}
