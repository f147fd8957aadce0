package domain

import "time"

// TicketAttachment stores metadata for a file associated with a ticket.
// The bytes themselves live outside this service.
type TicketAttachment struct {
	ID          string
	TicketID    string
	FileName    string
	StoragePath string
	ContentType string
	CreatedAt   time.Time
}
