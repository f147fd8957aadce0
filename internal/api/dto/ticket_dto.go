package dto

import (
	"time"

	"github.com/spec-kit/support-ticket-service/internal/domain"
)

// CreateTicketRequest payload. RequesterID is honoured only for staff callers.
type CreateTicketRequest struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Category    string     `json:"category"`
	RequesterID string     `json:"requester_id"`
	Keywords    []string   `json:"keywords"`
	Attachments []string   `json:"attachments"`
	DueDate     *time.Time `json:"due_date"`
}

// UpdateTicketRequest payload. Omitted fields are left untouched.
type UpdateTicketRequest struct {
	Description *string                `json:"description"`
	Status      *domain.TicketStatus   `json:"status"`
	Priority    *domain.TicketPriority `json:"priority"`
	AssigneeID  *string                `json:"assignee_id"`
	Note        *string                `json:"note"`
	Attachments []string               `json:"attachments"`
}

// TicketResponse is the public representation of a ticket.
type TicketResponse struct {
	ID             string                `json:"id"`
	Title          string                `json:"title"`
	Description    string                `json:"description"`
	Category       string                `json:"category"`
	Priority       domain.TicketPriority `json:"priority"`
	Status         domain.TicketStatus   `json:"status"`
	RequesterID    string                `json:"requester_id"`
	AssigneeID     *string               `json:"assignee_id"`
	CreatedAt      time.Time             `json:"created_at"`
	UpdatedAt      time.Time             `json:"updated_at"`
	DueDate        *time.Time            `json:"due_date"`
	ClosedAt       *time.Time            `json:"closed_at"`
	ReopenDeadline *time.Time            `json:"reopen_deadline"`
}

// TicketListResponse is one page of tickets.
type TicketListResponse struct {
	Items    []TicketResponse `json:"items"`
	Total    int64            `json:"total"`
	Page     int              `json:"page"`
	PageSize int              `json:"page_size"`
}

// TicketHistoryResponse is one audit entry.
type TicketHistoryResponse struct {
	ID             string    `json:"id"`
	TicketID       string    `json:"ticket_id"`
	AuthorID       string    `json:"author_id"`
	Message        string    `json:"message"`
	StatusSnapshot string    `json:"status_snapshot"`
	CreatedAt      time.Time `json:"created_at"`
}

// AttachmentResponse metadata.
type AttachmentResponse struct {
	ID          string    `json:"id"`
	FileName    string    `json:"file_name"`
	StoragePath string    `json:"storage_path"`
	ContentType string    `json:"content_type"`
	CreatedAt   time.Time `json:"created_at"`
}

// SuggestionResponse links a ticket to a knowledge-base article.
type SuggestionResponse struct {
	ID        string    `json:"id"`
	ArticleID string    `json:"article_id"`
	Score     float64   `json:"score"`
	CreatedAt time.Time `json:"created_at"`
}

// NewTicketResponse maps a domain ticket.
func NewTicketResponse(ticket *domain.Ticket) TicketResponse {
	return TicketResponse{
		ID:             ticket.ID,
		Title:          ticket.Title,
		Description:    ticket.Description,
		Category:       ticket.Category,
		Priority:       ticket.Priority,
		Status:         ticket.Status,
		RequesterID:    ticket.RequesterID,
		AssigneeID:     ticket.AssigneeID,
		CreatedAt:      ticket.CreatedAt,
		UpdatedAt:      ticket.UpdatedAt,
		DueDate:        ticket.DueDate,
		ClosedAt:       ticket.ClosedAt,
		ReopenDeadline: ticket.ReopenDeadline,
	}
}

// NewHistoryResponses maps audit entries, keeping their order.
func NewHistoryResponses(entries []domain.TicketHistory) []TicketHistoryResponse {
	resp := make([]TicketHistoryResponse, 0, len(entries))
	for _, entry := range entries {
		resp = append(resp, TicketHistoryResponse{
			ID:             entry.ID,
			TicketID:       entry.TicketID,
			AuthorID:       entry.AuthorID,
			Message:        entry.Message,
			StatusSnapshot: entry.StatusSnapshot,
			CreatedAt:      entry.CreatedAt,
		})
	}
	return resp
}

// NewAttachmentResponses maps attachment rows.
func NewAttachmentResponses(attachments []domain.TicketAttachment) []AttachmentResponse {
	resp := make([]AttachmentResponse, 0, len(attachments))
	for _, att := range attachments {
		resp = append(resp, AttachmentResponse{
			ID:          att.ID,
			FileName:    att.FileName,
			StoragePath: att.StoragePath,
			ContentType: att.ContentType,
			CreatedAt:   att.CreatedAt,
		})
	}
	return resp
}

// NewSuggestionResponses maps suggestion rows.
func NewSuggestionResponses(suggestions []domain.KnowledgeSuggestion) []SuggestionResponse {
	resp := make([]SuggestionResponse, 0, len(suggestions))
	for _, s := range suggestions {
		resp = append(resp, SuggestionResponse{
			ID:        s.ID,
			ArticleID: s.ArticleID,
			Score:     s.Score,
			CreatedAt: s.CreatedAt,
		})
	}
	return resp
}
