package repository

import (
	"context"

	"github.com/spec-kit/support-ticket-service/internal/domain"
)

// AttachmentRepository persists attachment metadata.
type AttachmentRepository interface {
	Create(ctx context.Context, attachment *domain.TicketAttachment) error
	ListByTicket(ctx context.Context, ticketID string) ([]domain.TicketAttachment, error)
}

type attachmentRepository struct {
	db DBTX
}

// NewAttachmentRepository constructs repository.
func NewAttachmentRepository(db DBTX) AttachmentRepository {
	return &attachmentRepository{db: db}
}

func (r *attachmentRepository) Create(ctx context.Context, attachment *domain.TicketAttachment) error {
	const query = `
        INSERT INTO ticket_attachments (id, ticket_id, file_name, storage_path, content_type, created_at)
        VALUES ($1,$2,$3,$4,$5,$6)`
	_, err := r.db.Exec(ctx, query,
		attachment.ID,
		attachment.TicketID,
		attachment.FileName,
		attachment.StoragePath,
		attachment.ContentType,
		attachment.CreatedAt,
	)
	return err
}

func (r *attachmentRepository) ListByTicket(ctx context.Context, ticketID string) ([]domain.TicketAttachment, error) {
	const query = `
        SELECT id, ticket_id, file_name, storage_path, content_type, created_at
        FROM ticket_attachments WHERE ticket_id=$1 ORDER BY created_at ASC`
	rows, err := r.db.Query(ctx, query, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.TicketAttachment{}
	for rows.Next() {
		var attachment domain.TicketAttachment
		if err := rows.Scan(
			&attachment.ID,
			&attachment.TicketID,
			&attachment.FileName,
			&attachment.StoragePath,
			&attachment.ContentType,
			&attachment.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, attachment)
	}
	return result, rows.Err()
}
