package repository

import (
	"context"

	"github.com/spec-kit/support-ticket-service/internal/domain"
)

// TicketHistoryRepository stores audit entries. There is deliberately no update or delete.
type TicketHistoryRepository interface {
	Create(ctx context.Context, history *domain.TicketHistory) error
	ListByTicket(ctx context.Context, ticketID string) ([]domain.TicketHistory, error)
}

type ticketHistoryRepository struct {
	db DBTX
}

// NewTicketHistoryRepository builds repository.
func NewTicketHistoryRepository(db DBTX) TicketHistoryRepository {
	return &ticketHistoryRepository{db: db}
}

func (r *ticketHistoryRepository) Create(ctx context.Context, history *domain.TicketHistory) error {
	const query = `
        INSERT INTO ticket_history (id, ticket_id, author_id, message, status_snapshot, created_at)
        VALUES ($1,$2,$3,$4,$5,$6)`
	_, err := r.db.Exec(ctx, query,
		history.ID,
		history.TicketID,
		history.AuthorID,
		history.Message,
		history.StatusSnapshot,
		history.CreatedAt,
	)
	return err
}

// ListByTicket returns entries newest first; seq breaks ties between entries sharing a timestamp.
func (r *ticketHistoryRepository) ListByTicket(ctx context.Context, ticketID string) ([]domain.TicketHistory, error) {
	const query = `
        SELECT id, ticket_id, author_id, message, status_snapshot, created_at
        FROM ticket_history WHERE ticket_id=$1 ORDER BY created_at DESC, seq DESC`
	rows, err := r.db.Query(ctx, query, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.TicketHistory{}
	for rows.Next() {
		var history domain.TicketHistory
		if err := rows.Scan(
			&history.ID,
			&history.TicketID,
			&history.AuthorID,
			&history.Message,
			&history.StatusSnapshot,
			&history.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, history)
	}
	return result, rows.Err()
}
