package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/support-ticket-service/internal/domain"
)

// TicketFilter captures listing parameters.
type TicketFilter struct {
	Status      *domain.TicketStatus
	RequesterID *string
	AssigneeID  *string
	Limit       int
	Offset      int
}

// TicketRepository encapsulates ticket persistence.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	Update(ctx context.Context, ticket *domain.Ticket) error
	GetByID(ctx context.Context, id string) (*domain.Ticket, error)
	List(ctx context.Context, filter TicketFilter) ([]domain.Ticket, int64, error)
}

type ticketRepository struct {
	db DBTX
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(db DBTX) TicketRepository {
	return &ticketRepository{db: db}
}

const ticketColumns = `id, title, description, category, priority, status, requester_id, assignee_id,
               created_at, updated_at, due_date, closed_at, reopen_deadline`

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO tickets (id, title, description, category, priority, status, requester_id, assignee_id,
            created_at, updated_at, due_date, closed_at, reopen_deadline)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)`
	_, err := r.db.Exec(ctx, query,
		ticket.ID,
		ticket.Title,
		ticket.Description,
		ticket.Category,
		ticket.Priority,
		ticket.Status,
		ticket.RequesterID,
		ticket.AssigneeID,
		ticket.CreatedAt,
		ticket.UpdatedAt,
		ticket.DueDate,
		ticket.ClosedAt,
		ticket.ReopenDeadline,
	)
	return err
}

// Update rewrites the mutable columns. reopen_deadline and requester_id are never touched.
func (r *ticketRepository) Update(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        UPDATE tickets SET description=$1, category=$2, priority=$3, status=$4, assignee_id=$5,
            updated_at=$6, due_date=$7, closed_at=$8
        WHERE id=$9`
	cmd, err := r.db.Exec(ctx, query,
		ticket.Description,
		ticket.Category,
		ticket.Priority,
		ticket.Status,
		ticket.AssigneeID,
		ticket.UpdatedAt,
		ticket.DueDate,
		ticket.ClosedAt,
		ticket.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *ticketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE id=$1`
	ticket, err := scanTicket(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, translate(err)
	}
	return ticket, nil
}

func (r *ticketRepository) List(ctx context.Context, filter TicketFilter) ([]domain.Ticket, int64, error) {
	clauses := []string{"1=1"}
	args := []any{}

	if filter.Status != nil {
		args = append(args, *filter.Status)
		clauses = append(clauses, fmt.Sprintf("status=$%d", len(args)))
	}
	if filter.RequesterID != nil {
		args = append(args, *filter.RequesterID)
		clauses = append(clauses, fmt.Sprintf("requester_id=$%d", len(args)))
	}
	if filter.AssigneeID != nil {
		args = append(args, *filter.AssigneeID)
		clauses = append(clauses, fmt.Sprintf("assignee_id=$%d", len(args)))
	}
	where := strings.Join(clauses, " AND ")

	var total int64
	if err := r.db.QueryRow(ctx, "SELECT COUNT(*) FROM tickets WHERE "+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}
	query := fmt.Sprintf(`SELECT %s FROM tickets WHERE %s ORDER BY created_at DESC LIMIT %d OFFSET %d`,
		ticketColumns, where, limit, offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var result []domain.Ticket
	for rows.Next() {
		ticket, err := scanTicket(rows)
		if err != nil {
			return nil, 0, err
		}
		result = append(result, *ticket)
	}
	return result, total, rows.Err()
}

func scanTicket(row pgx.Row) (*domain.Ticket, error) {
	var ticket domain.Ticket
	if err := row.Scan(
		&ticket.ID,
		&ticket.Title,
		&ticket.Description,
		&ticket.Category,
		&ticket.Priority,
		&ticket.Status,
		&ticket.RequesterID,
		&ticket.AssigneeID,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
		&ticket.DueDate,
		&ticket.ClosedAt,
		&ticket.ReopenDeadline,
	); err != nil {
		return nil, err
	}
	return &ticket, nil
}
