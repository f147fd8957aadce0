package repository

import (
	"context"

	"github.com/spec-kit/support-ticket-service/internal/domain"
)

// NotificationRepository persists notification rows.
type NotificationRepository interface {
	Create(ctx context.Context, notification *domain.Notification) error
	GetByID(ctx context.Context, id string) (*domain.Notification, error)
	Update(ctx context.Context, notification *domain.Notification) error
	ListByUser(ctx context.Context, userID string, includeRead bool) ([]domain.Notification, error)
}

type notificationRepository struct {
	db DBTX
}

// NewNotificationRepository constructs repository.
func NewNotificationRepository(db DBTX) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Create(ctx context.Context, n *domain.Notification) error {
	const query = `
        INSERT INTO notifications (id, user_id, message, type, is_read, ticket_id, created_at, updated_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`
	_, err := r.db.Exec(ctx, query,
		n.ID,
		n.UserID,
		n.Message,
		n.Type,
		n.IsRead,
		n.TicketID,
		n.CreatedAt,
		n.UpdatedAt,
	)
	return err
}

func (r *notificationRepository) GetByID(ctx context.Context, id string) (*domain.Notification, error) {
	const query = `
        SELECT id, user_id, message, type, is_read, ticket_id, created_at, updated_at
        FROM notifications WHERE id=$1`
	var n domain.Notification
	if err := r.db.QueryRow(ctx, query, id).Scan(
		&n.ID,
		&n.UserID,
		&n.Message,
		&n.Type,
		&n.IsRead,
		&n.TicketID,
		&n.CreatedAt,
		&n.UpdatedAt,
	); err != nil {
		return nil, translate(err)
	}
	return &n, nil
}

// Update persists the read flag. Every other column is immutable.
func (r *notificationRepository) Update(ctx context.Context, n *domain.Notification) error {
	const query = `UPDATE notifications SET is_read=$1, updated_at=$2 WHERE id=$3`
	cmd, err := r.db.Exec(ctx, query, n.IsRead, n.UpdatedAt, n.ID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *notificationRepository) ListByUser(ctx context.Context, userID string, includeRead bool) ([]domain.Notification, error) {
	query := `
        SELECT id, user_id, message, type, is_read, ticket_id, created_at, updated_at
        FROM notifications WHERE user_id=$1`
	if !includeRead {
		query += ` AND is_read = FALSE`
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.Notification{}
	for rows.Next() {
		var n domain.Notification
		if err := rows.Scan(
			&n.ID,
			&n.UserID,
			&n.Message,
			&n.Type,
			&n.IsRead,
			&n.TicketID,
			&n.CreatedAt,
			&n.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, n)
	}
	return result, rows.Err()
}
