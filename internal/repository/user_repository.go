package repository

import (
	"context"

	"github.com/spec-kit/support-ticket-service/internal/domain"
)

// UserRepository gives read access to accounts owned by the user module.
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
}

type userRepository struct {
	db DBTX
}

// NewUserRepository returns a Postgres-backed implementation.
func NewUserRepository(db DBTX) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	const query = `
        SELECT id, full_name, email, role, created_at, updated_at
        FROM users WHERE id=$1`

	var user domain.User
	if err := r.db.QueryRow(ctx, query, id).Scan(
		&user.ID,
		&user.FullName,
		&user.Email,
		&user.Role,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		return nil, translate(err)
	}
	return &user, nil
}
