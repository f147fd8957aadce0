package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresUnitOfWork wraps each Do call in one database transaction.
type PostgresUnitOfWork struct {
	pool *pgxpool.Pool
}

// NewPostgresUnitOfWork constructs the unit of work.
func NewPostgresUnitOfWork(pool *pgxpool.Pool) *PostgresUnitOfWork {
	return &PostgresUnitOfWork{pool: pool}
}

func (u *PostgresUnitOfWork) Do(ctx context.Context, fn func(ctx context.Context, repos Repositories) error) error {
	if u.pool == nil {
		return errors.New("postgres pool not configured")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	tx, err := u.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		// no-op once committed
		_ = tx.Rollback(context.WithoutCancel(ctx))
	}()

	if err := fn(ctx, NewPostgresRepositories(tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}
