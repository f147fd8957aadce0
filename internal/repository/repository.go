package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// ErrNotFound is returned by repositories when a lookup matches no row.
var ErrNotFound = errors.New("record not found")

// DBTX is satisfied by both *pgxpool.Pool and pgx.Tx.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repositories bundles the per-entity repositories bound to one connection or transaction.
type Repositories struct {
	Tickets       TicketRepository
	History       TicketHistoryRepository
	Attachments   AttachmentRepository
	Suggestions   SuggestionRepository
	Notifications NotificationRepository
	Users         UserRepository
	Articles      ArticleRepository
}

// UnitOfWork runs fn against transaction-bound repositories and commits
// every staged write together when fn returns nil. Any error from fn, or a
// cancelled context, discards all of them.
type UnitOfWork interface {
	Do(ctx context.Context, fn func(ctx context.Context, repos Repositories) error) error
}

// NewPostgresRepositories binds every repository to db.
func NewPostgresRepositories(db DBTX) Repositories {
	return Repositories{
		Tickets:       NewTicketRepository(db),
		History:       NewTicketHistoryRepository(db),
		Attachments:   NewAttachmentRepository(db),
		Suggestions:   NewSuggestionRepository(db),
		Notifications: NewNotificationRepository(db),
		Users:         NewUserRepository(db),
		Articles:      NewArticleRepository(db),
	}
}

func translate(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}
