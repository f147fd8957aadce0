package repository

import (
	"context"

	"github.com/spec-kit/support-ticket-service/internal/domain"
)

// SuggestionRepository persists ticket to knowledge-base links.
type SuggestionRepository interface {
	Create(ctx context.Context, suggestion *domain.KnowledgeSuggestion) error
	ListByTicket(ctx context.Context, ticketID string) ([]domain.KnowledgeSuggestion, error)
}

type suggestionRepository struct {
	db DBTX
}

// NewSuggestionRepository constructs repository.
func NewSuggestionRepository(db DBTX) SuggestionRepository {
	return &suggestionRepository{db: db}
}

func (r *suggestionRepository) Create(ctx context.Context, suggestion *domain.KnowledgeSuggestion) error {
	const query = `
        INSERT INTO ticket_kb_suggestions (id, ticket_id, article_id, score, created_at)
        VALUES ($1,$2,$3,$4,$5)`
	_, err := r.db.Exec(ctx, query,
		suggestion.ID,
		suggestion.TicketID,
		suggestion.ArticleID,
		suggestion.Score,
		suggestion.CreatedAt,
	)
	return err
}

func (r *suggestionRepository) ListByTicket(ctx context.Context, ticketID string) ([]domain.KnowledgeSuggestion, error) {
	const query = `
        SELECT id, ticket_id, article_id, score, created_at
        FROM ticket_kb_suggestions WHERE ticket_id=$1 ORDER BY created_at ASC`
	rows, err := r.db.Query(ctx, query, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.KnowledgeSuggestion{}
	for rows.Next() {
		var s domain.KnowledgeSuggestion
		if err := rows.Scan(&s.ID, &s.TicketID, &s.ArticleID, &s.Score, &s.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, s)
	}
	return result, rows.Err()
}
