package repository

import (
	"context"
)

// ArticleRepository gives read access to knowledge-base articles.
type ArticleRepository interface {
	// FindPublishedContaining returns ids of published articles whose lowercased
	// title, content or keywords contain text verbatim, most recently updated first.
	FindPublishedContaining(ctx context.Context, text string, limit int) ([]string, error)
}

type articleRepository struct {
	db DBTX
}

// NewArticleRepository constructs repository.
func NewArticleRepository(db DBTX) ArticleRepository {
	return &articleRepository{db: db}
}

// strpos keeps the match literal, so % and _ in text are not wildcards.
func (r *articleRepository) FindPublishedContaining(ctx context.Context, text string, limit int) ([]string, error) {
	const query = `
        SELECT id FROM knowledge_base_articles
        WHERE is_published = TRUE
          AND (strpos(LOWER(title), $1) > 0 OR strpos(LOWER(content), $1) > 0 OR strpos(LOWER(keywords), $1) > 0)
        ORDER BY updated_at DESC
        LIMIT $2`
	rows, err := r.db.Query(ctx, query, text, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
