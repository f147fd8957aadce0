package domain

import "time"

// KnowledgeBaseArticle is owned by the knowledge-base module; tickets only read it.
type KnowledgeBaseArticle struct {
	ID          string
	Title       string
	Category    string
	Content     string
	Keywords    string
	IsPublished bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// KnowledgeSuggestion links a ticket to an article offered at intake.
type KnowledgeSuggestion struct {
	ID        string
	TicketID  string
	ArticleID string
	Score     float64
	CreatedAt time.Time
}
