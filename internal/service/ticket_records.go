package service

import (
	"context"
	"fmt"
	"mime"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/support-ticket-service/internal/domain"
	"github.com/spec-kit/support-ticket-service/internal/repository"
)

const (
	defaultContentType     = "application/octet-stream"
	defaultSuggestionScore = 0.8
)

// recordHistory stages one immutable audit entry carrying the ticket's
// status as it stands after the mutation.
func recordHistory(ctx context.Context, repos repository.Repositories, ticket *domain.Ticket, authorID, message string, now time.Time) error {
	entry := &domain.TicketHistory{
		ID:             uuid.NewString(),
		TicketID:       ticket.ID,
		AuthorID:       authorID,
		Message:        message,
		StatusSnapshot: string(ticket.Status),
		CreatedAt:      now,
	}
	if err := repos.History.Create(ctx, entry); err != nil {
		return fmt.Errorf("record history: %w", err)
	}
	return nil
}

// registerAttachments stages metadata for each file name. Bytes are stored elsewhere.
func registerAttachments(ctx context.Context, repos repository.Repositories, ticketID string, fileNames []string, now time.Time) error {
	for _, name := range fileNames {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		attachment := &domain.TicketAttachment{
			ID:          uuid.NewString(),
			TicketID:    ticketID,
			FileName:    name,
			StoragePath: attachmentPath(ticketID, name),
			ContentType: contentTypeFor(name),
			CreatedAt:   now,
		}
		if err := repos.Attachments.Create(ctx, attachment); err != nil {
			return fmt.Errorf("register attachment %q: %w", name, err)
		}
	}
	return nil
}

// linkSuggestions stages one scored link per related article. Repeated calls append.
func linkSuggestions(ctx context.Context, repos repository.Repositories, ticketID string, articleIDs []string, now time.Time) error {
	for _, articleID := range articleIDs {
		suggestion := &domain.KnowledgeSuggestion{
			ID:        uuid.NewString(),
			TicketID:  ticketID,
			ArticleID: articleID,
			Score:     defaultSuggestionScore,
			CreatedAt: now,
		}
		if err := repos.Suggestions.Create(ctx, suggestion); err != nil {
			return fmt.Errorf("link suggestion %s: %w", articleID, err)
		}
	}
	return nil
}

func attachmentPath(ticketID, fileName string) string {
	return path.Join("/attachments", ticketID, fileName)
}

func contentTypeFor(fileName string) string {
	if ct := mime.TypeByExtension(strings.ToLower(filepath.Ext(fileName))); ct != "" {
		return ct
	}
	return defaultContentType
}
