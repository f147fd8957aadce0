package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/support-ticket-service/internal/classifier"
	"github.com/spec-kit/support-ticket-service/internal/domain"
	"github.com/spec-kit/support-ticket-service/internal/observability"
	"github.com/spec-kit/support-ticket-service/internal/repository"
	"github.com/spec-kit/support-ticket-service/pkg/util/clock"
	apperrors "github.com/spec-kit/support-ticket-service/pkg/util/errorutil"
)

// ReopenWindow is how long after creation the requester may reopen a ticket.
const ReopenWindow = 48 * time.Hour

const (
	defaultPageSize = 20
	maxPageSize     = 100

	// EventDispatchFailed is the metrics event counted when a post-commit
	// notification fan-out fails.
	EventDispatchFailed = "notification_dispatch_failed"
)

const (
	historyOpened   = "ticket opened by requester"
	historyUpdated  = "ticket updated"
	historyReopened = "ticket reopened by requester"

	notifyOpened   = "ticket opened and awaiting attention"
	notifyReopened = "ticket reopened for further analysis"
)

// Classifier suggests a category, a priority label and related articles.
type Classifier interface {
	Analyze(ctx context.Context, title, description string, keywords []string) (classifier.Result, error)
}

// Notifier fans out a ticket event to interested users.
type Notifier interface {
	DispatchTicketUpdate(ctx context.Context, ticket *domain.Ticket, message string) ([]domain.Notification, error)
}

// TicketService coordinates ticket workflows. It is the only writer of ticket state.
type TicketService struct {
	uow        repository.UnitOfWork
	repos      repository.Repositories
	classifier Classifier
	notifier   Notifier
	logger     *zap.Logger
	metrics    *observability.Metrics
}

// TicketDependencies bundles collaborators for the ticket service. Repos
// serves reads outside a unit of work.
type TicketDependencies struct {
	UnitOfWork repository.UnitOfWork
	Repos      repository.Repositories
	Classifier Classifier
	Notifier   Notifier
	Logger     *zap.Logger
	Metrics    *observability.Metrics
}

// TicketCreateInput describes ticket creation payload.
type TicketCreateInput struct {
	Title           string
	Description     string
	Category        string
	RequesterID     string
	Keywords        []string
	AttachmentNames []string
	DueDate         *time.Time
}

// TicketUpdateInput describes a partial update. Nil fields are left untouched.
type TicketUpdateInput struct {
	Description     *string
	Status          *domain.TicketStatus
	Priority        *domain.TicketPriority
	AssigneeID      *string
	Note            *string
	AttachmentNames []string
}

// TicketListFilter describes listing filters.
type TicketListFilter struct {
	Status      *domain.TicketStatus
	RequesterID *string
	AssigneeID  *string
	Limit       int
	Offset      int
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	return &TicketService{
		uow:        deps.UnitOfWork,
		repos:      deps.Repos,
		classifier: deps.Classifier,
		notifier:   deps.Notifier,
		logger:     observability.OrNop(deps.Logger),
		metrics:    deps.Metrics,
	}
}

// CreateTicket classifies and opens a ticket for an existing requester.
func (s *TicketService) CreateTicket(ctx context.Context, input TicketCreateInput) (*domain.Ticket, error) {
	title := strings.TrimSpace(input.Title)
	requesterID := strings.TrimSpace(input.RequesterID)
	if title == "" {
		return nil, apperrors.NewValidationError("title is required", map[string]any{"field": "title"})
	}
	if requesterID == "" {
		return nil, apperrors.NewValidationError("requester_id is required", map[string]any{"field": "requester_id"})
	}

	var ticket *domain.Ticket
	err := s.uow.Do(ctx, func(ctx context.Context, repos repository.Repositories) error {
		if _, err := repos.Users.GetByID(ctx, requesterID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return apperrors.NewNotFound("requester", map[string]any{"id": requesterID})
			}
			return fmt.Errorf("load requester: %w", err)
		}

		analysis, err := s.classifier.Analyze(ctx, title, input.Description, input.Keywords)
		if err != nil {
			return fmt.Errorf("classify ticket: %w", err)
		}

		now := clock.Now(ctx)
		deadline := now.Add(ReopenWindow)
		category := strings.TrimSpace(input.Category)
		if category == "" {
			category = analysis.Category
		}

		ticket = &domain.Ticket{
			ID:             uuid.NewString(),
			Title:          title,
			Description:    input.Description,
			Category:       category,
			Priority:       ParsePriority(analysis.SuggestedPriority),
			Status:         domain.TicketStatusOpen,
			RequesterID:    requesterID,
			CreatedAt:      now,
			UpdatedAt:      now,
			DueDate:        input.DueDate,
			ReopenDeadline: &deadline,
		}
		if err := repos.Tickets.Create(ctx, ticket); err != nil {
			return fmt.Errorf("create ticket: %w", err)
		}
		if err := registerAttachments(ctx, repos, ticket.ID, input.AttachmentNames, now); err != nil {
			return err
		}
		if err := linkSuggestions(ctx, repos, ticket.ID, analysis.RelatedArticleIDs, now); err != nil {
			return err
		}
		return recordHistory(ctx, repos, ticket, requesterID, historyOpened, now)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("ticket created",
		zap.String("ticket_id", ticket.ID),
		zap.String("category", ticket.Category),
		zap.String("priority", string(ticket.Priority)))
	s.dispatch(ctx, ticket, notifyOpened)
	return ticket, nil
}

// UpdateTicket applies the supplied fields to an existing ticket.
func (s *TicketService) UpdateTicket(ctx context.Context, id string, input TicketUpdateInput) (*domain.Ticket, error) {
	if input.Status != nil && !input.Status.Valid() {
		return nil, apperrors.NewValidationError("invalid status", map[string]any{"status": *input.Status})
	}
	if input.Priority != nil && !input.Priority.Valid() {
		return nil, apperrors.NewValidationError("invalid priority", map[string]any{"priority": *input.Priority})
	}

	message := historyUpdated
	if input.Note != nil && strings.TrimSpace(*input.Note) != "" {
		message = strings.TrimSpace(*input.Note)
	}

	var ticket *domain.Ticket
	err := s.uow.Do(ctx, func(ctx context.Context, repos repository.Repositories) error {
		current, err := s.loadTicket(ctx, repos, id)
		if err != nil {
			return err
		}
		now := clock.Now(ctx)

		if input.Description != nil {
			current.Description = *input.Description
		}
		if input.Priority != nil {
			current.Priority = *input.Priority
		}
		if input.AssigneeID != nil {
			if assignee := strings.TrimSpace(*input.AssigneeID); assignee != "" {
				current.AssigneeID = &assignee
			} else {
				current.AssigneeID = nil
			}
		}
		if input.Status != nil {
			current.Status = *input.Status
			if current.Status.SetsClosedAt() {
				closedAt := now
				current.ClosedAt = &closedAt
			}
		}
		current.UpdatedAt = now

		if err := repos.Tickets.Update(ctx, current); err != nil {
			return fmt.Errorf("update ticket: %w", err)
		}
		if err := registerAttachments(ctx, repos, current.ID, input.AttachmentNames, now); err != nil {
			return err
		}
		if err := recordHistory(ctx, repos, current, updateAuthor(current, input), message, now); err != nil {
			return err
		}
		ticket = current
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("ticket updated",
		zap.String("ticket_id", ticket.ID),
		zap.String("status", string(ticket.Status)))
	s.dispatch(ctx, ticket, message)
	return ticket, nil
}

// ReopenTicket moves a ticket to Reopened when the original requester asks
// inside the reopen window. ClosedAt is kept as it was.
func (s *TicketService) ReopenTicket(ctx context.Context, id, requesterID string) (*domain.Ticket, error) {
	var ticket *domain.Ticket
	err := s.uow.Do(ctx, func(ctx context.Context, repos repository.Repositories) error {
		current, err := s.loadTicket(ctx, repos, id)
		if err != nil {
			return err
		}
		now := clock.Now(ctx)

		if current.ReopenDeadline == nil || !now.Before(*current.ReopenDeadline) {
			details := map[string]any{"ticket_id": current.ID}
			if current.ReopenDeadline != nil {
				details["reopen_deadline"] = current.ReopenDeadline.Format(time.RFC3339)
			}
			return apperrors.NewDeadlineExpired("reopen window has expired", details)
		}
		if current.RequesterID != requesterID {
			return apperrors.NewReopenUnauthorized("only the original requester may reopen this ticket")
		}

		current.Status = domain.TicketStatusReopened
		current.UpdatedAt = now
		if err := repos.Tickets.Update(ctx, current); err != nil {
			return fmt.Errorf("reopen ticket: %w", err)
		}
		if err := recordHistory(ctx, repos, current, requesterID, historyReopened, now); err != nil {
			return err
		}
		ticket = current
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("ticket reopened", zap.String("ticket_id", ticket.ID))
	s.dispatch(ctx, ticket, notifyReopened)
	return ticket, nil
}

// GetTicketHistory returns audit entries newest first. Unknown ids yield an empty slice.
func (s *TicketService) GetTicketHistory(ctx context.Context, id string) ([]domain.TicketHistory, error) {
	entries, err := s.repos.History.ListByTicket(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	if entries == nil {
		entries = []domain.TicketHistory{}
	}
	return entries, nil
}

// GetTicket fetches one ticket.
func (s *TicketService) GetTicket(ctx context.Context, id string) (*domain.Ticket, error) {
	return s.loadTicket(ctx, s.repos, id)
}

// ListTickets pages through tickets, newest first.
func (s *TicketService) ListTickets(ctx context.Context, filter TicketListFilter) ([]domain.Ticket, int64, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}
	if filter.Status != nil && !filter.Status.Valid() {
		return nil, 0, apperrors.NewValidationError("invalid status", map[string]any{"status": *filter.Status})
	}

	tickets, total, err := s.repos.Tickets.List(ctx, repository.TicketFilter{
		Status:      filter.Status,
		RequesterID: filter.RequesterID,
		AssigneeID:  filter.AssigneeID,
		Limit:       limit,
		Offset:      offset,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("list tickets: %w", err)
	}
	return tickets, total, nil
}

// ListTicketAttachments returns attachment metadata registered for a ticket.
func (s *TicketService) ListTicketAttachments(ctx context.Context, id string) ([]domain.TicketAttachment, error) {
	if _, err := s.loadTicket(ctx, s.repos, id); err != nil {
		return nil, err
	}
	attachments, err := s.repos.Attachments.ListByTicket(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("list attachments: %w", err)
	}
	return attachments, nil
}

// ListTicketSuggestions returns the knowledge-base links offered at creation.
func (s *TicketService) ListTicketSuggestions(ctx context.Context, id string) ([]domain.KnowledgeSuggestion, error) {
	if _, err := s.loadTicket(ctx, s.repos, id); err != nil {
		return nil, err
	}
	suggestions, err := s.repos.Suggestions.ListByTicket(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("list suggestions: %w", err)
	}
	return suggestions, nil
}

// ParsePriority maps a classifier label to a priority. Unknown labels are Medium.
func ParsePriority(label string) domain.TicketPriority {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "baixa":
		return domain.TicketPriorityLow
	case "alta":
		return domain.TicketPriorityHigh
	case "crítica", "critica":
		return domain.TicketPriorityCritical
	default:
		return domain.TicketPriorityMedium
	}
}

func (s *TicketService) loadTicket(ctx context.Context, repos repository.Repositories, id string) (*domain.Ticket, error) {
	ticket, err := repos.Tickets.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"id": id})
		}
		return nil, fmt.Errorf("load ticket: %w", err)
	}
	return ticket, nil
}

// updateAuthor picks the supplied assignee, then the current assignee, then the requester.
func updateAuthor(ticket *domain.Ticket, input TicketUpdateInput) string {
	if input.AssigneeID != nil {
		if assignee := strings.TrimSpace(*input.AssigneeID); assignee != "" {
			return assignee
		}
	}
	if ticket.AssigneeID != nil && *ticket.AssigneeID != "" {
		return *ticket.AssigneeID
	}
	return ticket.RequesterID
}

// dispatch runs after commit. A failure is reported but never undoes the mutation.
func (s *TicketService) dispatch(ctx context.Context, ticket *domain.Ticket, message string) {
	if s.notifier == nil {
		return
	}
	if _, err := s.notifier.DispatchTicketUpdate(ctx, ticket, message); err != nil {
		s.metrics.RecordEvent(EventDispatchFailed)
		s.logger.Error("notification dispatch failed",
			zap.String("ticket_id", ticket.ID),
			zap.Error(err))
	}
}
