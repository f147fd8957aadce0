package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/support-ticket-service/internal/domain"
	"github.com/spec-kit/support-ticket-service/internal/events"
	"github.com/spec-kit/support-ticket-service/internal/observability"
	"github.com/spec-kit/support-ticket-service/internal/repository"
	"github.com/spec-kit/support-ticket-service/pkg/util/clock"
	apperrors "github.com/spec-kit/support-ticket-service/pkg/util/errorutil"
)

// EventPublishFailed is counted when a notification event handler fails.
const EventPublishFailed = "notification_event_failed"

// NotificationService persists notifications and announces them to
// downstream transports.
type NotificationService struct {
	uow        repository.UnitOfWork
	repos      repository.Repositories
	dispatcher events.Dispatcher
	logger     *zap.Logger
	metrics    *observability.Metrics
}

// NotificationDependencies bundles collaborators for the notification service.
type NotificationDependencies struct {
	UnitOfWork repository.UnitOfWork
	Repos      repository.Repositories
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
	Metrics    *observability.Metrics
}

// NotificationSendInput describes a manual notification.
type NotificationSendInput struct {
	UserID   string
	Message  string
	Type     domain.NotificationType
	TicketID *string
}

// NewNotificationService creates the service.
func NewNotificationService(deps NotificationDependencies) *NotificationService {
	return &NotificationService{
		uow:        deps.UnitOfWork,
		repos:      deps.Repos,
		dispatcher: deps.Dispatcher,
		logger:     observability.OrNop(deps.Logger),
		metrics:    deps.Metrics,
	}
}

// DispatchTicketUpdate creates one unread System notification per distinct
// recipient of ticket: the requester, then the assignee.
func (n *NotificationService) DispatchTicketUpdate(ctx context.Context, ticket *domain.Ticket, message string) ([]domain.Notification, error) {
	if ticket == nil {
		return nil, apperrors.NewValidationError("ticket is required", nil)
	}
	recipients := ticketRecipients(ticket)
	ticketID := ticket.ID

	created := make([]domain.Notification, 0, len(recipients))
	err := n.uow.Do(ctx, func(ctx context.Context, repos repository.Repositories) error {
		created = created[:0]
		now := clock.Now(ctx)
		for _, userID := range recipients {
			tid := ticketID
			notification := domain.Notification{
				ID:        uuid.NewString(),
				UserID:    userID,
				Message:   message,
				Type:      domain.NotificationTypeSystem,
				TicketID:  &tid,
				CreatedAt: now,
				UpdatedAt: now,
			}
			if err := repos.Notifications.Create(ctx, &notification); err != nil {
				return fmt.Errorf("create notification for %s: %w", userID, err)
			}
			created = append(created, notification)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	for i := range created {
		n.announce(ctx, created[i])
	}
	return created, nil
}

// SendNotification stores a single manually addressed notification.
func (n *NotificationService) SendNotification(ctx context.Context, input NotificationSendInput) (*domain.Notification, error) {
	userID := strings.TrimSpace(input.UserID)
	if userID == "" {
		return nil, apperrors.NewValidationError("user_id is required", map[string]any{"field": "user_id"})
	}
	if strings.TrimSpace(input.Message) == "" {
		return nil, apperrors.NewValidationError("message is required", map[string]any{"field": "message"})
	}
	if !input.Type.Valid() {
		return nil, apperrors.NewValidationError("invalid notification type", map[string]any{"type": input.Type})
	}

	var notification domain.Notification
	err := n.uow.Do(ctx, func(ctx context.Context, repos repository.Repositories) error {
		now := clock.Now(ctx)
		notification = domain.Notification{
			ID:        uuid.NewString(),
			UserID:    userID,
			Message:   input.Message,
			Type:      input.Type,
			TicketID:  input.TicketID,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := repos.Notifications.Create(ctx, &notification); err != nil {
			return fmt.Errorf("create notification: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	n.announce(ctx, notification)
	return &notification, nil
}

// MarkNotificationRead flags a notification as read. It reports false when
// the id is unknown and true otherwise, including when already read.
func (n *NotificationService) MarkNotificationRead(ctx context.Context, id string) (bool, error) {
	return n.markRead(ctx, id, "")
}

// MarkNotificationReadFor is MarkNotificationRead restricted to userID's own
// notifications. Someone else's notification is reported as missing.
func (n *NotificationService) MarkNotificationReadFor(ctx context.Context, id, userID string) (bool, error) {
	if strings.TrimSpace(userID) == "" {
		return false, apperrors.NewValidationError("user id required", nil)
	}
	return n.markRead(ctx, id, userID)
}

// markRead skips the ownership check when owner is empty.
func (n *NotificationService) markRead(ctx context.Context, id, owner string) (bool, error) {
	found := true
	err := n.uow.Do(ctx, func(ctx context.Context, repos repository.Repositories) error {
		notification, err := repos.Notifications.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				found = false
				return nil
			}
			return fmt.Errorf("load notification: %w", err)
		}
		if owner != "" && notification.UserID != owner {
			found = false
			return nil
		}
		notification.IsRead = true
		notification.UpdatedAt = clock.Now(ctx)
		if err := repos.Notifications.Update(ctx, notification); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				found = false
				return nil
			}
			return fmt.Errorf("mark notification read: %w", err)
		}
		return nil
	})
	if err != nil {
		return false, err
	}
	return found, nil
}

// ListUserNotifications returns a user's notifications, newest first.
func (n *NotificationService) ListUserNotifications(ctx context.Context, userID string, includeRead bool) ([]domain.Notification, error) {
	notifications, err := n.repos.Notifications.ListByUser(ctx, userID, includeRead)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	return notifications, nil
}

func ticketRecipients(ticket *domain.Ticket) []string {
	seen := make(map[string]struct{}, 2)
	recipients := make([]string, 0, 2)
	add := func(id string) {
		if id == "" {
			return
		}
		if _, ok := seen[id]; ok {
			return
		}
		seen[id] = struct{}{}
		recipients = append(recipients, id)
	}
	add(ticket.RequesterID)
	if ticket.AssigneeID != nil {
		add(*ticket.AssigneeID)
	}
	return recipients
}

func (n *NotificationService) announce(ctx context.Context, notification domain.Notification) {
	if n.dispatcher == nil {
		return
	}
	event := events.Event{
		ID:        uuid.NewString(),
		Type:      events.EventNotificationCreated,
		Timestamp: clock.Now(ctx),
		Payload: events.NotificationCreatedPayload{
			NotificationID: notification.ID,
			UserID:         notification.UserID,
			Message:        notification.Message,
			Type:           notification.Type,
			TicketID:       notification.TicketID,
			CreatedAt:      notification.CreatedAt,
		},
	}
	if notification.TicketID != nil {
		event.TicketID = *notification.TicketID
	}
	if err := n.dispatcher.Publish(ctx, event); err != nil {
		n.metrics.RecordEvent(EventPublishFailed)
		n.logger.Warn("notification event handler failed",
			zap.String("notification_id", notification.ID),
			zap.Error(err))
	}
}
