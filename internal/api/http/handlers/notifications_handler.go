package handlers

import (
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/support-ticket-service/internal/api/dto"
	"github.com/spec-kit/support-ticket-service/internal/auth"
	"github.com/spec-kit/support-ticket-service/internal/service"
	apperrors "github.com/spec-kit/support-ticket-service/pkg/util/errorutil"
)

// NotificationsHandler exposes the caller's notifications.
type NotificationsHandler struct {
	service *service.NotificationService
}

// NewNotificationsHandler constructs handler.
func NewNotificationsHandler(notificationService *service.NotificationService) *NotificationsHandler {
	return &NotificationsHandler{service: notificationService}
}

// Send POST /api/notifications. Restricted to staff by the router.
func (h *NotificationsHandler) Send(c *fiber.Ctx) error {
	var req dto.SendNotificationRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	notification, err := h.service.SendNotification(c.UserContext(), service.NotificationSendInput{
		UserID:   req.UserID,
		Message:  req.Message,
		Type:     req.Type,
		TicketID: req.TicketID,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewNotificationResponse(notification)})
}

// List GET /api/notifications?include_read=true.
func (h *NotificationsHandler) List(c *fiber.Ctx) error {
	principal, err := requirePrincipal(c)
	if err != nil {
		return err
	}
	includeRead := false
	if raw := c.Query("include_read"); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			return apperrors.NewValidationError("include_read must be a boolean", map[string]any{"include_read": raw})
		}
		includeRead = parsed
	}
	notifications, err := h.service.ListUserNotifications(c.UserContext(), principal.ID(), includeRead)
	if err != nil {
		return err
	}
	items := make([]dto.NotificationResponse, 0, len(notifications))
	for i := range notifications {
		items = append(items, dto.NewNotificationResponse(&notifications[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// MarkRead POST /api/notifications/:id/read. Customers may only mark their
// own notifications; anything else answers 404.
func (h *NotificationsHandler) MarkRead(c *fiber.Ctx) error {
	principal, err := requirePrincipal(c)
	if err != nil {
		return err
	}
	id := c.Params("id")
	var updated bool
	if auth.IsStaff(principal.Role()) {
		updated, err = h.service.MarkNotificationRead(c.UserContext(), id)
	} else {
		updated, err = h.service.MarkNotificationReadFor(c.UserContext(), id, principal.ID())
	}
	if err != nil {
		return err
	}
	if !updated {
		return apperrors.NewNotFound("notification", map[string]any{"id": id})
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"id": id, "is_read": true}})
}
