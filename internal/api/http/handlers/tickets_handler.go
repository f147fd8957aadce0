package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/support-ticket-service/internal/api/dto"
	"github.com/spec-kit/support-ticket-service/internal/auth"
	"github.com/spec-kit/support-ticket-service/internal/domain"
	"github.com/spec-kit/support-ticket-service/internal/service"
	apperrors "github.com/spec-kit/support-ticket-service/pkg/util/errorutil"
)

// TicketsHandler manages ticket endpoints. Customers only see their own
// tickets; technicians and managers see all of them.
type TicketsHandler struct {
	service *service.TicketService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(ticketService *service.TicketService) *TicketsHandler {
	return &TicketsHandler{service: ticketService}
}

// CreateTicket POST /api/tickets.
func (h *TicketsHandler) CreateTicket(c *fiber.Ctx) error {
	principal, err := requirePrincipal(c)
	if err != nil {
		return err
	}
	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if strings.TrimSpace(req.Title) == "" {
		return apperrors.NewValidationError("title required", nil)
	}

	requesterID := principal.ID()
	if auth.IsStaff(principal.Role()) && strings.TrimSpace(req.RequesterID) != "" {
		requesterID = req.RequesterID
	}

	ticket, err := h.service.CreateTicket(c.UserContext(), service.TicketCreateInput{
		Title:           req.Title,
		Description:     req.Description,
		Category:        req.Category,
		RequesterID:     requesterID,
		Keywords:        req.Keywords,
		AttachmentNames: req.Attachments,
		DueDate:         req.DueDate,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewTicketResponse(ticket)})
}

// ListTickets GET /api/tickets.
func (h *TicketsHandler) ListTickets(c *fiber.Ctx) error {
	principal, err := requirePrincipal(c)
	if err != nil {
		return err
	}
	page := parseInt(c.Query("page"), 1)
	pageSize := parseInt(c.Query("page_size"), 20)
	filter := service.TicketListFilter{
		Status:     optionalStatus(c.Query("status")),
		AssigneeID: optionalString(c.Query("assignee_id")),
		Limit:      pageSize,
		Offset:     (page - 1) * pageSize,
	}
	if auth.IsStaff(principal.Role()) {
		filter.RequesterID = optionalString(c.Query("requester_id"))
	} else {
		own := principal.ID()
		filter.RequesterID = &own
	}

	tickets, total, err := h.service.ListTickets(c.UserContext(), filter)
	if err != nil {
		return err
	}
	items := make([]dto.TicketResponse, 0, len(tickets))
	for i := range tickets {
		items = append(items, dto.NewTicketResponse(&tickets[i]))
	}
	return c.JSON(fiber.Map{"data": dto.TicketListResponse{
		Items:    items,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	}})
}

// GetTicket GET /api/tickets/:id.
func (h *TicketsHandler) GetTicket(c *fiber.Ctx) error {
	ticket, err := h.visibleTicket(c)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketResponse(ticket)})
}

// UpdateTicket PUT /api/tickets/:id. Restricted to staff by the router.
func (h *TicketsHandler) UpdateTicket(c *fiber.Ctx) error {
	var req dto.UpdateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	ticket, err := h.service.UpdateTicket(c.UserContext(), c.Params("id"), service.TicketUpdateInput{
		Description:     req.Description,
		Status:          req.Status,
		Priority:        req.Priority,
		AssigneeID:      req.AssigneeID,
		Note:            req.Note,
		AttachmentNames: req.Attachments,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketResponse(ticket)})
}

// ReopenTicket POST /api/tickets/:id/reopen. The caller is the requester.
func (h *TicketsHandler) ReopenTicket(c *fiber.Ctx) error {
	principal, err := requirePrincipal(c)
	if err != nil {
		return err
	}
	ticket, err := h.service.ReopenTicket(c.UserContext(), c.Params("id"), principal.ID())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketResponse(ticket)})
}

// GetTicketHistory GET /api/tickets/:id/history.
func (h *TicketsHandler) GetTicketHistory(c *fiber.Ctx) error {
	principal, err := requirePrincipal(c)
	if err != nil {
		return err
	}
	if !auth.IsStaff(principal.Role()) {
		if _, err := h.visibleTicket(c); err != nil {
			return err
		}
	}
	entries, err := h.service.GetTicketHistory(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewHistoryResponses(entries)})
}

// ListAttachments GET /api/tickets/:id/attachments.
func (h *TicketsHandler) ListAttachments(c *fiber.Ctx) error {
	if _, err := h.visibleTicket(c); err != nil {
		return err
	}
	attachments, err := h.service.ListTicketAttachments(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewAttachmentResponses(attachments)})
}

// ListSuggestions GET /api/tickets/:id/suggestions.
func (h *TicketsHandler) ListSuggestions(c *fiber.Ctx) error {
	if _, err := h.visibleTicket(c); err != nil {
		return err
	}
	suggestions, err := h.service.ListTicketSuggestions(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewSuggestionResponses(suggestions)})
}

// visibleTicket loads :id and hides other people's tickets from customers.
func (h *TicketsHandler) visibleTicket(c *fiber.Ctx) (*domain.Ticket, error) {
	principal, err := requirePrincipal(c)
	if err != nil {
		return nil, err
	}
	id := c.Params("id")
	ticket, err := h.service.GetTicket(c.UserContext(), id)
	if err != nil {
		return nil, err
	}
	if !auth.IsStaff(principal.Role()) && ticket.RequesterID != principal.ID() {
		return nil, apperrors.NewNotFound("ticket", map[string]any{"id": id})
	}
	return ticket, nil
}

func requirePrincipal(c *fiber.Ctx) (*auth.Principal, error) {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return nil, apperrors.NewUnauthorized("authentication required")
	}
	return principal, nil
}

func optionalString(val string) *string {
	val = strings.TrimSpace(val)
	if val == "" {
		return nil
	}
	return &val
}

func optionalStatus(val string) *domain.TicketStatus {
	val = strings.TrimSpace(val)
	if val == "" {
		return nil
	}
	status := domain.TicketStatus(val)
	return &status
}

func parseInt(val string, def int) int {
	if val == "" {
		return def
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}
