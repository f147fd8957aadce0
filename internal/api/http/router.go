package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/support-ticket-service/internal/api/http/handlers"
	"github.com/spec-kit/support-ticket-service/internal/auth"
	"github.com/spec-kit/support-ticket-service/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Tickets        *handlers.TicketsHandler
	Notifications  *handlers.NotificationsHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	api := app.Group("/api", cfg.AuthMiddleware.Handle)
	staffOnly := auth.RequireRole(domain.UserRoleTechnician, domain.UserRoleManager)

	tickets := api.Group("/tickets")
	tickets.Post("/", cfg.Tickets.CreateTicket)
	tickets.Get("/", cfg.Tickets.ListTickets)
	tickets.Get("/:id", cfg.Tickets.GetTicket)
	tickets.Put("/:id", staffOnly, cfg.Tickets.UpdateTicket)
	tickets.Post("/:id/reopen", cfg.Tickets.ReopenTicket)
	tickets.Get("/:id/history", cfg.Tickets.GetTicketHistory)
	tickets.Get("/:id/attachments", cfg.Tickets.ListAttachments)
	tickets.Get("/:id/suggestions", cfg.Tickets.ListSuggestions)

	notifications := api.Group("/notifications")
	notifications.Post("/", staffOnly, cfg.Notifications.Send)
	notifications.Get("/", cfg.Notifications.List)
	notifications.Post("/:id/read", cfg.Notifications.MarkRead)
}
