package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	apperrors "github.com/spec-kit/support-ticket-service/pkg/util/errorutil"
)

// Pinger is a dependency that can report its connectivity.
// persistence.Postgres and persistence.Redis satisfy it.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler responds to liveness and readiness probes.
type HealthHandler struct {
	serviceName  string
	version      string
	dependencies map[string]Pinger
}

// NewHealthHandler returns a new handler instance. Nil dependencies are
// skipped, which is the case when running on the in-memory store.
func NewHealthHandler(serviceName, version string, dependencies map[string]Pinger) *HealthHandler {
	deps := make(map[string]Pinger, len(dependencies))
	for name, dep := range dependencies {
		if dep != nil {
			deps[name] = dep
		}
	}
	return &HealthHandler{serviceName: serviceName, version: version, dependencies: deps}
}

// Live reports service liveness.
func (h *HealthHandler) Live(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "alive",
		"service": h.serviceName,
		"version": h.version,
	})
}

// Ready reports service readiness by checking dependencies.
func (h *HealthHandler) Ready(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
	defer cancel()

	depStatus := fiber.Map{}
	ready := true
	for name, dep := range h.dependencies {
		if err := dep.Ping(ctx); err != nil {
			depStatus[name] = err.Error()
			ready = false
			continue
		}
		depStatus[name] = "ok"
	}

	if ready {
		return c.JSON(fiber.Map{
			"status":       "ready",
			"dependencies": depStatus,
		})
	}

	return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
		"error": fiber.Map{
			"code":    apperrors.CodeDependencyFailure,
			"message": "one or more dependencies unavailable",
			"details": depStatus,
		},
	})
}
