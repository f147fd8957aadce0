package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/support-ticket-service/internal/domain"
	apperrors "github.com/spec-kit/support-ticket-service/pkg/util/errorutil"
)

// RequireRole ensures the principal holds one of the allowed roles.
func RequireRole(allowed ...domain.UserRole) fiber.Handler {
	allowedSet := make(map[domain.UserRole]struct{}, len(allowed))
	for _, role := range allowed {
		allowedSet[role] = struct{}{}
	}

	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		if len(allowedSet) == 0 {
			return c.Next()
		}
		if _, exists := allowedSet[principal.Role()]; !exists {
			return apperrors.NewForbidden("insufficient role")
		}
		return c.Next()
	}
}

// IsStaff reports whether role works tickets rather than opening them.
func IsStaff(role domain.UserRole) bool {
	return role == domain.UserRoleTechnician || role == domain.UserRoleManager
}
