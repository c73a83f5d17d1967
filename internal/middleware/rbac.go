package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/berea-app/berea-api/internal/utils"
)

// RequireRole admits only requests whose token carries one of the given
// roles. JWTProtected must run first so the role is bound to the request.
func RequireRole(roles ...string) fiber.Handler {
	allowed := make(map[string]struct{}, len(roles))
	for _, role := range roles {
		if normalized := strings.ToUpper(strings.TrimSpace(role)); normalized != "" {
			allowed[normalized] = struct{}{}
		}
	}

	return func(c *fiber.Ctx) error {
		role := strings.ToUpper(strings.TrimSpace(UserRole(c)))
		if _, ok := allowed[role]; !ok {
			return utils.SendError(c, fiber.StatusForbidden, "insufficient permissions")
		}
		return c.Next()
	}
}
