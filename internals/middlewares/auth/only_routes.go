package auth

import (
	"github.com/gofiber/fiber/v2"

	helper "library_backend/internals/helpers"
)

// OnlyRolesSlice lets the request through when the caller has one of allowedRoles.
func OnlyRolesSlice(message string, allowedRoles []string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role, ok := c.Locals(helper.LocUserRole).(string)
		if !ok || role == "" {
			return helper.JsonError(c, fiber.StatusUnauthorized, "unauthorized - role not found")
		}
		for _, allowed := range allowedRoles {
			if role == allowed {
				return c.Next()
			}
		}
		if message == "" {
			message = "forbidden: you are not authorized to access this resource"
		}
		return helper.JsonError(c, fiber.StatusForbidden, message)
	}
}

// OnlyRoles is the variadic form of OnlyRolesSlice.
func OnlyRoles(message string, roles ...string) fiber.Handler {
	return OnlyRolesSlice(message, roles)
}
