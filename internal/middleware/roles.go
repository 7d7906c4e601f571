package middleware

import "github.com/gofiber/fiber/v2"

// Roles allowed to moderate tournaments.
const (
	RoleAdmin     = "admin"
	RoleModerator = "moderator"
)

// RequireRole returns a middleware handler that allows only users whose role
// matches one of the provided roles. Returns HTTP 403 Forbidden otherwise.
//
//	router.Put("/update-status/:id", middleware.RequireRole("admin", "moderator"), h.UpdateStatus())
//
// RequireRole must be used AFTER the Auth middleware, because Auth is what
// populates the "userRole" value in the request context via c.Locals.
func RequireRole(roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userRole, ok := c.Locals("userRole").(string)
		if !ok || userRole == "" {
			// No role at all: authenticated (or not) but nothing to authorize against.
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "forbidden",
			})
		}

		for _, role := range roles {
			if userRole == role {
				return c.Next()
			}
		}

		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "insufficient permissions",
		})
	}
}
