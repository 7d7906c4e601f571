package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"
)

// HealthCheck returns a handler for GET /health.
// It reports {"status":"ok"} when ping succeeds and 503 {"status":"unavailable"} when the
// database cannot be reached. Used by container probes and load balancers, so it needs no auth.
func HealthCheck(ping func(ctx context.Context) error) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := ping(c.UserContext()); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "unavailable"})
		}
		return c.JSON(fiber.Map{"status": "ok"})
	}
}
