// Package middleware contains HTTP middleware functions for the Tournament Finder API.
// Middleware sits between the HTTP server and route handlers. It runs on every request
// that passes through it, which makes it the place for cross-cutting concerns like
// authentication.
package middleware

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

// Claims is the payload expected inside a moderator token.
type Claims struct {
	jwt.RegisteredClaims        // Subject (moderator id), ExpiresAt, IssuedAt, ...
	Role                 string `json:"role"` // "admin" or "moderator"
}

// Auth returns a Fiber middleware handler that:
//  1. Reads the token from the "Authorization: Bearer <token>" header
//  2. Verifies its HS256 signature with secret and its expiry
//  3. Stores the subject and role in the request context (c.Locals)
//     so RequireRole and handlers can read them without re-parsing the token
func Auth(secret []byte) fiber.Handler {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))

	return func(c *fiber.Ctx) error {
		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "missing or invalid authorization header",
			})
		}
		tokenStr := strings.TrimPrefix(authHeader, "Bearer ")

		claims := &Claims{}
		_, err := parser.ParseWithClaims(tokenStr, claims, func(*jwt.Token) (any, error) {
			return secret, nil
		})
		if err != nil {
			msg := "invalid token"
			if errors.Is(err, jwt.ErrTokenExpired) {
				msg = "token expired"
			}
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": msg})
		}

		if claims.Subject == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "token missing subject",
			})
		}

		c.Locals("userID", claims.Subject)
		c.Locals("userRole", claims.Role)
		return c.Next()
	}
}
