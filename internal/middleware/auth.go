package middleware

import (
	"github.com/gofiber/fiber/v3"
)

// UserIDHeader carries the authenticated user identity. Token verification
// happens upstream (the auth collaborator); by the time a request reaches
// this service the header holds a stable opaque user ID.
const UserIDHeader = "X-User-ID"

// RequireUser rejects requests without an authenticated user identity.
func RequireUser() fiber.Handler {
	return func(c fiber.Ctx) error {
		if c.Get(UserIDHeader) == "" {
			return ErrorResponse(c, fiber.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
		}
		return c.Next()
	}
}

// UserID returns the authenticated user ID for a request, or "".
func UserID(c fiber.Ctx) string {
	return c.Get(UserIDHeader)
}
