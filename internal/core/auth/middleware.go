package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

const principalKey = "principal"

// Protect rejects requests without a valid bearer token and stores the caller in the request locals.
func (m *TokenManager) Protect() fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		if header == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "authorization header required")
		}

		tokenString := strings.TrimPrefix(header, "Bearer ")
		if tokenString == header {
			return fiber.NewError(fiber.StatusUnauthorized, "bearer token required")
		}

		principal, err := m.ParseToken(tokenString)
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid token")
		}

		c.Locals(principalKey, principal)
		return c.Next()
	}
}

// AdminOnly must run after Protect.
func AdminOnly() fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFrom(c)
		if !ok {
			return fiber.NewError(fiber.StatusUnauthorized, "authentication required")
		}
		if !principal.IsAdmin {
			return fiber.NewError(fiber.StatusForbidden, "admin access required")
		}
		return c.Next()
	}
}

// PrincipalFrom returns the caller stored by Protect.
func PrincipalFrom(c *fiber.Ctx) (*Principal, bool) {
	principal, ok := c.Locals(principalKey).(*Principal)
	return principal, ok && principal != nil
}

// WithPrincipal stores a caller in the request locals. Used by handlers under test.
func WithPrincipal(c *fiber.Ctx, principal *Principal) {
	c.Locals(principalKey, principal)
}
