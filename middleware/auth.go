package middleware

import (
	"log"
	"strings"

	"galaxy-learn-backend/services"

	"github.com/gofiber/fiber/v2"
)

// RequireUser validates the caller's bearer token against the auth gateway
// and attaches the resolved identity to the request context for handlers.
func RequireUser(auth services.AuthClient) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			log.Printf("🚫 [AUTH] Missing Authorization header for %s", c.Path())
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"success": false,
				"message": "Token não fornecido",
			})
		}

		// Parse "Bearer <token>"
		token := strings.TrimPrefix(authHeader, "Bearer ")
		if token == authHeader {
			// no "Bearer " prefix — accept the raw value
			token = authHeader
		}

		identity, err := auth.GetUser(c.UserContext(), token)
		if err != nil {
			log.Printf("❌ [AUTH] Token rejected for %s: %v", c.Path(), err)
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"success": false,
				"message": "Não autorizado",
			})
		}

		c.Locals("identity", identity)
		return c.Next()
	}
}

// IdentityFrom returns the identity stored by RequireUser.
func IdentityFrom(c *fiber.Ctx) *services.Identity {
	return c.Locals("identity").(*services.Identity)
}
