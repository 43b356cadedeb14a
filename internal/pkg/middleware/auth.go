package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/aifoundry/foundry/internal/pkg/security"
	"github.com/aifoundry/foundry/internal/pkg/usercontext"
)

// JWTAuthMiddleware authenticates requests carrying a Bearer access token.
func JWTAuthMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := extractBearerToken(c)
		if token == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized", "message": "Missing auth token"})
		}

		claims, err := security.ParseAccessToken(token, security.JWTSecret())
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized", "message": "Invalid or expired token"})
		}

		usercontext.SetUserContext(c, usercontext.UserContext{
			UserID:         claims.UserID,
			OrganizationID: claims.OrganizationID,
			Email:          claims.Subject,
			Role:           claims.Role,
			IsLoggedIn:     true,
		})

		return c.Next()
	}
}

// RequireOrgAdmin ensures the authenticated user can manage their organization.
func RequireOrgAdmin(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	if !userCtx.IsLoggedIn {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized", "message": "Login required"})
	}
	if userCtx.Role != "super_admin" && userCtx.Role != "org_admin" {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "forbidden", "message": "Admin access required"})
	}
	return c.Next()
}

func extractBearerToken(c *fiber.Ctx) string {
	auth := strings.TrimSpace(c.Get("Authorization"))
	if strings.HasPrefix(strings.ToLower(auth), "bearer ") {
		return strings.TrimSpace(auth[7:])
	}
	return ""
}
