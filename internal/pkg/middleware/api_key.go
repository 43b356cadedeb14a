package middleware

import (
	"errors"
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/aifoundry/foundry/app/models"
	"github.com/aifoundry/foundry/app/repository"
	"github.com/aifoundry/foundry/internal/pkg/usercontext"
)

// APIKeyAuthMiddleware authenticates requests carrying an organization API key header.
func APIKeyAuthMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		apiKey := extractAPIKeyFromHeader(c)
		if apiKey == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized", "message": "Missing API key"})
		}

		key, err := resolveAPIKey(apiKey)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "forbidden", "message": "Could not validate API key"})
			}
			log.Printf("api key lookup failed: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "API key verification failed"})
		}

		setAPIKeyContext(c, key)
		return c.Next()
	}
}

// APIOrJWTAuthMiddleware accepts either an API key or a Bearer JWT.
// Module endpoints take both credential types.
func APIOrJWTAuthMiddleware() fiber.Handler {
	jwtAuth := JWTAuthMiddleware()
	return func(c *fiber.Ctx) error {
		apiKey := extractAPIKeyFromHeader(c)
		if apiKey == "" {
			return jwtAuth(c)
		}

		key, err := resolveAPIKey(apiKey)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "forbidden", "message": "Could not validate API key"})
			}
			log.Printf("api key lookup failed: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "API key verification failed"})
		}

		setAPIKeyContext(c, key)
		return c.Next()
	}
}

func resolveAPIKey(raw string) (*models.APIKey, error) {
	hash := models.HashAPIKey(raw)
	repo := repository.GetGlobalFactory().GetAPIKeyRepository()
	key, err := repo.GetActiveByHash(hash)
	if err != nil {
		return nil, err
	}

	// Refresh last-used timestamp best-effort.
	if err := repo.TouchLastUsed(key.ID); err != nil {
		log.Printf("failed to update api key usage timestamp for key %d: %v", key.ID, err)
	}
	return key, nil
}

func setAPIKeyContext(c *fiber.Ctx, key *models.APIKey) {
	usercontext.SetUserContext(c, usercontext.UserContext{
		UserID:         key.UserID,
		OrganizationID: key.OrganizationID,
		IsLoggedIn:     true,
		ViaAPIKey:      true,
	})
}

func extractAPIKeyFromHeader(c *fiber.Ctx) string {
	return strings.TrimSpace(c.Get("X-API-Key"))
}
