package controllers

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/aifoundry/foundry/app/models"
)

var validate = validator.New()

// validationErrorResponse renders a 422 with per-field failures.
func validationErrorResponse(c *fiber.Ctx, err error) error {
	details := fiber.Map{}
	if verrs, ok := err.(validator.ValidationErrors); ok {
		for _, fe := range verrs {
			details[fe.Field()] = fe.Tag()
		}
	}
	return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
		"error":   "validation_error",
		"message": "Validation Error",
		"detail":  details,
	})
}

func formatTimePtr(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return t.UTC().Format(time.RFC3339)
}

// subscriptionResponse renders a subscription without its secret.
func subscriptionResponse(sub *models.WebhookSubscription) fiber.Map {
	return fiber.Map{
		"id":         sub.UUID,
		"url":        sub.URL,
		"events":     sub.Events,
		"is_active":  sub.IsActive,
		"created_at": sub.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// apiKeyResponse renders an API key without hash or raw secret.
func apiKeyResponse(key *models.APIKey) fiber.Map {
	return fiber.Map{
		"id":           key.UUID,
		"prefix":       key.Prefix,
		"name":         key.Name,
		"is_active":    key.IsActive,
		"created_at":   key.CreatedAt.UTC().Format(time.RFC3339),
		"last_used_at": formatTimePtr(key.LastUsedAt),
	}
}
