package controllers

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/aifoundry/foundry/app/models"
	"github.com/aifoundry/foundry/app/repository"
	"github.com/aifoundry/foundry/internal/pkg/usercontext"
)

type apiKeyCreateRequest struct {
	Name string `json:"name" validate:"required,min=1,max=150"`
}

// HandleAPIKeyList returns the caller's API keys. Hashes and raw keys are
// never included.
func HandleAPIKeyList(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)

	keys, err := repository.GetGlobalFactory().GetAPIKeyRepository().ListByUser(userCtx.UserID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to load API keys"})
	}

	response := make([]fiber.Map, 0, len(keys))
	for i := range keys {
		response = append(response, apiKeyResponse(&keys[i]))
	}
	return c.JSON(response)
}

// HandleAPIKeyCreate issues a new API key. The raw key appears in this
// response only; afterwards only the hash exists server-side.
func HandleAPIKeyCreate(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)

	var req apiKeyCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "Invalid request body"})
	}
	if err := validate.Struct(req); err != nil {
		return validationErrorResponse(c, err)
	}

	rawKey, prefix, hash, err := models.GenerateAPIKey()
	if err != nil {
		log.Printf("api key generation failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to generate API key"})
	}

	key := &models.APIKey{
		KeyHash:        hash,
		Prefix:         prefix,
		Name:           req.Name,
		UserID:         userCtx.UserID,
		OrganizationID: userCtx.OrganizationID,
		IsActive:       true,
	}
	if err := repository.GetGlobalFactory().GetAPIKeyRepository().Create(key); err != nil {
		log.Printf("api key create failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to create API key"})
	}

	response := apiKeyResponse(key)
	response["key"] = rawKey // Returned once, never re-displayed
	return c.Status(fiber.StatusCreated).JSON(response)
}

// HandleAPIKeyRevoke deletes one of the caller's API keys.
func HandleAPIKeyRevoke(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	keyID := c.Params("id")

	repo := repository.GetGlobalFactory().GetAPIKeyRepository()
	key, err := repo.GetByUUID(keyID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found", "message": "API Key not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to load API key"})
	}
	if key.UserID != userCtx.UserID {
		// Do not leak existence of other users' keys.
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found", "message": "API Key not found"})
	}

	if err := repo.Delete(key.ID); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to revoke API key"})
	}

	return c.JSON(fiber.Map{"message": "API Key revoked"})
}
