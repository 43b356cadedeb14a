package controllers

import (
	"errors"
	"log"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/aifoundry/foundry/app/models"
	"github.com/aifoundry/foundry/app/repository"
	"github.com/aifoundry/foundry/internal/pkg/usercontext"
)

type webhookCreateRequest struct {
	URL    string   `json:"url" validate:"required,url,max=500"`
	Events []string `json:"events" validate:"required,min=1,dive,required"`
}

// HandleWebhookList returns the caller's webhook subscriptions. Secrets are
// never re-displayed.
func HandleWebhookList(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)

	subs, err := repository.GetGlobalFactory().GetWebhookRepository().ListSubscriptionsByUser(userCtx.UserID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to load webhooks"})
	}

	response := make([]fiber.Map, 0, len(subs))
	for i := range subs {
		response = append(response, subscriptionResponse(&subs[i]))
	}
	return c.JSON(response)
}

// HandleWebhookCreate registers a new subscription. The signing secret is
// generated server-side and appears in this response only.
func HandleWebhookCreate(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)

	var req webhookCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "Invalid request body"})
	}
	if err := validate.Struct(req); err != nil {
		return validationErrorResponse(c, err)
	}

	secret, err := models.GenerateWebhookSecret()
	if err != nil {
		log.Printf("webhook secret generation failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to create webhook"})
	}

	sub := &models.WebhookSubscription{
		UserID:         userCtx.UserID,
		OrganizationID: userCtx.OrganizationID,
		URL:            req.URL,
		Events:         models.StringList(req.Events),
		Secret:         secret,
		IsActive:       true,
	}
	if err := repository.GetGlobalFactory().GetWebhookRepository().CreateSubscription(sub); err != nil {
		log.Printf("webhook create failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to create webhook"})
	}

	response := subscriptionResponse(sub)
	response["secret"] = sub.Secret // Returned once, never re-displayed
	return c.Status(fiber.StatusCreated).JSON(response)
}

// HandleWebhookDelete removes one of the caller's subscriptions. Delivery
// records for the subscription remain for audit.
func HandleWebhookDelete(c *fiber.Ctx) error {
	sub, errResp := loadOwnedSubscription(c)
	if sub == nil {
		return errResp
	}

	if err := repository.GetGlobalFactory().GetWebhookRepository().DeleteSubscription(sub.ID); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to delete webhook"})
	}

	return c.JSON(fiber.Map{"message": "Webhook deleted"})
}

// HandleWebhookEvents returns the delivery attempts recorded for one of the
// caller's subscriptions, newest first.
func HandleWebhookEvents(c *fiber.Ctx) error {
	sub, errResp := loadOwnedSubscription(c)
	if sub == nil {
		return errResp
	}

	offset, _ := strconv.Atoi(c.Query("offset", "0"))
	limit, _ := strconv.Atoi(c.Query("limit", "50"))
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	events, err := repository.GetGlobalFactory().GetWebhookRepository().ListEventsBySubscription(sub.ID, offset, limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to load delivery records"})
	}

	return c.JSON(events)
}

// loadOwnedSubscription resolves :id to a subscription owned by the caller.
// Returns (nil, rendered response) when resolution fails.
func loadOwnedSubscription(c *fiber.Ctx) (*models.WebhookSubscription, error) {
	userCtx := usercontext.GetUserContext(c)

	sub, err := repository.GetGlobalFactory().GetWebhookRepository().GetSubscriptionByUUID(c.Params("id"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found", "message": "Webhook not found"})
		}
		return nil, c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to load webhook"})
	}
	if sub.UserID != userCtx.UserID {
		// Owner-only; do not leak existence of other users' subscriptions.
		return nil, c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found", "message": "Webhook not found"})
	}
	return sub, nil
}
