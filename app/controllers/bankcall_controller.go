package controllers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/aifoundry/foundry/internal/pkg/usercontext"
	"github.com/aifoundry/foundry/internal/pkg/webhook"
)

type callInitiateRequest struct {
	PhoneNumber  string `json:"phone_number" validate:"required"`
	ScenarioID   string `json:"scenario_id" validate:"required"`
	CustomerName string `json:"customer_name" validate:"required"`
}

// HandleCallInitiate starts a call with the bank-call stub. The stub
// completes instantly and fans out a call.completed webhook event.
func HandleCallInitiate(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)

	var req callInitiateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "Invalid request body"})
	}
	if err := validate.Struct(req); err != nil {
		return validationErrorResponse(c, err)
	}

	// Placeholder call flow until the real dialer is integrated.
	callID := "call_" + uuid.New().String()

	_ = webhook.GetDispatcher().Dispatch(userCtx.OrganizationID, webhook.EventCallCompleted, map[string]any{
		"call_id":     callID,
		"scenario_id": req.ScenarioID,
		"status":      "completed",
	})

	return c.JSON(fiber.Map{
		"call_id":              callID,
		"status":               "initiated",
		"estimated_start_time": "Now",
	})
}
