package controllers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/aifoundry/foundry/internal/pkg/usercontext"
	"github.com/aifoundry/foundry/internal/pkg/webhook"
)

type transactionSubmitRequest struct {
	TransactionID string  `json:"transaction_id" validate:"required"`
	Amount        float64 `json:"amount" validate:"required,gt=0"`
	Currency      string  `json:"currency" validate:"required,len=3"`
	Merchant      string  `json:"merchant" validate:"required"`
	Location      string  `json:"location"`
}

const blockAmountThreshold = 10000

// HandleTransactionSubmit scores a transaction with the anti-fraud stub.
// Blocked transactions fan out as transaction.blocked webhook events.
func HandleTransactionSubmit(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)

	var req transactionSubmitRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "Invalid request body"})
	}
	if err := validate.Struct(req); err != nil {
		return validationErrorResponse(c, err)
	}

	// Placeholder scoring until the real anti-fraud engine is integrated.
	riskScore := 150
	decision := "APPROVED"
	reasons := []string{}

	if req.Amount > blockAmountThreshold {
		riskScore = 850
		decision = "BLOCKED"
		reasons = append(reasons, "High transaction amount")
	}

	if decision == "BLOCKED" {
		// Fire-and-forget; delivery outcomes are observable on the
		// subscription's delivery records, never on this response.
		_ = webhook.GetDispatcher().Dispatch(userCtx.OrganizationID, webhook.EventTransactionBlocked, map[string]any{
			"transaction_id": req.TransactionID,
			"amount":         req.Amount,
			"currency":       req.Currency,
			"merchant":       req.Merchant,
			"risk_score":     riskScore,
			"reasons":        reasons,
		})
	}

	return c.JSON(fiber.Map{
		"transaction_id": req.TransactionID,
		"decision":       decision,
		"risk_score":     riskScore,
		"reasons":        reasons,
	})
}
