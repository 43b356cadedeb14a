package controllers

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/aifoundry/foundry/app/models"
	"github.com/aifoundry/foundry/app/repository"
	"github.com/aifoundry/foundry/internal/pkg/security"
	"github.com/aifoundry/foundry/internal/pkg/usercontext"
)

type registerRequest struct {
	Email            string `json:"email" validate:"required,email"`
	Password         string `json:"password" validate:"required,min=6"`
	FullName         string `json:"full_name" validate:"required,min=2,max=150"`
	OrganizationName string `json:"organization_name" validate:"required,min=2,max=200"`
	Phone            string `json:"phone" validate:"max=50"`
}

type loginRequest struct {
	Email    string `json:"email" form:"username" validate:"required"`
	Password string `json:"password" form:"password" validate:"required"`
}

// HandleRegister creates a new organization and its first admin user.
func HandleRegister(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "Invalid request body"})
	}
	if err := validate.Struct(req); err != nil {
		return validationErrorResponse(c, err)
	}

	repos := repository.GetGlobalFactory()
	if _, err := repos.GetUserRepository().GetByEmail(req.Email); err == nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "Email already registered"})
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Registration failed"})
	}

	// Each registration starts a fresh organization; inviting users into an
	// existing organization goes through a separate admin flow.
	org := &models.Organization{
		Name:             req.OrganizationName,
		Type:             models.ORG_TYPE_FINTECH,
		SubscriptionTier: models.TIER_STARTER,
	}
	if err := repos.GetOrganizationRepository().Create(org); err != nil {
		log.Printf("organization create failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Registration failed"})
	}

	user, err := models.CreateUser(req.Email, req.Password, req.FullName, models.ROLE_ORG_ADMIN, org.ID)
	if err != nil {
		return validationErrorResponse(c, err)
	}
	user.Phone = req.Phone
	if err := repos.GetUserRepository().Create(user); err != nil {
		log.Printf("user create failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Registration failed"})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"id":              user.UUID,
		"email":           user.Email,
		"full_name":       user.FullName,
		"role":            user.Role,
		"organization_id": org.UUID,
	})
}

// HandleLogin verifies credentials and issues an access token.
func HandleLogin(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "Invalid request body"})
	}
	if err := validate.Struct(req); err != nil {
		return validationErrorResponse(c, err)
	}

	repos := repository.GetGlobalFactory()
	user, err := repos.GetUserRepository().GetByEmail(req.Email)
	if err != nil || !user.CheckPassword(req.Password) {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized", "message": "Incorrect username or password"})
	}
	if !user.IsActive {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "forbidden", "message": "User inactive"})
	}

	token, err := security.GenerateAccessToken(user.ID, user.OrganizationID, user.Email, user.Role, security.JWTSecret())
	if err != nil {
		log.Printf("token generation failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Login failed"})
	}

	if err := repos.GetUserRepository().TouchLastLogin(user.ID); err != nil {
		log.Printf("failed to update last login for user %d: %v", user.ID, err)
	}

	return c.JSON(fiber.Map{
		"access_token": token,
		"token_type":   "bearer",
	})
}

// HandleMe returns the authenticated user's profile.
func HandleMe(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	if !userCtx.IsLoggedIn {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized", "message": "Missing or invalid authentication"})
	}

	repos := repository.GetGlobalFactory()
	user, err := repos.GetUserRepository().GetByID(userCtx.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found", "message": "User not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to load user"})
	}

	org, err := repos.GetOrganizationRepository().GetByID(user.OrganizationID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to load organization"})
	}

	return c.JSON(fiber.Map{
		"id":            user.UUID,
		"email":         user.Email,
		"full_name":     user.FullName,
		"role":          user.Role,
		"last_login_at": formatTimePtr(user.LastLoginAt),
		"organization": fiber.Map{
			"id":                org.UUID,
			"name":              org.Name,
			"type":              org.Type,
			"subscription_tier": org.SubscriptionTier,
		},
	})
}
