package usercontext

import "github.com/gofiber/fiber/v2"

// UserContext represents the authenticated principal for a request.
// It is populated by either the JWT or the API-key middleware.
type UserContext struct {
	UserID         uint   `json:"user_id"`
	OrganizationID uint   `json:"organization_id"`
	Email          string `json:"email"`
	Role           string `json:"role"`
	IsLoggedIn     bool   `json:"is_logged_in"`
	ViaAPIKey      bool   `json:"via_api_key"`
}

// GetUserContext retrieves the user context from fiber context
// Returns a default anonymous context if none is set
func GetUserContext(c *fiber.Ctx) UserContext {
	if ctx := c.Locals(KeyUserContext); ctx != nil {
		return ctx.(UserContext)
	}
	return UserContext{IsLoggedIn: false}
}

// SetUserContext stores the principal on the request.
func SetUserContext(c *fiber.Ctx, ctx UserContext) {
	c.Locals(KeyUserContext, ctx)
	c.Locals(KeyUserID, ctx.UserID)
	c.Locals(KeyOrgID, ctx.OrganizationID)
}

// IsLoggedIn checks if the current user is authenticated
func IsLoggedIn(c *fiber.Ctx) bool {
	return GetUserContext(c).IsLoggedIn
}

// GetUserID returns the current user's ID, or 0 if not logged in
func GetUserID(c *fiber.Ctx) uint {
	return GetUserContext(c).UserID
}

// GetOrganizationID returns the current organization's ID, or 0 if not logged in
func GetOrganizationID(c *fiber.Ctx) uint {
	return GetUserContext(c).OrganizationID
}
