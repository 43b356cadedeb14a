package controllers

import (
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aifoundry/foundry/app/models"
	"github.com/aifoundry/foundry/app/repository"
	"github.com/aifoundry/foundry/internal/pkg/env"
	"github.com/aifoundry/foundry/internal/pkg/security"
)

func newAuthApp() *fiber.App {
	app := fiber.New()
	app.Post("/auth/register", HandleRegister)
	app.Post("/auth/login", HandleLogin)
	return app
}

func registerTestUser(t *testing.T, app *fiber.App) {
	t.Helper()

	resp, err := app.Test(jsonRequest(t, "POST", "/auth/register", fiber.Map{
		"email":             "admin@example.com",
		"password":          "secret123",
		"full_name":         "Jane Admin",
		"organization_name": "Acme Fintech",
	}), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
}

func TestHandleRegister(t *testing.T) {
	setupControllerDB(t)
	app := newAuthApp()

	resp, err := app.Test(jsonRequest(t, "POST", "/auth/register", fiber.Map{
		"email":             "admin@example.com",
		"password":          "secret123",
		"full_name":         "Jane Admin",
		"organization_name": "Acme Fintech",
	}), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, "admin@example.com", body["email"])
	assert.Equal(t, "org_admin", body["role"])
	assert.NotEmpty(t, body["organization_id"])
}

func TestHandleRegisterDuplicateEmail(t *testing.T) {
	setupControllerDB(t)
	app := newAuthApp()
	registerTestUser(t, app)

	resp, err := app.Test(jsonRequest(t, "POST", "/auth/register", fiber.Map{
		"email":             "admin@example.com",
		"password":          "secret456",
		"full_name":         "Other Admin",
		"organization_name": "Other Org",
	}), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestHandleRegisterValidation(t *testing.T) {
	setupControllerDB(t)

	resp, err := newAuthApp().Test(jsonRequest(t, "POST", "/auth/register", fiber.Map{
		"email":             "not-an-email",
		"password":          "123",
		"full_name":         "J",
		"organization_name": "A",
	}), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)
}

func TestHandleLogin(t *testing.T) {
	setupControllerDB(t)
	env.Env = map[string]string{"JWT_SECRET": "controller-secret"}

	app := newAuthApp()
	registerTestUser(t, app)

	resp, err := app.Test(jsonRequest(t, "POST", "/auth/login", fiber.Map{
		"email":    "admin@example.com",
		"password": "secret123",
	}), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, "bearer", body["token_type"])

	token, _ := body["access_token"].(string)
	claims, err := security.ParseAccessToken(token, "controller-secret")
	require.NoError(t, err)
	assert.Equal(t, "admin@example.com", claims.Subject)
	assert.Equal(t, "org_admin", claims.Role)
}

func TestHandleLoginWrongPassword(t *testing.T) {
	setupControllerDB(t)
	env.Env = map[string]string{"JWT_SECRET": "controller-secret"}

	app := newAuthApp()
	registerTestUser(t, app)

	resp, err := app.Test(jsonRequest(t, "POST", "/auth/login", fiber.Map{
		"email":    "admin@example.com",
		"password": "wrong-password",
	}), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestHandleMe(t *testing.T) {
	setupControllerDB(t)

	org := &models.Organization{Name: "Acme Fintech", Type: models.ORG_TYPE_FINTECH, SubscriptionTier: models.TIER_STARTER}
	require.NoError(t, repository.GetGlobalFactory().GetOrganizationRepository().Create(org))

	user, err := models.CreateUser("admin@example.com", "secret123", "Jane Admin", models.ROLE_ORG_ADMIN, org.ID)
	require.NoError(t, err)
	require.NoError(t, repository.GetGlobalFactory().GetUserRepository().Create(user))

	app := authedApp(user.ID, org.ID)
	app.Get("/auth/me", HandleMe)

	resp, err := app.Test(jsonRequest(t, "GET", "/auth/me", nil), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, "admin@example.com", body["email"])
	assert.Equal(t, "Jane Admin", body["full_name"])

	orgBody, ok := body["organization"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Acme Fintech", orgBody["name"])
	assert.Equal(t, models.ORG_TYPE_FINTECH, orgBody["type"])
}

func TestHandleLoginUnknownUser(t *testing.T) {
	setupControllerDB(t)
	env.Env = map[string]string{"JWT_SECRET": "controller-secret"}

	resp, err := newAuthApp().Test(jsonRequest(t, "POST", "/auth/login", fiber.Map{
		"email":    "ghost@example.com",
		"password": "secret123",
	}), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}
