package middleware

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/aifoundry/foundry/app/models"
	"github.com/aifoundry/foundry/app/repository"
	"github.com/aifoundry/foundry/internal/pkg/database"
	"github.com/aifoundry/foundry/internal/pkg/usercontext"
)

func setupMiddlewareDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.APIKey{}))

	database.SetDB(db)
	repository.ResetGlobalFactory()

	return db
}

func issueKey(t *testing.T, userID, orgID uint) string {
	t.Helper()

	rawKey, prefix, hash, err := models.GenerateAPIKey()
	require.NoError(t, err)

	require.NoError(t, repository.GetGlobalFactory().GetAPIKeyRepository().Create(&models.APIKey{
		KeyHash:        hash,
		Prefix:         prefix,
		Name:           "test key",
		UserID:         userID,
		OrganizationID: orgID,
		IsActive:       true,
	}))

	return rawKey
}

func newProtectedApp(handler fiber.Handler) *fiber.App {
	app := fiber.New()
	app.Get("/protected", APIKeyAuthMiddleware(), handler)
	return app
}

func TestAPIKeyAuthMiddlewareValidKey(t *testing.T) {
	setupMiddlewareDB(t)
	rawKey := issueKey(t, 42, 7)

	var got usercontext.UserContext
	app := newProtectedApp(func(c *fiber.Ctx) error {
		got = usercontext.GetUserContext(c)
		return c.SendStatus(fiber.StatusOK)
	})

	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("X-API-Key", rawKey)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, uint(42), got.UserID)
	assert.Equal(t, uint(7), got.OrganizationID)
	assert.True(t, got.IsLoggedIn)
	assert.True(t, got.ViaAPIKey)
}

func TestAPIKeyAuthMiddlewareMissingKey(t *testing.T) {
	setupMiddlewareDB(t)

	app := newProtectedApp(func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/protected", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestAPIKeyAuthMiddlewareUnknownKey(t *testing.T) {
	setupMiddlewareDB(t)

	app := newProtectedApp(func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("X-API-Key", "pk_does-not-exist")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestAPIKeyAuthMiddlewareRevokedKey(t *testing.T) {
	db := setupMiddlewareDB(t)
	rawKey := issueKey(t, 42, 7)

	require.NoError(t, db.Model(&models.APIKey{}).
		Where("key_hash = ?", models.HashAPIKey(rawKey)).Update("is_active", false).Error)

	app := newProtectedApp(func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("X-API-Key", rawKey)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestAPIKeyAuthMiddlewareTouchesUsage(t *testing.T) {
	db := setupMiddlewareDB(t)
	rawKey := issueKey(t, 42, 7)

	app := newProtectedApp(func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("X-API-Key", rawKey)
	_, err := app.Test(req, -1)
	require.NoError(t, err)

	var key models.APIKey
	require.NoError(t, db.Where("key_hash = ?", models.HashAPIKey(rawKey)).First(&key).Error)
	assert.NotNil(t, key.LastUsedAt)
}
