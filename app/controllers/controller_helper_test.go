package controllers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/aifoundry/foundry/app/models"
	"github.com/aifoundry/foundry/app/repository"
	"github.com/aifoundry/foundry/internal/pkg/database"
	"github.com/aifoundry/foundry/internal/pkg/usercontext"
)

// setupControllerDB rebinds the global repository factory to a fresh
// in-memory database for one test.
func setupControllerDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Organization{},
		&models.User{},
		&models.APIKey{},
		&models.WebhookSubscription{},
		&models.WebhookEvent{},
	))

	database.SetDB(db)
	repository.ResetGlobalFactory()

	return db
}

// authedApp builds a fiber app whose requests run as the given principal.
func authedApp(userID, orgID uint) *fiber.App {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		usercontext.SetUserContext(c, usercontext.UserContext{
			UserID:         userID,
			OrganizationID: orgID,
			Role:           models.ROLE_ORG_ADMIN,
			IsLoggedIn:     true,
		})
		return c.Next()
	})
	return app
}

func jsonRequest(t *testing.T, method, target string, body any) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var out map[string]any
	require.NoError(t, json.Unmarshal(raw, &out))
	return out
}

func decodeBodyList(t *testing.T, resp *http.Response) []map[string]any {
	t.Helper()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var out []map[string]any
	require.NoError(t, json.Unmarshal(raw, &out))
	return out
}
