package controllers

import (
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aifoundry/foundry/app/models"
	"github.com/aifoundry/foundry/app/repository"
)

func newAPIKeyApp(userID, orgID uint) *fiber.App {
	app := authedApp(userID, orgID)
	app.Get("/api/keys", HandleAPIKeyList)
	app.Post("/api/keys", HandleAPIKeyCreate)
	app.Delete("/api/keys/:id", HandleAPIKeyRevoke)
	return app
}

func TestHandleAPIKeyCreate(t *testing.T) {
	setupControllerDB(t)
	app := newAPIKeyApp(1, 1)

	resp, err := app.Test(jsonRequest(t, "POST", "/api/keys", fiber.Map{"name": "ci key"}), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	body := decodeBody(t, resp)
	rawKey, _ := body["key"].(string)
	assert.True(t, strings.HasPrefix(rawKey, "pk_"))
	assert.Equal(t, rawKey[:8], body["prefix"])
	assert.Equal(t, "ci key", body["name"])

	// Only the hash is stored; the raw key is gone after this response.
	stored, err := repository.GetGlobalFactory().GetAPIKeyRepository().GetActiveByHash(models.HashAPIKey(rawKey))
	require.NoError(t, err)
	assert.Equal(t, "ci key", stored.Name)

	resp, err = app.Test(jsonRequest(t, "GET", "/api/keys", nil), -1)
	require.NoError(t, err)
	list := decodeBodyList(t, resp)
	require.Len(t, list, 1)
	assert.NotContains(t, list[0], "key")
	assert.NotContains(t, list[0], "key_hash")
}

func TestHandleAPIKeyCreateValidation(t *testing.T) {
	setupControllerDB(t)

	resp, err := newAPIKeyApp(1, 1).Test(jsonRequest(t, "POST", "/api/keys", fiber.Map{"name": ""}), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)
}

func TestHandleAPIKeyRevokeOwnerOnly(t *testing.T) {
	setupControllerDB(t)

	resp, err := newAPIKeyApp(1, 1).Test(jsonRequest(t, "POST", "/api/keys", fiber.Map{"name": "ci key"}), -1)
	require.NoError(t, err)
	keyID, _ := decodeBody(t, resp)["id"].(string)
	require.NotEmpty(t, keyID)

	resp, err = newAPIKeyApp(2, 1).Test(jsonRequest(t, "DELETE", "/api/keys/"+keyID, nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	resp, err = newAPIKeyApp(1, 1).Test(jsonRequest(t, "DELETE", "/api/keys/"+keyID, nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	keys, err := repository.GetGlobalFactory().GetAPIKeyRepository().ListByUser(1)
	require.NoError(t, err)
	assert.Empty(t, keys)
}
