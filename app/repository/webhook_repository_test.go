package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/aifoundry/foundry/app/models"
)

func newTestDB(t *testing.T) *gorm.DB {
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

	return db
}

func createSubscription(t *testing.T, repo WebhookRepository, userID, orgID uint, active bool, events ...string) *models.WebhookSubscription {
	t.Helper()

	sub := &models.WebhookSubscription{
		UserID:         userID,
		OrganizationID: orgID,
		URL:            "https://example.com/hooks",
		Events:         models.StringList(events),
		Secret:         "repo-secret",
		IsActive:       active,
	}
	require.NoError(t, repo.CreateSubscription(sub))
	if !active {
		// GORM writes the zero value through the default tag on create, so
		// force the flag explicitly.
		require.NoError(t, repo.(*webhookRepository).db.Model(sub).Update("is_active", false).Error)
	}

	return sub
}

func TestMatchActiveFilters(t *testing.T) {
	repo := NewWebhookRepository(newTestDB(t))

	match := createSubscription(t, repo, 1, 1, true, "transaction.blocked")
	createSubscription(t, repo, 1, 1, true, "call.completed")
	createSubscription(t, repo, 1, 1, false, "transaction.blocked")
	createSubscription(t, repo, 2, 2, true, "transaction.blocked")

	subs, err := repo.MatchActive(1, "transaction.blocked")
	require.NoError(t, err)
	require.Len(t, subs, 1)
	assert.Equal(t, match.ID, subs[0].ID)
}

func TestMatchActiveEmptyOrg(t *testing.T) {
	repo := NewWebhookRepository(newTestDB(t))

	subs, err := repo.MatchActive(99, "transaction.blocked")
	require.NoError(t, err)
	assert.Empty(t, subs)
}

func TestSubscriptionLifecycle(t *testing.T) {
	repo := NewWebhookRepository(newTestDB(t))
	sub := createSubscription(t, repo, 1, 1, true, "transaction.blocked")

	loaded, err := repo.GetSubscriptionByUUID(sub.UUID)
	require.NoError(t, err)
	assert.Equal(t, sub.ID, loaded.ID)
	assert.Equal(t, "repo-secret", loaded.Secret)

	listed, err := repo.ListSubscriptionsByUser(1)
	require.NoError(t, err)
	assert.Len(t, listed, 1)

	require.NoError(t, repo.DeleteSubscription(sub.ID))

	_, err = repo.GetSubscriptionByUUID(sub.UUID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestUpdateEventOutcome(t *testing.T) {
	repo := NewWebhookRepository(newTestDB(t))

	event := &models.WebhookEvent{
		SubscriptionID: 1,
		EventType:      "transaction.blocked",
		Payload:        models.JSON(`{"transaction_id":"txn_1"}`),
	}
	require.NoError(t, repo.CreateEvent(event))
	assert.NotEmpty(t, event.UUID)
	assert.Equal(t, models.EVENT_STATUS_PENDING, event.Status)

	require.NoError(t, repo.UpdateEventOutcome(event.ID, models.EVENT_STATUS_SUCCESS, 200))

	loaded, err := repo.GetEventByID(event.ID)
	require.NoError(t, err)
	assert.Equal(t, models.EVENT_STATUS_SUCCESS, loaded.Status)
	require.NotNil(t, loaded.ResponseCode)
	assert.Equal(t, 200, *loaded.ResponseCode)
	assert.True(t, loaded.IsTerminal())
}

func TestUpdateEventOutcomeVanishedRecord(t *testing.T) {
	repo := NewWebhookRepository(newTestDB(t))

	// Records deleted out from under the worker must not surface an error.
	assert.NoError(t, repo.UpdateEventOutcome(12345, models.EVENT_STATUS_FAILED, 0))
}

func TestListEventsBySubscriptionPagination(t *testing.T) {
	repo := NewWebhookRepository(newTestDB(t))

	for i := 0; i < 5; i++ {
		require.NoError(t, repo.CreateEvent(&models.WebhookEvent{
			SubscriptionID: 1,
			EventType:      "transaction.blocked",
			Payload:        models.JSON(`{}`),
		}))
	}
	require.NoError(t, repo.CreateEvent(&models.WebhookEvent{
		SubscriptionID: 2,
		EventType:      "transaction.blocked",
		Payload:        models.JSON(`{}`),
	}))

	page, err := repo.ListEventsBySubscription(1, 0, 3)
	require.NoError(t, err)
	assert.Len(t, page, 3)

	rest, err := repo.ListEventsBySubscription(1, 3, 3)
	require.NoError(t, err)
	assert.Len(t, rest, 2)
}
