package repository

import (
	"gorm.io/gorm"

	"github.com/aifoundry/foundry/app/models"
)

// webhookRepository implements the WebhookRepository interface
type webhookRepository struct {
	db *gorm.DB
}

// NewWebhookRepository creates a new webhook repository instance
func NewWebhookRepository(db *gorm.DB) WebhookRepository {
	return &webhookRepository{db: db}
}

// CreateSubscription creates a new webhook subscription in the database
func (r *webhookRepository) CreateSubscription(sub *models.WebhookSubscription) error {
	return r.db.Create(sub).Error
}

// GetSubscriptionByUUID retrieves a subscription by its public identifier
func (r *webhookRepository) GetSubscriptionByUUID(uuid string) (*models.WebhookSubscription, error) {
	var sub models.WebhookSubscription
	err := r.db.Where("uuid = ?", uuid).First(&sub).Error
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

// ListSubscriptionsByUser retrieves all subscriptions owned by a user
func (r *webhookRepository) ListSubscriptionsByUser(userID uint) ([]models.WebhookSubscription, error) {
	var subs []models.WebhookSubscription
	err := r.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&subs).Error
	return subs, err
}

// DeleteSubscription removes a subscription. Delivery records for the
// subscription are kept for audit.
func (r *webhookRepository) DeleteSubscription(id uint) error {
	return r.db.Delete(&models.WebhookSubscription{}, id).Error
}

// MatchActive returns the organization's active subscriptions whose event set
// contains eventType. The event set lives in a JSON column, so membership is
// evaluated in Go over the organization's active rows.
func (r *webhookRepository) MatchActive(orgID uint, eventType string) ([]models.WebhookSubscription, error) {
	var subs []models.WebhookSubscription
	err := r.db.Where("organization_id = ? AND is_active = ?", orgID, true).Find(&subs).Error
	if err != nil {
		return nil, err
	}

	matched := make([]models.WebhookSubscription, 0, len(subs))
	for _, sub := range subs {
		if sub.SubscribesTo(eventType) {
			matched = append(matched, sub)
		}
	}
	return matched, nil
}

// CreateEvent durably records a pending delivery attempt. One insert per
// subscription; a failed insert must not affect sibling records.
func (r *webhookRepository) CreateEvent(event *models.WebhookEvent) error {
	return r.db.Create(event).Error
}

// GetEventByID retrieves a delivery attempt record by its ID
func (r *webhookRepository) GetEventByID(id uint) (*models.WebhookEvent, error) {
	var event models.WebhookEvent
	err := r.db.First(&event, id).Error
	if err != nil {
		return nil, err
	}
	return &event, nil
}

// ListEventsBySubscription retrieves a page of delivery attempts, newest first
func (r *webhookRepository) ListEventsBySubscription(subscriptionID uint, offset, limit int) ([]models.WebhookEvent, error) {
	var events []models.WebhookEvent
	err := r.db.Where("subscription_id = ?", subscriptionID).
		Order("created_at DESC").Offset(offset).Limit(limit).Find(&events).Error
	return events, err
}

// UpdateEventOutcome transitions a pending record to its terminal status.
// A vanished record is not an error for the caller.
func (r *webhookRepository) UpdateEventOutcome(id uint, status string, responseCode int) error {
	return r.db.Model(&models.WebhookEvent{}).Where("id = ?", id).
		Updates(map[string]any{"status": status, "response_code": responseCode}).Error
}
