package repository

import (
	"gorm.io/gorm"

	"github.com/aifoundry/foundry/app/models"
)

// UserRepository defines the interface for user-related database operations
type UserRepository interface {
	Create(user *models.User) error
	GetByID(id uint) (*models.User, error)
	GetByUUID(uuid string) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	Update(user *models.User) error
	TouchLastLogin(id uint) error
	Count() (int64, error)
}

// OrganizationRepository defines the interface for organization operations
type OrganizationRepository interface {
	Create(org *models.Organization) error
	GetByID(id uint) (*models.Organization, error)
	GetByUUID(uuid string) (*models.Organization, error)
	Update(org *models.Organization) error
}

// APIKeyRepository defines the interface for API key operations
type APIKeyRepository interface {
	Create(key *models.APIKey) error
	GetByUUID(uuid string) (*models.APIKey, error)
	GetActiveByHash(hash string) (*models.APIKey, error)
	ListByUser(userID uint) ([]models.APIKey, error)
	TouchLastUsed(id uint) error
	Delete(id uint) error
}

// WebhookRepository defines the interface for webhook subscriptions and
// their delivery attempt records.
type WebhookRepository interface {
	CreateSubscription(sub *models.WebhookSubscription) error
	GetSubscriptionByUUID(uuid string) (*models.WebhookSubscription, error)
	ListSubscriptionsByUser(userID uint) ([]models.WebhookSubscription, error)
	DeleteSubscription(id uint) error

	// MatchActive returns the organization's active subscriptions whose
	// event set contains eventType.
	MatchActive(orgID uint, eventType string) ([]models.WebhookSubscription, error)

	CreateEvent(event *models.WebhookEvent) error
	GetEventByID(id uint) (*models.WebhookEvent, error)
	ListEventsBySubscription(subscriptionID uint, offset, limit int) ([]models.WebhookEvent, error)
	UpdateEventOutcome(id uint, status string, responseCode int) error
}

// Repositories struct holds all repository instances
type Repositories struct {
	User         UserRepository
	Organization OrganizationRepository
	APIKey       APIKeyRepository
	Webhook      WebhookRepository
}

// NewRepositories creates a new instance of all repositories
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		User:         NewUserRepository(db),
		Organization: NewOrganizationRepository(db),
		APIKey:       NewAPIKeyRepository(db),
		Webhook:      NewWebhookRepository(db),
	}
}
