package repository

import (
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/aifoundry/foundry/app/models"
)

// apiKeyRepository implements the APIKeyRepository interface
type apiKeyRepository struct {
	db *gorm.DB
}

// NewAPIKeyRepository creates a new API key repository instance
func NewAPIKeyRepository(db *gorm.DB) APIKeyRepository {
	return &apiKeyRepository{db: db}
}

// Create creates a new API key in the database
func (r *apiKeyRepository) Create(key *models.APIKey) error {
	return r.db.Create(key).Error
}

// GetByUUID retrieves an API key by its public identifier
func (r *apiKeyRepository) GetByUUID(uuid string) (*models.APIKey, error) {
	var key models.APIKey
	err := r.db.Where("uuid = ?", uuid).First(&key).Error
	if err != nil {
		return nil, err
	}
	return &key, nil
}

// GetActiveByHash resolves an active API key by its SHA-256 hash.
func (r *apiKeyRepository) GetActiveByHash(hash string) (*models.APIKey, error) {
	trimmed := strings.TrimSpace(hash)
	if trimmed == "" {
		return nil, gorm.ErrRecordNotFound
	}
	var key models.APIKey
	err := r.db.Where("key_hash = ? AND is_active = ?", trimmed, true).First(&key).Error
	if err != nil {
		return nil, err
	}
	return &key, nil
}

// ListByUser retrieves all API keys owned by a user, newest first
func (r *apiKeyRepository) ListByUser(userID uint) ([]models.APIKey, error) {
	var keys []models.APIKey
	err := r.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&keys).Error
	return keys, err
}

// TouchLastUsed refreshes the last-used timestamp best-effort.
func (r *apiKeyRepository) TouchLastUsed(id uint) error {
	return r.db.Model(&models.APIKey{}).Where("id = ?", id).
		Update("last_used_at", time.Now()).Error
}

// Delete removes an API key by its ID
func (r *apiKeyRepository) Delete(id uint) error {
	return r.db.Delete(&models.APIKey{}, id).Error
}
