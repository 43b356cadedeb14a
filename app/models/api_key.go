package models

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const apiKeyPrefix = "pk_"

// APIKey is a hashed machine credential scoped to a user and organization.
// Only the SHA-256 hash is stored; the raw key is shown once at creation.
type APIKey struct {
	ID             uint       `gorm:"primaryKey" json:"-"`
	UUID           string     `gorm:"type:char(36);uniqueIndex" json:"id"`
	KeyHash        string     `gorm:"type:char(64);uniqueIndex" json:"-"`
	Prefix         string     `gorm:"type:varchar(20)" json:"prefix"`
	Name           string     `gorm:"type:varchar(150)" json:"name" validate:"required,min=1,max=150"`
	UserID         uint       `gorm:"index" json:"-"`
	OrganizationID uint       `gorm:"index" json:"-"`
	IsActive       bool       `gorm:"default:true" json:"is_active"`
	CreatedAt      time.Time  `gorm:"autoCreateTime" json:"created_at"`
	LastUsedAt     *time.Time `gorm:"type:timestamp;default:null" json:"last_used_at"`
}

func (k *APIKey) BeforeCreate(tx *gorm.DB) error {
	if k.UUID == "" {
		k.UUID = uuid.New().String()
	}
	return nil
}

// HashAPIKey returns the SHA-256 hash for the provided API key.
func HashAPIKey(raw string) string {
	sum := sha256.Sum256([]byte(strings.TrimSpace(raw)))
	return hex.EncodeToString(sum[:])
}

// GenerateAPIKey creates a new raw key plus its display prefix and stored hash.
// The raw key must be handed to the caller exactly once and never persisted.
func GenerateAPIKey() (rawKey, prefix, hash string, err error) {
	b := make([]byte, 32)
	if _, err = rand.Read(b); err != nil {
		return "", "", "", err
	}
	rawKey = apiKeyPrefix + base64.RawURLEncoding.EncodeToString(b)
	prefix = rawKey[:8]
	hash = HashAPIKey(rawKey)
	return rawKey, prefix, hash, nil
}

// TouchUsage updates the last-used timestamp metadata.
func (k *APIKey) TouchUsage() {
	now := time.Now()
	k.LastUsedAt = &now
}
