package models

import (
	"crypto/rand"
	"encoding/hex"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// WebhookSubscription registers a tenant endpoint for a set of event types.
// The secret keys the payload signature; it is generated server-side at
// creation, never updated, and only returned once.
type WebhookSubscription struct {
	ID             uint       `gorm:"primaryKey" json:"-"`
	UUID           string     `gorm:"type:char(36);uniqueIndex" json:"id"`
	UserID         uint       `gorm:"index" json:"-"`
	OrganizationID uint       `gorm:"index" json:"-"`
	URL            string     `gorm:"type:varchar(500)" json:"url" validate:"required,url,max=500"`
	Events         StringList `gorm:"type:json" json:"events" validate:"required,min=1,dive,required"`
	Secret         string     `gorm:"type:varchar(100)" json:"-"`
	IsActive       bool       `gorm:"default:true" json:"is_active"`
	CreatedAt      time.Time  `gorm:"autoCreateTime" json:"created_at"`
}

func (s *WebhookSubscription) BeforeCreate(tx *gorm.DB) error {
	if s.UUID == "" {
		s.UUID = uuid.New().String()
	}
	return nil
}

func (s *WebhookSubscription) Validate() error {
	v := validator.New()

	return v.Struct(s)
}

// SubscribesTo reports whether the subscription's event set contains eventType.
func (s *WebhookSubscription) SubscribesTo(eventType string) bool {
	return s.Events.Contains(eventType)
}

// GenerateWebhookSecret returns a fresh high-entropy signing secret (48 hex chars).
func GenerateWebhookSecret() (string, error) {
	b := make([]byte, 24)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
