package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	ORG_TYPE_BANK    = "bank"
	ORG_TYPE_MFI     = "mfi"
	ORG_TYPE_FINTECH = "fintech"

	TIER_STARTER    = "starter"
	TIER_BUSINESS   = "business"
	TIER_ENTERPRISE = "enterprise"
)

// Organization is the tenant boundary: users, API keys and webhook
// subscriptions all hang off one organization.
type Organization struct {
	ID               uint       `gorm:"primaryKey" json:"-"`
	UUID             string     `gorm:"type:char(36);uniqueIndex" json:"id"`
	Name             string     `gorm:"type:varchar(200)" json:"name" validate:"required,min=2,max=200"`
	Type             string     `gorm:"type:varchar(50)" json:"type" validate:"omitempty,oneof=bank mfi fintech"`
	Modules          StringList `gorm:"type:json" json:"modules"`
	SubscriptionTier string     `gorm:"type:varchar(50)" json:"subscription_tier" validate:"omitempty,oneof=starter business enterprise"`
	BillingEmail     string     `gorm:"type:varchar(200)" json:"billing_email" validate:"omitempty,email"`
	CreatedAt        time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (o *Organization) BeforeCreate(tx *gorm.DB) error {
	if o.UUID == "" {
		o.UUID = uuid.New().String()
	}
	return nil
}
