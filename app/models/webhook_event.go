package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	EVENT_STATUS_PENDING = "pending"
	EVENT_STATUS_SUCCESS = "success"
	EVENT_STATUS_FAILED  = "failed"
)

// ResponseCodeNone marks a delivery that produced no HTTP response
// (timeout, DNS failure, connection refused, TLS error).
const ResponseCodeNone = 0

// WebhookEvent records one delivery attempt of one event to one subscription.
// It is created as pending before the outbound call and moved to a terminal
// status (success or failed) by the delivery worker. There is no retry
// transition back to pending. Events outlive their subscription: rows are
// retained for audit when the subscription is deleted.
type WebhookEvent struct {
	ID             uint      `gorm:"primaryKey" json:"-"`
	UUID           string    `gorm:"type:char(36);uniqueIndex" json:"id"`
	SubscriptionID uint      `gorm:"index" json:"-"`
	EventType      string    `gorm:"type:varchar(100)" json:"event_type"`
	Payload        JSON      `gorm:"type:json" json:"payload"`
	Status         string    `gorm:"type:varchar(20);default:'pending'" json:"status"`
	ResponseCode   *int      `gorm:"default:null" json:"response_code"`
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (e *WebhookEvent) BeforeCreate(tx *gorm.DB) error {
	if e.UUID == "" {
		e.UUID = uuid.New().String()
	}
	if e.Status == "" {
		e.Status = EVENT_STATUS_PENDING
	}
	return nil
}

// IsTerminal reports whether the event reached a final delivery status.
func (e *WebhookEvent) IsTerminal() bool {
	return e.Status == EVENT_STATUS_SUCCESS || e.Status == EVENT_STATUS_FAILED
}
