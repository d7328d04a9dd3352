package models

import (
	"time"
)

// WebhookEvent records a processed gateway event id so that re-delivered
// webhooks are applied exactly once.
type WebhookEvent struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	EventID   string    `gorm:"size:64;uniqueIndex;not null" json:"event_id"`
	EventType string    `gorm:"size:64;not null;index" json:"event_type"`
	CreatedAt time.Time `json:"created_at"`
}

func (WebhookEvent) TableName() string {
	return "webhook_events"
}
