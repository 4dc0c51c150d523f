package models

import (
	"time"

	"github.com/google/uuid"
)

// Subscription is the single active subscription row per user. Users without
// a row are on the free tier; tier changes take effect immediately.
type Subscription struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID       uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex" json:"user_id"`
	TierName     string     `gorm:"size:20;not null;default:'free'" json:"tier_name"`
	ProductID    string     `gorm:"size:255" json:"product_id"`
	StoreEventID string     `gorm:"size:255;index" json:"-"`
	StartedAt    time.Time  `json:"started_at"`
	ExpiresAt    time.Time  `json:"expires_at"`
	AutoRenew    bool       `gorm:"default:true" json:"auto_renew"`
	CancelledAt  *time.Time `json:"cancelled_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	User         User       `gorm:"foreignKey:UserID" json:"-"`
}
