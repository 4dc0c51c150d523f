package models

import (
	"time"

	"github.com/google/uuid"
)

// Favorite is a bookmarked target. The composite unique index makes the
// toggle idempotent: favoriting twice is a no-op, not a duplicate.
type Favorite struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID     uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_favorites_user_target,priority:1" json:"user_id"`
	TargetType TargetType `gorm:"size:20;not null;uniqueIndex:idx_favorites_user_target,priority:2" json:"target_type"`
	TargetID   uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_favorites_user_target,priority:3" json:"target_id"`
	CreatedAt  time.Time  `json:"created_at"`
}
