package models

import (
	"time"

	"github.com/google/uuid"
)

// TargetType tags what kind of listing or profile a swipe points at.
type TargetType string

const (
	TargetJobOffer        TargetType = "job_offer"
	TargetInternshipOffer TargetType = "internship_offer"
	TargetCandidate       TargetType = "candidate"
	TargetMission         TargetType = "mission"
	TargetAnimator        TargetType = "animator"
)

// Valid reports whether t is a known swipe target kind.
func (t TargetType) Valid() bool {
	switch t {
	case TargetJobOffer, TargetInternshipOffer, TargetCandidate, TargetMission, TargetAnimator:
		return true
	}
	return false
}

// SwipeAction is the directional preference recorded by a swipe.
type SwipeAction string

const (
	ActionLike      SwipeAction = "like"
	ActionDislike   SwipeAction = "dislike"
	ActionSuperLike SwipeAction = "superlike"
)

// Valid reports whether a is a known swipe action.
func (a SwipeAction) Valid() bool {
	switch a {
	case ActionLike, ActionDislike, ActionSuperLike:
		return true
	}
	return false
}

// Positive reports whether the action counts as a like for matching purposes.
func (a SwipeAction) Positive() bool {
	return a == ActionLike || a == ActionSuperLike
}

// Swipe is a single directional preference from one actor toward one target.
//
// The composite unique index gives the overwrite guarantee: a second swipe on
// the same target replaces the first, it never accumulates history.
type Swipe struct {
	ID          uuid.UUID   `gorm:"type:uuid;primaryKey" json:"id"`
	ActorID     uuid.UUID   `gorm:"type:uuid;not null;uniqueIndex:idx_swipes_actor_target,priority:1" json:"actor_id"`
	TargetType  TargetType  `gorm:"size:20;not null;uniqueIndex:idx_swipes_actor_target,priority:2" json:"target_type"`
	TargetID    uuid.UUID   `gorm:"type:uuid;not null;uniqueIndex:idx_swipes_actor_target,priority:3;index" json:"target_id"`
	Action      SwipeAction `gorm:"size:12;not null" json:"action"`
	IsSuperLike bool        `gorm:"not null;default:false" json:"is_super_like"`
	SuperLikedAt *time.Time `json:"super_liked_at,omitempty"`
	// ContextID carries the listing a profile swipe happened in (the offer an
	// employer is hiring for, the mission a laboratory is staffing). Nil for
	// swipes whose target is itself a listing.
	ContextID *uuid.UUID `gorm:"type:uuid;index" json:"context_id,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}
