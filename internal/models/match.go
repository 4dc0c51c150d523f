package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// MatchKind distinguishes the two pairing families.
type MatchKind string

const (
	MatchKindCandidateOffer  MatchKind = "candidate_offer"
	MatchKindMissionAnimator MatchKind = "mission_animator"
)

// MatchStatus is the two-state lifecycle of a pairing. There is no
// transition out of matched.
type MatchStatus string

const (
	MatchPending MatchStatus = "pending"
	MatchMatched MatchStatus = "matched"
)

// Match is the reciprocal-like relationship for one pairing. Exactly one row
// exists per pairing key; both arrival orders of the two likes converge on it.
//
// SideALiked is the candidate/animator side, SideBLiked the employer/laboratory
// side. Status is matched iff both flags are set; MatchedAt is stamped once on
// the first transition and never cleared.
type Match struct {
	ID         uuid.UUID   `gorm:"type:uuid;primaryKey" json:"id"`
	PairingKey string      `gorm:"size:120;not null;uniqueIndex" json:"-"`
	Kind       MatchKind   `gorm:"size:20;not null;index" json:"kind"`
	OfferID    *uuid.UUID  `gorm:"type:uuid;index" json:"offer_id,omitempty"`
	CandidateID *uuid.UUID `gorm:"type:uuid;index" json:"candidate_id,omitempty"`
	MissionID  *uuid.UUID  `gorm:"type:uuid;index" json:"mission_id,omitempty"`
	AnimatorID *uuid.UUID  `gorm:"type:uuid;index" json:"animator_id,omitempty"`
	// OwnerID is the employer or laboratory behind the listing side.
	OwnerID     uuid.UUID   `gorm:"type:uuid;not null;index" json:"owner_id"`
	SideALiked  bool        `gorm:"not null;default:false" json:"side_a_liked"`
	SideBLiked  bool        `gorm:"not null;default:false" json:"side_b_liked"`
	IsSuperLike bool        `gorm:"not null;default:false" json:"is_super_like"`
	Status      MatchStatus `gorm:"size:10;not null;default:'pending'" json:"status"`
	MatchedAt   *time.Time  `json:"matched_at,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// OfferPairingKey builds the deterministic key for a candidate/offer pairing.
func OfferPairingKey(offerID, candidateID uuid.UUID) string {
	return fmt.Sprintf("offer:%s:candidate:%s", offerID, candidateID)
}

// MissionPairingKey builds the deterministic key for a mission/animator pairing.
func MissionPairingKey(missionID, animatorID uuid.UUID) string {
	return fmt.Sprintf("mission:%s:animator:%s", missionID, animatorID)
}
