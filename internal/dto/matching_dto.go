package dto

import "time"

type SwipeRequest struct {
	TargetType string `json:"target_type"`
	TargetID   string `json:"target_id"`
	Action     string `json:"action"`
	// ContextID names the offer or mission an employer or laboratory is
	// swiping a profile for. Required for candidate and animator targets.
	ContextID string `json:"context_id,omitempty"`
}

type FavoriteRequest struct {
	TargetType string `json:"target_type"`
	TargetID   string `json:"target_id"`
}

type PublishMissionRequest struct {
	Title     string    `json:"title"`
	City      string    `json:"city"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
}

type CreateOfferRequest struct {
	Title      string `json:"title"`
	City       string `json:"city"`
	Internship bool   `json:"internship"`
}

type ConfirmMissionRequest struct {
	MissionID string `json:"mission_id"`
}

type SetTierRequest struct {
	Tier      string `json:"tier"`
	ProductID string `json:"product_id,omitempty"`
	ExpiresAt string `json:"expires_at,omitempty"`
}
