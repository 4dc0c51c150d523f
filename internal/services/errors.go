package services

import "errors"

// Validation errors are rejected before any ledger write. Storage errors
// from gorm propagate unchanged; no retries happen inside the services.
var (
	ErrInvalidAction     = errors.New("invalid swipe action")
	ErrInvalidTargetType = errors.New("invalid swipe target type")
	ErrInvalidUserType   = errors.New("invalid user type")
	ErrSelfSwipe         = errors.New("cannot swipe on yourself")
	ErrMissingContext    = errors.New("context listing id is required for profile swipes")
	ErrMissionNotFound   = errors.New("mission not found")
	ErrOfferNotFound     = errors.New("offer not found")
	ErrNotMissionOwner   = errors.New("mission belongs to another laboratory")
	ErrInvalidDates      = errors.New("end date before start date")
)
