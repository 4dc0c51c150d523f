package models

import (
	"time"

	"github.com/google/uuid"
)

// FeeStatus is the lifecycle of a mission confirmation fee.
type FeeStatus string

const (
	FeeWaived  FeeStatus = "waived"
	FeePending FeeStatus = "pending"
	FeePaid    FeeStatus = "paid"
)

// MissionFee is the flat confirmation fee for one mission. One row per
// mission; the amount is frozen by the duration bracket at creation time
// and never recalculated.
type MissionFee struct {
	ID                     uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	MissionID              uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex" json:"mission_id"`
	PayerID                uuid.UUID  `gorm:"type:uuid;not null;index" json:"payer_id"`
	Amount                 int        `gorm:"not null" json:"amount"`
	Currency               string     `gorm:"size:3;not null;default:'EUR'" json:"currency"`
	IncludedInSubscription bool       `gorm:"not null;default:false" json:"included_in_subscription"`
	Status                 FeeStatus  `gorm:"size:10;not null" json:"status"`
	CreatedAt              time.Time  `json:"created_at"`
	UpdatedAt              time.Time  `json:"updated_at"`
}

// InvoiceStatus is the lifecycle of an invoice line. Payment capture is
// external; this service only records the line items.
type InvoiceStatus string

const (
	InvoiceOpen   InvoiceStatus = "open"
	InvoiceWaived InvoiceStatus = "waived"
	InvoicePaid   InvoiceStatus = "paid"
)

// Invoice is a user-facing invoice line produced for each fee event,
// billable or waived.
type Invoice struct {
	ID           uuid.UUID     `gorm:"type:uuid;primaryKey" json:"id"`
	UserID       uuid.UUID     `gorm:"type:uuid;not null;index" json:"user_id"`
	MissionFeeID uuid.UUID     `gorm:"type:uuid;not null;uniqueIndex" json:"mission_fee_id"`
	Label        string        `gorm:"size:200;not null" json:"label"`
	Amount       int           `gorm:"not null" json:"amount"`
	Currency     string        `gorm:"size:3;not null;default:'EUR'" json:"currency"`
	Status       InvoiceStatus `gorm:"size:10;not null" json:"status"`
	IssuedAt     time.Time     `gorm:"not null" json:"issued_at"`
	CreatedAt    time.Time     `json:"created_at"`
}
