package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pharmatchapp/pharmatch-backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// InvoiceService records user-facing invoice lines for fee events. Payment
// capture is external; nothing here talks to a card processor.
type InvoiceService struct {
	db  *gorm.DB
	now func() time.Time
}

func NewInvoiceService(db *gorm.DB) *InvoiceService {
	return &InvoiceService{db: db, now: time.Now}
}

// EmitOn writes the invoice line for a fee on the given handle, so fee
// creation can keep both writes in one transaction. One line per fee.
func (s *InvoiceService) EmitOn(db *gorm.DB, fee *models.MissionFee) (*models.Invoice, error) {
	status := models.InvoiceOpen
	if fee.Status == models.FeeWaived {
		status = models.InvoiceWaived
	}

	inv := models.Invoice{
		ID:           uuid.New(),
		UserID:       fee.PayerID,
		MissionFeeID: fee.ID,
		Label:        "Mission confirmation fee",
		Amount:       fee.Amount,
		Currency:     fee.Currency,
		Status:       status,
		IssuedAt:     s.now().UTC(),
	}
	if inv.Currency == "" {
		inv.Currency = "EUR"
	}

	err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "mission_fee_id"}},
		DoNothing: true,
	}).Create(&inv).Error
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

// ListForUser returns the user's invoice lines, newest first.
func (s *InvoiceService) ListForUser(ctx context.Context, userID uuid.UUID) ([]models.Invoice, error) {
	var invoices []models.Invoice
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("issued_at DESC").
		Find(&invoices).Error
	return invoices, err
}
