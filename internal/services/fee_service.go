package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/pharmatchapp/pharmatch-backend/internal/metrics"
	"github.com/pharmatchapp/pharmatch-backend/internal/models"
	"github.com/pharmatchapp/pharmatch-backend/internal/notify"
	"github.com/pharmatchapp/pharmatch-backend/internal/plans"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Fee brackets in currency units, keyed by inclusive mission duration.
const (
	feeShort  = 10 // 1–2 days
	feeMedium = 15 // 3–5 days
	feeLong   = 20 // 6+ days
)

// CalculateFee maps a mission duration in days to its flat confirmation fee.
// Pure step function; the brackets are inclusive on both ends.
func CalculateFee(durationDays int) int {
	switch {
	case durationDays <= 2:
		return feeShort
	case durationDays <= 5:
		return feeMedium
	default:
		return feeLong
	}
}

// FeeQuote is the frozen fee decision for a mission confirmation: the
// amount from the duration bracket and whether the payer's contacts quota
// covers it. Later quota changes never alter an already-created fee.
type FeeQuote struct {
	MissionID              uuid.UUID  `json:"mission_id"`
	Days                   int        `json:"days"`
	Amount                 int        `json:"amount"`
	IncludedInSubscription bool       `json:"included_in_subscription"`
	Tier                   plans.Tier `json:"tier"`
	ContactsRemaining      int        `json:"contacts_remaining"`
	ContactsMax            int        `json:"contacts_max"`
	ContactsUnlimited      bool       `json:"contacts_unlimited"`
}

// FeeService computes and persists mission confirmation fees and hands the
// outcome to the invoice emitter.
type FeeService struct {
	db       *gorm.DB
	subs     *SubscriptionService
	quota    *QuotaService
	usage    *UsageService
	invoices *InvoiceService
	notifier notify.Notifier
	now      func() time.Time
}

func NewFeeService(db *gorm.DB, subs *SubscriptionService, quota *QuotaService, usage *UsageService, invoices *InvoiceService, notifier notify.Notifier) *FeeService {
	return &FeeService{
		db:       db,
		subs:     subs,
		quota:    quota,
		usage:    usage,
		invoices: invoices,
		notifier: notifier,
		now:      time.Now,
	}
}

// CheckFeeStatus quotes the fee for confirming a mission before anything is
// persisted.
func (s *FeeService) CheckFeeStatus(ctx context.Context, payerID, missionID uuid.UUID) (*FeeQuote, error) {
	var mission models.Mission
	err := s.db.WithContext(ctx).First(&mission, "id = ?", missionID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrMissionNotFound
	}
	if err != nil {
		return nil, err
	}

	days := mission.DurationDays()
	tier, err := s.subs.CurrentTier(ctx, payerID)
	if err != nil {
		return nil, err
	}
	contacts, err := s.quota.CheckLimit(ctx, payerID, plans.LimitContactsPerMonth)
	if err != nil {
		return nil, err
	}

	return &FeeQuote{
		MissionID:              mission.ID,
		Days:                   days,
		Amount:                 CalculateFee(days),
		IncludedInSubscription: contacts.Allowed && (contacts.Unlimited || contacts.Max > 0),
		Tier:                   tier,
		ContactsRemaining:      contacts.Remaining,
		ContactsMax:            contacts.Max,
		ContactsUnlimited:      contacts.Unlimited,
	}, nil
}

// ConfirmMission freezes the fee decision and persists it. Only the mission's
// laboratory can confirm.
func (s *FeeService) ConfirmMission(ctx context.Context, payerID, missionID uuid.UUID) (*models.MissionFee, error) {
	var mission models.Mission
	err := s.db.WithContext(ctx).First(&mission, "id = ?", missionID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrMissionNotFound
	}
	if err != nil {
		return nil, err
	}
	if mission.LaboratoryID != payerID {
		return nil, ErrNotMissionOwner
	}

	quote, err := s.CheckFeeStatus(ctx, payerID, missionID)
	if err != nil {
		return nil, err
	}
	return s.CreateFee(ctx, missionID, payerID, quote.Amount, quote.IncludedInSubscription)
}

// CreateFee upserts the one fee row for the mission. Retries and concurrent
// confirmations find the existing row and change nothing — in particular the
// confirmed-missions counter is bumped at most once, inside the same
// transaction as the insert.
func (s *FeeService) CreateFee(ctx context.Context, missionID, payerID uuid.UUID, amount int, included bool) (*models.MissionFee, error) {
	status := models.FeePending
	if included {
		status = models.FeeWaived
	}

	fee := models.MissionFee{
		ID:                     uuid.New(),
		MissionID:              missionID,
		PayerID:                payerID,
		Amount:                 amount,
		IncludedInSubscription: included,
		Status:                 status,
	}

	created := false
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "mission_id"}},
			DoNothing: true,
		}).Create(&fee)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return tx.Where("mission_id = ?", missionID).First(&fee).Error
		}
		created = true

		if included {
			if err := s.usage.IncrementOn(tx, payerID, plans.LimitContactsPerMonth, 1); err != nil {
				return err
			}
		}
		_, err := s.invoices.EmitOn(tx, &fee)
		return err
	})
	if err != nil {
		return nil, err
	}

	if created {
		metrics.MissionFees.WithLabelValues(string(fee.Status)).Inc()
		if fee.Status == models.FeePending {
			s.notifier.Notify(ctx, payerID, notify.TypeFeeDue,
				"Confirmation fee due",
				"Your plan does not cover this confirmation; a fee applies.",
				map[string]any{"mission_id": missionID.String(), "amount": amount})
		}
	}
	return &fee, nil
}

// GetFee returns the fee row for a mission, nil when none exists yet.
func (s *FeeService) GetFee(ctx context.Context, missionID uuid.UUID) (*models.MissionFee, error) {
	var fee models.MissionFee
	err := s.db.WithContext(ctx).Where("mission_id = ?", missionID).First(&fee).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &fee, nil
}
