package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pharmatchapp/pharmatch-backend/internal/models"
	"github.com/pharmatchapp/pharmatch-backend/internal/plans"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// UsageService is the usage ledger: one period-stamped counter row per user,
// mutated only through atomic column updates. Callers never read-modify-write
// a counter.
type UsageService struct {
	db  *gorm.DB
	now func() time.Time
}

func NewUsageService(db *gorm.DB) *UsageService {
	return &UsageService{db: db, now: time.Now}
}

// ensure lazily creates the zeroed row for the user's current period.
func (s *UsageService) ensure(db *gorm.DB, userID uuid.UUID, period string) error {
	rec := models.UsageRecord{
		UserID:         userID,
		Period:         period,
		SuperLikesDate: models.Day(s.now()),
	}
	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "period"}},
		DoNothing: true,
	}).Create(&rec).Error
}

// Get returns the user's usage row for the current period, creating it on
// first access. The returned row presents the daily super-like counter as
// zero when its date stamp is stale; the stored value is reset lazily by the
// next ConsumeSuperLike.
func (s *UsageService) Get(ctx context.Context, userID uuid.UUID) (*models.UsageRecord, error) {
	period := models.CurrentPeriod(s.now())
	if err := s.ensure(s.db.WithContext(ctx), userID, period); err != nil {
		return nil, err
	}

	var rec models.UsageRecord
	if err := s.db.WithContext(ctx).
		Where("user_id = ? AND period = ?", userID, period).
		First(&rec).Error; err != nil {
		return nil, err
	}

	if rec.SuperLikesDate != models.Day(s.now()) {
		rec.SuperLikesToday = 0
	}
	return &rec, nil
}

// Increment atomically adds amount to the counter behind key.
func (s *UsageService) Increment(ctx context.Context, userID uuid.UUID, key plans.LimitKey, amount int) error {
	return s.IncrementOn(s.db.WithContext(ctx), userID, key, amount)
}

// IncrementOn is Increment running on the given handle, so fee creation can
// fold the counter bump into its transaction.
func (s *UsageService) IncrementOn(db *gorm.DB, userID uuid.UUID, key plans.LimitKey, amount int) error {
	col, ok := plans.UsageColumn(key)
	if !ok {
		return fmt.Errorf("unknown limit key %q", key)
	}
	period := models.CurrentPeriod(s.now())
	if err := s.ensure(db, userID, period); err != nil {
		return err
	}
	return db.Model(&models.UsageRecord{}).
		Where("user_id = ? AND period = ?", userID, period).
		UpdateColumn(col, gorm.Expr(col+" + ?", amount)).Error
}

// Decrement atomically subtracts amount with a floor of zero. Used when a
// held-count (favorites) shrinks.
func (s *UsageService) Decrement(ctx context.Context, userID uuid.UUID, key plans.LimitKey, amount int) error {
	col, ok := plans.UsageColumn(key)
	if !ok {
		return fmt.Errorf("unknown limit key %q", key)
	}
	period := models.CurrentPeriod(s.now())
	if err := s.ensure(s.db.WithContext(ctx), userID, period); err != nil {
		return err
	}
	return s.db.WithContext(ctx).Model(&models.UsageRecord{}).
		Where("user_id = ? AND period = ?", userID, period).
		UpdateColumn(col, gorm.Expr("CASE WHEN "+col+" >= ? THEN "+col+" - ? ELSE 0 END", amount, amount)).Error
}

// ConsumeSuperLike performs the lazy daily reset, the cap check, and the
// increment as one conditional UPDATE. Two devices racing on the last slot
// serialize on the row: exactly one UPDATE matches, the other sees zero rows
// affected and is denied. max < 0 means unlimited.
func (s *UsageService) ConsumeSuperLike(ctx context.Context, userID uuid.UUID, max int) (bool, int, error) {
	period := models.CurrentPeriod(s.now())
	today := models.Day(s.now())
	db := s.db.WithContext(ctx)

	if err := s.ensure(db, userID, period); err != nil {
		return false, 0, err
	}

	assign := map[string]interface{}{
		"super_likes_today": gorm.Expr("CASE WHEN super_likes_date <> ? THEN 1 ELSE super_likes_today + 1 END", today),
		"super_likes_date":  today,
	}

	query := db.Model(&models.UsageRecord{}).
		Where("user_id = ? AND period = ?", userID, period)
	if max >= 0 {
		// A stale date means the counter is logically zero, so the cap only
		// blocks same-day consumption.
		query = query.Where("super_likes_date <> ? OR super_likes_today < ?", today, max)
	}

	res := query.Updates(assign)
	if res.Error != nil {
		return false, 0, res.Error
	}

	var rec models.UsageRecord
	if err := db.Where("user_id = ? AND period = ?", userID, period).First(&rec).Error; err != nil {
		return false, 0, err
	}

	used := rec.SuperLikesToday
	if rec.SuperLikesDate != today {
		used = 0
	}
	return res.RowsAffected == 1, used, nil
}

// ConsumeCounter atomically checks a monthly cap and increments its counter
// in one conditional UPDATE, the same lost-update-free shape as
// ConsumeSuperLike. max < 0 means unlimited.
func (s *UsageService) ConsumeCounter(ctx context.Context, userID uuid.UUID, key plans.LimitKey, max int) (bool, int, error) {
	return s.consumeCounterOn(s.db.WithContext(ctx), userID, key, max)
}

// consumeCounterOn is ConsumeCounter on the given handle, for callers that
// pair the counter bump with another write in one transaction.
func (s *UsageService) consumeCounterOn(db *gorm.DB, userID uuid.UUID, key plans.LimitKey, max int) (bool, int, error) {
	col, ok := plans.UsageColumn(key)
	if !ok {
		return false, 0, fmt.Errorf("unknown limit key %q", key)
	}
	period := models.CurrentPeriod(s.now())

	if err := s.ensure(db, userID, period); err != nil {
		return false, 0, err
	}

	query := db.Model(&models.UsageRecord{}).
		Where("user_id = ? AND period = ?", userID, period)
	if max >= 0 {
		query = query.Where(col+" < ?", max)
	}

	res := query.UpdateColumn(col, gorm.Expr(col+" + 1"))
	if res.Error != nil {
		return false, 0, res.Error
	}

	var rec models.UsageRecord
	if err := db.Where("user_id = ? AND period = ?", userID, period).First(&rec).Error; err != nil {
		return false, 0, err
	}
	return res.RowsAffected == 1, Value(&rec, key), nil
}

// Value reads the counter behind key from a usage row.
func Value(rec *models.UsageRecord, key plans.LimitKey) int {
	switch key {
	case plans.LimitMissionsPerMonth:
		return rec.MissionsPublished
	case plans.LimitContactsPerMonth:
		return rec.MissionsConfirmed
	case plans.LimitSuperLikesPerDay:
		return rec.SuperLikesToday
	case plans.LimitFavorites:
		return rec.FavoritesCount
	case plans.LimitAlertsPerMonth:
		return rec.AlertsSent
	case plans.LimitPostsPerMonth:
		return rec.PostsPublished
	case plans.LimitVideosPerMonth:
		return rec.VideosPublished
	case plans.LimitSponsoredWeeks:
		return rec.SponsoredWeeksUsed
	case plans.LimitSponsoredCards:
		return rec.SponsoredCardsUsed
	case plans.LimitPhotos:
		return rec.PhotosCount
	}
	return 0
}
