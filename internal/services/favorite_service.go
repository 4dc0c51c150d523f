package services

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/pharmatchapp/pharmatch-backend/internal/metrics"
	"github.com/pharmatchapp/pharmatch-backend/internal/models"
	"github.com/pharmatchapp/pharmatch-backend/internal/plans"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// FavoriteOutcome is the result of a favorite toggle.
type FavoriteOutcome string

const (
	FavoriteAdded        FavoriteOutcome = "added"
	FavoriteAlready      FavoriteOutcome = "already_favorited"
	FavoriteRemoved      FavoriteOutcome = "removed"
	FavoriteNotFound     FavoriteOutcome = "not_favorited"
	FavoriteLimitReached FavoriteOutcome = "limit_reached"
)

// FavoriteResult pairs the outcome with the held-count status for display.
type FavoriteResult struct {
	Outcome  FavoriteOutcome  `json:"outcome"`
	Favorite *models.Favorite `json:"favorite,omitempty"`
	Limit    *LimitStatus     `json:"limit,omitempty"`
}

var errFavoriteCap = errors.New("favorite cap reached")

// FavoriteService manages bookmarked targets under the plan's held-count cap.
// Unlike the monthly counters, the favorites counter tracks rows currently
// held, so removal decrements it.
type FavoriteService struct {
	db    *gorm.DB
	subs  *SubscriptionService
	usage *UsageService
}

func NewFavoriteService(db *gorm.DB, subs *SubscriptionService, usage *UsageService) *FavoriteService {
	return &FavoriteService{db: db, subs: subs, usage: usage}
}

// Add bookmarks a target. Insert and counter bump run in one transaction:
// a concurrent add racing on the last slot rolls its row back when the
// conditional increment matches nothing.
func (s *FavoriteService) Add(ctx context.Context, userID uuid.UUID, targetType models.TargetType, targetID uuid.UUID) (*FavoriteResult, error) {
	if !targetType.Valid() {
		return nil, ErrInvalidTargetType
	}

	var user models.User
	if err := s.db.WithContext(ctx).Select("id", "user_type").First(&user, "id = ?", userID).Error; err != nil {
		return nil, err
	}
	tier, err := s.subs.CurrentTier(ctx, userID)
	if err != nil {
		return nil, err
	}
	max := plans.Resolve(user.UserType, tier).Limits.Cap(plans.LimitFavorites)

	fav := models.Favorite{
		ID:         uuid.New(),
		UserID:     userID,
		TargetType: targetType,
		TargetID:   targetID,
	}

	result := &FavoriteResult{}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "target_type"}, {Name: "target_id"}},
			DoNothing: true,
		}).Create(&fav)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			result.Outcome = FavoriteAlready
			return tx.Where("user_id = ? AND target_type = ? AND target_id = ?", userID, targetType, targetID).
				First(&fav).Error
		}

		if max == 0 {
			return errFavoriteCap
		}
		allowed, _, err := s.usage.consumeCounterOn(tx, userID, plans.LimitFavorites, max)
		if err != nil {
			return err
		}
		if !allowed {
			return errFavoriteCap
		}
		result.Outcome = FavoriteAdded
		return nil
	})
	if errors.Is(err, errFavoriteCap) {
		metrics.QuotaDenials.WithLabelValues(string(plans.LimitFavorites)).Inc()
		result.Outcome = FavoriteLimitReached
		result.Favorite = nil
		return result, nil
	}
	if err != nil {
		return nil, err
	}

	result.Favorite = &fav
	return result, nil
}

// Remove deletes the bookmark and releases its slot.
func (s *FavoriteService) Remove(ctx context.Context, userID uuid.UUID, targetType models.TargetType, targetID uuid.UUID) (*FavoriteResult, error) {
	res := s.db.WithContext(ctx).
		Where("user_id = ? AND target_type = ? AND target_id = ?", userID, targetType, targetID).
		Delete(&models.Favorite{})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return &FavoriteResult{Outcome: FavoriteNotFound}, nil
	}
	if err := s.usage.Decrement(ctx, userID, plans.LimitFavorites, 1); err != nil {
		return nil, err
	}
	return &FavoriteResult{Outcome: FavoriteRemoved}, nil
}

// List returns the user's bookmarks, newest first.
func (s *FavoriteService) List(ctx context.Context, userID uuid.UUID) ([]models.Favorite, error) {
	var favorites []models.Favorite
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&favorites).Error
	return favorites, err
}
