package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pharmatchapp/pharmatch-backend/internal/dto"
	"github.com/pharmatchapp/pharmatch-backend/internal/models"
	"github.com/pharmatchapp/pharmatch-backend/internal/plans"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SubscriptionService resolves and mutates the single subscription row per
// user. Users without a row, or with an expired or cancelled one, are on the
// free tier. Tier changes take effect immediately.
type SubscriptionService struct {
	db  *gorm.DB
	now func() time.Time
}

func NewSubscriptionService(db *gorm.DB) *SubscriptionService {
	return &SubscriptionService{db: db, now: time.Now}
}

// Current returns the user's subscription row, or nil when they never
// subscribed.
func (s *SubscriptionService) Current(ctx context.Context, userID uuid.UUID) (*models.Subscription, error) {
	var sub models.Subscription
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&sub).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

// CurrentTier resolves the effective tier for the user right now.
func (s *SubscriptionService) CurrentTier(ctx context.Context, userID uuid.UUID) (plans.Tier, error) {
	sub, err := s.Current(ctx, userID)
	if err != nil {
		return plans.TierFree, err
	}
	if sub == nil || sub.CancelledAt != nil || !s.now().Before(sub.ExpiresAt) {
		return plans.TierFree, nil
	}
	tier := plans.Tier(sub.TierName)
	if !tier.Valid() {
		return plans.TierFree, nil
	}
	return tier, nil
}

// SetTier upserts the subscription row for a user. Used by the store webhook
// and the admin override.
func (s *SubscriptionService) SetTier(ctx context.Context, userID uuid.UUID, tier plans.Tier, productID string, startedAt, expiresAt time.Time) (*models.Subscription, error) {
	if !tier.Valid() {
		return nil, fmt.Errorf("unknown tier %q", tier)
	}
	sub := models.Subscription{
		ID:        uuid.New(),
		UserID:    userID,
		TierName:  string(tier),
		ProductID: productID,
		StartedAt: startedAt,
		ExpiresAt: expiresAt,
		AutoRenew: true,
	}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"tier_name", "product_id", "started_at", "expires_at", "auto_renew", "cancelled_at", "updated_at",
		}),
	}).Create(&sub).Error
	if err != nil {
		return nil, err
	}
	return s.Current(ctx, userID)
}

// Cancel marks the subscription cancelled. The user drops to free
// immediately.
func (s *SubscriptionService) Cancel(ctx context.Context, userID uuid.UUID) error {
	now := s.now()
	return s.db.WithContext(ctx).Model(&models.Subscription{}).
		Where("user_id = ?", userID).
		Updates(map[string]interface{}{"cancelled_at": now, "auto_renew": false}).Error
}

// HandleWebhookEvent applies a subscription store event (RevenueCat wire
// shape) to the user's subscription row.
func (s *SubscriptionService) HandleWebhookEvent(ctx context.Context, event *dto.StoreEvent) error {
	userID, err := uuid.Parse(event.AppUserID)
	if err != nil {
		return fmt.Errorf("invalid app_user_id: %w", err)
	}

	switch event.Type {
	case "INITIAL_PURCHASE", "RENEWAL", "PRODUCT_CHANGE":
		tier := TierFromProduct(event.ProductID)
		_, err := s.SetTier(ctx, userID, tier, event.ProductID,
			msToTime(event.PurchasedAtMs), msToTime(event.ExpirationAtMs))
		return err
	case "CANCELLATION":
		return s.Cancel(ctx, userID)
	case "EXPIRATION":
		return s.db.WithContext(ctx).Model(&models.Subscription{}).
			Where("user_id = ?", userID).
			Update("expires_at", s.now()).Error
	default:
		return nil
	}
}

// TierFromProduct maps a store product identifier to a tier name. Product
// ids follow the "pharmatch_<tier>_<period>" convention.
func TierFromProduct(productID string) plans.Tier {
	p := strings.ToLower(productID)
	switch {
	case strings.Contains(p, "business"):
		return plans.TierBusiness
	case strings.Contains(p, "pro"):
		return plans.TierPro
	case strings.Contains(p, "starter"):
		return plans.TierStarter
	}
	return plans.TierFree
}

func msToTime(ms int64) time.Time {
	return time.Unix(ms/1000, (ms%1000)*int64(time.Millisecond))
}
