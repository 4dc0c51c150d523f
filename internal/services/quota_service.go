package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/pharmatchapp/pharmatch-backend/internal/metrics"
	"github.com/pharmatchapp/pharmatch-backend/internal/models"
	"github.com/pharmatchapp/pharmatch-backend/internal/plans"
	"gorm.io/gorm"
)

// LimitStatus is the quota gate's answer for one limit key. A denied action
// is a result, not an error: callers turn it into an upsell message.
type LimitStatus struct {
	Key       plans.LimitKey `json:"key"`
	Allowed   bool           `json:"allowed"`
	Unlimited bool           `json:"unlimited"`
	Used      int            `json:"used"`
	Max       int            `json:"max"`
	Remaining int            `json:"remaining"`
}

// QuotaService combines the tier catalog with the usage ledger.
type QuotaService struct {
	db    *gorm.DB
	subs  *SubscriptionService
	usage *UsageService
}

func NewQuotaService(db *gorm.DB, subs *SubscriptionService, usage *UsageService) *QuotaService {
	return &QuotaService{db: db, subs: subs, usage: usage}
}

func (s *QuotaService) plan(ctx context.Context, userID uuid.UUID) (plans.Plan, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Select("id", "user_type").First(&user, "id = ?", userID).Error; err != nil {
		return plans.Plan{}, err
	}
	tier, err := s.subs.CurrentTier(ctx, userID)
	if err != nil {
		return plans.Plan{}, err
	}
	return plans.Resolve(user.UserType, tier), nil
}

// CheckLimit answers whether the action behind key is currently allowed,
// with used/max/remaining for display.
func (s *QuotaService) CheckLimit(ctx context.Context, userID uuid.UUID, key plans.LimitKey) (*LimitStatus, error) {
	plan, err := s.plan(ctx, userID)
	if err != nil {
		return nil, err
	}
	rec, err := s.usage.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	return statusFor(plan, rec, key), nil
}

// Statuses returns the whole used/max table for the user's plan, for the
// subscription screen.
func (s *QuotaService) Statuses(ctx context.Context, userID uuid.UUID) (plans.Tier, []*LimitStatus, error) {
	plan, err := s.plan(ctx, userID)
	if err != nil {
		return plans.TierFree, nil, err
	}
	rec, err := s.usage.Get(ctx, userID)
	if err != nil {
		return plans.TierFree, nil, err
	}

	out := make([]*LimitStatus, 0, len(plan.Limits))
	for _, key := range plans.Keys() {
		if _, ok := plan.Limits[key]; !ok {
			continue
		}
		out = append(out, statusFor(plan, rec, key))
	}
	return plan.Tier, out, nil
}

// ConsumeSuperLike applies the lazy daily reset, checks the daily cap and
// increments the counter atomically. Exactly one of two racing calls on the
// last slot succeeds.
func (s *QuotaService) ConsumeSuperLike(ctx context.Context, userID uuid.UUID) (*LimitStatus, error) {
	plan, err := s.plan(ctx, userID)
	if err != nil {
		return nil, err
	}

	max := plan.Limits.Cap(plans.LimitSuperLikesPerDay)
	status := &LimitStatus{Key: plans.LimitSuperLikesPerDay, Max: max, Unlimited: max == plans.Unlimited}

	if max == 0 {
		metrics.QuotaDenials.WithLabelValues(string(plans.LimitSuperLikesPerDay)).Inc()
		return status, nil
	}

	allowed, used, err := s.usage.ConsumeSuperLike(ctx, userID, max)
	if err != nil {
		return nil, err
	}

	status.Allowed = allowed
	status.Used = used
	if !status.Unlimited {
		status.Remaining = max - used
		if status.Remaining < 0 {
			status.Remaining = 0
		}
	}
	if !allowed {
		metrics.QuotaDenials.WithLabelValues(string(plans.LimitSuperLikesPerDay)).Inc()
	}
	return status, nil
}

// Consume checks the cap for key and increments its counter as one
// conditional update. Used for monthly counters (missions published, alerts)
// where check and increment belong together.
func (s *QuotaService) Consume(ctx context.Context, userID uuid.UUID, key plans.LimitKey) (*LimitStatus, error) {
	plan, err := s.plan(ctx, userID)
	if err != nil {
		return nil, err
	}

	max := plan.Limits.Cap(key)
	status := &LimitStatus{Key: key, Max: max, Unlimited: max == plans.Unlimited}

	if max == 0 {
		metrics.QuotaDenials.WithLabelValues(string(key)).Inc()
		return status, nil
	}

	allowed, used, err := s.usage.ConsumeCounter(ctx, userID, key, max)
	if err != nil {
		return nil, err
	}

	status.Allowed = allowed
	status.Used = used
	if !status.Unlimited {
		status.Remaining = max - used
		if status.Remaining < 0 {
			status.Remaining = 0
		}
	}
	if !allowed {
		metrics.QuotaDenials.WithLabelValues(string(key)).Inc()
	}
	return status, nil
}

func statusFor(plan plans.Plan, rec *models.UsageRecord, key plans.LimitKey) *LimitStatus {
	max := plan.Limits.Cap(key)
	used := Value(rec, key)
	status := &LimitStatus{
		Key:       key,
		Used:      used,
		Max:       max,
		Unlimited: max == plans.Unlimited,
	}
	if status.Unlimited {
		status.Allowed = true
		return status
	}
	status.Allowed = used < max
	status.Remaining = max - used
	if status.Remaining < 0 {
		status.Remaining = 0
	}
	return status
}
