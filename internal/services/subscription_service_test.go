package services

import (
	"context"
	"testing"
	"time"

	"github.com/pharmatchapp/pharmatch-backend/internal/dto"
	"github.com/pharmatchapp/pharmatch-backend/internal/models"
	"github.com/pharmatchapp/pharmatch-backend/internal/plans"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCurrentTierDefaultsToFree(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	subs := NewSubscriptionService(db)
	user := makeUser(t, db, models.UserTypeCandidate)

	tier, err := subs.CurrentTier(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, plans.TierFree, tier)
}

func TestSetTierUpsertsSingleRow(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	subs := NewSubscriptionService(db)
	user := makeUser(t, db, models.UserTypeLaboratory)

	_, err := subs.SetTier(ctx, user.ID, plans.TierStarter, "pharmatch_starter_monthly",
		time.Now(), time.Now().AddDate(0, 1, 0))
	require.NoError(t, err)

	_, err = subs.SetTier(ctx, user.ID, plans.TierPro, "pharmatch_pro_monthly",
		time.Now(), time.Now().AddDate(0, 1, 0))
	require.NoError(t, err)

	var count int64
	db.Model(&models.Subscription{}).Where("user_id = ?", user.ID).Count(&count)
	assert.Equal(t, int64(1), count)

	tier, err := subs.CurrentTier(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, plans.TierPro, tier)
}

func TestSetTierRejectsUnknownTier(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	subs := NewSubscriptionService(db)
	user := makeUser(t, db, models.UserTypeCandidate)

	_, err := subs.SetTier(ctx, user.ID, plans.Tier("platinum"), "x", time.Now(), time.Now())
	assert.Error(t, err)
}

func TestExpiredAndCancelledDropToFree(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	subs := NewSubscriptionService(db)

	expired := makeUser(t, db, models.UserTypeCandidate)
	_, err := subs.SetTier(ctx, expired.ID, plans.TierPro, "pharmatch_pro_monthly",
		time.Now().AddDate(0, -2, 0), time.Now().AddDate(0, -1, 0))
	require.NoError(t, err)
	tier, err := subs.CurrentTier(ctx, expired.ID)
	require.NoError(t, err)
	assert.Equal(t, plans.TierFree, tier)

	cancelled := makeUser(t, db, models.UserTypeCandidate)
	_, err = subs.SetTier(ctx, cancelled.ID, plans.TierPro, "pharmatch_pro_monthly",
		time.Now(), time.Now().AddDate(0, 1, 0))
	require.NoError(t, err)
	require.NoError(t, subs.Cancel(ctx, cancelled.ID))
	tier, err = subs.CurrentTier(ctx, cancelled.ID)
	require.NoError(t, err)
	assert.Equal(t, plans.TierFree, tier)
}

func TestHandleWebhookEventLifecycle(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	subs := NewSubscriptionService(db)
	user := makeUser(t, db, models.UserTypeLaboratory)

	purchase := &dto.StoreEvent{
		Type:           "INITIAL_PURCHASE",
		AppUserID:      user.ID.String(),
		ProductID:      "pharmatch_starter_monthly",
		PurchasedAtMs:  time.Now().UnixMilli(),
		ExpirationAtMs: time.Now().AddDate(0, 1, 0).UnixMilli(),
	}
	require.NoError(t, subs.HandleWebhookEvent(ctx, purchase))

	tier, err := subs.CurrentTier(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, plans.TierStarter, tier)

	expire := &dto.StoreEvent{Type: "EXPIRATION", AppUserID: user.ID.String()}
	require.NoError(t, subs.HandleWebhookEvent(ctx, expire))

	tier, err = subs.CurrentTier(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, plans.TierFree, tier)
}

func TestHandleWebhookEventRejectsBadUserID(t *testing.T) {
	db := setupTestDB(t)
	subs := NewSubscriptionService(db)

	err := subs.HandleWebhookEvent(context.Background(), &dto.StoreEvent{
		Type:      "INITIAL_PURCHASE",
		AppUserID: "not-a-uuid",
	})
	assert.Error(t, err)
}

func TestTierFromProduct(t *testing.T) {
	assert.Equal(t, plans.TierStarter, TierFromProduct("pharmatch_starter_monthly"))
	assert.Equal(t, plans.TierPro, TierFromProduct("pharmatch_pro_annual"))
	assert.Equal(t, plans.TierBusiness, TierFromProduct("pharmatch_business_monthly"))
	assert.Equal(t, plans.TierFree, TierFromProduct("something_else"))
}
