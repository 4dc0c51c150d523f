package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pharmatchapp/pharmatch-backend/internal/plans"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIncrementIsAdditive(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	usage := NewUsageService(db)
	userID := uuid.New()

	require.NoError(t, usage.Increment(ctx, userID, plans.LimitAlertsPerMonth, 1))
	require.NoError(t, usage.Increment(ctx, userID, plans.LimitAlertsPerMonth, 1))
	require.NoError(t, usage.Increment(ctx, userID, plans.LimitAlertsPerMonth, 2))

	rec, err := usage.Get(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 4, rec.AlertsSent)
}

func TestIncrementRejectsUnknownKey(t *testing.T) {
	db := setupTestDB(t)
	usage := NewUsageService(db)

	err := usage.Increment(context.Background(), uuid.New(), plans.LimitKey("drop_table"), 1)
	assert.Error(t, err)
}

func TestDecrementFloorsAtZero(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	usage := NewUsageService(db)
	userID := uuid.New()

	require.NoError(t, usage.Increment(ctx, userID, plans.LimitFavorites, 1))
	require.NoError(t, usage.Decrement(ctx, userID, plans.LimitFavorites, 1))
	require.NoError(t, usage.Decrement(ctx, userID, plans.LimitFavorites, 1))

	rec, err := usage.Get(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 0, rec.FavoritesCount)
}

func TestConsumeSuperLikeEnforcesCap(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	usage := NewUsageService(db)
	userID := uuid.New()

	for i := 1; i <= 3; i++ {
		allowed, used, err := usage.ConsumeSuperLike(ctx, userID, 3)
		require.NoError(t, err)
		assert.True(t, allowed)
		assert.Equal(t, i, used)
	}

	allowed, used, err := usage.ConsumeSuperLike(ctx, userID, 3)
	require.NoError(t, err)
	assert.False(t, allowed)
	assert.Equal(t, 3, used)
}

func TestConsumeSuperLikeUnlimited(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	usage := NewUsageService(db)
	userID := uuid.New()

	for i := 0; i < 20; i++ {
		allowed, _, err := usage.ConsumeSuperLike(ctx, userID, plans.Unlimited)
		require.NoError(t, err)
		assert.True(t, allowed)
	}
}

func TestConsumeSuperLikeConcurrent(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	usage := NewUsageService(db)
	userID := uuid.New()

	const attempts = 10
	const limit = 5

	var wg sync.WaitGroup
	results := make(chan bool, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			allowed, _, err := usage.ConsumeSuperLike(ctx, userID, limit)
			assert.NoError(t, err)
			results <- allowed
		}()
	}
	wg.Wait()
	close(results)

	granted := 0
	for allowed := range results {
		if allowed {
			granted++
		}
	}
	assert.Equal(t, limit, granted)

	rec, err := usage.Get(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, limit, rec.SuperLikesToday)
}

func TestConsumeSuperLikeDailyReset(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	usage := NewUsageService(db)
	userID := uuid.New()

	day1 := time.Date(2026, 8, 10, 12, 0, 0, 0, time.UTC)
	usage.now = func() time.Time { return day1 }

	// Exhaust the daily budget.
	for i := 0; i < 2; i++ {
		allowed, _, err := usage.ConsumeSuperLike(ctx, userID, 2)
		require.NoError(t, err)
		require.True(t, allowed)
	}
	allowed, _, err := usage.ConsumeSuperLike(ctx, userID, 2)
	require.NoError(t, err)
	require.False(t, allowed)

	// Next calendar day: same stored row, counter starts over at 1.
	usage.now = func() time.Time { return day1.AddDate(0, 0, 1) }
	allowed, used, err := usage.ConsumeSuperLike(ctx, userID, 2)
	require.NoError(t, err)
	assert.True(t, allowed)
	assert.Equal(t, 1, used)
}

func TestGetPresentsStaleDailyCounterAsZero(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	usage := NewUsageService(db)
	userID := uuid.New()

	day1 := time.Date(2026, 8, 10, 12, 0, 0, 0, time.UTC)
	usage.now = func() time.Time { return day1 }
	_, _, err := usage.ConsumeSuperLike(ctx, userID, 5)
	require.NoError(t, err)

	usage.now = func() time.Time { return day1.AddDate(0, 0, 1) }
	rec, err := usage.Get(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 0, rec.SuperLikesToday)
}

func TestNewPeriodStartsFreshRow(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	usage := NewUsageService(db)
	userID := uuid.New()

	aug := time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC)
	usage.now = func() time.Time { return aug }
	require.NoError(t, usage.Increment(ctx, userID, plans.LimitMissionsPerMonth, 3))

	// September: monthly counters read zero without any reset job running.
	usage.now = func() time.Time { return aug.AddDate(0, 1, 0) }
	rec, err := usage.Get(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 0, rec.MissionsPublished)
}

func TestConsumeCounterAtomicCap(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	usage := NewUsageService(db)
	userID := uuid.New()

	for i := 1; i <= 3; i++ {
		allowed, used, err := usage.ConsumeCounter(ctx, userID, plans.LimitMissionsPerMonth, 3)
		require.NoError(t, err)
		assert.True(t, allowed)
		assert.Equal(t, i, used)
	}
	allowed, used, err := usage.ConsumeCounter(ctx, userID, plans.LimitMissionsPerMonth, 3)
	require.NoError(t, err)
	assert.False(t, allowed)
	assert.Equal(t, 3, used)
}
