package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/pharmatchapp/pharmatch-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newFavoriteService(db *gorm.DB) *FavoriteService {
	subs := NewSubscriptionService(db)
	usage := NewUsageService(db)
	return NewFavoriteService(db, subs, usage)
}

func TestFavoriteAddAndAlready(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	favorites := newFavoriteService(db)
	user := makeUser(t, db, models.UserTypeCandidate)
	target := uuid.New()

	result, err := favorites.Add(ctx, user.ID, models.TargetJobOffer, target)
	require.NoError(t, err)
	assert.Equal(t, FavoriteAdded, result.Outcome)

	result, err = favorites.Add(ctx, user.ID, models.TargetJobOffer, target)
	require.NoError(t, err)
	assert.Equal(t, FavoriteAlready, result.Outcome)

	var count int64
	db.Model(&models.Favorite{}).Where("user_id = ?", user.ID).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestFavoriteCapAndRelease(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	favorites := newFavoriteService(db)
	// Free laboratories can hold five favorites.
	lab := makeUser(t, db, models.UserTypeLaboratory)

	targets := make([]uuid.UUID, 6)
	for i := range targets {
		targets[i] = uuid.New()
	}

	for i := 0; i < 5; i++ {
		result, err := favorites.Add(ctx, lab.ID, models.TargetCandidate, targets[i])
		require.NoError(t, err)
		require.Equal(t, FavoriteAdded, result.Outcome)
	}

	result, err := favorites.Add(ctx, lab.ID, models.TargetCandidate, targets[5])
	require.NoError(t, err)
	assert.Equal(t, FavoriteLimitReached, result.Outcome)

	// The refused add left no row behind.
	var count int64
	db.Model(&models.Favorite{}).Where("user_id = ?", lab.ID).Count(&count)
	assert.Equal(t, int64(5), count)

	// Removing one releases a slot.
	removed, err := favorites.Remove(ctx, lab.ID, models.TargetCandidate, targets[0])
	require.NoError(t, err)
	assert.Equal(t, FavoriteRemoved, removed.Outcome)

	result, err = favorites.Add(ctx, lab.ID, models.TargetCandidate, targets[5])
	require.NoError(t, err)
	assert.Equal(t, FavoriteAdded, result.Outcome)
}

func TestFavoriteRemoveMissing(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	favorites := newFavoriteService(db)
	user := makeUser(t, db, models.UserTypeCandidate)

	result, err := favorites.Remove(ctx, user.ID, models.TargetJobOffer, uuid.New())
	require.NoError(t, err)
	assert.Equal(t, FavoriteNotFound, result.Outcome)
}

func TestFavoriteRejectsBadTargetType(t *testing.T) {
	db := setupTestDB(t)
	favorites := newFavoriteService(db)
	user := makeUser(t, db, models.UserTypeCandidate)

	_, err := favorites.Add(context.Background(), user.ID, "poster", uuid.New())
	assert.ErrorIs(t, err, ErrInvalidTargetType)
}

func TestFavoriteList(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	favorites := newFavoriteService(db)
	user := makeUser(t, db, models.UserTypeCandidate)

	for i := 0; i < 3; i++ {
		_, err := favorites.Add(ctx, user.ID, models.TargetJobOffer, uuid.New())
		require.NoError(t, err)
	}

	list, err := favorites.List(ctx, user.ID)
	require.NoError(t, err)
	assert.Len(t, list, 3)
}
