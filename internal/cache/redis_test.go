package cache

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/pharmatchapp/pharmatch-backend/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) *RedisCache {
	t.Helper()
	mr := miniredis.RunT(t)
	return NewRedisCache(&config.Config{RedisAddr: mr.Addr()})
}

func TestIncrSwipeCount(t *testing.T) {
	ctx := context.Background()
	c := newTestCache(t)
	userID := uuid.New()

	n, err := c.IncrSwipeCount(ctx, userID, "2026-08-29")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = c.IncrSwipeCount(ctx, userID, "2026-08-29")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	got, err := c.GetSwipeCount(ctx, userID, "2026-08-29")
	require.NoError(t, err)
	assert.Equal(t, int64(2), got)

	// Another day is another key.
	got, err = c.GetSwipeCount(ctx, userID, "2026-08-30")
	require.NoError(t, err)
	assert.Equal(t, int64(0), got)
}

func TestSwipedTargetsSet(t *testing.T) {
	ctx := context.Background()
	c := newTestCache(t)
	userID := uuid.New()
	a, b := uuid.New(), uuid.New()

	require.NoError(t, c.AddSwipedTarget(ctx, userID, "2026-08-29", a))
	require.NoError(t, c.AddSwipedTarget(ctx, userID, "2026-08-29", b))
	// Duplicates collapse.
	require.NoError(t, c.AddSwipedTarget(ctx, userID, "2026-08-29", a))

	targets, err := c.SwipedTargets(ctx, userID, "2026-08-29")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{a.String(), b.String()}, targets)
}
