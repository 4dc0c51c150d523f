// Package cache wraps the Redis client used for hot swipe counters. Postgres
// rows stay the source of truth; everything here is rebuildable.
package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/pharmatchapp/pharmatch-backend/internal/config"
	"github.com/redis/go-redis/v9"
)

type RedisCache struct {
	Client *redis.Client
}

// NewRedisCache initializes the Redis client from config.
func NewRedisCache(cfg *config.Config) *RedisCache {
	opts := &redis.Options{
		Addr: cfg.RedisAddr,
	}
	if cfg.RedisPassword != "" {
		opts.Password = cfg.RedisPassword
	}
	if cfg.RedisDB != 0 {
		opts.DB = cfg.RedisDB
	}
	return &RedisCache{Client: redis.NewClient(opts)}
}

func (c *RedisCache) Ping(ctx context.Context) error {
	return c.Client.Ping(ctx).Err()
}

func swipeCountKey(userID uuid.UUID, day string) string {
	return fmt.Sprintf("swipes:count:%s:%s", userID, day)
}

func swipedSetKey(userID uuid.UUID, day string) string {
	return fmt.Sprintf("swipes:targets:%s:%s", userID, day)
}

// IncrSwipeCount bumps the user's swipe counter for the given day and keeps
// the key until shortly after midnight.
func (c *RedisCache) IncrSwipeCount(ctx context.Context, userID uuid.UUID, day string) (int64, error) {
	key := swipeCountKey(userID, day)
	n, err := c.Client.Incr(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	_ = c.Client.Expire(ctx, key, untilTomorrow()).Err()
	return n, nil
}

// GetSwipeCount returns the cached swipe count for the day, 0 on cache miss.
func (c *RedisCache) GetSwipeCount(ctx context.Context, userID uuid.UUID, day string) (int64, error) {
	val, err := c.Client.Get(ctx, swipeCountKey(userID, day)).Result()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	} else if err != nil {
		return 0, err
	}
	return strconv.ParseInt(val, 10, 64)
}

// AddSwipedTarget records a swiped target ID in the user's daily exclusion set.
func (c *RedisCache) AddSwipedTarget(ctx context.Context, userID uuid.UUID, day string, targetID uuid.UUID) error {
	key := swipedSetKey(userID, day)
	if err := c.Client.SAdd(ctx, key, targetID.String()).Err(); err != nil {
		return err
	}
	return c.Client.Expire(ctx, key, untilTomorrow()).Err()
}

// SwipedTargets returns the IDs the user already swiped today, for feed
// exclusion on the client.
func (c *RedisCache) SwipedTargets(ctx context.Context, userID uuid.UUID, day string) ([]string, error) {
	members, err := c.Client.SMembers(ctx, swipedSetKey(userID, day)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	return members, err
}

// untilTomorrow returns the TTL that expires the key just after local midnight.
func untilTomorrow() time.Duration {
	now := time.Now()
	tomorrow := time.Date(now.Year(), now.Month(), now.Day()+1, 0, 5, 0, 0, now.Location())
	return tomorrow.Sub(now)
}
