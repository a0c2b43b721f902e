package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/oggyb/muzz-matchmaking/internal/compatibility"
	"github.com/oggyb/muzz-matchmaking/internal/config"
)

type RedisCache struct {
	Client *redis.Client

	likeCountTTL time.Duration
	compatTTL    time.Duration
}

// NewRedisCache initializes Redis client from config.
// Only Addr is mandatory, Password/DB are optional.
func NewRedisCache(cfg *config.Config) *RedisCache {
	opts := &redis.Options{
		Addr: cfg.Redis.Addr,
	}
	if cfg.Redis.Password != "" {
		opts.Password = cfg.Redis.Password
	}
	if cfg.Redis.DB != 0 {
		opts.DB = cfg.Redis.DB
	}
	return &RedisCache{
		Client:       redis.NewClient(opts),
		likeCountTTL: orDefault(cfg.Matching.LikeCountTTL, time.Hour),
		compatTTL:    orDefault(cfg.Matching.CompatCacheTTL, 24*time.Hour),
	}
}

func orDefault(d, def time.Duration) time.Duration {
	if d <= 0 {
		return def
	}
	return d
}

func (c *RedisCache) Ping(ctx context.Context) error {
	return c.Client.Ping(ctx).Err()
}

func (c *RedisCache) Close() error {
	return c.Client.Close()
}

// Publish sends payload on a pub/sub channel.
func (c *RedisCache) Publish(ctx context.Context, channel string, payload []byte) error {
	return c.Client.Publish(ctx, channel, payload).Err()
}

// KeyForLikeCount generates Redis key for a user's like count
func KeyForLikeCount(userID string) string {
	return "likes:count:" + userID
}

// KeyForCompatibility generates the key for a scored pair. Callers pass the
// pair in canonical order so both directions share one entry.
func KeyForCompatibility(user1ID, user2ID string) string {
	return fmt.Sprintf("compat:%s:%s", user1ID, user2ID)
}

func (c *RedisCache) UpdateLikeCount(ctx context.Context, userID string, count int64) error {
	// Always refresh TTL when updating
	return c.Client.Set(ctx, KeyForLikeCount(userID), count, c.likeCountTTL).Err()
}

// GetLikeCount returns the cached count and whether there was one.
func (c *RedisCache) GetLikeCount(ctx context.Context, userID string) (int64, bool, error) {
	key := KeyForLikeCount(userID)
	val, err := c.Client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil // cache miss
	} else if err != nil {
		return 0, false, err
	}
	n, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		// garbage under our key; treat as a miss and let the caller rebuild it
		_ = c.Client.Del(ctx, key).Err()
		return 0, false, nil
	}
	// refresh TTL on access
	_ = c.Client.Expire(ctx, key, c.likeCountTTL).Err()
	return n, true, nil
}

// InvalidateLikeCount drops the cached count so the next read recounts.
func (c *RedisCache) InvalidateLikeCount(ctx context.Context, userID string) error {
	return c.Client.Del(ctx, KeyForLikeCount(userID)).Err()
}

// GetCompatibility returns a cached result for a canonical pair, or nil.
func (c *RedisCache) GetCompatibility(ctx context.Context, user1ID, user2ID string) (*compatibility.Result, error) {
	raw, err := c.Client.Get(ctx, KeyForCompatibility(user1ID, user2ID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var res compatibility.Result
	if err := json.Unmarshal(raw, &res); err != nil {
		return nil, fmt.Errorf("decode cached compatibility: %w", err)
	}
	return &res, nil
}

// SetCompatibility stores a result for a canonical pair.
func (c *RedisCache) SetCompatibility(ctx context.Context, user1ID, user2ID string, res compatibility.Result) error {
	raw, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("encode compatibility: %w", err)
	}
	return c.Client.Set(ctx, KeyForCompatibility(user1ID, user2ID), raw, c.compatTTL).Err()
}

// InvalidateCompatibility drops every cached result that involves userID,
// on either side of the pair.
func (c *RedisCache) InvalidateCompatibility(ctx context.Context, userID string) error {
	for _, pattern := range []string{KeyForCompatibility(userID, "*"), KeyForCompatibility("*", userID)} {
		var keys []string
		iter := c.Client.Scan(ctx, 0, pattern, 100).Iterator()
		for iter.Next(ctx) {
			keys = append(keys, iter.Val())
		}
		if err := iter.Err(); err != nil {
			return fmt.Errorf("scan %s: %w", pattern, err)
		}
		if len(keys) == 0 {
			continue
		}
		if err := c.Client.Del(ctx, keys...).Err(); err != nil {
			return err
		}
	}
	return nil
}
