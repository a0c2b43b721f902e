package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oggyb/muzz-matchmaking/internal/cache"
	"github.com/oggyb/muzz-matchmaking/internal/compatibility"
	"github.com/oggyb/muzz-matchmaking/internal/config"
)

func setupCache(t *testing.T) (*cache.RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	cfg := config.New()
	cfg.Redis.Addr = mr.Addr()
	cfg.Matching.LikeCountTTL = time.Hour
	cfg.Matching.CompatCacheTTL = 24 * time.Hour

	c := cache.NewRedisCache(cfg)
	t.Cleanup(func() { _ = c.Close() })
	return c, mr
}

func TestLikeCount_MissSetHit(t *testing.T) {
	ctx := context.Background()
	c, mr := setupCache(t)

	_, ok, err := c.GetLikeCount(ctx, "u1")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.UpdateLikeCount(ctx, "u1", 7))
	n, ok, err := c.GetLikeCount(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, int64(7), n)
	assert.Equal(t, time.Hour, mr.TTL("likes:count:u1"))

	require.NoError(t, c.InvalidateLikeCount(ctx, "u1"))
	_, ok, _ = c.GetLikeCount(ctx, "u1")
	assert.False(t, ok)
}

func TestLikeCount_GarbageIsAMiss(t *testing.T) {
	ctx := context.Background()
	c, mr := setupCache(t)
	require.NoError(t, mr.Set("likes:count:u2", "not-a-number"))

	_, ok, err := c.GetLikeCount(ctx, "u2")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.False(t, mr.Exists("likes:count:u2"))
}

func TestCompatibility_RoundTrip(t *testing.T) {
	ctx := context.Background()
	c, mr := setupCache(t)

	got, err := c.GetCompatibility(ctx, "a", "b")
	require.NoError(t, err)
	assert.Nil(t, got)

	in := compatibility.Result{
		OverallScore:       73,
		OverallGrade:       compatibility.GradeFor(73),
		IsMatchRecommended: true,
		AstrologyMethod:    compatibility.MethodSynastry,
	}
	require.NoError(t, c.SetCompatibility(ctx, "a", "b", in))
	assert.Equal(t, 24*time.Hour, mr.TTL("compat:a:b"))

	got, err = c.GetCompatibility(ctx, "a", "b")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, in.OverallScore, got.OverallScore)
	assert.Equal(t, in.OverallGrade, got.OverallGrade)
	assert.Equal(t, in.AstrologyMethod, got.AstrologyMethod)
}

func TestInvalidateCompatibility(t *testing.T) {
	ctx := context.Background()
	c, mr := setupCache(t)

	res := compatibility.Result{OverallScore: 60}
	require.NoError(t, c.SetCompatibility(ctx, "a", "b", res))
	require.NoError(t, c.SetCompatibility(ctx, "0", "a", res))
	require.NoError(t, c.SetCompatibility(ctx, "b", "c", res))

	require.NoError(t, c.InvalidateCompatibility(ctx, "a"))
	assert.False(t, mr.Exists("compat:a:b"))
	assert.False(t, mr.Exists("compat:0:a"))
	assert.True(t, mr.Exists("compat:b:c"), "pairs without the user are kept")

	// nothing left to drop
	require.NoError(t, c.InvalidateCompatibility(ctx, "a"))
}

func TestPublish(t *testing.T) {
	ctx := context.Background()
	c, _ := setupCache(t)

	sub := c.Client.Subscribe(ctx, "notifications:u1")
	defer sub.Close()
	_, err := sub.Receive(ctx) // wait for subscription confirmation
	require.NoError(t, err)

	require.NoError(t, c.Publish(ctx, "notifications:u1", []byte(`{"type":"x"}`)))

	select {
	case msg := <-sub.Channel():
		assert.Equal(t, `{"type":"x"}`, msg.Payload)
	case <-time.After(2 * time.Second):
		t.Fatal("no message received")
	}
}
