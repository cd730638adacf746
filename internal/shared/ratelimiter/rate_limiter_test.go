package ratelimiter

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKey(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "throttle_login_10.0.0.1", Key("login", "10.0.0.1"))
}

func TestMemoryLimiter_SlidingWindow(t *testing.T) {
	t.Parallel()

	l := NewMemoryLimiter()
	clock := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return clock }

	rate := Rate{Requests: 2, Window: time.Minute}
	ctx := context.Background()

	res, err := l.Allow(ctx, "k", rate)
	require.NoError(t, err)
	assert.True(t, res.Allowed)

	clock = clock.Add(20 * time.Second)
	res, _ = l.Allow(ctx, "k", rate)
	assert.True(t, res.Allowed)

	clock = clock.Add(10 * time.Second)
	res, _ = l.Allow(ctx, "k", rate)
	assert.False(t, res.Allowed)
	// 最古のリクエストは30秒前なので残り30秒
	assert.Equal(t, 30*time.Second, res.RetryAfter)

	// 別キーは独立
	res, _ = l.Allow(ctx, "other", rate)
	assert.True(t, res.Allowed)

	// 最古の履歴がウィンドウ外になると再び許可される
	clock = clock.Add(31 * time.Second)
	res, _ = l.Allow(ctx, "k", rate)
	assert.True(t, res.Allowed)
}

func TestMemoryLimiter_DeniedRequestsAreNotRecorded(t *testing.T) {
	t.Parallel()

	l := NewMemoryLimiter()
	clock := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return clock }
	rate := Rate{Requests: 1, Window: time.Minute}

	res, _ := l.Allow(context.Background(), "k", rate)
	assert.True(t, res.Allowed)
	for i := 0; i < 5; i++ {
		clock = clock.Add(time.Second)
		res, _ = l.Allow(context.Background(), "k", rate)
		assert.False(t, res.Allowed)
	}
	assert.Len(t, l.history["k"], 1)
}

func TestMemoryLimiter_ForgetsIdleKeys(t *testing.T) {
	t.Parallel()

	l := NewMemoryLimiter()
	clock := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return clock }
	ctx := context.Background()

	short := Rate{Requests: 5, Window: 30 * time.Second}
	long := Rate{Requests: 5, Window: time.Hour}
	for i := 0; i < 100; i++ {
		_, err := l.Allow(ctx, Key("login", fmt.Sprintf("10.0.0.%d", i)), short)
		require.NoError(t, err)
	}
	_, err := l.Allow(ctx, Key("user", "admin"), long)
	require.NoError(t, err)
	require.Len(t, l.history, 101)

	clock = clock.Add(2 * time.Minute)
	_, err = l.Allow(ctx, Key("login", "10.0.0.200"), short)
	require.NoError(t, err)

	assert.Len(t, l.history, 2, "only keys with requests inside their window remain")
	assert.Contains(t, l.history, Key("user", "admin"))
	assert.Len(t, l.windows, 2)
}

// setupTestRedis creates a miniredis instance for testing.
func setupTestRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err, "failed to start miniredis")

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		_ = client.Close()
		mr.Close()
	})
	return client, mr
}

func TestRedisLimiter_SlidingWindow(t *testing.T) {
	t.Parallel()

	client, mr := setupTestRedis(t)
	l := NewRedisLimiter(client)
	clock := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return clock }

	rate := Rate{Requests: 3, Window: 5 * time.Minute}
	ctx := context.Background()
	key := Key("login", "127.0.0.1")

	for i := 0; i < 3; i++ {
		res, err := l.Allow(ctx, key, rate)
		require.NoError(t, err)
		assert.True(t, res.Allowed, "request %d should pass", i+1)
		clock = clock.Add(time.Minute)
	}

	res, err := l.Allow(ctx, key, rate)
	require.NoError(t, err)
	assert.False(t, res.Allowed)
	assert.Equal(t, 2*time.Minute, res.RetryAfter)

	members, err := mr.ZMembers(key)
	require.NoError(t, err)
	assert.Len(t, members, 3)
	assert.True(t, mr.TTL(key) > 0, "key should expire")

	clock = clock.Add(2*time.Minute + time.Millisecond)
	res, err = l.Allow(ctx, key, rate)
	require.NoError(t, err)
	assert.True(t, res.Allowed)
}

func TestRedisLimiter_SameMillisecondRequestsAreCounted(t *testing.T) {
	t.Parallel()

	client, _ := setupTestRedis(t)
	l := NewRedisLimiter(client)
	clock := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return clock }

	rate := Rate{Requests: 2, Window: time.Minute}
	ctx := context.Background()

	r1, _ := l.Allow(ctx, "k", rate)
	r2, _ := l.Allow(ctx, "k", rate)
	r3, _ := l.Allow(ctx, "k", rate)
	assert.True(t, r1.Allowed)
	assert.True(t, r2.Allowed)
	assert.False(t, r3.Allowed)
}

func TestNew(t *testing.T) {
	t.Parallel()

	assert.IsType(t, &MemoryLimiter{}, New(nil))

	client, _ := setupTestRedis(t)
	assert.IsType(t, &RedisLimiter{}, New(client))
}
