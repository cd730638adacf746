package ratelimiter

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// slidingWindow はソート済みセットで履歴を保持し、判定を原子的に行います。
// 戻り値: {1, 0} = 許可, {0, 最古の時刻(ms)} = 拒否
var slidingWindow = redis.NewScript(`
local key = KEYS[1]
local now = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local limit = tonumber(ARGV[3])
local member = ARGV[4]

redis.call('ZREMRANGEBYSCORE', key, '-inf', now - window)
local count = redis.call('ZCARD', key)
if count >= limit then
  local oldest = redis.call('ZRANGE', key, 0, 0, 'WITHSCORES')
  return {0, tonumber(oldest[2])}
end
redis.call('ZADD', key, now, member)
redis.call('PEXPIRE', key, window)
return {1, 0}
`)

// RedisLimiter はRedisで履歴を共有するLimiterです。
type RedisLimiter struct {
	rdb *redis.Client
	now func() time.Time
}

var _ Limiter = (*RedisLimiter)(nil)

// NewRedisLimiter はRedisLimiterの新しいインスタンスを生成します。
func NewRedisLimiter(rdb *redis.Client) *RedisLimiter {
	return &RedisLimiter{rdb: rdb, now: time.Now}
}

// Allow はスクリプトを実行して判定します。
func (l *RedisLimiter) Allow(ctx context.Context, key string, rate Rate) (Result, error) {
	now := l.now().UnixMilli()
	window := rate.Window.Milliseconds()
	member := fmt.Sprintf("%d-%s", now, uuid.NewString())

	res, err := slidingWindow.Run(ctx, l.rdb, []string{key}, now, window, rate.Requests, member).Int64Slice()
	if err != nil {
		return Result{}, fmt.Errorf("rate limiter script: %w", err)
	}
	if len(res) != 2 {
		return Result{}, fmt.Errorf("rate limiter script: unexpected reply %v", res)
	}
	if res[0] == 1 {
		return Result{Allowed: true}, nil
	}

	retry := time.Duration(window-(now-res[1])) * time.Millisecond
	if retry < 0 {
		retry = 0
	}
	return Result{Allowed: false, RetryAfter: retry}, nil
}

// New はRedisが利用可能ならRedisLimiter、なければMemoryLimiterを返します。
func New(rdb *redis.Client) Limiter {
	if rdb != nil {
		return NewRedisLimiter(rdb)
	}
	return NewMemoryLimiter()
}
