// Package ratelimiter はキーごとのスライディングウィンドウ方式のレート制限を提供します。
// 各キーはリクエスト時刻の履歴を持ち、チェックのたびにウィンドウ外の履歴を削除します。
package ratelimiter

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Rate はウィンドウあたりの許容リクエスト数です。
type Rate struct {
	Requests int
	Window   time.Duration
}

// Result は判定結果です。Allowed=false の場合、RetryAfterは再試行可能になるまでの時間です。
type Result struct {
	Allowed    bool
	RetryAfter time.Duration
}

// Limiter はレート制限の判定を行うインターフェースです。
type Limiter interface {
	Allow(ctx context.Context, key string, rate Rate) (Result, error)
}

// Key はスコープと識別子からキャッシュキーを生成します（throttle_<scope>_<ident>）。
func Key(scope, ident string) string {
	return fmt.Sprintf("throttle_%s_%s", scope, ident)
}

// MemoryLimiter はプロセス内メモリで履歴を保持するLimiterです。
// Redisが利用できない場合に使用します。
type MemoryLimiter struct {
	mu      sync.Mutex
	history map[string][]time.Time
	windows map[string]time.Duration
	swept   time.Time
	now     func() time.Time
}

// sweepInterval は期限切れキーをまとめて削除する間隔です。
const sweepInterval = time.Minute

var _ Limiter = (*MemoryLimiter)(nil)

// NewMemoryLimiter はMemoryLimiterの新しいインスタンスを生成します。
func NewMemoryLimiter() *MemoryLimiter {
	return &MemoryLimiter{
		history: make(map[string][]time.Time),
		windows: make(map[string]time.Duration),
		now:     time.Now,
	}
}

// Allow は履歴を更新し、リクエストを許可するかどうかを返します。
// 履歴は新しい順に保持します。
func (l *MemoryLimiter) Allow(_ context.Context, key string, rate Rate) (Result, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.Sub(l.swept) >= sweepInterval {
		l.sweep(now)
	}
	if rate.Requests <= 0 {
		return Result{Allowed: false, RetryAfter: rate.Window}, nil
	}

	history := trim(l.history[key], now, rate.Window)
	l.windows[key] = rate.Window

	if len(history) >= rate.Requests {
		l.history[key] = history
		oldest := history[len(history)-1]
		return Result{Allowed: false, RetryAfter: rate.Window - now.Sub(oldest)}, nil
	}

	history = append([]time.Time{now}, history...)
	l.history[key] = history
	return Result{Allowed: true}, nil
}

// trim はウィンドウ外の古い履歴を末尾から削除します。
func trim(history []time.Time, now time.Time, window time.Duration) []time.Time {
	for len(history) > 0 && !history[len(history)-1].After(now.Add(-window)) {
		history = history[:len(history)-1]
	}
	return history
}

// sweep は履歴がすべてウィンドウ外になったキーを削除します。
func (l *MemoryLimiter) sweep(now time.Time) {
	for key, history := range l.history {
		if len(trim(history, now, l.windows[key])) == 0 {
			delete(l.history, key)
			delete(l.windows, key)
		}
	}
	l.swept = now
}
