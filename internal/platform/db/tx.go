package db

import (
	"context"
	"log/slog"
	"time"

	"gorm.io/gorm"
)

type txKey struct{}

// Transactor はcontextにトランザクションを載せて関数を実行します。
// リポジトリは Conn(ctx, db) を通して同じトランザクションを利用します。
type Transactor struct {
	db         *gorm.DB
	maxRetries int
}

// NewTransactor はTransactorを生成します。maxRetriesが負の場合は0として扱います。
func NewTransactor(db *gorm.DB, maxRetries int) *Transactor {
	if maxRetries < 0 {
		maxRetries = 0
	}
	return &Transactor{db: db, maxRetries: maxRetries}
}

// WithinTransaction はfnを1つのトランザクション内で実行します。
// 既にトランザクション中のcontextであればそれに参加します。
// リトライ可能なエラーの場合はmaxRetries回まで再実行します。
func (t *Transactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return fn(ctx)
	}

	var err error
	for attempt := 0; attempt <= t.maxRetries; attempt++ {
		err = t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			return fn(context.WithValue(ctx, txKey{}, tx))
		})
		if err == nil || !IsRetryable(err) {
			return err
		}
		if attempt == t.maxRetries {
			break
		}
		slog.Warn("transaction conflict, retrying", "attempt", attempt+1, "error", err)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(attempt+1) * 50 * time.Millisecond):
		}
	}
	return err
}

// Conn はcontextに紐づくトランザクション、なければdbを返します。
func Conn(ctx context.Context, db *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx.WithContext(ctx)
	}
	return db.WithContext(ctx)
}
