// Package session はセッション系の保存先を提供します。
// リフレッシュトークンのRedis実装と、カート用Cookieセッションのマネージャーを含みます。
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"shop_backend/internal/feature/oauth2/domain/entity"
	"shop_backend/internal/feature/oauth2/usecase"
)

// revokedRetention は失効済みトークンを監査用に残す期間です。
const revokedRetention = 24 * time.Hour

// RefreshTokenRedis implements usecase.RefreshTokenRepository using Redis.
// トークン本体は文字列キー、ユーザーごとの索引は発行日時をスコアとするソート済みセットです。
type RefreshTokenRedis struct {
	client *redis.Client
	prefix string
	now    func() time.Time
}

var _ usecase.RefreshTokenRepository = (*RefreshTokenRedis)(nil)

// NewRefreshTokenRedis creates a new RefreshTokenRedis instance.
func NewRefreshTokenRedis(client *redis.Client, prefix string) *RefreshTokenRedis {
	return &RefreshTokenRedis{client: client, prefix: prefix, now: time.Now}
}

func (r *RefreshTokenRedis) tokenKey(id string) string {
	return fmt.Sprintf("%s:%s", r.prefix, id)
}

func (r *RefreshTokenRedis) userKey(userID uuid.UUID) string {
	return fmt.Sprintf("%s:user:%s", r.prefix, userID)
}

// Create persists a new refresh token to Redis.
func (r *RefreshTokenRedis) Create(ctx context.Context, token *entity.RefreshToken) error {
	ttl := token.ExpiresAt.Sub(r.now())
	if ttl <= 0 {
		return errors.New("refresh token already expired")
	}

	data, err := json.Marshal(token)
	if err != nil {
		return fmt.Errorf("failed to marshal refresh token: %w", err)
	}

	ok, err := r.client.SetNX(ctx, r.tokenKey(token.ID), data, ttl).Result()
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("refresh token %q already exists", token.ID)
	}

	member := redis.Z{Score: float64(token.CreatedAt.UnixNano()), Member: token.ID}
	return r.client.ZAdd(ctx, r.userKey(token.UserID), member).Err()
}

// FindByID retrieves a refresh token by its value.
func (r *RefreshTokenRedis) FindByID(ctx context.Context, id string) (*entity.RefreshToken, error) {
	data, err := r.client.Get(ctx, r.tokenKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, usecase.ErrRefreshTokenNotFound
		}
		return nil, err
	}

	var token entity.RefreshToken
	if err := json.Unmarshal(data, &token); err != nil {
		return nil, fmt.Errorf("failed to unmarshal refresh token: %w", err)
	}
	return &token, nil
}

// activeTokens retrieves all active refresh tokens for a user, oldest first.
// TTLで消えたトークンは索引からも取り除きます。
func (r *RefreshTokenRedis) activeTokens(ctx context.Context, userID uuid.UUID) ([]*entity.RefreshToken, error) {
	ids, err := r.client.ZRange(ctx, r.userKey(userID), 0, -1).Result()
	if err != nil {
		return nil, err
	}

	now := r.now()
	var tokens []*entity.RefreshToken
	for _, id := range ids {
		token, err := r.FindByID(ctx, id)
		if err != nil {
			if errors.Is(err, usecase.ErrRefreshTokenNotFound) {
				r.client.ZRem(ctx, r.userKey(userID), id)
				continue
			}
			return nil, err
		}
		if token.IsValid(now) {
			tokens = append(tokens, token)
		}
	}
	return tokens, nil
}

// Revoke marks an unrevoked refresh token as revoked.
// WATCHで読み取りから書き込みまでを楽観ロックし、同時に失効させた場合は1件だけが成功します。
func (r *RefreshTokenRedis) Revoke(ctx context.Context, id string) error {
	key := r.tokenKey(id)
	err := r.client.Watch(ctx, func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, key).Bytes()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				return usecase.ErrRefreshTokenNotFound
			}
			return err
		}

		var token entity.RefreshToken
		if err := json.Unmarshal(data, &token); err != nil {
			return fmt.Errorf("failed to unmarshal refresh token: %w", err)
		}
		if token.IsRevoked() {
			return usecase.ErrRefreshTokenRevoked
		}

		now := r.now()
		token.RevokedAt = &now
		data, err = json.Marshal(&token)
		if err != nil {
			return fmt.Errorf("failed to marshal refresh token: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, revokedRetention)
			pipe.ZRem(ctx, r.userKey(token.UserID), id)
			return nil
		})
		return err
	}, key)
	if errors.Is(err, redis.TxFailedErr) {
		// 他のリクエストが先に書き換えた
		return usecase.ErrRefreshTokenRevoked
	}
	return err
}

// RevokeAllByUserID revokes all refresh tokens for a user.
func (r *RefreshTokenRedis) RevokeAllByUserID(ctx context.Context, userID uuid.UUID) error {
	ids, err := r.client.ZRange(ctx, r.userKey(userID), 0, -1).Result()
	if err != nil {
		return err
	}

	for _, id := range ids {
		err := r.Revoke(ctx, id)
		if err != nil && !errors.Is(err, usecase.ErrRefreshTokenNotFound) && !errors.Is(err, usecase.ErrRefreshTokenRevoked) {
			return err
		}
	}
	return r.client.Del(ctx, r.userKey(userID)).Err()
}

// DeleteExpired is a no-op: Redis expires tokens via TTL.
func (r *RefreshTokenRedis) DeleteExpired(context.Context, time.Time) (int64, error) {
	return 0, nil
}

// CountByUserID returns the number of active refresh tokens for a user.
func (r *RefreshTokenRedis) CountByUserID(ctx context.Context, userID uuid.UUID) (int64, error) {
	tokens, err := r.activeTokens(ctx, userID)
	if err != nil {
		return 0, err
	}
	return int64(len(tokens)), nil
}

// DeleteOldestByUserID deletes the oldest active refresh token for a user.
func (r *RefreshTokenRedis) DeleteOldestByUserID(ctx context.Context, userID uuid.UUID) error {
	tokens, err := r.activeTokens(ctx, userID)
	if err != nil {
		return err
	}
	if len(tokens) == 0 {
		return nil
	}

	oldest := tokens[0]
	if err := r.client.Del(ctx, r.tokenKey(oldest.ID)).Err(); err != nil {
		return err
	}
	return r.client.ZRem(ctx, r.userKey(userID), oldest.ID).Err()
}
