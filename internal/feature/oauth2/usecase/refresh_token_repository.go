package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	"shop_backend/internal/feature/oauth2/domain/entity"
)

// RefreshTokenRepository はリフレッシュトークンの永続化層を抽象化します。
// Redis実装とデータベース実装があり、DIで選択されます。
type RefreshTokenRepository interface {
	// Create は新しいリフレッシュトークンを保存します。
	Create(ctx context.Context, token *entity.RefreshToken) error

	// FindByID はトークン値で取得します。存在しない場合 ErrRefreshTokenNotFound を返します。
	FindByID(ctx context.Context, id string) (*entity.RefreshToken, error)

	// Revoke は未失効のトークンを失効させます。失効の判定と更新は不可分に行います。
	// 既に失効済みなら ErrRefreshTokenRevoked、存在しない場合 ErrRefreshTokenNotFound を返します。
	Revoke(ctx context.Context, id string) error

	// RevokeAllByUserID はユーザーの全トークンを失効させます。
	RevokeAllByUserID(ctx context.Context, userID uuid.UUID) error

	// DeleteExpired は期限切れ・失効済みのトークンを削除し、削除件数を返します。
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)

	// CountByUserID はユーザーの有効なトークン数を返します。
	CountByUserID(ctx context.Context, userID uuid.UUID) (int64, error)

	// DeleteOldestByUserID はユーザーの最も古い有効なトークンを削除します。
	DeleteOldestByUserID(ctx context.Context, userID uuid.UUID) error
}

// AccessTokenRepository はアクセストークン行の永続化層を抽象化します。
type AccessTokenRepository interface {
	Create(ctx context.Context, token *entity.AccessToken) error
	// FindByJTI は存在しない場合 ErrAccessTokenNotFound を返します。
	FindByJTI(ctx context.Context, jti string) (*entity.AccessToken, error)
	Revoke(ctx context.Context, jti string, at time.Time) error
	RevokeAllByUserID(ctx context.Context, userID uuid.UUID, at time.Time) error
	// DeleteExpired は期限切れ・失効済みの行を削除し、削除件数を返します。
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// ApplicationRepository はOAuth2アプリケーションの永続化層を抽象化します。
type ApplicationRepository interface {
	Create(ctx context.Context, app *entity.Application) error
	// FindByClientID は存在しない場合 ErrApplicationNotFound を返します。
	FindByClientID(ctx context.Context, clientID string) (*entity.Application, error)
	FindByID(ctx context.Context, id uint) (*entity.Application, error)
	UpdateSecretHash(ctx context.Context, id uint, hash string) error
}

// ResourceOwner はトークンの所有者となるユーザーの認証に必要な属性です。
type ResourceOwner struct {
	ID          uuid.UUID
	Email       string
	IsActive    bool
	IsStaff     bool
	IsSuperuser bool
}

// UserDirectory はユーザーの認証と参照を抽象化します。
// 実装はauthフィーチャーのリポジトリを包むアダプターです。
type UserDirectory interface {
	// Authenticate はメールアドレスとパスワードを検証します。
	// 不一致や無効ユーザーの場合は ErrOwnerNotFound を返します。
	Authenticate(ctx context.Context, email, password string) (*ResourceOwner, error)
	// FindByID は存在しない場合 ErrOwnerNotFound を返します。
	FindByID(ctx context.Context, id uuid.UUID) (*ResourceOwner, error)
}
