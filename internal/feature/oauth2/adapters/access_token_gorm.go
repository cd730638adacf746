package adapters

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"shop_backend/internal/feature/oauth2/domain/entity"
	"shop_backend/internal/feature/oauth2/usecase"
	"shop_backend/internal/platform/db"
)

// accessTokenGorm はAccessTokenRepositoryのGORM実装です。
type accessTokenGorm struct {
	db *gorm.DB
}

var _ usecase.AccessTokenRepository = (*accessTokenGorm)(nil)

func NewAccessTokenGorm(gdb *gorm.DB) *accessTokenGorm {
	return &accessTokenGorm{db: gdb}
}

func (r *accessTokenGorm) Create(ctx context.Context, token *entity.AccessToken) error {
	model := AccessTokenModelFromEntity(token)
	if err := db.Conn(ctx, r.db).Create(model).Error; err != nil {
		return err
	}
	token.ID = model.ID
	return nil
}

// FindByJTI はjtiでアクセストークン行を取得します。
func (r *accessTokenGorm) FindByJTI(ctx context.Context, jti string) (*entity.AccessToken, error) {
	var model AccessTokenModel
	if err := db.Conn(ctx, r.db).Where("jti = ?", jti).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, usecase.ErrAccessTokenNotFound
		}
		return nil, err
	}
	return model.ToEntity(), nil
}

// Revoke は未失効の行に失効日時を設定します。既に失効済みの行はそのままです。
func (r *accessTokenGorm) Revoke(ctx context.Context, jti string, at time.Time) error {
	return db.Conn(ctx, r.db).
		Model(&AccessTokenModel{}).
		Where("jti = ? AND revoked_at IS NULL", jti).
		Update("revoked_at", at).Error
}

func (r *accessTokenGorm) RevokeAllByUserID(ctx context.Context, userID uuid.UUID, at time.Time) error {
	return db.Conn(ctx, r.db).
		Model(&AccessTokenModel{}).
		Where("user_id = ? AND revoked_at IS NULL", userID).
		Update("revoked_at", at).Error
}

// DeleteExpired は期限切れ・失効済みの行を削除します。
func (r *accessTokenGorm) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	result := db.Conn(ctx, r.db).
		Where("expires_at <= ? OR revoked_at IS NOT NULL", now).
		Delete(&AccessTokenModel{})
	return result.RowsAffected, result.Error
}
