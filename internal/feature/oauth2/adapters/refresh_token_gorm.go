// Package adapters provides repository implementations for the oauth2 feature.
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

// refreshTokenGorm is a database implementation of the RefreshTokenRepository interface.
// It is used when Redis is not configured.
type refreshTokenGorm struct {
	db  *gorm.DB
	now func() time.Time
}

// Compile-time check to ensure refreshTokenGorm implements RefreshTokenRepository.
var _ usecase.RefreshTokenRepository = (*refreshTokenGorm)(nil)

// NewRefreshTokenGorm creates a new instance of refreshTokenGorm.
func NewRefreshTokenGorm(gdb *gorm.DB) *refreshTokenGorm {
	return &refreshTokenGorm{db: gdb, now: time.Now}
}

// Create persists a new refresh token to the database.
func (r *refreshTokenGorm) Create(ctx context.Context, token *entity.RefreshToken) error {
	return db.Conn(ctx, r.db).Create(RefreshTokenModelFromEntity(token)).Error
}

// FindByID retrieves a refresh token by its value.
func (r *refreshTokenGorm) FindByID(ctx context.Context, id string) (*entity.RefreshToken, error) {
	var model RefreshTokenModel
	if err := db.Conn(ctx, r.db).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, usecase.ErrRefreshTokenNotFound
		}
		return nil, err
	}
	return model.ToEntity(), nil
}

// active scopes a query to the user's unrevoked, unexpired tokens.
func (r *refreshTokenGorm) active(ctx context.Context, userID uuid.UUID) *gorm.DB {
	return db.Conn(ctx, r.db).
		Model(&RefreshTokenModel{}).
		Where("user_id = ? AND revoked_at IS NULL AND expires_at > ?", userID, r.now())
}

// Revoke marks an unrevoked refresh token as revoked.
// 条件付きUPDATEなので、同じトークンを同時に失効させても成功するのは1件だけです。
func (r *refreshTokenGorm) Revoke(ctx context.Context, id string) error {
	result := db.Conn(ctx, r.db).
		Model(&RefreshTokenModel{}).
		Where("id = ? AND revoked_at IS NULL", id).
		Update("revoked_at", r.now())

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		if _, err := r.FindByID(ctx, id); err != nil {
			return err
		}
		return usecase.ErrRefreshTokenRevoked
	}
	return nil
}

// RevokeAllByUserID revokes all refresh tokens for a given user.
func (r *refreshTokenGorm) RevokeAllByUserID(ctx context.Context, userID uuid.UUID) error {
	return db.Conn(ctx, r.db).
		Model(&RefreshTokenModel{}).
		Where("user_id = ? AND revoked_at IS NULL", userID).
		Update("revoked_at", r.now()).Error
}

// DeleteExpired removes expired and revoked refresh tokens.
func (r *refreshTokenGorm) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	result := db.Conn(ctx, r.db).
		Where("expires_at <= ? OR revoked_at IS NOT NULL", now).
		Delete(&RefreshTokenModel{})
	return result.RowsAffected, result.Error
}

// CountByUserID returns the number of active refresh tokens for a user.
func (r *refreshTokenGorm) CountByUserID(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := r.active(ctx, userID).Count(&count).Error
	return count, err
}

// DeleteOldestByUserID deletes the oldest active refresh token for a user.
func (r *refreshTokenGorm) DeleteOldestByUserID(ctx context.Context, userID uuid.UUID) error {
	var oldest RefreshTokenModel
	if err := r.active(ctx, userID).Order("created_at ASC").First(&oldest).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}
	return db.Conn(ctx, r.db).Delete(&RefreshTokenModel{}, "id = ?", oldest.ID).Error
}
