package adapters

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"shop_backend/internal/feature/oauth2/domain/entity"
	"shop_backend/internal/feature/oauth2/usecase"
	"shop_backend/internal/platform/db"
)

// applicationGorm はApplicationRepositoryのGORM実装です。
type applicationGorm struct {
	db *gorm.DB
}

var _ usecase.ApplicationRepository = (*applicationGorm)(nil)

func NewApplicationGorm(gdb *gorm.DB) *applicationGorm {
	return &applicationGorm{db: gdb}
}

// Create はアプリケーションを登録し、採番されたIDを設定します。
func (r *applicationGorm) Create(ctx context.Context, app *entity.Application) error {
	model := ApplicationModelFromEntity(app)
	if err := db.Conn(ctx, r.db).Create(model).Error; err != nil {
		return err
	}
	app.ID = model.ID
	app.CreatedAt = model.CreatedAt
	app.UpdatedAt = model.UpdatedAt
	return nil
}

func (r *applicationGorm) FindByClientID(ctx context.Context, clientID string) (*entity.Application, error) {
	return r.first(ctx, "client_id = ?", clientID)
}

func (r *applicationGorm) FindByID(ctx context.Context, id uint) (*entity.Application, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *applicationGorm) first(ctx context.Context, query string, arg any) (*entity.Application, error) {
	var model ApplicationModel
	if err := db.Conn(ctx, r.db).Where(query, arg).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, usecase.ErrApplicationNotFound
		}
		return nil, err
	}
	return model.ToEntity(), nil
}

// UpdateSecretHash はクライアントシークレットのハッシュを差し替えます。
func (r *applicationGorm) UpdateSecretHash(ctx context.Context, id uint, hash string) error {
	result := db.Conn(ctx, r.db).
		Model(&ApplicationModel{}).
		Where("id = ?", id).
		Update("client_secret_hash", hash)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return usecase.ErrApplicationNotFound
	}
	return nil
}
