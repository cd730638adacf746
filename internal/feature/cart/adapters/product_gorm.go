package adapters

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"shop_backend/internal/feature/cart/domain/entity"
	"shop_backend/internal/feature/cart/usecase"
	"shop_backend/internal/platform/db"
)

type productGorm struct {
	db *gorm.DB
}

var _ usecase.ProductRepository = (*productGorm)(nil)

// NewProductGorm creates a new product repository on gorm.
func NewProductGorm(gdb *gorm.DB) *productGorm {
	return &productGorm{db: gdb}
}

func (r *productGorm) List(ctx context.Context, activeOnly bool) ([]entity.Product, error) {
	q := db.Conn(ctx, r.db).Model(&ProductModel{})
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}
	var models []ProductModel
	if err := q.Order("id").Find(&models).Error; err != nil {
		return nil, err
	}

	out := make([]entity.Product, len(models))
	for i := range models {
		out[i] = *models[i].ToEntity()
	}
	return out, nil
}

func (r *productGorm) FindByID(ctx context.Context, id uint) (*entity.Product, error) {
	var m ProductModel
	if err := db.Conn(ctx, r.db).First(&m, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, usecase.ErrProductNotFound
		}
		return nil, err
	}
	return m.ToEntity(), nil
}

func (r *productGorm) Create(ctx context.Context, p *entity.Product) error {
	m := ProductModelFromEntity(p)
	if err := db.Conn(ctx, r.db).Create(m).Error; err != nil {
		return err
	}
	p.ID = m.ID
	p.CreatedAt = m.CreatedAt
	p.UpdatedAt = m.UpdatedAt
	return nil
}

// Update は名前・価格・在庫・有効フラグを保存します。
func (r *productGorm) Update(ctx context.Context, p *entity.Product) error {
	m := ProductModelFromEntity(p)
	result := db.Conn(ctx, r.db).
		Model(m).
		Select("name", "price", "stock", "is_active", "updated_at").
		Updates(m)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return usecase.ErrProductNotFound
	}
	p.UpdatedAt = m.UpdatedAt
	return nil
}
