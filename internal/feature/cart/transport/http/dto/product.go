package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"shop_backend/internal/feature/cart/domain/entity"
)

// CreateProductReq は商品作成のリクエストです。priceは数値・文字列のどちらでも受け付けます。
type CreateProductReq struct {
	Name     string           `json:"name" binding:"required,max=255"`
	Price    *decimal.Decimal `json:"price" binding:"required"`
	Stock    int              `json:"stock" binding:"min=0"`
	IsActive *bool            `json:"is_active"`
}

// UpdateProductReq は商品更新のリクエストです。
type UpdateProductReq struct {
	Name     *string          `json:"name" binding:"omitempty,min=1,max=255"`
	Price    *decimal.Decimal `json:"price"`
	Stock    *int             `json:"stock" binding:"omitempty,min=0"`
	IsActive *bool            `json:"is_active"`
}

// ProductRes は商品のレスポンスです。
type ProductRes struct {
	ID        uint      `json:"id"`
	Name      string    `json:"name"`
	Price     string    `json:"price"`
	Stock     int       `json:"stock"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func NewProductRes(p *entity.Product) ProductRes {
	return ProductRes{
		ID:        p.ID,
		Name:      p.Name,
		Price:     money(p.Price),
		Stock:     p.Stock,
		IsActive:  p.IsActive,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

func NewProductResList(ps []entity.Product) []ProductRes {
	out := make([]ProductRes, len(ps))
	for i := range ps {
		out[i] = NewProductRes(&ps[i])
	}
	return out
}
