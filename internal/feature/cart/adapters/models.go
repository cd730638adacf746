// Package adapters provides gorm repository implementations for the cart feature.
package adapters

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"shop_backend/internal/feature/cart/domain/entity"
)

// ProductModel is the GORM model for the products table.
type ProductModel struct {
	ID        uint            `gorm:"primaryKey"`
	Name      string          `gorm:"size:255;not null"`
	Price     decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Stock     int             `gorm:"not null;default:0"`
	IsActive  bool            `gorm:"not null;default:true;index"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName specifies the table name for GORM.
func (ProductModel) TableName() string {
	return "cart_product"
}

func (m *ProductModel) ToEntity() *entity.Product {
	return &entity.Product{
		ID:        m.ID,
		Name:      m.Name,
		Price:     m.Price,
		Stock:     m.Stock,
		IsActive:  m.IsActive,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

func ProductModelFromEntity(p *entity.Product) *ProductModel {
	return &ProductModel{
		ID:        p.ID,
		Name:      p.Name,
		Price:     p.Price,
		Stock:     p.Stock,
		IsActive:  p.IsActive,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

// CartModel is the GORM model for the carts table.
type CartModel struct {
	ID         uint       `gorm:"primaryKey"`
	UserID     *uuid.UUID `gorm:"type:char(36);index"`
	SessionKey *string    `gorm:"size:64;index"`
	Status     string     `gorm:"size:32;not null;default:active;index"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// TableName specifies the table name for GORM.
func (CartModel) TableName() string {
	return "carts"
}

func (m *CartModel) ToEntity() *entity.Cart {
	return &entity.Cart{
		ID:         m.ID,
		UserID:     m.UserID,
		SessionKey: m.SessionKey,
		Status:     m.Status,
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
	}
}

// CartItemModel is the GORM model for the cart_items table.
// (cart_id, product_id) は一意です。
type CartItemModel struct {
	ID            uint            `gorm:"primaryKey"`
	CartID        uint            `gorm:"not null;uniqueIndex:idx_cart_items_cart_product"`
	ProductID     uint            `gorm:"not null;index;uniqueIndex:idx_cart_items_cart_product"`
	Quantity      int             `gorm:"not null"`
	PriceSnapshot decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	CreatedAt     time.Time
	UpdatedAt     time.Time

	Cart    CartModel    `gorm:"constraint:OnDelete:CASCADE"`
	Product ProductModel `gorm:"constraint:OnDelete:CASCADE"`
}

// TableName specifies the table name for GORM.
func (CartItemModel) TableName() string {
	return "cart_items"
}

func (m *CartItemModel) ToEntity() entity.CartItem {
	return entity.CartItem{
		ID:            m.ID,
		CartID:        m.CartID,
		ProductID:     m.ProductID,
		Quantity:      m.Quantity,
		PriceSnapshot: m.PriceSnapshot,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}

// Models returns the cart feature's models for AutoMigrate, parents first.
func Models() []any {
	return []any{&ProductModel{}, &CartModel{}, &CartItemModel{}}
}

// activeCartIndexes limit each owner to one active cart.
var activeCartIndexes = []string{
	"CREATE UNIQUE INDEX IF NOT EXISTS idx_carts_active_user ON carts (user_id) WHERE status = 'active' AND user_id IS NOT NULL",
	"CREATE UNIQUE INDEX IF NOT EXISTS idx_carts_active_session ON carts (session_key) WHERE status = 'active' AND user_id IS NULL",
}

// CreateActiveCartIndexes は有効なカートの部分一意インデックスを作成します。
// MySQLは部分インデックスを持たないため作成しません（get-or-createの行ロックとデッドロック再試行で直列化されます）。
func CreateActiveCartIndexes(gdb *gorm.DB) error {
	switch gdb.Dialector.Name() {
	case "postgres", "sqlite":
	default:
		return nil
	}
	for _, stmt := range activeCartIndexes {
		if err := gdb.Exec(stmt).Error; err != nil {
			return fmt.Errorf("failed to create active cart index: %w", err)
		}
	}
	return nil
}
