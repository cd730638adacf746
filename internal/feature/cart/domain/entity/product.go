// Package entity defines the domain entities for the cart feature.
package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product はカートに追加できる商品です。
type Product struct {
	ID        uint
	Name      string
	Price     decimal.Decimal
	Stock     int
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// HasStock は指定数量の在庫があるかを返します。
func (p *Product) HasStock(quantity int) bool {
	return p.Stock >= quantity
}
