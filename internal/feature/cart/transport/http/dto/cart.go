// Package dto はカートと商品のリクエスト・レスポンス型を定義します。
package dto

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"

	"shop_backend/internal/feature/cart/domain/entity"
)

// AddItemReq は /cart/v1/add_item/ のリクエストです。quantityの既定値は1です。
type AddItemReq struct {
	ProductID uint `json:"product_id" binding:"required"`
	Quantity  *int `json:"quantity"`
}

// RemoveItemReq は /cart/v1/remove_item/ のリクエストです。quantity省略時はアイテムを削除します。
type RemoveItemReq struct {
	ProductID uint `json:"product_id" binding:"required"`
	Quantity  *int `json:"quantity"`
}

// CartItemRes はカートアイテムのレスポンスです。
type CartItemRes struct {
	ID            uint        `json:"id"`
	ProductID     uint        `json:"product_id"`
	Quantity      int         `json:"quantity"`
	PriceSnapshot string      `json:"price_snapshot"`
	Subtotal      json.Number `json:"subtotal"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
}

// CartRes はカートのレスポンスです。
type CartRes struct {
	ID         uint          `json:"id"`
	User       *string       `json:"user"`
	SessionKey *string       `json:"session_key"`
	Items      []CartItemRes `json:"items"`
	TotalItems int           `json:"total_items"`
	TotalValue json.Number   `json:"total_value"`
	CreatedAt  time.Time     `json:"created_at"`
	UpdatedAt  time.Time     `json:"updated_at"`
}

// money は小数点以下2桁の文字列です。
func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func NewCartItemRes(it *entity.CartItem) CartItemRes {
	return CartItemRes{
		ID:            it.ID,
		ProductID:     it.ProductID,
		Quantity:      it.Quantity,
		PriceSnapshot: money(it.PriceSnapshot),
		Subtotal:      json.Number(money(it.Subtotal())),
		CreatedAt:     it.CreatedAt,
		UpdatedAt:     it.UpdatedAt,
	}
}

func NewCartRes(c *entity.Cart) CartRes {
	res := CartRes{
		ID:         c.ID,
		SessionKey: c.SessionKey,
		Items:      make([]CartItemRes, len(c.Items)),
		TotalItems: c.TotalItems(),
		TotalValue: json.Number(money(c.TotalValue())),
		CreatedAt:  c.CreatedAt,
		UpdatedAt:  c.UpdatedAt,
	}
	if c.UserID != nil {
		id := c.UserID.String()
		res.User = &id
	}
	for i := range c.Items {
		res.Items[i] = NewCartItemRes(&c.Items[i])
	}
	return res
}
