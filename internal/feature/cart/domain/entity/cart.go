package entity

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// StatusActive は利用中のカートの状態です。
const StatusActive = "active"

// Owner はカートの所有者です。ユーザーまたは匿名セッションのどちらかで識別します。
type Owner struct {
	UserID     *uuid.UUID
	SessionKey string
}

// IsZero はユーザーもセッションキーも持たない場合にtrueを返します。
func (o Owner) IsZero() bool {
	return o.UserID == nil && strings.TrimSpace(o.SessionKey) == ""
}

// Normalize はユーザーがいる場合にセッションキーを捨てた所有者を返します。
func (o Owner) Normalize() Owner {
	if o.UserID != nil {
		return Owner{UserID: o.UserID}
	}
	return Owner{SessionKey: strings.TrimSpace(o.SessionKey)}
}

// Cart はユーザーまたはセッションに紐づく買い物かごです。
type Cart struct {
	ID         uint
	UserID     *uuid.UUID
	SessionKey *string
	Status     string
	Items      []CartItem
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// TotalItems は全アイテムの数量の合計です。
func (c *Cart) TotalItems() int {
	n := 0
	for _, it := range c.Items {
		n += it.Quantity
	}
	return n
}

// TotalValue は price_snapshot × quantity の合計です。
func (c *Cart) TotalValue() decimal.Decimal {
	total := decimal.Zero
	for _, it := range c.Items {
		total = total.Add(it.Subtotal())
	}
	return total
}

// CartItem はカート内の1商品です。価格は追加時点のスナップショットを保持します。
type CartItem struct {
	ID            uint
	CartID        uint
	ProductID     uint
	Quantity      int
	PriceSnapshot decimal.Decimal
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Subtotal は price_snapshot × quantity です。
func (i *CartItem) Subtotal() decimal.Decimal {
	return i.PriceSnapshot.Mul(decimal.NewFromInt(int64(i.Quantity)))
}
