// Package usecase はカートと商品のビジネスロジックを実装します。
package usecase

import (
	"context"

	"shop_backend/internal/feature/cart/domain/entity"
)

// ProductRepository は商品の永続化層を抽象化します。
type ProductRepository interface {
	// List は商品をID順で返します。activeOnlyがtrueの場合は有効な商品のみです。
	List(ctx context.Context, activeOnly bool) ([]entity.Product, error)
	// FindByID は存在しない場合 ErrProductNotFound を返します。
	FindByID(ctx context.Context, id uint) (*entity.Product, error)
	Create(ctx context.Context, product *entity.Product) error
	// Update は存在しない場合 ErrProductNotFound を返します。
	Update(ctx context.Context, product *entity.Product) error
}

// CartRepository はカートとカートアイテムの永続化層を抽象化します。
// forUpdateがtrueの読み取りはトランザクション内で行ロック（SELECT ... FOR UPDATE）を取得します。
type CartRepository interface {
	// FindActive は所有者の有効なカートを返します。存在しない場合 ErrCartNotFound を返します。
	FindActive(ctx context.Context, owner entity.Owner, forUpdate bool) (*entity.Cart, error)
	// FindByID は存在しない場合 ErrCartNotFound を返します。
	FindByID(ctx context.Context, id uint, forUpdate bool) (*entity.Cart, error)
	// Create は所有者に有効なカートが既にある場合 ErrActiveCartExists を返します。
	Create(ctx context.Context, cart *entity.Cart) error
	// Touch はカートのupdated_atを更新します。
	Touch(ctx context.Context, id uint) error

	// ListItems はカートのアイテムを追加順で返します。
	ListItems(ctx context.Context, cartID uint) ([]entity.CartItem, error)
	// FindItem は存在しない場合 ErrCartItemNotFound を返します。
	FindItem(ctx context.Context, cartID, productID uint, forUpdate bool) (*entity.CartItem, error)
	// SaveItem はIDが0なら作成、それ以外は数量とスナップショットを更新します。
	SaveItem(ctx context.Context, item *entity.CartItem) error
	DeleteItem(ctx context.Context, id uint) error
}

// Transactor は関数を1つのデータベーストランザクション内で実行します。
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
