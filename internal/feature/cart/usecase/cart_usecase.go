package usecase

import (
	"context"
	"errors"
	"log/slog"

	"shop_backend/internal/feature/cart/domain/entity"
)

// cartUsecase はカート操作を実装します。
// 変更系の操作はカート行をロックしたトランザクション内で行います。
type cartUsecase struct {
	carts    CartRepository
	products ProductRepository
	tx       Transactor
}

// NewCartUsecase はcartUsecaseの新しいインスタンスを生成します。
// productsはトランザクションに参加できるキャッシュなしのリポジトリを渡します。
func NewCartUsecase(carts CartRepository, products ProductRepository, tx Transactor) *cartUsecase {
	return &cartUsecase{carts: carts, products: products, tx: tx}
}

// GetOrCreateCart は所有者の有効なカートをアイテム付きで返し、なければ作成します。
// ユーザーが指定された場合、セッションキーは無視されます。
// 同時に作成された場合は一意制約に負けた側が既存のカートを読み直します。
func (u *cartUsecase) GetOrCreateCart(ctx context.Context, owner entity.Owner) (*entity.Cart, error) {
	if owner.IsZero() {
		return nil, ErrOwnerRequired
	}
	owner = owner.Normalize()

	var (
		cart    *entity.Cart
		created bool
	)
	err := u.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		found, err := u.carts.FindActive(ctx, owner, true)
		if err == nil {
			cart = found
			return nil
		}
		if !errors.Is(err, ErrCartNotFound) {
			return err
		}

		fresh := &entity.Cart{UserID: owner.UserID, Status: entity.StatusActive}
		if owner.UserID == nil {
			key := owner.SessionKey
			fresh.SessionKey = &key
		}
		if err := u.carts.Create(ctx, fresh); err != nil {
			return err
		}
		cart, created = fresh, true
		return nil
	})
	if errors.Is(err, ErrActiveCartExists) {
		slog.Info("cart created concurrently, reusing", "user_id", owner.UserID)
		created = false
		cart, err = u.carts.FindActive(ctx, owner, false)
	}
	if err != nil {
		return nil, err
	}
	if created {
		slog.Info("cart created", "cart_id", cart.ID, "user_id", owner.UserID)
		return cart, nil
	}

	items, err := u.carts.ListItems(ctx, cart.ID)
	if err != nil {
		return nil, err
	}
	cart.Items = items
	return cart, nil
}

// AddItem は商品をカートに追加します。既存のアイテムは数量を加算し、
// price_snapshotを現在の価格で更新します。
func (u *cartUsecase) AddItem(ctx context.Context, cartID, productID uint, quantity int) (*entity.CartItem, error) {
	if quantity <= 0 {
		return nil, ErrQuantityNotPositive
	}

	var item *entity.CartItem
	err := u.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if _, err := u.carts.FindByID(ctx, cartID, true); err != nil {
			return err
		}

		product, err := u.products.FindByID(ctx, productID)
		if err != nil {
			return err
		}
		if !product.HasStock(quantity) {
			return ErrInsufficientStock
		}

		current, err := u.carts.FindItem(ctx, cartID, productID, true)
		switch {
		case err == nil:
			current.Quantity += quantity
		case errors.Is(err, ErrCartItemNotFound):
			current = &entity.CartItem{CartID: cartID, ProductID: productID, Quantity: quantity}
		default:
			return err
		}
		current.PriceSnapshot = product.Price

		if err := u.carts.SaveItem(ctx, current); err != nil {
			return err
		}
		item = current
		return u.carts.Touch(ctx, cartID)
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

// RemoveItem はカートから商品を取り除きます。
// quantityがnil、または現在の数量以上の場合はアイテムを削除し、それ以外は減算します。
// アイテムが存在しない場合は何もしません。
func (u *cartUsecase) RemoveItem(ctx context.Context, cartID, productID uint, quantity *int) error {
	if quantity != nil && *quantity <= 0 {
		return ErrQuantityNotPositive
	}

	return u.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if _, err := u.carts.FindByID(ctx, cartID, true); err != nil {
			return err
		}

		item, err := u.carts.FindItem(ctx, cartID, productID, true)
		if errors.Is(err, ErrCartItemNotFound) {
			return nil
		}
		if err != nil {
			return err
		}

		if quantity == nil || *quantity >= item.Quantity {
			if err := u.carts.DeleteItem(ctx, item.ID); err != nil {
				return err
			}
		} else {
			item.Quantity -= *quantity
			if err := u.carts.SaveItem(ctx, item); err != nil {
				return err
			}
		}
		return u.carts.Touch(ctx, cartID)
	})
}
