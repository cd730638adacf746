package adapters

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"shop_backend/internal/feature/cart/domain/entity"
	"shop_backend/internal/feature/cart/usecase"
	"shop_backend/internal/platform/db"
)

// cartGorm はCartRepositoryのgorm実装です。
type cartGorm struct {
	db  *gorm.DB
	now func() time.Time
}

var _ usecase.CartRepository = (*cartGorm)(nil)

// NewCartGorm creates a new cart repository on gorm.
func NewCartGorm(gdb *gorm.DB) *cartGorm {
	return &cartGorm{db: gdb, now: time.Now}
}

// locking は行ロックを付与します。SQLiteはFOR UPDATEを持たずDB全体をロックするため付与しません。
func locking(q *gorm.DB, forUpdate bool) *gorm.DB {
	if !forUpdate || q.Dialector.Name() == "sqlite" {
		return q
	}
	return q.Clauses(clause.Locking{Strength: "UPDATE"})
}

func (r *cartGorm) FindActive(ctx context.Context, owner entity.Owner, forUpdate bool) (*entity.Cart, error) {
	q := locking(db.Conn(ctx, r.db), forUpdate).Where("status = ?", entity.StatusActive)
	if owner.UserID != nil {
		q = q.Where("user_id = ?", *owner.UserID)
	} else {
		q = q.Where("user_id IS NULL AND session_key = ?", owner.SessionKey)
	}

	var m CartModel
	if err := q.Order("id").First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, usecase.ErrCartNotFound
		}
		return nil, err
	}
	return m.ToEntity(), nil
}

func (r *cartGorm) FindByID(ctx context.Context, id uint, forUpdate bool) (*entity.Cart, error) {
	var m CartModel
	if err := locking(db.Conn(ctx, r.db), forUpdate).First(&m, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, usecase.ErrCartNotFound
		}
		return nil, err
	}
	return m.ToEntity(), nil
}

// Create は有効なカートの一意インデックスに違反した場合 ErrActiveCartExists を返します。
func (r *cartGorm) Create(ctx context.Context, cart *entity.Cart) error {
	m := &CartModel{
		UserID:     cart.UserID,
		SessionKey: cart.SessionKey,
		Status:     cart.Status,
	}
	if err := db.Conn(ctx, r.db).Create(m).Error; err != nil {
		if db.IsUniqueViolation(err) {
			return usecase.ErrActiveCartExists
		}
		return err
	}
	cart.ID = m.ID
	cart.CreatedAt = m.CreatedAt
	cart.UpdatedAt = m.UpdatedAt
	return nil
}

func (r *cartGorm) Touch(ctx context.Context, id uint) error {
	return db.Conn(ctx, r.db).
		Model(&CartModel{}).
		Where("id = ?", id).
		UpdateColumn("updated_at", r.now()).Error
}

func (r *cartGorm) ListItems(ctx context.Context, cartID uint) ([]entity.CartItem, error) {
	var models []CartItemModel
	if err := db.Conn(ctx, r.db).Where("cart_id = ?", cartID).Order("id").Find(&models).Error; err != nil {
		return nil, err
	}
	items := make([]entity.CartItem, len(models))
	for i := range models {
		items[i] = models[i].ToEntity()
	}
	return items, nil
}

func (r *cartGorm) FindItem(ctx context.Context, cartID, productID uint, forUpdate bool) (*entity.CartItem, error) {
	var m CartItemModel
	err := locking(db.Conn(ctx, r.db), forUpdate).
		Where("cart_id = ? AND product_id = ?", cartID, productID).
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, usecase.ErrCartItemNotFound
		}
		return nil, err
	}
	item := m.ToEntity()
	return &item, nil
}

func (r *cartGorm) SaveItem(ctx context.Context, item *entity.CartItem) error {
	conn := db.Conn(ctx, r.db)
	if item.ID == 0 {
		m := &CartItemModel{
			CartID:        item.CartID,
			ProductID:     item.ProductID,
			Quantity:      item.Quantity,
			PriceSnapshot: item.PriceSnapshot,
		}
		if err := conn.Omit(clause.Associations).Create(m).Error; err != nil {
			return err
		}
		item.ID = m.ID
		item.CreatedAt = m.CreatedAt
		item.UpdatedAt = m.UpdatedAt
		return nil
	}

	now := r.now()
	err := conn.Model(&CartItemModel{}).
		Where("id = ?", item.ID).
		Updates(map[string]any{
			"quantity":       item.Quantity,
			"price_snapshot": item.PriceSnapshot,
			"updated_at":     now,
		}).Error
	if err != nil {
		return err
	}
	item.UpdatedAt = now
	return nil
}

func (r *cartGorm) DeleteItem(ctx context.Context, id uint) error {
	return db.Conn(ctx, r.db).Delete(&CartItemModel{}, id).Error
}
