package usecase

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"

	"shop_backend/internal/feature/cart/domain/entity"
)

// ProductInput は商品作成の入力です。IsActiveがnilの場合は有効として作成します。
type ProductInput struct {
	Name     string
	Price    decimal.Decimal
	Stock    int
	IsActive *bool
}

// ProductPatch は商品更新の入力です。nilのフィールドは変更しません。
type ProductPatch struct {
	Name     *string
	Price    *decimal.Decimal
	Stock    *int
	IsActive *bool
}

// productUsecase は商品の参照と管理を実装します。
type productUsecase struct {
	products ProductRepository
}

// NewProductUsecase はproductUsecaseの新しいインスタンスを生成します。
func NewProductUsecase(products ProductRepository) *productUsecase {
	return &productUsecase{products: products}
}

func (u *productUsecase) List(ctx context.Context, activeOnly bool) ([]entity.Product, error) {
	return u.products.List(ctx, activeOnly)
}

func (u *productUsecase) Get(ctx context.Context, id uint) (*entity.Product, error) {
	return u.products.FindByID(ctx, id)
}

// Create は商品を登録します。価格は小数点以下2桁に丸めます。
func (u *productUsecase) Create(ctx context.Context, in ProductInput) (*entity.Product, error) {
	p := &entity.Product{
		Name:     strings.TrimSpace(in.Name),
		Price:    in.Price.Round(2),
		Stock:    in.Stock,
		IsActive: in.IsActive == nil || *in.IsActive,
	}
	if err := validateProduct(p); err != nil {
		return nil, err
	}
	if err := u.products.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Update は指定されたフィールドのみ商品を更新します。
func (u *productUsecase) Update(ctx context.Context, id uint, patch ProductPatch) (*entity.Product, error) {
	p, err := u.products.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if patch.Name != nil {
		p.Name = strings.TrimSpace(*patch.Name)
	}
	if patch.Price != nil {
		p.Price = patch.Price.Round(2)
	}
	if patch.Stock != nil {
		p.Stock = *patch.Stock
	}
	if patch.IsActive != nil {
		p.IsActive = *patch.IsActive
	}
	if err := validateProduct(p); err != nil {
		return nil, err
	}
	if err := u.products.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func validateProduct(p *entity.Product) error {
	switch {
	case p.Name == "":
		return ErrProductNameRequired
	case p.Price.IsNegative():
		return ErrNegativePrice
	case p.Stock < 0:
		return ErrNegativeStock
	}
	return nil
}
