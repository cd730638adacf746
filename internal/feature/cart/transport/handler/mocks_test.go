package handler

import (
	"context"

	"shop_backend/internal/feature/cart/domain/entity"
	"shop_backend/internal/feature/cart/usecase"
)

type mockCartUsecase struct {
	GetOrCreateCartFunc func(ctx context.Context, owner entity.Owner) (*entity.Cart, error)
	AddItemFunc         func(ctx context.Context, cartID, productID uint, quantity int) (*entity.CartItem, error)
	RemoveItemFunc      func(ctx context.Context, cartID, productID uint, quantity *int) error
}

var _ CartUsecase = (*mockCartUsecase)(nil)

func (m *mockCartUsecase) GetOrCreateCart(ctx context.Context, owner entity.Owner) (*entity.Cart, error) {
	if m.GetOrCreateCartFunc != nil {
		return m.GetOrCreateCartFunc(ctx, owner)
	}
	return &entity.Cart{ID: 1, Status: entity.StatusActive}, nil
}

func (m *mockCartUsecase) AddItem(ctx context.Context, cartID, productID uint, quantity int) (*entity.CartItem, error) {
	if m.AddItemFunc != nil {
		return m.AddItemFunc(ctx, cartID, productID, quantity)
	}
	return &entity.CartItem{CartID: cartID, ProductID: productID, Quantity: quantity}, nil
}

func (m *mockCartUsecase) RemoveItem(ctx context.Context, cartID, productID uint, quantity *int) error {
	if m.RemoveItemFunc != nil {
		return m.RemoveItemFunc(ctx, cartID, productID, quantity)
	}
	return nil
}

type mockProductUsecase struct {
	ListFunc   func(ctx context.Context, activeOnly bool) ([]entity.Product, error)
	GetFunc    func(ctx context.Context, id uint) (*entity.Product, error)
	CreateFunc func(ctx context.Context, in usecase.ProductInput) (*entity.Product, error)
	UpdateFunc func(ctx context.Context, id uint, patch usecase.ProductPatch) (*entity.Product, error)
}

var _ ProductUsecase = (*mockProductUsecase)(nil)

func (m *mockProductUsecase) List(ctx context.Context, activeOnly bool) ([]entity.Product, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, activeOnly)
	}
	return nil, nil
}

func (m *mockProductUsecase) Get(ctx context.Context, id uint) (*entity.Product, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, id)
	}
	return nil, usecase.ErrProductNotFound
}

func (m *mockProductUsecase) Create(ctx context.Context, in usecase.ProductInput) (*entity.Product, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, in)
	}
	return &entity.Product{ID: 1, Name: in.Name, Price: in.Price, Stock: in.Stock, IsActive: true}, nil
}

func (m *mockProductUsecase) Update(ctx context.Context, id uint, patch usecase.ProductPatch) (*entity.Product, error) {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, id, patch)
	}
	return &entity.Product{ID: id}, nil
}
