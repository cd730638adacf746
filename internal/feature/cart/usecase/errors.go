package usecase

import (
	"errors"

	"shop_backend/internal/shared/apperr"
)

var (
	// ErrOwnerRequired is returned when a cart is requested without a user or session key.
	ErrOwnerRequired = apperr.Validation("user or session_key is required.")

	// ErrQuantityNotPositive is returned when an add or remove quantity is zero or negative.
	ErrQuantityNotPositive = apperr.Validation("Quantity must be positive.")

	// ErrInsufficientStock is returned when the product stock is below the requested quantity.
	ErrInsufficientStock = apperr.Validation("Insufficient stock.")

	// ErrProductNotFound is returned when the product does not exist.
	ErrProductNotFound = apperr.NotFound("Product not found.")

	// ErrCartNotFound is returned when the cart does not exist.
	ErrCartNotFound = apperr.NotFound("Cart not found.")

	// ErrActiveCartExists is returned by repositories when the owner already has an active cart.
	ErrActiveCartExists = errors.New("active cart already exists")

	// ErrCartItemNotFound is returned by repositories when the cart has no item for the product.
	ErrCartItemNotFound = errors.New("cart item not found")

	ErrProductNameRequired = apperr.Validation("Product name is required.")
	ErrNegativePrice       = apperr.Validation("Price must not be negative.")
	ErrNegativeStock       = apperr.Validation("Stock must not be negative.")
)
