package di

import (
	"strconv"

	"github.com/shopspring/decimal"

	cartusecase "shop_backend/internal/feature/cart/usecase"
)

func productInput(name, price string, stock int) cartusecase.ProductInput {
	return cartusecase.ProductInput{Name: name, Price: decimal.RequireFromString(price), Stock: stock}
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
