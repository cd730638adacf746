package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"shop_backend/internal/feature/cart/domain/entity"
	"shop_backend/internal/feature/cart/transport/http/dto"
	"shop_backend/internal/feature/cart/usecase"
	"shop_backend/internal/platform/validate"
	"shop_backend/internal/shared/authctx"
)

// ProductUsecase は商品操作のユースケースを定義します。
type ProductUsecase interface {
	List(ctx context.Context, activeOnly bool) ([]entity.Product, error)
	Get(ctx context.Context, id uint) (*entity.Product, error)
	Create(ctx context.Context, in usecase.ProductInput) (*entity.Product, error)
	Update(ctx context.Context, id uint, patch usecase.ProductPatch) (*entity.Product, error)
}

// ProductHandler は /cart/v1/products/ のリクエストを処理します。
// スタッフ以外には有効な商品のみを見せます。
type ProductHandler struct {
	products ProductUsecase
}

// NewProductHandler はProductHandlerの新しいインスタンスを生成します。
func NewProductHandler(products ProductUsecase) *ProductHandler {
	return &ProductHandler{products: products}
}

func (h *ProductHandler) List(c *gin.Context) {
	products, err := h.products.List(c.Request.Context(), !authctx.IsStaff(c))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, dto.NewProductResList(products))
}

func (h *ProductHandler) Get(c *gin.Context) {
	id, ok := productIDParam(c)
	if !ok {
		return
	}
	p, err := h.products.Get(c.Request.Context(), id)
	if err != nil {
		_ = c.Error(err)
		return
	}
	if !p.IsActive && !authctx.IsStaff(c) {
		_ = c.Error(usecase.ErrProductNotFound)
		return
	}
	c.JSON(http.StatusOK, dto.NewProductRes(p))
}

// Create は商品を登録します（管理者のみ）。
func (h *ProductHandler) Create(c *gin.Context) {
	var req dto.CreateProductReq
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(validate.BindError(err))
		return
	}

	p, err := h.products.Create(c.Request.Context(), usecase.ProductInput{
		Name:     req.Name,
		Price:    *req.Price,
		Stock:    req.Stock,
		IsActive: req.IsActive,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}
	slog.Info("product created", "product_id", p.ID, "remote_addr", c.ClientIP())
	c.JSON(http.StatusCreated, dto.NewProductRes(p))
}

// Update は商品を部分更新します（管理者のみ）。
func (h *ProductHandler) Update(c *gin.Context) {
	id, ok := productIDParam(c)
	if !ok {
		return
	}
	var req dto.UpdateProductReq
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(validate.BindError(err))
		return
	}

	p, err := h.products.Update(c.Request.Context(), id, usecase.ProductPatch{
		Name:     req.Name,
		Price:    req.Price,
		Stock:    req.Stock,
		IsActive: req.IsActive,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}
	slog.Info("product updated", "product_id", p.ID, "remote_addr", c.ClientIP())
	c.JSON(http.StatusOK, dto.NewProductRes(p))
}

// productIDParam はパスの:idを解釈します。不正な値は404として扱います。
func productIDParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		_ = c.Error(usecase.ErrProductNotFound)
		return 0, false
	}
	return uint(id), true
}
