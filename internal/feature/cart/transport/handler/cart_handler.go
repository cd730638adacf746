// Package handler はカートと商品のHTTPハンドラーを提供します。
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/alexedwards/scs/v2"
	"github.com/gin-gonic/gin"

	"shop_backend/internal/feature/cart/domain/entity"
	"shop_backend/internal/feature/cart/transport/http/dto"
	"shop_backend/internal/platform/session"
	"shop_backend/internal/platform/validate"
	"shop_backend/internal/shared/authctx"
)

// CartUsecase はカート操作のユースケースを定義します。
type CartUsecase interface {
	GetOrCreateCart(ctx context.Context, owner entity.Owner) (*entity.Cart, error)
	AddItem(ctx context.Context, cartID, productID uint, quantity int) (*entity.CartItem, error)
	RemoveItem(ctx context.Context, cartID, productID uint, quantity *int) error
}

// CartHandler は /cart/v1/ のリクエストを処理します。
// 認証済みユーザーはユーザーのカート、匿名ユーザーはセッションCookieのカートを操作します。
type CartHandler struct {
	carts    CartUsecase
	sessions *scs.SessionManager
}

// NewCartHandler はCartHandlerの新しいインスタンスを生成します。
func NewCartHandler(carts CartUsecase, sessions *scs.SessionManager) *CartHandler {
	return &CartHandler{carts: carts, sessions: sessions}
}

// Get は現在のカートをアイテムと合計付きで返します。
func (h *CartHandler) Get(c *gin.Context) {
	cart, ok := h.cart(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, dto.NewCartRes(cart))
}

// AddItem は商品をカートに追加し、更新後のアイテムを返します。
func (h *CartHandler) AddItem(c *gin.Context) {
	var req dto.AddItemReq
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(validate.BindError(err))
		return
	}
	quantity := 1
	if req.Quantity != nil {
		quantity = *req.Quantity
	}

	cart, ok := h.cart(c)
	if !ok {
		return
	}
	item, err := h.carts.AddItem(c.Request.Context(), cart.ID, req.ProductID, quantity)
	if err != nil {
		slog.Warn("add item failed", "cart_id", cart.ID, "product_id", req.ProductID, "error", err, "remote_addr", c.ClientIP())
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, dto.NewCartItemRes(item))
}

// RemoveItem はカートから商品を取り除きます。
func (h *CartHandler) RemoveItem(c *gin.Context) {
	var req dto.RemoveItemReq
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(validate.BindError(err))
		return
	}

	cart, ok := h.cart(c)
	if !ok {
		return
	}
	if err := h.carts.RemoveItem(c.Request.Context(), cart.ID, req.ProductID, req.Quantity); err != nil {
		slog.Warn("remove item failed", "cart_id", cart.ID, "product_id", req.ProductID, "error", err, "remote_addr", c.ClientIP())
		_ = c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}

// cart はリクエストの所有者のカートを取得または作成します。
func (h *CartHandler) cart(c *gin.Context) (*entity.Cart, bool) {
	var owner entity.Owner
	if id, ok := authctx.UserID(c); ok {
		owner.UserID = &id
	} else {
		owner.SessionKey = session.EnsureCartKey(c.Request.Context(), h.sessions)
	}

	cart, err := h.carts.GetOrCreateCart(c.Request.Context(), owner)
	if err != nil {
		_ = c.Error(err)
		return nil, false
	}
	return cart, true
}
