// Package router はHTTPルーティングとミドルウェアの構成を定義します。
package router

import (
	"net/http"
	"slices"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	authhandler "shop_backend/internal/feature/auth/transport/handler"
	carthandler "shop_backend/internal/feature/cart/transport/handler"
	oauth2handler "shop_backend/internal/feature/oauth2/transport/handler"
	oauth2mw "shop_backend/internal/feature/oauth2/transport/middleware"
	"shop_backend/internal/platform/config"
	platformhandler "shop_backend/internal/platform/http/handler"
	"shop_backend/internal/platform/http/middleware"
	"shop_backend/internal/shared/authctx"
	"shop_backend/internal/shared/ratelimiter"
)

// スロットルのスコープ名です。
const (
	ScopeUser         = "user"
	ScopeLogin        = "login"
	ScopeUserCreation = "user_creation"
)

// Handlers はルーターに登録するハンドラー一式です。
type Handlers struct {
	Auth     *authhandler.AuthHandler
	Users    *authhandler.UserHandler
	Tokens   *oauth2handler.TokenHandler
	Carts    *carthandler.CartHandler
	Products *carthandler.ProductHandler
	Ready    *platformhandler.ReadinessHandler
}

// Options はミドルウェアの設定です。
type Options struct {
	Debug         bool
	CORSOrigins   []string
	Throttle      config.Throttle
	Limiter       ratelimiter.Limiter
	Authenticator oauth2mw.Authenticator
}

func NewRouter(h Handlers, opts Options) *gin.Engine {
	r := gin.New()
	r.Use(
		middleware.RequestID(),
		middleware.Logger(),
		gin.Recovery(),
		middleware.ErrorHandler(opts.Debug),
		cors.New(corsConfig(opts.CORSOrigins)),
	)

	throttle := func(scope string, requests int, window time.Duration) gin.HandlerFunc {
		return middleware.Throttle(opts.Limiter, scope, ratelimiter.Rate{Requests: requests, Window: window}, authctx.ThrottleIdentity)
	}
	t := opts.Throttle
	loginThrottle := throttle(ScopeLogin, t.LoginRequests, t.LoginWindow)

	// 認証不要
	// 導通確認用
	r.GET("/healthz", platformhandler.Health)
	r.HEAD("/healthz", platformhandler.Health)
	r.OPTIONS("/healthz", platformhandler.Health)
	if h.Ready != nil {
		r.GET("/readyz", h.Ready.Ready)
	}

	// OAuth2 トークンエンドポイント（クライアント認証）
	o := r.Group("/o")
	{
		o.POST("/token/", loginThrottle, h.Tokens.Token)
		o.POST("/revoke_token/", h.Tokens.Revoke)
		o.POST("/introspect/", h.Tokens.Introspect)
	}

	// ここから先はベアラートークンがあれば認証主体を設定する
	authenticate := oauth2mw.Authenticate(opts.Authenticator)

	api := r.Group("/api/v1", authenticate)
	{
		api.POST("/login/", loginThrottle, h.Auth.Login)
		api.POST("/users/", throttle(ScopeUserCreation, t.UserCreationRequests, t.UserCreationWindow), h.Auth.Signup)

		// 管理者のみ
		admin := api.Group("/users",
			oauth2mw.RequireAdmin(),
			throttle(ScopeUser, t.UserRequests, t.UserWindow),
		)
		admin.GET("/list/", h.Users.List)
		admin.PUT("/alter_password/:id/", h.Auth.ChangePassword)
		admin.PATCH("/alter_password/:id/", h.Auth.ChangePassword)
		admin.POST("/alter_password/:id/", h.Auth.ChangePassword)
		admin.GET("/:id/", h.Users.Get)
		admin.PATCH("/:id/", h.Users.Update)
		admin.DELETE("/:id/", h.Users.Delete)
	}

	cart := r.Group("/cart/v1", authenticate)
	{
		cart.GET("/", h.Carts.Get)
		cart.POST("/add_item/", h.Carts.AddItem)
		cart.POST("/remove_item/", h.Carts.RemoveItem)

		cart.GET("/products/", h.Products.List)
		cart.GET("/products/:id/", h.Products.Get)
		cart.POST("/products/", oauth2mw.RequireAdmin(), h.Products.Create)
		cart.PATCH("/products/:id/", oauth2mw.RequireAdmin(), h.Products.Update)
	}

	return r
}

// corsConfig は許可するオリジンからCORS設定を作成します。"*" は全オリジンを許可します。
func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodHead, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
		ExposeHeaders: []string{"X-Request-ID", "Retry-After"},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || slices.Contains(origins, "*") {
		cfg.AllowAllOrigins = true
		return cfg
	}
	cfg.AllowOrigins = origins
	cfg.AllowCredentials = true
	return cfg
}
