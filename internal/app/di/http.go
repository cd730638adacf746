package di

import (
	"context"
	"net/http"

	"github.com/alexedwards/scs/v2"

	"shop_backend/internal/app/router"
	authhandler "shop_backend/internal/feature/auth/transport/handler"
	carthandler "shop_backend/internal/feature/cart/transport/handler"
	oauth2handler "shop_backend/internal/feature/oauth2/transport/handler"
	"shop_backend/internal/platform/db"
	platformhandler "shop_backend/internal/platform/http/handler"
)

// HTTPHandler はルーターを組み立て、匿名カート用のセッションミドルウェアで包みます。
func (c *Container) HTTPHandler(sessions *scs.SessionManager) http.Handler {
	var redisCheck platformhandler.Check
	if c.Redis != nil {
		redisCheck = func(ctx context.Context) error { return c.Redis.Ping(ctx).Err() }
	}

	engine := router.NewRouter(router.Handlers{
		Auth:     authhandler.NewAuthHandler(c.Auth),
		Users:    authhandler.NewUserHandler(c.Users),
		Tokens:   oauth2handler.NewTokenHandler(c.Tokens),
		Carts:    carthandler.NewCartHandler(c.Carts, sessions),
		Products: carthandler.NewProductHandler(c.Products),
		Ready: platformhandler.NewReadinessHandler(
			func(ctx context.Context) error { return db.Ping(ctx, c.DB) },
			redisCheck,
		),
	}, router.Options{
		Debug:         c.Config.Debug,
		CORSOrigins:   c.Config.Web.CORSOrigins,
		Throttle:      c.Config.Throttle,
		Limiter:       c.Limiter,
		Authenticator: c.Tokens,
	})
	return sessions.LoadAndSave(engine)
}
