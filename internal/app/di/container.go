package di

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/alexedwards/scs/v2"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	authadapters "shop_backend/internal/feature/auth/adapters"
	authentity "shop_backend/internal/feature/auth/domain/entity"
	authhandler "shop_backend/internal/feature/auth/transport/handler"
	authusecase "shop_backend/internal/feature/auth/usecase"
	cartadapters "shop_backend/internal/feature/cart/adapters"
	carthandler "shop_backend/internal/feature/cart/transport/handler"
	cartusecase "shop_backend/internal/feature/cart/usecase"
	oauth2adapters "shop_backend/internal/feature/oauth2/adapters"
	oauth2handler "shop_backend/internal/feature/oauth2/transport/handler"
	oauth2middleware "shop_backend/internal/feature/oauth2/transport/middleware"
	oauth2usecase "shop_backend/internal/feature/oauth2/usecase"
	"shop_backend/internal/platform/config"
	"shop_backend/internal/platform/db"
	jwtx "shop_backend/internal/platform/jwt"
	platformredis "shop_backend/internal/platform/redis"
	"shop_backend/internal/platform/session"
	"shop_backend/internal/shared/ratelimiter"
)

// txMaxRetries はデッドロック・シリアライズ失敗時のトランザクション再実行回数です。
const txMaxRetries = 3

// TokenService はトークンエンドポイント・ベアラー認証・CLIが使うOAuth2ユースケースです。
type TokenService interface {
	oauth2handler.TokenUsecase
	oauth2middleware.Authenticator
	ownerTokens
	ClearExpired(ctx context.Context) (accessDeleted, refreshDeleted int64, err error)
}

// AuthService はログイン・登録に加え、セットアップCLI用のスーパーユーザー作成を提供します。
type AuthService interface {
	authhandler.AuthUsecase
	EnsureSuperuser(ctx context.Context, email, password string) (*authentity.User, bool, error)
}

// ApplicationService はOAuth2アプリケーションの登録を扱います。
type ApplicationService interface {
	EnsureApplication(ctx context.Context, spec oauth2usecase.ApplicationSpec, rotateSecret bool) (*oauth2usecase.EnsureResult, error)
	Exists(ctx context.Context, clientID string) (bool, error)
}

// Container はサーバーとCLIが共有する依存関係一式です。
type Container struct {
	Config config.Config
	DB     *gorm.DB
	// Redisは未設定・接続失敗時はnilです。
	Redis *redis.Client

	Tokens       TokenService
	Applications ApplicationService
	Auth         AuthService
	Users        authhandler.UserUsecase
	Carts        carthandler.CartUsecase
	Products     carthandler.ProductUsecase
	Limiter      ratelimiter.Limiter
}

// Build はデータベースとRedisに接続し、マイグレーション後に各ユースケースを組み立てます。
// Redisに接続できない場合はキャッシュ無しで動作を続けます。
func Build(ctx context.Context, cfg config.Config) (*Container, error) {
	gdb, err := db.Open(cfg.DB)
	if err != nil {
		return nil, err
	}
	if err := Migrate(gdb, cfg.DB); err != nil {
		return nil, err
	}

	rdb, err := platformredis.NewRedisClient(ctx, cfg.Redis)
	switch {
	case errors.Is(err, platformredis.ErrDisabled):
		slog.Info("Redis is not configured. Running without cache.")
	case err != nil:
		slog.Warn("Redis unavailable. Running without cache.", "error", err)
	}

	return New(cfg, gdb, rdb), nil
}

// New は接続済みのgdb・rdbから各ユースケースを組み立てます。rdbはnilでも構いません。
func New(cfg config.Config, gdb *gorm.DB, rdb *redis.Client) *Container {
	users := authadapters.NewUserGorm(gdb)
	credentials := authusecase.NewCredentials(users)
	directory := NewUserDirectory(users, credentials)

	apps := oauth2adapters.NewApplicationGorm(gdb)
	tokens := oauth2usecase.NewTokenUsecase(
		apps,
		oauth2adapters.NewAccessTokenGorm(gdb),
		NewRefreshTokenRepository(rdb, gdb),
		directory,
		jwtx.NewSigner(cfg.SecretKey, cfg.Project),
		oauth2usecase.Config{
			AccessTokenTTL:          cfg.Oauth.AccessTokenTTL,
			RefreshTokenTTL:         cfg.Oauth.RefreshTokenTTL,
			DefaultScope:            cfg.Oauth.DefaultScope,
			MaxRefreshTokensPerUser: cfg.Oauth.MaxRefreshTokensPerUser,
			LoginClientID:           cfg.Oauth.ClientID,
		},
	)
	issuer := NewTokenIssuer(tokens, directory)

	// カート操作はトランザクション内でキャッシュを通さずに商品を読みます。
	products := NewProductRepository(rdb, gdb, cfg.Cache.ProductTTL)
	tx := db.NewTransactor(gdb, txMaxRetries)

	return &Container{
		Config:       cfg,
		DB:           gdb,
		Redis:        rdb,
		Tokens:       tokens,
		Applications: oauth2usecase.NewApplicationUsecase(apps),
		Auth:         authusecase.NewAuthUsecase(users, credentials, issuer),
		Users:        authusecase.NewUserUsecase(users, issuer),
		Carts:        cartusecase.NewCartUsecase(cartadapters.NewCartGorm(gdb), cartadapters.NewProductGorm(gdb), tx),
		Products:     cartusecase.NewProductUsecase(products),
		Limiter:      ratelimiter.New(rdb),
	}
}

// Sessions は匿名カート用のセッションマネージャーを生成します。
func (c *Container) Sessions() (*scs.SessionManager, error) {
	return session.NewManager(c.Config.Session, c.Redis, c.DB)
}

// Close はRedisとデータベースの接続を閉じます。
func (c *Container) Close() {
	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			slog.Error("failed to close Redis client", "error", err)
		}
	}
	if sqlDB, err := c.DB.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			slog.Error("failed to close database", "error", err)
		}
	}
}

// Ping はデータベースとRedisの疎通を確認します。
func (c *Container) Ping(ctx context.Context) error {
	if err := db.Ping(ctx, c.DB); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if c.Redis != nil {
		if err := c.Redis.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis: %w", err)
		}
	}
	return nil
}
