// Package di はアプリケーションの依存関係を組み立てます。
package di

import (
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	authadapters "shop_backend/internal/feature/auth/adapters"
	cartadapters "shop_backend/internal/feature/cart/adapters"
	cartusecase "shop_backend/internal/feature/cart/usecase"
	oauth2adapters "shop_backend/internal/feature/oauth2/adapters"
	oauth2usecase "shop_backend/internal/feature/oauth2/usecase"
	"shop_backend/internal/platform/cache"
	"shop_backend/internal/platform/db"
	"shop_backend/internal/platform/session"
)

// NewRefreshTokenRepository はRefreshTokenRepositoryの実装を生成します。
// Redisが利用可能であればRedis実装を、そうでなければデータベース実装を返します。
func NewRefreshTokenRepository(rdb *redis.Client, gdb *gorm.DB) oauth2usecase.RefreshTokenRepository {
	if rdb != nil {
		return session.NewRefreshTokenRedis(rdb, "refresh_token")
	}
	return oauth2adapters.NewRefreshTokenGorm(gdb)
}

// NewProductRepository は商品リポジトリをRedisキャッシュで包みます。
// rdbがnilの場合、キャッシュは素通りします。
func NewProductRepository(rdb *redis.Client, gdb *gorm.DB, ttl time.Duration) cartusecase.ProductRepository {
	return cache.NewCachingProductRepository(rdb, ttl, cartadapters.NewProductGorm(gdb), "products")
}

// Models はAutoMigrateの対象となる全モデルを返します。
// scsのセッションテーブルはgormstoreが自身で作成します。
func Models() []any {
	models := []any{&authadapters.UserModel{}}
	models = append(models, oauth2adapters.Models()...)
	models = append(models, cartadapters.Models()...)
	return models
}

// Migrate はRunMigrationsが有効な場合にモデルと有効カートの一意インデックスを作成します。
func Migrate(gdb *gorm.DB, cfg db.Config) error {
	if !cfg.RunMigrations {
		return nil
	}
	if err := db.Migrate(gdb, cfg, Models()...); err != nil {
		return err
	}
	return cartadapters.CreateActiveCartIndexes(gdb)
}
