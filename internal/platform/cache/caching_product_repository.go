// Package cache provides caching implementations for repository interfaces.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"shop_backend/internal/feature/cart/domain/entity"
	"shop_backend/internal/feature/cart/usecase"
)

// CachingProductRepository decorates a ProductRepository with Redis caching.
// 読み取りはキャッシュを優先し、書き込み後は関連キーを削除します。
type CachingProductRepository struct {
	inner     usecase.ProductRepository
	rdb       *redis.Client
	ttl       time.Duration
	namespace string
}

var _ usecase.ProductRepository = (*CachingProductRepository)(nil)

// NewCachingProductRepository decorates a ProductRepository with Redis caching.
// If ttl is 0, it defaults to 5 minutes. If namespace is empty, it uses "products".
// rdbがnilの場合はキャッシュせずに内部リポジトリへ委譲します。
func NewCachingProductRepository(rdb *redis.Client, ttl time.Duration, inner usecase.ProductRepository, namespace string) *CachingProductRepository {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if namespace == "" {
		namespace = "products"
	}
	return &CachingProductRepository{
		inner:     inner,
		rdb:       rdb,
		ttl:       ttl,
		namespace: namespace,
	}
}

// List returns products, checking the cache first.
func (c *CachingProductRepository) List(ctx context.Context, activeOnly bool) ([]entity.Product, error) {
	if c.rdb == nil {
		return c.inner.List(ctx, activeOnly)
	}

	key := c.listKey(activeOnly)
	var out []entity.Product
	if c.get(ctx, key, &out) {
		return out, nil
	}

	out, err := c.inner.List(ctx, activeOnly)
	if err != nil {
		return nil, err
	}
	c.set(ctx, key, out)
	return out, nil
}

// FindByID returns a product, checking the cache first. Not-found results are not cached.
func (c *CachingProductRepository) FindByID(ctx context.Context, id uint) (*entity.Product, error) {
	if c.rdb == nil {
		return c.inner.FindByID(ctx, id)
	}

	key := c.idKey(id)
	var cached entity.Product
	if c.get(ctx, key, &cached) {
		return &cached, nil
	}

	p, err := c.inner.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	c.set(ctx, key, p)
	return p, nil
}

// Create stores the product and invalidates the list caches.
func (c *CachingProductRepository) Create(ctx context.Context, p *entity.Product) error {
	if err := c.inner.Create(ctx, p); err != nil {
		return err
	}
	c.invalidate(ctx, c.listKey(true), c.listKey(false))
	return nil
}

// Update stores the product and invalidates its entry and the list caches.
func (c *CachingProductRepository) Update(ctx context.Context, p *entity.Product) error {
	if err := c.inner.Update(ctx, p); err != nil {
		return err
	}
	c.invalidate(ctx, c.idKey(p.ID), c.listKey(true), c.listKey(false))
	return nil
}

// get はキャッシュを読み込みます。壊れたエントリは削除してミス扱いにします。
func (c *CachingProductRepository) get(ctx context.Context, key string, dst any) bool {
	b, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil || len(b) == 0 {
		return false
	}
	if err := json.Unmarshal(b, dst); err != nil {
		_ = c.rdb.Del(ctx, key).Err()
		return false
	}
	return true
}

// set stores a value (best effort).
func (c *CachingProductRepository) set(ctx context.Context, key string, v any) {
	if b, err := json.Marshal(v); err == nil {
		_ = c.rdb.Set(ctx, key, b, c.ttl).Err()
	}
}

func (c *CachingProductRepository) invalidate(ctx context.Context, keys ...string) {
	if c.rdb == nil {
		return
	}
	if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
		slog.Warn("product cache invalidation failed", "error", err, "keys", keys)
	}
}

func (c *CachingProductRepository) listKey(activeOnly bool) string {
	if activeOnly {
		return c.namespace + ":list:active"
	}
	return c.namespace + ":list:all"
}

func (c *CachingProductRepository) idKey(id uint) string {
	return fmt.Sprintf("%s:id:%d", c.namespace, id)
}
