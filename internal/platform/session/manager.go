package session

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/alexedwards/scs/goredisstore"
	"github.com/alexedwards/scs/gormstore"
	"github.com/alexedwards/scs/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// cartKeyName はセッション内でカートのキーを保持する項目名です。
const cartKeyName = "cart_session_key"

// Config は匿名カート用セッションCookieの設定です。
type Config struct {
	CookieName   string        `conf:"default:shop_session"`
	Lifetime     time.Duration `conf:"default:336h"`
	CookieSecure bool          `conf:"default:false"`
}

// NewManager はCookieセッションのマネージャーを作成します。
// Redisが使える場合はRedisに、使えない場合はデータベースにセッションを保存します。
func NewManager(cfg Config, rdb *redis.Client, gdb *gorm.DB) (*scs.SessionManager, error) {
	sm := scs.New()
	sm.Lifetime = cfg.Lifetime
	sm.Cookie.Name = cfg.CookieName
	sm.Cookie.HttpOnly = true
	sm.Cookie.Secure = cfg.CookieSecure
	sm.Cookie.SameSite = http.SameSiteLaxMode
	sm.Cookie.Persist = true

	switch {
	case rdb != nil:
		sm.Store = goredisstore.New(rdb)
	case gdb != nil:
		store, err := gormstore.New(gdb)
		if err != nil {
			return nil, fmt.Errorf("session store: %w", err)
		}
		sm.Store = store
	}
	// どちらも無い場合はscs既定のメモリストアを使います。
	return sm, nil
}

// CartKey はセッションに保存済みのカートキーを返します。未発行なら空文字です。
func CartKey(ctx context.Context, sm *scs.SessionManager) string {
	return sm.GetString(ctx, cartKeyName)
}

// EnsureCartKey はカートキーを返し、未発行なら新しいUUIDを発行して保存します。
func EnsureCartKey(ctx context.Context, sm *scs.SessionManager) string {
	if key := CartKey(ctx, sm); key != "" {
		return key
	}
	key := uuid.NewString()
	sm.Put(ctx, cartKeyName, key)
	return key
}
