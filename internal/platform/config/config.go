// Package config はアプリケーション設定の読み込みを提供します。
// .env を godotenv で読み込んだ後、環境変数とフラグを ardanlabs/conf で構造体へ展開します。
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ardanlabs/conf/v3"
	"github.com/joho/godotenv"

	"shop_backend/internal/platform/db"
	"shop_backend/internal/platform/logger"
	"shop_backend/internal/platform/redis"
	"shop_backend/internal/platform/session"
)

// Prefix は環境変数のプレフィックスです（例: SHOP_DB_ENGINE）。
const Prefix = "SHOP"

// devSecretKey はDEBUG時のみ使用される開発用の署名鍵です。
const devSecretKey = "insecure-dev-secret-key-change-me"

// ErrHelpWanted は --help が指定されたことを表します。
var ErrHelpWanted = conf.ErrHelpWanted

// Config はサーバーとCLIが共有する設定です。
type Config struct {
	Debug     bool   `conf:"default:false"`
	SecretKey string `conf:"mask"`
	Project   string `conf:"default:shop_backend"`

	Web      Web
	Log      logger.Config
	DB       db.Config
	Redis    redis.Config
	Oauth    Oauth
	Session  session.Config
	Throttle Throttle
	Cache    Cache
}

// Web はHTTPサーバーの設定です。
type Web struct {
	Addr            string        `conf:"default:0.0.0.0:8080"`
	ReadTimeout     time.Duration `conf:"default:10s"`
	WriteTimeout    time.Duration `conf:"default:20s"`
	ShutdownTimeout time.Duration `conf:"default:20s"`
	CORSOrigins     []string      `conf:"default:http://localhost:3000"`
}

// Oauth はトークン発行の設定です。
type Oauth struct {
	ClientID                string        `conf:"default:shop-backend"`
	ClientSecret            string        `conf:"mask"`
	AccessTokenTTL          time.Duration `conf:"default:24h"`
	RefreshTokenTTL         time.Duration `conf:"default:720h"`
	DefaultScope            string        `conf:"default:read write"`
	MaxRefreshTokensPerUser int           `conf:"default:10"`
}

// Throttle はスコープごとのレート制限です。
type Throttle struct {
	UserRequests         int           `conf:"default:100"`
	UserWindow           time.Duration `conf:"default:1h"`
	LoginRequests        int           `conf:"default:5"`
	LoginWindow          time.Duration `conf:"default:5m"`
	UserCreationRequests int           `conf:"default:3"`
	UserCreationWindow   time.Duration `conf:"default:1h"`
}

// Cache は商品キャッシュの設定です。
type Cache struct {
	ProductTTL time.Duration `conf:"default:5m"`
}

// Load は.envを読み込み、cfgに設定を展開します。
// cfgはConfigを匿名埋め込みした構造体でも構いません（CLI固有のフラグ用）。
// --help指定時は使い方を表示してErrHelpWantedを返します。
func Load(cfg any, envFiles ...string) error {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	if err := godotenv.Load(envFiles...); err != nil {
		slog.Info(".env not found; using system environment variables")
	}

	help, err := conf.Parse(Prefix, cfg)
	if err != nil {
		if errors.Is(err, conf.ErrHelpWanted) {
			fmt.Println(help)
		}
		return err
	}
	return nil
}

// Validate は起動に必要な値を検証し、DEBUG時は開発用の既定値を補います。
func (c *Config) Validate() error {
	if c.SecretKey == "" {
		if !c.Debug {
			return errors.New("SHOP_SECRET_KEY is not set")
		}
		slog.Warn("SHOP_SECRET_KEY is not set. Using an insecure development key.")
		c.SecretKey = devSecretKey
	}
	if c.Oauth.ClientID == "" {
		return errors.New("SHOP_OAUTH_CLIENT_ID is not set")
	}
	return nil
}

// String は秘匿項目をマスクした設定内容を返します。
func (c *Config) String() string {
	out, err := conf.String(c)
	if err != nil {
		return err.Error()
	}
	return out
}
