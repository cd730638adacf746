// healthcheck はデータベース・Redis・OAuth2アプリケーション・HTTPサーバーの状態を確認します。
// いずれかの確認に失敗した場合は終了コード1で終了します。
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"gorm.io/gorm"

	"shop_backend/internal/app/di"
	"shop_backend/internal/platform/config"
	"shop_backend/internal/platform/db"
	platformhttp "shop_backend/internal/platform/http"
	platformredis "shop_backend/internal/platform/redis"
)

type options struct {
	config.Config
	URL     string        `conf:"default:http://localhost:8080"`
	Timeout time.Duration `conf:"default:5s"`
}

// check は1項目の確認です。skippedがtrueの場合は失敗として数えません。
type check struct {
	name string
	run  func(ctx context.Context) (skipped bool, err error)
}

func main() {
	var opts options
	if err := config.Load(&opts); err != nil {
		if errors.Is(err, config.ErrHelpWanted) {
			return
		}
		slog.Error("healthcheck failed", "error", err)
		os.Exit(1)
	}
	opts.DB.ConnectTimeout = opts.Timeout
	opts.DB.RunMigrations = false

	if failed := runChecks(context.Background(), os.Stdout, checks(opts), opts.Timeout); failed > 0 {
		os.Exit(1)
	}
}

func checks(opts options) []check {
	var gdb *gorm.DB
	return []check{
		{name: "database", run: func(ctx context.Context) (bool, error) {
			var err error
			if gdb, err = db.Open(opts.DB); err != nil {
				return false, err
			}
			return false, db.Ping(ctx, gdb)
		}},
		{name: "redis", run: func(ctx context.Context) (bool, error) {
			rdb, err := platformredis.NewRedisClient(ctx, opts.Redis)
			if errors.Is(err, platformredis.ErrDisabled) {
				return true, nil
			}
			if err != nil {
				return false, err
			}
			return false, rdb.Close()
		}},
		{name: "oauth application", run: func(ctx context.Context) (bool, error) {
			if gdb == nil {
				return false, errors.New("database unavailable")
			}
			ok, err := di.New(opts.Config, gdb, nil).Applications.Exists(ctx, opts.Oauth.ClientID)
			if err != nil {
				return false, err
			}
			if !ok {
				return false, fmt.Errorf("client_id %q is not registered; run setupoauth", opts.Oauth.ClientID)
			}
			return false, nil
		}},
		{name: "server", run: func(ctx context.Context) (bool, error) {
			client := platformhttp.NewHTTPClient(opts.Timeout)
			return false, platformhttp.Probe(ctx, client, strings.TrimRight(opts.URL, "/")+"/healthz")
		}},
	}
}

// runChecks は全ての確認を順に実行して結果を出力し、失敗数を返します。
func runChecks(ctx context.Context, out io.Writer, cs []check, timeout time.Duration) int {
	failed := 0
	for _, c := range cs {
		cctx, cancel := context.WithTimeout(ctx, timeout)
		skipped, err := c.run(cctx)
		cancel()

		switch {
		case err != nil:
			failed++
			fmt.Fprintf(out, "[FAIL] %s: %v\n", c.name, err)
		case skipped:
			fmt.Fprintf(out, "[SKIP] %s: disabled\n", c.name)
		default:
			fmt.Fprintf(out, "[ OK ] %s\n", c.name)
		}
	}
	return failed
}
