// cleartokens は期限切れ・失効済みのアクセストークンとリフレッシュトークンを削除します。
package main

import (
	"context"
	"errors"
	"log/slog"
	"os"

	"shop_backend/internal/app/di"
	"shop_backend/internal/platform/config"
	"shop_backend/internal/platform/logger"
)

func main() {
	if err := run(context.Background()); err != nil {
		if errors.Is(err, config.ErrHelpWanted) {
			return
		}
		slog.Error("cleartokens failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	var cfg config.Config
	if err := config.Load(&cfg); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	logger.Setup(cfg.Log)

	c, err := di.Build(ctx, cfg)
	if err != nil {
		return err
	}
	defer c.Close()

	_, _, err = clearExpired(ctx, c)
	return err
}

// clearExpired は期限切れのトークンを削除し、削除件数をログに出します。
func clearExpired(ctx context.Context, c *di.Container) (access, refresh int64, err error) {
	access, refresh, err = c.Tokens.ClearExpired(ctx)
	if err != nil {
		return 0, 0, err
	}
	slog.Info("expired tokens cleared", "access_tokens", access, "refresh_tokens", refresh)
	return access, refresh, nil
}
