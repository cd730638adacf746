// setupoauth はマイグレーションを実行し、スーパーユーザーとログイン用OAuth2アプリケーションを用意します。
// 新しいクライアントシークレットを発行した場合は一度だけ表示し、.envへ書き込みます。
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"shop_backend/internal/app/di"
	oauth2entity "shop_backend/internal/feature/oauth2/domain/entity"
	oauth2usecase "shop_backend/internal/feature/oauth2/usecase"
	"shop_backend/internal/platform/config"
	"shop_backend/internal/platform/logger"
)

// applicationName はログイン用アプリケーションの表示名です。
const applicationName = "Shop API"

type options struct {
	config.Config
	AdminEmail    string
	AdminPassword string `conf:"mask"`
	EnvFile       string `conf:"default:.env"`
	RotateSecret  bool   `conf:"default:false"`
}

func main() {
	if err := run(context.Background(), os.Stdout); err != nil {
		if errors.Is(err, config.ErrHelpWanted) {
			return
		}
		slog.Error("setupoauth failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, out io.Writer) error {
	var opts options
	if err := config.Load(&opts); err != nil {
		return err
	}
	logger.Setup(opts.Log)
	opts.DB.RunMigrations = true

	c, err := di.Build(ctx, opts.Config)
	if err != nil {
		return err
	}
	defer c.Close()

	return setup(ctx, c, opts, out)
}

func setup(ctx context.Context, c *di.Container, opts options, out io.Writer) error {
	if opts.AdminEmail != "" && opts.AdminPassword != "" {
		user, created, err := c.Auth.EnsureSuperuser(ctx, opts.AdminEmail, opts.AdminPassword)
		if err != nil {
			return fmt.Errorf("ensure superuser: %w", err)
		}
		if created {
			fmt.Fprintf(out, "created superuser %s\n", user.Email)
		} else {
			fmt.Fprintf(out, "superuser %s already exists\n", user.Email)
		}
	} else {
		slog.Warn("--admin-email / --admin-password not given; skipping superuser")
	}

	res, err := c.Applications.EnsureApplication(ctx, oauth2usecase.ApplicationSpec{
		Name:       applicationName,
		ClientID:   opts.Oauth.ClientID,
		ClientType: oauth2entity.ClientConfidential,
		GrantType:  oauth2entity.GrantPassword,
	}, opts.RotateSecret)
	if err != nil {
		return fmt.Errorf("ensure application: %w", err)
	}

	app := res.Application
	if res.Secret == "" {
		fmt.Fprintf(out, "OAuth2 application %q already exists (client_id %s)\n", app.Name, app.ClientID)
		return nil
	}

	fmt.Fprintf(out, "OAuth2 application %q ready.\n", app.Name)
	fmt.Fprintf(out, "  client_id:     %s\n", app.ClientID)
	fmt.Fprintf(out, "  client_secret: %s\n", res.Secret)
	fmt.Fprintln(out, "The secret is shown only once.")

	if err := config.UpdateEnvFile(opts.EnvFile, map[string]string{
		config.Prefix + "_OAUTH_CLIENT_ID":     app.ClientID,
		config.Prefix + "_OAUTH_CLIENT_SECRET": res.Secret,
	}); err != nil {
		return err
	}
	fmt.Fprintf(out, "updated %s\n", opts.EnvFile)
	return nil
}
