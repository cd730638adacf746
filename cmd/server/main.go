package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"

	"shop_backend/internal/app/di"
	"shop_backend/internal/platform/config"
	"shop_backend/internal/platform/logger"
	"shop_backend/internal/platform/validate"
)

func main() {
	if err := run(); err != nil {
		if errors.Is(err, config.ErrHelpWanted) {
			return
		}
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run() error {
	var cfg config.Config
	if err := config.Load(&cfg); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	logger.Setup(cfg.Log)
	slog.Info("starting server", "config", cfg.String())
	defer slog.Info("shutdown complete")

	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	validate.Init()

	ctx := context.Background()
	c, err := di.Build(ctx, cfg)
	if err != nil {
		return err
	}
	defer c.Close()

	sessions, err := c.Sessions()
	if err != nil {
		return err
	}

	srv := http.Server{
		Addr:         cfg.Web.Addr,
		Handler:      c.HTTPHandler(sessions),
		ReadTimeout:  cfg.Web.ReadTimeout,
		WriteTimeout: cfg.Web.WriteTimeout,
		ErrorLog:     slog.NewLogLogger(slog.Default().Handler(), slog.LevelError),
	}

	serverErrors := make(chan error, 1)
	go func() {
		slog.Info("listening", "addr", srv.Addr)
		serverErrors <- srv.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		slog.Info("shutting down", "signal", sig.String())

		ctx, cancel := context.WithTimeout(context.Background(), cfg.Web.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			_ = srv.Close()
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
	}
	return nil
}

