// Package redis はRedisクライアントの生成を提供します。
package redis

import (
	"context"
	"errors"
	"log/slog"
	"net"

	"github.com/redis/go-redis/v9"
)

// ErrDisabled はRedisの接続先が設定されていないことを表します。
var ErrDisabled = errors.New("redis is not configured")

// Config はRedis接続設定です。URLが指定されている場合はURLを優先します。
type Config struct {
	URL      string `conf:"mask"`
	Host     string
	Port     string `conf:"default:6379"`
	Password string `conf:"mask"`
	DB       int
}

// Enabled は接続先が設定されているかを返します。
func (c Config) Enabled() bool {
	return c.URL != "" || c.Host != ""
}

// Options は設定をredis.Optionsに変換します。
func (c Config) Options() (*redis.Options, error) {
	if c.URL != "" {
		return redis.ParseURL(c.URL)
	}
	return &redis.Options{
		Addr:     net.JoinHostPort(c.Host, c.Port),
		Password: c.Password,
		DB:       c.DB,
	}, nil
}

// NewRedisClient はクライアントを生成し、Pingで接続を確認します。
func NewRedisClient(ctx context.Context, cfg Config) (*redis.Client, error) {
	if !cfg.Enabled() {
		return nil, ErrDisabled
	}
	opts, err := cfg.Options()
	if err != nil {
		return nil, err
	}

	rdb := redis.NewClient(opts)

	// 接続確認
	if err := rdb.Ping(ctx).Err(); err != nil {
		slog.Error("Redis connection failed", "address", opts.Addr, "error", err)
		_ = rdb.Close()
		return nil, err
	}

	slog.Info("Redis connection successful", "address", opts.Addr)
	return rdb, nil
}
