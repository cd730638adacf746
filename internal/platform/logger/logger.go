// Package logger はアプリケーション全体で使うslogロガーを構築します。
package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Config はロガーの設定です。
type Config struct {
	Level  string `conf:"default:info"`
	Format string `conf:"default:json"`
}

// New は設定に従ってslog.Loggerを生成します。
// Formatが "text" 以外の場合はJSONで出力します。
func New(cfg Config, w io.Writer) *slog.Logger {
	if w == nil {
		w = os.Stdout
	}
	opts := &slog.HandlerOptions{Level: ParseLevel(cfg.Level)}

	var h slog.Handler
	if strings.EqualFold(cfg.Format, "text") {
		h = slog.NewTextHandler(w, opts)
	} else {
		h = slog.NewJSONHandler(w, opts)
	}
	return slog.New(h)
}

// Setup はロガーを生成し、slogのデフォルトとして登録します。
func Setup(cfg Config) *slog.Logger {
	l := New(cfg, os.Stdout)
	slog.SetDefault(l)
	return l
}

// ParseLevel はレベル文字列をslog.Levelに変換します。未知の値はInfoです。
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
