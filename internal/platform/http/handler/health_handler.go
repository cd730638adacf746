// Package handler はプラットフォームレベルのエンドポイント用HTTPハンドラーを提供します。
package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"shop_backend/internal/api"
)

// Health はサービスヘルスチェック用の /healthz エンドポイントを処理します。
// HTTPメソッドに応じて適切にレスポンスし、キャッシュを防止します。
func Health(c *gin.Context) {
	// 明示的にキャッシュを防止
	c.Header("Cache-Control", "no-store")

	switch c.Request.Method {
	case http.MethodHead:
		c.Status(http.StatusOK)
	case http.MethodOptions:
		c.Status(http.StatusNoContent)
	default:
		c.JSON(http.StatusOK, api.StatusResponse{Status: "ok"})
	}
}

// Check は依存先の疎通確認を行う関数です。nilの場合は "disabled" として扱います。
type Check func(ctx context.Context) error

// ReadinessHandler は依存先（DB, Redis）の状態を返す /readyz を処理します。
type ReadinessHandler struct {
	checks   map[string]Check
	required map[string]bool
	timeout  time.Duration
}

// NewReadinessHandler はReadinessHandlerを生成します。
// databaseは必須、redisは任意の依存として扱います。
func NewReadinessHandler(database, redis Check) *ReadinessHandler {
	return &ReadinessHandler{
		checks:   map[string]Check{"database": database, "redis": redis},
		required: map[string]bool{"database": true},
		timeout:  2 * time.Second,
	}
}

// Ready は各依存先を確認し、必須の依存先が落ちていれば503を返します。
func (h *ReadinessHandler) Ready(c *gin.Context) {
	c.Header("Cache-Control", "no-store")

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	status := http.StatusOK
	results := make(map[string]string, len(h.checks))
	for name, check := range h.checks {
		if check == nil {
			results[name] = "disabled"
			continue
		}
		if err := check(ctx); err != nil {
			results[name] = "error: " + err.Error()
			if h.required[name] {
				status = http.StatusServiceUnavailable
			}
			continue
		}
		results[name] = "ok"
	}

	body := api.StatusResponse{Status: "ok", Checks: results}
	if status != http.StatusOK {
		body.Status = "unavailable"
	}
	c.JSON(status, body)
}
