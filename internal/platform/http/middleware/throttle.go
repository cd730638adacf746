package middleware

import (
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"shop_backend/internal/api"
	"shop_backend/internal/shared/ratelimiter"
)

// Identifier はリクエストの制限キー用の識別子を返します。
// exemptがtrueの場合、そのリクエストは制限されません（スーパーユーザー等）。
type Identifier func(c *gin.Context) (ident string, exempt bool)

// ClientIP は常にクライアントIPで識別するIdentifierです。
func ClientIP(c *gin.Context) (string, bool) {
	return c.ClientIP(), false
}

// Throttle はスコープ単位でレート制限を適用します。
// 制限ストアの障害時はリクエストを通し、警告ログのみ出力します。
func Throttle(limiter ratelimiter.Limiter, scope string, rate ratelimiter.Rate, identify Identifier) gin.HandlerFunc {
	if identify == nil {
		identify = ClientIP
	}
	return func(c *gin.Context) {
		if rate.Requests <= 0 {
			c.Next()
			return
		}
		ident, exempt := identify(c)
		if exempt {
			c.Next()
			return
		}

		res, err := limiter.Allow(c.Request.Context(), ratelimiter.Key(scope, ident), rate)
		if err != nil {
			slog.Warn("rate limiter unavailable", "scope", scope, "error", err)
			c.Next()
			return
		}
		if !res.Allowed {
			wait := int(math.Ceil(res.RetryAfter.Seconds()))
			slog.Warn("request throttled", "scope", scope, "ident", ident, "retry_after", wait)
			c.Header("Retry-After", strconv.Itoa(wait))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, api.ErrorResponse{
				Detail:     fmt.Sprintf("Request was throttled. Expected available in %d seconds.", wait),
				StatusCode: http.StatusTooManyRequests,
			})
			return
		}
		c.Next()
	}
}
