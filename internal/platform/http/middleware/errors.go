package middleware

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"shop_backend/internal/api"
	"shop_backend/internal/shared/apperr"
)

// unexpectedMessage は分類されていないエラーの公開メッセージです。
const unexpectedMessage = "An unexpected error occurred."

// ErrorHandler はハンドラーが c.Error で登録したエラーを
// {"detail": ..., "status_code": ...} 形式のレスポンスに変換します。
// debugがtrueの場合、500系レスポンスにエラーチェーンを含めます。
func ErrorHandler(debug bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := c.Errors.Last().Err
		status := apperr.StatusOf(err)
		body := api.ErrorResponse{StatusCode: status}

		if e, ok := apperr.As(err); ok && status < http.StatusInternalServerError {
			body.Detail = e.Message
			body.Errors = e.Fields
		} else {
			body.Detail = unexpectedMessage
			if debug {
				body.Traceback = err.Error()
			}
			slog.Error("unhandled error",
				"error", err,
				"path", c.Request.URL.Path,
				"request_id", c.GetString(ContextRequestID),
			)
		}

		c.JSON(status, body)
	}
}

// Abort はエラーレスポンスを即座に書き込み、後続のハンドラーを中断します。
// ミドルウェア内での認証・権限エラー用です。
func Abort(c *gin.Context, err error) {
	status := apperr.StatusOf(err)
	detail := unexpectedMessage
	if e, ok := apperr.As(err); ok {
		detail = e.Message
	}
	c.AbortWithStatusJSON(status, api.ErrorResponse{Detail: detail, StatusCode: status})
}
