// Package middleware はフィーチャー横断のginミドルウェアを提供します。
package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// HeaderRequestID はリクエストIDのヘッダー名です。
	HeaderRequestID = "X-Request-ID"
	// ContextRequestID はgin.ContextにリクエストIDを格納するキーです。
	ContextRequestID = "requestID"
)

// RequestID はリクエストIDを採番（または受信ヘッダーを継承）してレスポンスに付与します。
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(HeaderRequestID)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		c.Set(ContextRequestID, id)
		c.Header(HeaderRequestID, id)
		c.Next()
	}
}
