// Package middleware はベアラートークン認証のGinミドルウェアを提供します。
package middleware

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/gin-gonic/gin"

	"shop_backend/internal/feature/oauth2/usecase"
	httpmw "shop_backend/internal/platform/http/middleware"
	"shop_backend/internal/shared/authctx"
)

// Authenticator はベアラートークンを検証して認証主体を返します。
type Authenticator interface {
	Authenticate(ctx context.Context, bearer string) (*authctx.Principal, error)
}

// Authenticate はAuthorizationヘッダーのベアラートークンを検証し、成功時に認証主体を設定します。
// トークンが無い・不正な場合は匿名のまま次へ進みます。認証必須かどうかは後続のミドルウェアが判断します。
func Authenticate(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			c.Next()
			return
		}

		p, err := auth.Authenticate(c.Request.Context(), token)
		switch {
		case err == nil:
			authctx.Set(c, p)
		case errors.Is(err, usecase.ErrInvalidToken):
			slog.Debug("bearer token rejected", "remote_addr", c.ClientIP())
		default:
			slog.Error("bearer authentication failed", "error", err, "path", c.Request.URL.Path)
			httpmw.Abort(c, err)
			return
		}
		c.Next()
	}
}

// RequireAdmin はスタッフ以外のリクエストを拒否します。未認証は401、権限不足は403です。
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		p := authctx.From(c)
		if !p.IsUser() {
			httpmw.Abort(c, usecase.ErrNotAuthenticated)
			return
		}
		if !p.IsStaff {
			httpmw.Abort(c, usecase.ErrPermissionDenied)
			return
		}
		c.Next()
	}
}

// bearerToken は "Bearer <token>" 形式のヘッダーからトークンを取り出します。
func bearerToken(header string) (string, bool) {
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
