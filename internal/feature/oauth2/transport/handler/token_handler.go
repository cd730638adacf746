// Package handler はOAuth2プロバイダーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"shop_backend/internal/feature/oauth2/transport/http/dto"
	"shop_backend/internal/feature/oauth2/usecase"
)

// TokenUsecase はトークンエンドポイントが使うユースケースです。
type TokenUsecase interface {
	Token(ctx context.Context, req usecase.TokenRequest) (*usecase.TokenResponse, error)
	Revoke(ctx context.Context, creds usecase.ClientCredentials, token, hint string) error
	Introspect(ctx context.Context, creds usecase.ClientCredentials, token string) (*usecase.Introspection, error)
}

// TokenHandler は /o/ 配下のエンドポイントを処理します。
type TokenHandler struct {
	tokens TokenUsecase
}

// NewTokenHandler はTokenHandlerの新しいインスタンスを生成します。
func NewTokenHandler(tokens TokenUsecase) *TokenHandler {
	return &TokenHandler{tokens: tokens}
}

// Token は /o/token/ を処理します。
func (h *TokenHandler) Token(c *gin.Context) {
	var req dto.TokenReq
	if err := c.ShouldBind(&req); err != nil {
		h.fail(c, &usecase.OAuthError{Code: "invalid_request", Description: "Malformed request body."})
		return
	}

	res, err := h.tokens.Token(c.Request.Context(), usecase.TokenRequest{
		Client:       clientCredentials(c, req.ClientAuth),
		GrantType:    req.GrantType,
		Username:     req.Username,
		Password:     req.Password,
		RefreshToken: req.RefreshToken,
		Scope:        req.Scope,
		UserAgent:    c.Request.UserAgent(),
		IPAddress:    c.ClientIP(),
	})
	if err != nil {
		slog.Warn("token request failed", "grant_type", req.GrantType, "error", err, "remote_addr", c.ClientIP())
		h.fail(c, err)
		return
	}

	noStore(c)
	c.JSON(http.StatusOK, dto.TokenRes{
		AccessToken:  res.AccessToken,
		ExpiresIn:    res.ExpiresIn,
		TokenType:    res.TokenType,
		Scope:        res.Scope,
		RefreshToken: res.RefreshToken,
	})
}

// Revoke は /o/revoke_token/ を処理します。
// クライアント認証に成功すれば、トークンが未知でも200を返します。
func (h *TokenHandler) Revoke(c *gin.Context) {
	var req dto.RevokeReq
	if err := c.ShouldBind(&req); err != nil {
		h.fail(c, &usecase.OAuthError{Code: "invalid_request", Description: "Malformed request body."})
		return
	}

	err := h.tokens.Revoke(c.Request.Context(), clientCredentials(c, req.ClientAuth), req.Token, req.TokenTypeHint)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusOK)
}

// Introspect は /o/introspect/ を処理します。
func (h *TokenHandler) Introspect(c *gin.Context) {
	var req dto.IntrospectReq
	if err := c.ShouldBind(&req); err != nil {
		h.fail(c, &usecase.OAuthError{Code: "invalid_request", Description: "Malformed request body."})
		return
	}

	res, err := h.tokens.Introspect(c.Request.Context(), clientCredentials(c, req.ClientAuth), req.Token)
	if err != nil {
		h.fail(c, err)
		return
	}

	noStore(c)
	c.JSON(http.StatusOK, dto.IntrospectRes{
		Active:    res.Active,
		Scope:     res.Scope,
		ClientID:  res.ClientID,
		Username:  res.Username,
		TokenType: res.TokenType,
		Exp:       res.Exp,
	})
}

// fail はOAuthErrorをRFC 6749形式で返し、それ以外はエラーミドルウェアに委ねます。
func (h *TokenHandler) fail(c *gin.Context, err error) {
	var oe *usecase.OAuthError
	if !errors.As(err, &oe) {
		_ = c.Error(err)
		return
	}
	if oe.Status() == http.StatusUnauthorized {
		if _, _, basic := c.Request.BasicAuth(); basic {
			c.Header("WWW-Authenticate", `Basic realm="oauth2"`)
		}
	}
	noStore(c)
	c.JSON(oe.Status(), dto.ErrorRes{Error: oe.Code, ErrorDescription: oe.Description})
}

// clientCredentials はHTTP Basic認証、なければボディからクライアント認証情報を取り出します。
func clientCredentials(c *gin.Context, body dto.ClientAuth) usecase.ClientCredentials {
	if id, secret, ok := c.Request.BasicAuth(); ok {
		return usecase.ClientCredentials{ClientID: id, ClientSecret: secret}
	}
	return usecase.ClientCredentials{ClientID: body.ClientID, ClientSecret: body.ClientSecret}
}

func noStore(c *gin.Context) {
	c.Header("Cache-Control", "no-store")
	c.Header("Pragma", "no-cache")
}
