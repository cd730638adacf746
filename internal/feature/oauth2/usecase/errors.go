// Package usecase はoauth2フィーチャーのトークン発行・検証ロジックを実装します。
package usecase

import (
	"errors"
	"net/http"

	"shop_backend/internal/shared/apperr"
)

// OAuthError はRFC 6749 5.2節形式で返すトークンエンドポイントのエラーです。
type OAuthError struct {
	Code        string
	Description string
}

func (e *OAuthError) Error() string {
	return e.Code + ": " + e.Description
}

// Status はエラーコードに対応するHTTPステータスを返します。
func (e *OAuthError) Status() int {
	if e.Code == "invalid_client" {
		return http.StatusUnauthorized
	}
	return http.StatusBadRequest
}

func oauthError(code, description string) *OAuthError {
	return &OAuthError{Code: code, Description: description}
}

var (
	ErrInvalidClient        = oauthError("invalid_client", "Client authentication failed.")
	ErrInvalidGrant         = oauthError("invalid_grant", "Invalid credentials given.")
	ErrInvalidRefreshToken  = oauthError("invalid_grant", "Invalid refresh token.")
	ErrUnauthorizedClient   = oauthError("unauthorized_client", "The client is not authorized to use this grant type.")
	ErrUnsupportedGrantType = oauthError("unsupported_grant_type", "Unsupported grant type.")
	ErrMissingGrantType     = oauthError("invalid_request", "Missing grant_type parameter.")
	ErrInvalidScope         = oauthError("invalid_scope", "The requested scope is invalid, unknown, or malformed.")
)

// missingParam はinvalid_requestのエラーを生成します。
func missingParam(name string) *OAuthError {
	return oauthError("invalid_request", "Request is missing "+name+" parameter.")
}

var (
	// ErrApplicationNotFound is returned by repositories when no application matches the client_id.
	ErrApplicationNotFound = errors.New("oauth2 application not found")

	// ErrApplicationNotConfigured is returned when the login application is missing.
	ErrApplicationNotConfigured = apperr.New(apperr.KindInternal, "OAuth2 application is not configured.")

	// ErrAccessTokenNotFound is returned by repositories for an unknown jti.
	ErrAccessTokenNotFound = errors.New("access token not found")

	// ErrRefreshTokenNotFound is returned by repositories for an unknown refresh token.
	ErrRefreshTokenNotFound = errors.New("refresh token not found")

	// ErrRefreshTokenRevoked is returned by Revoke when the token was already revoked.
	ErrRefreshTokenRevoked = errors.New("refresh token already revoked")

	// ErrOwnerNotFound is returned by the UserDirectory when the user does not exist.
	ErrOwnerNotFound = errors.New("resource owner not found")

	// ErrNotAuthenticated is returned when a protected endpoint is called without a bearer token.
	ErrNotAuthenticated = apperr.Unauthorized("Authentication credentials were not provided.")

	// ErrInvalidToken is returned for a malformed, unknown, revoked or expired bearer token.
	ErrInvalidToken = apperr.Unauthorized("Invalid token.")

	// ErrPermissionDenied is returned when the principal lacks staff rights.
	ErrPermissionDenied = apperr.Forbidden("You do not have permission to perform this action.")
)
