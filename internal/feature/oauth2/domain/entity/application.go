// Package entity defines the domain entities for the oauth2 feature.
package entity

import (
	"time"

	"github.com/google/uuid"
)

// ClientType はクライアントの種別です。
type ClientType string

const (
	ClientConfidential ClientType = "confidential"
	ClientPublic       ClientType = "public"
)

// GrantType はアプリケーションに許可された認可グラントです。
type GrantType string

const (
	GrantPassword          GrantType = "password"
	GrantClientCredentials GrantType = "client-credentials"
)

// Application はトークンを要求できるOAuth2クライアントです。
// クライアントシークレットはbcryptハッシュのみを保持します。
type Application struct {
	ID               uint
	Name             string
	ClientID         string
	ClientSecretHash string
	ClientType       ClientType
	GrantType        GrantType
	UserID           *uuid.UUID
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// IsConfidential はシークレットによるクライアント認証が必要かを返します。
func (a *Application) IsConfidential() bool {
	return a.ClientType == ClientConfidential
}

// Allows はトークンエンドポイントのgrant_typeを許可するかを返します。
// refresh_tokenはpasswordグラントのアプリケーションにのみ許可します。
func (a *Application) Allows(grant string) bool {
	switch grant {
	case "password", "refresh_token":
		return a.GrantType == GrantPassword
	case "client_credentials":
		return a.GrantType == GrantClientCredentials && a.IsConfidential()
	default:
		return false
	}
}
