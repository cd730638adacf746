package entity

import (
	"time"

	"github.com/google/uuid"
)

// RefreshToken はユーザーのリフレッシュトークンです。
// トークン管理とセキュリティ監査のためにクライアント情報を保持します。
type RefreshToken struct {
	ID             string     // トークン値（64文字の16進数文字列）
	UserID         uuid.UUID  // 所有ユーザー
	ApplicationID  uint       // 発行したOAuth2アプリケーション
	AccessTokenJTI string     // 同時に発行したアクセストークンのjti
	Scope          string     // 付与スコープ（ローテーション時に引き継ぐ）
	UserAgent      string     // クライアントのUser-Agentヘッダー
	IPAddress      string     // クライアントのIPアドレス
	CreatedAt      time.Time  // 発行日時
	ExpiresAt      time.Time  // 有効期限
	RevokedAt      *time.Time // 失効日時（有効な場合はnil）
}

// IsExpired は有効期限を過ぎているかを返します。
func (t *RefreshToken) IsExpired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}

// IsRevoked は失効済みかを返します。
func (t *RefreshToken) IsRevoked() bool {
	return t.RevokedAt != nil
}

// IsValid は期限切れでも失効済みでもない場合にtrueを返します。
func (t *RefreshToken) IsValid(now time.Time) bool {
	return !t.IsExpired(now) && !t.IsRevoked()
}
