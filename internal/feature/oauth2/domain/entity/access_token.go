package entity

import (
	"time"

	"github.com/google/uuid"
)

// AccessToken は発行済みアクセストークンの記録です。
// ベアラー値はこの行のJTIを含む署名済みJWTで、行の状態が失効の正とします。
type AccessToken struct {
	ID            uint
	JTI           string
	UserID        *uuid.UUID // client_credentialsで発行された場合はnil
	ApplicationID uint
	Scope         string
	ExpiresAt     time.Time
	RevokedAt     *time.Time
	CreatedAt     time.Time
}

// IsActive は失効しておらず期限内であればtrueを返します。
func (t *AccessToken) IsActive(now time.Time) bool {
	return t.RevokedAt == nil && now.Before(t.ExpiresAt)
}
