// Package authctx はリクエストに紐づく認証主体（Principal）の受け渡しを提供します。
package authctx

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// contextKey はgin.ContextにPrincipalを格納するキーです。
const contextKey = "principal"

// Principal はベアラートークンで認証された主体です。
// client_credentialsで発行されたトークンの場合、UserIDはnilです。
type Principal struct {
	UserID      *uuid.UUID
	Email       string
	IsStaff     bool
	IsSuperuser bool
	ClientID    string
	Scope       string
}

// IsUser はユーザーとして認証されているかを返します。
func (p *Principal) IsUser() bool {
	return p != nil && p.UserID != nil
}

// Set はPrincipalをginコンテキストに格納します。
func Set(c *gin.Context, p *Principal) {
	c.Set(contextKey, p)
}

// From はginコンテキストからPrincipalを取り出します。未認証ならnilです。
func From(c *gin.Context) *Principal {
	v, ok := c.Get(contextKey)
	if !ok {
		return nil
	}
	p, _ := v.(*Principal)
	return p
}

// UserID は認証済みユーザーのIDを返します。
func UserID(c *gin.Context) (uuid.UUID, bool) {
	p := From(c)
	if !p.IsUser() {
		return uuid.Nil, false
	}
	return *p.UserID, true
}

// IsStaff は管理者として認証されているかを返します。
func IsStaff(c *gin.Context) bool {
	p := From(c)
	return p.IsUser() && p.IsStaff
}

// ThrottleIdentity はレート制限用の識別子を返します。
// 認証済みユーザーはユーザーID、それ以外はクライアントIPで識別し、スーパーユーザーは除外します。
func ThrottleIdentity(c *gin.Context) (string, bool) {
	p := From(c)
	if p.IsUser() {
		return p.UserID.String(), p.IsSuperuser
	}
	return c.ClientIP(), false
}
