// Package jwtx はアクセストークン用JWTの署名と検証を提供します。
package jwtx

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken は署名・期限・発行者のいずれかが不正なトークンを表します。
var ErrInvalidToken = errors.New("invalid token")

// Claims はアクセストークンのペイロードです。
// Subjectはユーザー、IDはアクセストークン行のjtiです。
type Claims struct {
	ClientID string `json:"client_id"`
	Scope    string `json:"scope,omitempty"`
	Email    string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// Signer はHS256でJWTを署名・検証します。
type Signer struct {
	secret []byte
	issuer string
	now    func() time.Time
}

// NewSigner は新しいSignerを生成します。
func NewSigner(secret, issuer string) *Signer {
	return &Signer{
		secret: []byte(secret),
		issuer: issuer,
		now:    time.Now,
	}
}

// Sign は発行時刻・有効期限・発行者を設定して署名済みトークンを返します。
func (s *Signer) Sign(claims Claims, ttl time.Duration) (string, error) {
	now := s.now()
	claims.Issuer = s.issuer
	claims.IssuedAt = jwt.NewNumericDate(now)
	claims.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Parse は署名と有効期限を検証し、クレームを返します。
func (s *Signer) Parse(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		// HMAC以外のアルゴリズムは拒否
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return s.secret, nil
	},
		jwt.WithIssuer(s.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.ID == "" {
		return nil, fmt.Errorf("%w: missing jti", ErrInvalidToken)
	}
	return claims, nil
}
