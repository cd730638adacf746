package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"shop_backend/internal/feature/auth/domain/entity"
)

const (
	// minPasswordLength はパスワードの最低文字数を定義します。
	minPasswordLength = 6

	// dummyHash はユーザーが存在しない場合のタイミング攻撃緩和用ハッシュです。
	dummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"
)

// validatePassword はパスワードがセキュリティ要件を満たしているかチェックします。
func validatePassword(password string) error {
	if len([]rune(password)) < minPasswordLength {
		return ErrPasswordTooShort
	}
	return nil
}

// HashPassword はパスワードをbcryptでハッシュ化します。
func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashed), nil
}

// Credentials はメールアドレスとパスワードによる本人確認を行います。
// ログインとOAuth2のpasswordグラントの双方から利用されます。
type Credentials struct {
	users UserRepository
}

// NewCredentials はCredentialsの新しいインスタンスを生成します。
func NewCredentials(users UserRepository) *Credentials {
	return &Credentials{users: users}
}

// Verify はメールアドレスとパスワードを検証し、有効なユーザーを返します。
// ユーザー未検出・パスワード不一致・無効化済みのいずれも ErrInvalidCredentials を返します。
// タイミング攻撃を防止するため、ユーザーが存在しない場合でもbcrypt比較を実行します。
func (c *Credentials) Verify(ctx context.Context, email, password string) (*entity.User, error) {
	user, err := c.users.FindByEmail(ctx, entity.NormalizeEmail(email))
	if err != nil && !errors.Is(err, ErrUserNotFound) {
		return nil, err
	}
	if !matches(user, password) || !user.IsActive {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// CheckPassword はIDで指定したユーザーのパスワードを照合します。
func (c *Credentials) CheckPassword(ctx context.Context, id uuid.UUID, password string) (*entity.User, bool, error) {
	user, err := c.users.FindByID(ctx, id)
	if err != nil && !errors.Is(err, ErrUserNotFound) {
		return nil, false, err
	}
	if !matches(user, password) {
		return nil, false, nil
	}
	return user, true, nil
}

// matches はuserがnilでも常にbcrypt比較を1回実行します。
func matches(user *entity.User, password string) bool {
	hash := dummyHash
	if user != nil {
		hash = user.Password
	}
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return user != nil && err == nil
}
