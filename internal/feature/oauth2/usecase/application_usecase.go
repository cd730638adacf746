package usecase

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"shop_backend/internal/feature/oauth2/domain/entity"
)

const (
	clientIDBytes     = 32
	clientSecretBytes = 48
)

// ApplicationSpec はEnsureApplicationで作成するアプリケーションの定義です。
// ClientIDが空の場合は生成します。
type ApplicationSpec struct {
	Name       string
	ClientID   string
	ClientType entity.ClientType
	GrantType  entity.GrantType
}

// EnsureResult はEnsureApplicationの結果です。
// Secretは新規作成またはローテーション時のみ設定され、平文はこの時だけ取得できます。
type EnsureResult struct {
	Application *entity.Application
	Secret      string
	Created     bool
}

// applicationUsecase はOAuth2アプリケーションの登録を扱います。
type applicationUsecase struct {
	apps ApplicationRepository
}

// NewApplicationUsecase はapplicationUsecaseの新しいインスタンスを生成します。
func NewApplicationUsecase(apps ApplicationRepository) *applicationUsecase {
	return &applicationUsecase{apps: apps}
}

// EnsureApplication はclient_idのアプリケーションがなければ作成します。
// 既存の場合はrotateSecretがtrueのときのみ新しいシークレットを発行します。
func (u *applicationUsecase) EnsureApplication(ctx context.Context, spec ApplicationSpec, rotateSecret bool) (*EnsureResult, error) {
	if spec.ClientID != "" {
		app, err := u.apps.FindByClientID(ctx, spec.ClientID)
		switch {
		case err == nil:
			if !rotateSecret || !app.IsConfidential() {
				return &EnsureResult{Application: app}, nil
			}
			secret, hash, err := newSecret()
			if err != nil {
				return nil, err
			}
			if err := u.apps.UpdateSecretHash(ctx, app.ID, hash); err != nil {
				return nil, err
			}
			app.ClientSecretHash = hash
			return &EnsureResult{Application: app, Secret: secret}, nil
		case !errors.Is(err, ErrApplicationNotFound):
			return nil, err
		}
	}

	clientID := spec.ClientID
	if clientID == "" {
		generated, err := urlsafe(clientIDBytes)
		if err != nil {
			return nil, err
		}
		clientID = generated
	}
	if spec.ClientType == "" {
		spec.ClientType = entity.ClientConfidential
	}
	if spec.GrantType == "" {
		spec.GrantType = entity.GrantPassword
	}

	app := &entity.Application{
		Name:       spec.Name,
		ClientID:   clientID,
		ClientType: spec.ClientType,
		GrantType:  spec.GrantType,
	}
	var secret string
	if app.IsConfidential() {
		s, hash, err := newSecret()
		if err != nil {
			return nil, err
		}
		secret, app.ClientSecretHash = s, hash
	}
	if err := u.apps.Create(ctx, app); err != nil {
		return nil, err
	}
	return &EnsureResult{Application: app, Secret: secret, Created: true}, nil
}

// Exists はclient_idのアプリケーションが登録済みかを返します。
func (u *applicationUsecase) Exists(ctx context.Context, clientID string) (bool, error) {
	_, err := u.apps.FindByClientID(ctx, clientID)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, ErrApplicationNotFound):
		return false, nil
	default:
		return false, err
	}
}

func newSecret() (secret, hash string, err error) {
	secret, err = urlsafe(clientSecretBytes)
	if err != nil {
		return "", "", err
	}
	h, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return "", "", fmt.Errorf("failed to hash client secret: %w", err)
	}
	return secret, string(h), nil
}

// urlsafe はnバイトの乱数をパディングなしのURLセーフBase64で返します。
func urlsafe(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
