package di

import (
	"context"
	"errors"

	"github.com/google/uuid"

	authentity "shop_backend/internal/feature/auth/domain/entity"
	authusecase "shop_backend/internal/feature/auth/usecase"
	oauth2usecase "shop_backend/internal/feature/oauth2/usecase"
)

// userDirectory はauthフィーチャーのユーザーをOAuth2のリソースオーナーとして公開します。
type userDirectory struct {
	users       authusecase.UserRepository
	credentials *authusecase.Credentials
}

var _ oauth2usecase.UserDirectory = (*userDirectory)(nil)

// NewUserDirectory はuserDirectoryを生成します。
func NewUserDirectory(users authusecase.UserRepository, credentials *authusecase.Credentials) *userDirectory {
	return &userDirectory{users: users, credentials: credentials}
}

func (d *userDirectory) Authenticate(ctx context.Context, email, password string) (*oauth2usecase.ResourceOwner, error) {
	u, err := d.credentials.Verify(ctx, email, password)
	if err != nil {
		if errors.Is(err, authusecase.ErrInvalidCredentials) {
			return nil, oauth2usecase.ErrOwnerNotFound
		}
		return nil, err
	}
	return resourceOwner(u), nil
}

func (d *userDirectory) FindByID(ctx context.Context, id uuid.UUID) (*oauth2usecase.ResourceOwner, error) {
	u, err := d.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, authusecase.ErrUserNotFound) {
			return nil, oauth2usecase.ErrOwnerNotFound
		}
		return nil, err
	}
	return resourceOwner(u), nil
}

func resourceOwner(u *authentity.User) *oauth2usecase.ResourceOwner {
	return &oauth2usecase.ResourceOwner{
		ID:          u.ID,
		Email:       u.Email,
		IsActive:    u.IsActive,
		IsStaff:     u.IsStaff,
		IsSuperuser: u.IsSuperuser,
	}
}

// ownerTokens はログイン時のトークン発行に必要なOAuth2ユースケースの操作です。
type ownerTokens interface {
	IssueForOwner(ctx context.Context, owner *oauth2usecase.ResourceOwner, userAgent, ipAddress string) (*oauth2usecase.TokenResponse, error)
	RevokeAllForUser(ctx context.Context, userID uuid.UUID) error
}

// tokenIssuer はauthフィーチャーのTokenIssuerをOAuth2ユースケースで実装します。
type tokenIssuer struct {
	tokens ownerTokens
	users  *userDirectory
}

var _ authusecase.TokenIssuer = (*tokenIssuer)(nil)

// NewTokenIssuer はtokenIssuerを生成します。
func NewTokenIssuer(tokens ownerTokens, users *userDirectory) *tokenIssuer {
	return &tokenIssuer{tokens: tokens, users: users}
}

func (i *tokenIssuer) IssueForUser(ctx context.Context, userID uuid.UUID, meta authusecase.ClientMeta) (*authusecase.TokenPair, error) {
	owner, err := i.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	res, err := i.tokens.IssueForOwner(ctx, owner, meta.UserAgent, meta.IPAddress)
	if err != nil {
		return nil, err
	}
	return &authusecase.TokenPair{
		AccessToken:  res.AccessToken,
		RefreshToken: res.RefreshToken,
		ExpiresIn:    res.ExpiresIn,
	}, nil
}

func (i *tokenIssuer) RevokeAllForUser(ctx context.Context, userID uuid.UUID) error {
	return i.tokens.RevokeAllForUser(ctx, userID)
}
