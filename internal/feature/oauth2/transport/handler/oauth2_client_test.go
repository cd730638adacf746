package handler

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"shop_backend/internal/feature/oauth2/adapters"
	"shop_backend/internal/feature/oauth2/domain/entity"
	"shop_backend/internal/feature/oauth2/usecase"
	jwtx "shop_backend/internal/platform/jwt"
	"shop_backend/internal/platform/http/middleware"
)

// staticDirectory は1人のユーザーだけを知るUserDirectoryです。
type staticDirectory struct {
	owner    usecase.ResourceOwner
	password string
}

func (d *staticDirectory) Authenticate(_ context.Context, email, password string) (*usecase.ResourceOwner, error) {
	if email != d.owner.Email || password != d.password {
		return nil, usecase.ErrOwnerNotFound
	}
	o := d.owner
	return &o, nil
}

func (d *staticDirectory) FindByID(_ context.Context, id uuid.UUID) (*usecase.ResourceOwner, error) {
	if id != d.owner.ID {
		return nil, usecase.ErrOwnerNotFound
	}
	o := d.owner
	return &o, nil
}

type providerFixture struct {
	server       *httptest.Server
	passwordApp  *usecase.EnsureResult
	serviceApp   *usecase.EnsureResult
	introspectFn func(token string) *usecase.Introspection
}

// newProvider はsqlite上の実リポジトリと実ユースケースでトークンエンドポイントを起動します。
func newProvider(t *testing.T) *providerFixture {
	t.Helper()
	ctx := context.Background()

	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, gdb.AutoMigrate(adapters.Models()...))

	appRepo := adapters.NewApplicationGorm(gdb)
	apps := usecase.NewApplicationUsecase(appRepo)
	passwordApp, err := apps.EnsureApplication(ctx, usecase.ApplicationSpec{Name: "web", ClientID: "web-client"}, false)
	require.NoError(t, err)
	serviceApp, err := apps.EnsureApplication(ctx, usecase.ApplicationSpec{
		Name:      "service",
		ClientID:  "svc-client",
		GrantType: entity.GrantClientCredentials,
	}, false)
	require.NoError(t, err)

	users := &staticDirectory{
		owner:    usecase.ResourceOwner{ID: uuid.New(), Email: "buyer@example.com", IsActive: true},
		password: "secret1",
	}
	tokens := usecase.NewTokenUsecase(
		appRepo,
		adapters.NewAccessTokenGorm(gdb),
		adapters.NewRefreshTokenGorm(gdb),
		users,
		jwtx.NewSigner("test-secret", "shop_backend"),
		usecase.Config{
			AccessTokenTTL:          time.Hour,
			RefreshTokenTTL:         24 * time.Hour,
			DefaultScope:            "read write",
			MaxRefreshTokensPerUser: 10,
			LoginClientID:           "web-client",
		},
	)

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(middleware.ErrorHandler(false))
	h := NewTokenHandler(tokens)
	r.POST("/o/token/", h.Token)
	r.POST("/o/revoke_token/", h.Revoke)
	r.POST("/o/introspect/", h.Introspect)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	return &providerFixture{
		server:      srv,
		passwordApp: passwordApp,
		serviceApp:  serviceApp,
		introspectFn: func(token string) *usecase.Introspection {
			res, err := tokens.Introspect(ctx, usecase.ClientCredentials{ClientID: "web-client", ClientSecret: passwordApp.Secret}, token)
			require.NoError(t, err)
			return res
		},
	}
}

func (f *providerFixture) endpoint() oauth2.Endpoint {
	return oauth2.Endpoint{TokenURL: f.server.URL + "/o/token/", AuthStyle: oauth2.AuthStyleInHeader}
}

func TestOAuth2Client_PasswordAndRefresh(t *testing.T) {
	t.Parallel()

	f := newProvider(t)
	ctx := context.Background()
	cfg := &oauth2.Config{ClientID: "web-client", ClientSecret: f.passwordApp.Secret, Endpoint: f.endpoint()}

	tok, err := cfg.PasswordCredentialsToken(ctx, "buyer@example.com", "secret1")
	require.NoError(t, err)
	require.NotEmpty(t, tok.AccessToken, spew.Sdump(tok))
	require.NotEmpty(t, tok.RefreshToken, spew.Sdump(tok))
	assert.Equal(t, "Bearer", tok.TokenType)
	assert.WithinDuration(t, time.Now().Add(time.Hour), tok.Expiry, time.Minute)
	assert.Equal(t, "read write", tok.Extra("scope"))

	// 期限切れにしたトークンを渡すとリフレッシュが走る
	stale := &oauth2.Token{RefreshToken: tok.RefreshToken, Expiry: time.Now().Add(-time.Minute)}
	refreshed, err := cfg.TokenSource(ctx, stale).Token()
	require.NoError(t, err)
	assert.NotEqual(t, tok.AccessToken, refreshed.AccessToken, spew.Sdump(refreshed))
	assert.NotEqual(t, tok.RefreshToken, refreshed.RefreshToken)

	assert.False(t, f.introspectFn(tok.AccessToken).Active, "rotated access token is revoked")
	assert.False(t, f.introspectFn(tok.RefreshToken).Active, "rotated refresh token is revoked")
	live := f.introspectFn(refreshed.AccessToken)
	assert.True(t, live.Active, spew.Sdump(live))
	assert.Equal(t, "buyer@example.com", live.Username)

	// 旧リフレッシュトークンの再利用は拒否される
	_, err = cfg.TokenSource(ctx, stale).Token()
	var re *oauth2.RetrieveError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, "invalid_grant", re.ErrorCode)
}

func TestOAuth2Client_WrongCredentials(t *testing.T) {
	t.Parallel()

	f := newProvider(t)
	ctx := context.Background()

	cfg := &oauth2.Config{ClientID: "web-client", ClientSecret: f.passwordApp.Secret, Endpoint: f.endpoint()}
	_, err := cfg.PasswordCredentialsToken(ctx, "buyer@example.com", "wrong")
	var re *oauth2.RetrieveError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, 400, re.Response.StatusCode)
	assert.Equal(t, "invalid_grant", re.ErrorCode)
	assert.Equal(t, "Invalid credentials given.", re.ErrorDescription)

	bad := &oauth2.Config{ClientID: "web-client", ClientSecret: "nope", Endpoint: f.endpoint()}
	_, err = bad.PasswordCredentialsToken(ctx, "buyer@example.com", "secret1")
	require.ErrorAs(t, err, &re)
	assert.Equal(t, 401, re.Response.StatusCode)
	assert.Equal(t, "invalid_client", re.ErrorCode)
}

func TestOAuth2Client_ClientCredentials(t *testing.T) {
	t.Parallel()

	f := newProvider(t)
	cfg := clientcredentials.Config{
		ClientID:     "svc-client",
		ClientSecret: f.serviceApp.Secret,
		TokenURL:     f.server.URL + "/o/token/",
		Scopes:       []string{"read"},
		AuthStyle:    oauth2.AuthStyleInParams,
	}

	tok, err := cfg.Token(context.Background())
	require.NoError(t, err)
	assert.Empty(t, tok.RefreshToken, spew.Sdump(tok))
	assert.Equal(t, "read", tok.Extra("scope"))

	info := f.introspectFn(tok.AccessToken)
	assert.True(t, info.Active)
	assert.Equal(t, "svc-client", info.ClientID)
	assert.Empty(t, info.Username)

	// password grant is not allowed for this application
	pw := &oauth2.Config{ClientID: "svc-client", ClientSecret: f.serviceApp.Secret, Endpoint: f.endpoint()}
	_, err = pw.PasswordCredentialsToken(context.Background(), "buyer@example.com", "secret1")
	var re *oauth2.RetrieveError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, "unauthorized_client", re.ErrorCode)

}
