package usecase

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"shop_backend/internal/feature/oauth2/domain/entity"
	jwtx "shop_backend/internal/platform/jwt"
	"shop_backend/internal/shared/authctx"
)

// allowedScopes は付与可能なスコープです。
var allowedScopes = map[string]bool{"read": true, "write": true}

// TokenSigner はアクセストークンJWTの署名と検証を抽象化します。
type TokenSigner interface {
	Sign(claims jwtx.Claims, ttl time.Duration) (string, error)
	Parse(token string) (*jwtx.Claims, error)
}

// Config はトークン発行の設定です。
type Config struct {
	AccessTokenTTL          time.Duration
	RefreshTokenTTL         time.Duration
	DefaultScope            string
	MaxRefreshTokensPerUser int
	// LoginClientID は /api/v1/login/ がトークンを発行するアプリケーションです。
	LoginClientID string
}

// ClientCredentials はトークンエンドポイントのクライアント認証情報です。
type ClientCredentials struct {
	ClientID     string
	ClientSecret string
}

// TokenRequest は /o/token/ のリクエストです。
type TokenRequest struct {
	Client       ClientCredentials
	GrantType    string
	Username     string
	Password     string
	RefreshToken string
	Scope        string
	UserAgent    string
	IPAddress    string
}

// TokenResponse はRFC 6749 5.1節のアクセストークンレスポンスです。
type TokenResponse struct {
	AccessToken  string
	TokenType    string
	ExpiresIn    int64
	Scope        string
	RefreshToken string
}

// Introspection はRFC 7662のイントロスペクション結果です。
type Introspection struct {
	Active    bool
	Scope     string
	ClientID  string
	Username  string
	TokenType string
	Exp       int64
}

// tokenUsecase はOAuth2トークンの発行・ローテーション・失効・検証を実装します。
type tokenUsecase struct {
	apps    ApplicationRepository
	access  AccessTokenRepository
	refresh RefreshTokenRepository
	users   UserDirectory
	signer  TokenSigner
	cfg     Config
	now     func() time.Time
}

// NewTokenUsecase はtokenUsecaseの新しいインスタンスを生成します。
func NewTokenUsecase(
	apps ApplicationRepository,
	access AccessTokenRepository,
	refresh RefreshTokenRepository,
	users UserDirectory,
	signer TokenSigner,
	cfg Config,
) *tokenUsecase {
	if cfg.DefaultScope == "" {
		cfg.DefaultScope = "read write"
	}
	return &tokenUsecase{
		apps:    apps,
		access:  access,
		refresh: refresh,
		users:   users,
		signer:  signer,
		cfg:     cfg,
		now:     time.Now,
	}
}

// Token はgrant_typeに応じてトークンを発行します。
// password / refresh_token / client_credentials をサポートします。
func (u *tokenUsecase) Token(ctx context.Context, req TokenRequest) (*TokenResponse, error) {
	if req.GrantType == "" {
		return nil, ErrMissingGrantType
	}
	switch req.GrantType {
	case "password", "refresh_token", "client_credentials":
	default:
		return nil, ErrUnsupportedGrantType
	}

	app, err := u.authenticateClient(ctx, req.Client)
	if err != nil {
		return nil, err
	}
	if !app.Allows(req.GrantType) {
		return nil, ErrUnauthorizedClient
	}

	meta := issueMeta{userAgent: req.UserAgent, ipAddress: req.IPAddress}
	switch req.GrantType {
	case "password":
		return u.passwordGrant(ctx, app, req, meta)
	case "refresh_token":
		return u.refreshGrant(ctx, app, req, meta)
	default:
		scope, err := u.resolveScope(req.Scope, u.cfg.DefaultScope)
		if err != nil {
			return nil, err
		}
		return u.issue(ctx, app, nil, scope, meta, false)
	}
}

func (u *tokenUsecase) passwordGrant(ctx context.Context, app *entity.Application, req TokenRequest, meta issueMeta) (*TokenResponse, error) {
	if req.Username == "" {
		return nil, missingParam("username")
	}
	if req.Password == "" {
		return nil, missingParam("password")
	}
	scope, err := u.resolveScope(req.Scope, u.cfg.DefaultScope)
	if err != nil {
		return nil, err
	}

	owner, err := u.users.Authenticate(ctx, req.Username, req.Password)
	if err != nil {
		if errors.Is(err, ErrOwnerNotFound) {
			return nil, ErrInvalidGrant
		}
		return nil, err
	}
	meta.email = owner.Email
	return u.issue(ctx, app, &owner.ID, scope, meta, true)
}

// refreshGrant はリフレッシュトークンをローテーションします。
// 旧トークンと対応するアクセストークンは失効させます。
func (u *tokenUsecase) refreshGrant(ctx context.Context, app *entity.Application, req TokenRequest, meta issueMeta) (*TokenResponse, error) {
	if req.RefreshToken == "" {
		return nil, missingParam("refresh_token")
	}

	old, err := u.refresh.FindByID(ctx, req.RefreshToken)
	if err != nil {
		if errors.Is(err, ErrRefreshTokenNotFound) {
			return nil, ErrInvalidRefreshToken
		}
		return nil, err
	}
	now := u.now()
	if !old.IsValid(now) || old.ApplicationID != app.ID {
		slog.Warn("refresh token rejected", "user_id", old.UserID, "revoked", old.IsRevoked(), "expired", old.IsExpired(now))
		return nil, ErrInvalidRefreshToken
	}

	// 要求スコープは元のスコープの部分集合のみ許可
	scope, err := u.resolveScope(req.Scope, old.Scope)
	if err != nil {
		return nil, err
	}
	if !subset(scope, old.Scope) {
		return nil, ErrInvalidScope
	}

	owner, err := u.users.FindByID(ctx, old.UserID)
	if err != nil {
		if errors.Is(err, ErrOwnerNotFound) {
			return nil, ErrInvalidRefreshToken
		}
		return nil, err
	}
	if !owner.IsActive {
		return nil, ErrInvalidRefreshToken
	}

	// 失効に成功した1リクエストだけが新しいトークンを受け取る
	if err := u.refresh.Revoke(ctx, old.ID); err != nil {
		if errors.Is(err, ErrRefreshTokenRevoked) || errors.Is(err, ErrRefreshTokenNotFound) {
			slog.Warn("refresh token already redeemed", "user_id", old.UserID)
			return nil, ErrInvalidRefreshToken
		}
		return nil, fmt.Errorf("failed to revoke refresh token: %w", err)
	}
	if old.AccessTokenJTI != "" {
		if err := u.access.Revoke(ctx, old.AccessTokenJTI, now); err != nil && !errors.Is(err, ErrAccessTokenNotFound) {
			return nil, fmt.Errorf("failed to revoke access token: %w", err)
		}
	}

	meta.email = owner.Email
	return u.issue(ctx, app, &owner.ID, scope, meta, true)
}

type issueMeta struct {
	email     string
	userAgent string
	ipAddress string
}

// issue はアクセストークン行を保存して署名し、必要ならリフレッシュトークンを発行します。
func (u *tokenUsecase) issue(ctx context.Context, app *entity.Application, userID *uuid.UUID, scope string, meta issueMeta, withRefresh bool) (*TokenResponse, error) {
	now := u.now()
	jti := uuid.NewString()

	row := &entity.AccessToken{
		JTI:           jti,
		UserID:        userID,
		ApplicationID: app.ID,
		Scope:         scope,
		ExpiresAt:     now.Add(u.cfg.AccessTokenTTL),
		CreatedAt:     now,
	}
	if err := u.access.Create(ctx, row); err != nil {
		return nil, fmt.Errorf("failed to store access token: %w", err)
	}

	subject := app.ClientID
	if userID != nil {
		subject = userID.String()
	}
	signed, err := u.signer.Sign(jwtx.Claims{
		ClientID: app.ClientID,
		Scope:    scope,
		Email:    meta.email,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:      jti,
			Subject: subject,
		},
	}, u.cfg.AccessTokenTTL)
	if err != nil {
		return nil, err
	}

	res := &TokenResponse{
		AccessToken: signed,
		TokenType:   "Bearer",
		ExpiresIn:   int64(u.cfg.AccessTokenTTL / time.Second),
		Scope:       scope,
	}
	if !withRefresh || userID == nil {
		return res, nil
	}

	if err := u.enforceRefreshLimit(ctx, *userID); err != nil {
		return nil, err
	}
	value, err := generateRefreshToken()
	if err != nil {
		return nil, err
	}
	rt := &entity.RefreshToken{
		ID:             value,
		UserID:         *userID,
		ApplicationID:  app.ID,
		AccessTokenJTI: jti,
		Scope:          scope,
		UserAgent:      truncate(meta.userAgent, 512),
		IPAddress:      truncate(meta.ipAddress, 45),
		CreatedAt:      now,
		ExpiresAt:      now.Add(u.cfg.RefreshTokenTTL),
	}
	if err := u.refresh.Create(ctx, rt); err != nil {
		return nil, fmt.Errorf("failed to store refresh token: %w", err)
	}
	res.RefreshToken = value
	return res, nil
}

// enforceRefreshLimit は上限に達している場合、古いトークンから削除します。
func (u *tokenUsecase) enforceRefreshLimit(ctx context.Context, userID uuid.UUID) error {
	if u.cfg.MaxRefreshTokensPerUser <= 0 {
		return nil
	}
	count, err := u.refresh.CountByUserID(ctx, userID)
	if err != nil {
		return err
	}
	for ; count >= int64(u.cfg.MaxRefreshTokensPerUser); count-- {
		if err := u.refresh.DeleteOldestByUserID(ctx, userID); err != nil {
			return err
		}
	}
	return nil
}

// authenticateClient はclient_id / client_secretでアプリケーションを認証します。
// publicクライアントはclient_idのみで認証されます。
func (u *tokenUsecase) authenticateClient(ctx context.Context, creds ClientCredentials) (*entity.Application, error) {
	if creds.ClientID == "" {
		return nil, ErrInvalidClient
	}
	app, err := u.apps.FindByClientID(ctx, creds.ClientID)
	if err != nil {
		if errors.Is(err, ErrApplicationNotFound) {
			return nil, ErrInvalidClient
		}
		return nil, err
	}
	if app.IsConfidential() {
		if creds.ClientSecret == "" ||
			bcrypt.CompareHashAndPassword([]byte(app.ClientSecretHash), []byte(creds.ClientSecret)) != nil {
			return nil, ErrInvalidClient
		}
	}
	return app, nil
}

// resolveScope は空なら既定値を使い、未知のスコープを拒否して正規化します。
func (u *tokenUsecase) resolveScope(requested, fallback string) (string, error) {
	fields := strings.Fields(requested)
	if len(fields) == 0 {
		fields = strings.Fields(fallback)
	}
	seen := map[string]bool{}
	out := make([]string, 0, len(fields))
	for _, s := range fields {
		if !allowedScopes[s] {
			return "", ErrInvalidScope
		}
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return strings.Join(out, " "), nil
}

func subset(scope, of string) bool {
	have := map[string]bool{}
	for _, s := range strings.Fields(of) {
		have[s] = true
	}
	for _, s := range strings.Fields(scope) {
		if !have[s] {
			return false
		}
	}
	return true
}

// Revoke はRFC 7009に従いトークンを失効させます。
// クライアント認証以外の失敗（未知のトークン等）はエラーにしません。
func (u *tokenUsecase) Revoke(ctx context.Context, creds ClientCredentials, token, hint string) error {
	app, err := u.authenticateClient(ctx, creds)
	if err != nil {
		return err
	}
	if token == "" {
		return missingParam("token")
	}

	tryRefresh := func() (bool, error) {
		rt, err := u.refresh.FindByID(ctx, token)
		if errors.Is(err, ErrRefreshTokenNotFound) {
			return false, nil
		}
		if err != nil {
			return false, err
		}
		if rt.ApplicationID != app.ID {
			return false, nil
		}
		if err := u.refresh.Revoke(ctx, rt.ID); err != nil &&
			!errors.Is(err, ErrRefreshTokenRevoked) && !errors.Is(err, ErrRefreshTokenNotFound) {
			return false, err
		}
		if rt.AccessTokenJTI != "" {
			if err := u.access.Revoke(ctx, rt.AccessTokenJTI, u.now()); err != nil && !errors.Is(err, ErrAccessTokenNotFound) {
				return false, err
			}
		}
		return true, nil
	}
	tryAccess := func() (bool, error) {
		row, err := u.lookupAccess(ctx, token)
		if err != nil || row == nil || row.ApplicationID != app.ID {
			return false, err
		}
		if err := u.access.Revoke(ctx, row.JTI, u.now()); err != nil {
			return false, err
		}
		return true, nil
	}

	order := []func() (bool, error){tryAccess, tryRefresh}
	if hint == "refresh_token" {
		order = []func() (bool, error){tryRefresh, tryAccess}
	}
	for _, try := range order {
		done, err := try()
		if err != nil {
			return err
		}
		if done {
			slog.Info("token revoked", "client_id", app.ClientID)
			return nil
		}
	}
	return nil
}

// lookupAccess はJWTを検証してアクセストークン行を返します。不正・未知の場合はnilです。
func (u *tokenUsecase) lookupAccess(ctx context.Context, token string) (*entity.AccessToken, error) {
	claims, err := u.signer.Parse(token)
	if err != nil {
		return nil, nil
	}
	row, err := u.access.FindByJTI(ctx, claims.ID)
	if errors.Is(err, ErrAccessTokenNotFound) {
		return nil, nil
	}
	return row, err
}

// Introspect はRFC 7662に従いトークンの状態を返します。
func (u *tokenUsecase) Introspect(ctx context.Context, creds ClientCredentials, token string) (*Introspection, error) {
	if _, err := u.authenticateClient(ctx, creds); err != nil {
		return nil, err
	}
	now := u.now()
	inactive := &Introspection{Active: false}

	if row, err := u.lookupAccess(ctx, token); err != nil {
		return nil, err
	} else if row != nil {
		if !row.IsActive(now) {
			return inactive, nil
		}
		return u.describe(ctx, row.ApplicationID, row.UserID, row.Scope, "Bearer", row.ExpiresAt)
	}

	rt, err := u.refresh.FindByID(ctx, token)
	if errors.Is(err, ErrRefreshTokenNotFound) {
		return inactive, nil
	}
	if err != nil {
		return nil, err
	}
	if !rt.IsValid(now) {
		return inactive, nil
	}
	return u.describe(ctx, rt.ApplicationID, &rt.UserID, rt.Scope, "refresh_token", rt.ExpiresAt)
}

func (u *tokenUsecase) describe(ctx context.Context, appID uint, userID *uuid.UUID, scope, tokenType string, exp time.Time) (*Introspection, error) {
	res := &Introspection{Active: true, Scope: scope, TokenType: tokenType, Exp: exp.Unix()}
	app, err := u.apps.FindByID(ctx, appID)
	if err != nil && !errors.Is(err, ErrApplicationNotFound) {
		return nil, err
	}
	if app != nil {
		res.ClientID = app.ClientID
	}
	if userID != nil {
		owner, err := u.users.FindByID(ctx, *userID)
		if errors.Is(err, ErrOwnerNotFound) || (err == nil && !owner.IsActive) {
			return &Introspection{Active: false}, nil
		}
		if err != nil {
			return nil, err
		}
		res.Username = owner.Email
	}
	return res, nil
}

// Authenticate はベアラートークンを検証し、リクエストの認証主体を返します。
// 行が存在し失効・期限切れでないこと、ユーザーが有効であることを確認します。
func (u *tokenUsecase) Authenticate(ctx context.Context, bearer string) (*authctx.Principal, error) {
	claims, err := u.signer.Parse(bearer)
	if err != nil {
		return nil, ErrInvalidToken
	}
	row, err := u.access.FindByJTI(ctx, claims.ID)
	if err != nil {
		if errors.Is(err, ErrAccessTokenNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}
	if !row.IsActive(u.now()) {
		return nil, ErrInvalidToken
	}

	p := &authctx.Principal{ClientID: claims.ClientID, Scope: row.Scope}
	if row.UserID == nil {
		return p, nil
	}
	owner, err := u.users.FindByID(ctx, *row.UserID)
	if err != nil {
		if errors.Is(err, ErrOwnerNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}
	if !owner.IsActive {
		return nil, ErrInvalidToken
	}
	p.UserID = &owner.ID
	p.Email = owner.Email
	p.IsStaff = owner.IsStaff
	p.IsSuperuser = owner.IsSuperuser
	return p, nil
}

// IssueForOwner はログイン用アプリケーションでユーザーのトークンペアを発行します。
func (u *tokenUsecase) IssueForOwner(ctx context.Context, owner *ResourceOwner, userAgent, ipAddress string) (*TokenResponse, error) {
	app, err := u.apps.FindByClientID(ctx, u.cfg.LoginClientID)
	if err != nil {
		if errors.Is(err, ErrApplicationNotFound) {
			slog.Error("login application missing", "client_id", u.cfg.LoginClientID)
			return nil, ErrApplicationNotConfigured
		}
		return nil, err
	}
	scope, err := u.resolveScope("", u.cfg.DefaultScope)
	if err != nil {
		return nil, err
	}
	return u.issue(ctx, app, &owner.ID, scope, issueMeta{
		email:     owner.Email,
		userAgent: userAgent,
		ipAddress: ipAddress,
	}, true)
}

// RevokeAllForUser はユーザーの全アクセストークン・リフレッシュトークンを失効させます。
func (u *tokenUsecase) RevokeAllForUser(ctx context.Context, userID uuid.UUID) error {
	if err := u.access.RevokeAllByUserID(ctx, userID, u.now()); err != nil {
		return err
	}
	return u.refresh.RevokeAllByUserID(ctx, userID)
}

// ClearExpired は期限切れ・失効済みのトークンを削除します。
func (u *tokenUsecase) ClearExpired(ctx context.Context) (accessDeleted, refreshDeleted int64, err error) {
	now := u.now()
	if accessDeleted, err = u.access.DeleteExpired(ctx, now); err != nil {
		return 0, 0, fmt.Errorf("failed to delete access tokens: %w", err)
	}
	if refreshDeleted, err = u.refresh.DeleteExpired(ctx, now); err != nil {
		return accessDeleted, 0, fmt.Errorf("failed to delete refresh tokens: %w", err)
	}
	return accessDeleted, refreshDeleted, nil
}

// generateRefreshToken は32バイトの乱数を16進数64文字で返します。
func generateRefreshToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate refresh token: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// truncate はsを最大nバイトに切り詰めます。マルチバイト文字の途中では切りません。
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
