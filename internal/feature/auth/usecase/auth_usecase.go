package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"shop_backend/internal/feature/auth/domain/entity"
)

// UserRepository はユーザーエンティティの永続化層を抽象化します。
// Goの慣例に従い、インターフェースはプロバイダー（adapters）ではなくコンシューマー（usecase）が定義します。
type UserRepository interface {
	// Create は新しいユーザーをストレージに永続化します。
	// 同じメールアドレスのユーザーが既に存在する場合、ErrEmailAlreadyExistsを返します。
	Create(ctx context.Context, user *entity.User) error

	// FindByEmail は指定されたメールアドレスに一致するユーザーを取得します。
	// ユーザーが存在しない場合、ErrUserNotFoundを返します。
	FindByEmail(ctx context.Context, email string) (*entity.User, error)

	// FindByID は指定されたIDに一致するユーザーを取得します。
	// ユーザーが存在しない場合、ErrUserNotFoundを返します。
	FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error)

	// Update はプロフィール・権限フラグ・パスワードハッシュを保存します。
	Update(ctx context.Context, user *entity.User) error

	// UpdateLastLogin は最終ログイン日時を記録します。
	UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error

	// Delete はユーザーを削除します。存在しない場合、ErrUserNotFoundを返します。
	Delete(ctx context.Context, id uuid.UUID) error

	// List はスーパーユーザーを除くユーザーを登録日時順に返します。
	List(ctx context.Context, filter ListFilter) ([]entity.User, int64, error)
}

// ListFilter はユーザー一覧の検索条件です。
type ListFilter struct {
	Offset int
	Limit  int
	// Search はemail / first_name / last_name の部分一致（大文字小文字を区別しない）
	Search string
}

// ClientMeta はトークン発行時に記録するクライアント情報です。
type ClientMeta struct {
	UserAgent string
	IPAddress string
}

// TokenPair はログイン時に発行されるアクセストークンとリフレッシュトークンです。
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    int64
}

// TokenIssuer はOAuth2トークンの発行と失効を抽象化します。
// 実装はoauth2フィーチャーが提供し、DIで接続されます。
type TokenIssuer interface {
	// IssueForUser は設定済みのOAuth2アプリケーションでユーザーのトークンを発行します。
	IssueForUser(ctx context.Context, userID uuid.UUID, meta ClientMeta) (*TokenPair, error)
	// RevokeAllForUser はユーザーの全アクセストークン・リフレッシュトークンを失効させます。
	RevokeAllForUser(ctx context.Context, userID uuid.UUID) error
}

// SignupInput はユーザー作成の入力です。
type SignupInput struct {
	Email       string
	FirstName   string
	LastName    string
	Password    string
	IsActive    *bool
	IsStaff     bool
	IsSuperuser bool
}

// LoginResult はログイン成功時の結果です。
type LoginResult struct {
	User   *entity.User
	Tokens *TokenPair
}

// authUsecase は認証ビジネスロジックを実装します。
type authUsecase struct {
	users       UserRepository
	credentials *Credentials
	tokens      TokenIssuer
	now         func() time.Time
}

// NewAuthUsecase はauthUsecaseの新しいインスタンスを生成します。
func NewAuthUsecase(users UserRepository, credentials *Credentials, tokens TokenIssuer) *authUsecase {
	return &authUsecase{
		users:       users,
		credentials: credentials,
		tokens:      tokens,
		now:         time.Now,
	}
}

// Signup はハッシュ化されたパスワードで新規ユーザーを登録します。
// is_staff / is_superuser は呼び出し元が管理者の場合のみ反映されます。
func (u *authUsecase) Signup(ctx context.Context, in SignupInput, callerIsStaff bool) (*entity.User, error) {
	if err := validatePassword(in.Password); err != nil {
		return nil, err
	}

	hashed, err := HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	user := &entity.User{
		ID:         uuid.New(),
		Email:      entity.NormalizeEmail(in.Email),
		FirstName:  strings.TrimSpace(in.FirstName),
		LastName:   strings.TrimSpace(in.LastName),
		Password:   hashed,
		IsActive:   true,
		DateJoined: u.now(),
	}
	if in.IsActive != nil {
		user.IsActive = *in.IsActive
	}
	if callerIsStaff {
		user.IsStaff = in.IsStaff
		user.IsSuperuser = in.IsSuperuser
	} else if in.IsStaff || in.IsSuperuser {
		slog.Warn("ignoring privilege flags from non-staff signup", "email", user.Email)
	}

	if err := u.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Login はユーザーを認証し、成功時にトークンペアを返します。
func (u *authUsecase) Login(ctx context.Context, email, password string, meta ClientMeta) (*LoginResult, error) {
	user, err := u.credentials.Verify(ctx, email, password)
	if err != nil {
		return nil, err
	}

	tokens, err := u.tokens.IssueForUser(ctx, user.ID, meta)
	if err != nil {
		return nil, fmt.Errorf("failed to issue tokens: %w", err)
	}

	now := u.now()
	if err := u.users.UpdateLastLogin(ctx, user.ID, now); err != nil {
		// ログイン自体は成功しているため記録失敗は警告に留める
		slog.Warn("failed to update last_login", "user_id", user.ID, "error", err)
	} else {
		user.LastLogin = &now
	}

	return &LoginResult{User: user, Tokens: tokens}, nil
}

// ChangePassword は現在のパスワードを確認してから新しいパスワードを設定します。
// 成功時はユーザーの全トークンを失効させます。
func (u *authUsecase) ChangePassword(ctx context.Context, id uuid.UUID, oldPassword, newPassword string) error {
	user, ok, err := u.credentials.CheckPassword(ctx, id, oldPassword)
	if err != nil {
		return err
	}
	if !ok {
		return ErrOldPasswordIncorrect
	}
	if err := validatePassword(newPassword); err != nil {
		return err
	}

	hashed, err := HashPassword(newPassword)
	if err != nil {
		return err
	}
	user.Password = hashed
	if err := u.users.Update(ctx, user); err != nil {
		return err
	}

	if err := u.tokens.RevokeAllForUser(ctx, user.ID); err != nil {
		return fmt.Errorf("failed to revoke tokens: %w", err)
	}
	return nil
}

// EnsureSuperuser はメールアドレスのスーパーユーザーが存在しなければ作成します。
// 既存ユーザーの場合は管理者権限を付与し、パスワードは変更しません。
func (u *authUsecase) EnsureSuperuser(ctx context.Context, email, password string) (*entity.User, bool, error) {
	existing, err := u.users.FindByEmail(ctx, entity.NormalizeEmail(email))
	switch {
	case err == nil:
		if existing.IsStaff && existing.IsSuperuser && existing.IsActive {
			return existing, false, nil
		}
		existing.IsStaff, existing.IsSuperuser, existing.IsActive = true, true, true
		if err := u.users.Update(ctx, existing); err != nil {
			return nil, false, err
		}
		return existing, false, nil
	case !errors.Is(err, ErrUserNotFound):
		return nil, false, err
	}

	user, err := u.Signup(ctx, SignupInput{
		Email:       email,
		Password:    password,
		IsStaff:     true,
		IsSuperuser: true,
	}, true)
	if err != nil {
		return nil, false, err
	}
	return user, true, nil
}
