package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"shop_backend/internal/feature/auth/domain/entity"
)

const (
	// DefaultListLimit はlimit未指定時の件数です。
	DefaultListLimit = 10
)

// UpdateInput は管理者によるユーザー更新の入力です。nilのフィールドは変更しません。
type UpdateInput struct {
	FirstName *string
	LastName  *string
	IsActive  *bool
	IsStaff   *bool
}

// userUsecase は管理者向けのユーザー操作を実装します。
type userUsecase struct {
	users  UserRepository
	tokens TokenIssuer
}

// NewUserUsecase はuserUsecaseの新しいインスタンスを生成します。
func NewUserUsecase(users UserRepository, tokens TokenIssuer) *userUsecase {
	return &userUsecase{users: users, tokens: tokens}
}

// List はユーザー一覧と総件数を返します。
func (u *userUsecase) List(ctx context.Context, filter ListFilter) ([]entity.User, int64, error) {
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	if filter.Limit < 1 {
		filter.Limit = DefaultListLimit
	}
	filter.Search = strings.TrimSpace(filter.Search)
	return u.users.List(ctx, filter)
}

func (u *userUsecase) GetByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	return u.users.FindByID(ctx, id)
}

// Update はプロフィールと権限フラグを更新します。
// アカウントを無効化した場合は発行済みトークンも失効させます。
func (u *userUsecase) Update(ctx context.Context, id uuid.UUID, in UpdateInput) (*entity.User, error) {
	user, err := u.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	deactivated := false
	if in.FirstName != nil {
		user.FirstName = strings.TrimSpace(*in.FirstName)
	}
	if in.LastName != nil {
		user.LastName = strings.TrimSpace(*in.LastName)
	}
	if in.IsActive != nil {
		deactivated = user.IsActive && !*in.IsActive
		user.IsActive = *in.IsActive
	}
	if in.IsStaff != nil {
		user.IsStaff = *in.IsStaff
	}

	if err := u.users.Update(ctx, user); err != nil {
		return nil, err
	}
	if deactivated {
		if err := u.tokens.RevokeAllForUser(ctx, user.ID); err != nil {
			return nil, fmt.Errorf("failed to revoke tokens: %w", err)
		}
	}
	return user, nil
}

// Delete はユーザーを削除し、発行済みトークンを失効させます。
func (u *userUsecase) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := u.users.FindByID(ctx, id); err != nil {
		return err
	}
	if err := u.tokens.RevokeAllForUser(ctx, id); err != nil {
		return fmt.Errorf("failed to revoke tokens: %w", err)
	}
	return u.users.Delete(ctx, id)
}
