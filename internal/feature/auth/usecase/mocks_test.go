package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	"shop_backend/internal/feature/auth/domain/entity"
)

// mockUserRepository is a mock implementation of UserRepository.
type mockUserRepository struct {
	CreateFunc          func(ctx context.Context, user *entity.User) error
	FindByEmailFunc     func(ctx context.Context, email string) (*entity.User, error)
	FindByIDFunc        func(ctx context.Context, id uuid.UUID) (*entity.User, error)
	UpdateFunc          func(ctx context.Context, user *entity.User) error
	UpdateLastLoginFunc func(ctx context.Context, id uuid.UUID, at time.Time) error
	DeleteFunc          func(ctx context.Context, id uuid.UUID) error
	ListFunc            func(ctx context.Context, filter ListFilter) ([]entity.User, int64, error)
}

var _ UserRepository = (*mockUserRepository)(nil)

func (m *mockUserRepository) Create(ctx context.Context, user *entity.User) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, user)
	}
	return nil
}

func (m *mockUserRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	if m.FindByEmailFunc != nil {
		return m.FindByEmailFunc(ctx, email)
	}
	return nil, ErrUserNotFound
}

func (m *mockUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	return nil, ErrUserNotFound
}

func (m *mockUserRepository) Update(ctx context.Context, user *entity.User) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, user)
	}
	return nil
}

func (m *mockUserRepository) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	if m.UpdateLastLoginFunc != nil {
		return m.UpdateLastLoginFunc(ctx, id, at)
	}
	return nil
}

func (m *mockUserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

func (m *mockUserRepository) List(ctx context.Context, filter ListFilter) ([]entity.User, int64, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, filter)
	}
	return nil, 0, nil
}

// mockTokenIssuer is a mock implementation of TokenIssuer.
type mockTokenIssuer struct {
	IssueForUserFunc     func(ctx context.Context, userID uuid.UUID, meta ClientMeta) (*TokenPair, error)
	RevokeAllForUserFunc func(ctx context.Context, userID uuid.UUID) error
}

var _ TokenIssuer = (*mockTokenIssuer)(nil)

func (m *mockTokenIssuer) IssueForUser(ctx context.Context, userID uuid.UUID, meta ClientMeta) (*TokenPair, error) {
	if m.IssueForUserFunc != nil {
		return m.IssueForUserFunc(ctx, userID, meta)
	}
	return &TokenPair{AccessToken: "access", RefreshToken: "refresh", ExpiresIn: 86400}, nil
}

func (m *mockTokenIssuer) RevokeAllForUser(ctx context.Context, userID uuid.UUID) error {
	if m.RevokeAllForUserFunc != nil {
		return m.RevokeAllForUserFunc(ctx, userID)
	}
	return nil
}
