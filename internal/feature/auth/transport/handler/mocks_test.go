package handler

import (
	"context"

	"github.com/google/uuid"

	"shop_backend/internal/feature/auth/domain/entity"
	"shop_backend/internal/feature/auth/usecase"
)

type mockAuthUsecase struct {
	SignupFunc         func(ctx context.Context, in usecase.SignupInput, callerIsStaff bool) (*entity.User, error)
	LoginFunc          func(ctx context.Context, email, password string, meta usecase.ClientMeta) (*usecase.LoginResult, error)
	ChangePasswordFunc func(ctx context.Context, id uuid.UUID, oldPassword, newPassword string) error
}

var _ AuthUsecase = (*mockAuthUsecase)(nil)

func (m *mockAuthUsecase) Signup(ctx context.Context, in usecase.SignupInput, callerIsStaff bool) (*entity.User, error) {
	if m.SignupFunc != nil {
		return m.SignupFunc(ctx, in, callerIsStaff)
	}
	return &entity.User{ID: uuid.New(), Email: in.Email, IsActive: true}, nil
}

func (m *mockAuthUsecase) Login(ctx context.Context, email, password string, meta usecase.ClientMeta) (*usecase.LoginResult, error) {
	if m.LoginFunc != nil {
		return m.LoginFunc(ctx, email, password, meta)
	}
	return nil, usecase.ErrInvalidCredentials
}

func (m *mockAuthUsecase) ChangePassword(ctx context.Context, id uuid.UUID, oldPassword, newPassword string) error {
	if m.ChangePasswordFunc != nil {
		return m.ChangePasswordFunc(ctx, id, oldPassword, newPassword)
	}
	return nil
}

type mockUserUsecase struct {
	ListFunc    func(ctx context.Context, filter usecase.ListFilter) ([]entity.User, int64, error)
	GetByIDFunc func(ctx context.Context, id uuid.UUID) (*entity.User, error)
	UpdateFunc  func(ctx context.Context, id uuid.UUID, in usecase.UpdateInput) (*entity.User, error)
	DeleteFunc  func(ctx context.Context, id uuid.UUID) error
}

var _ UserUsecase = (*mockUserUsecase)(nil)

func (m *mockUserUsecase) List(ctx context.Context, filter usecase.ListFilter) ([]entity.User, int64, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, filter)
	}
	return nil, 0, nil
}

func (m *mockUserUsecase) GetByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, usecase.ErrUserNotFound
}

func (m *mockUserUsecase) Update(ctx context.Context, id uuid.UUID, in usecase.UpdateInput) (*entity.User, error) {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, id, in)
	}
	return nil, usecase.ErrUserNotFound
}

func (m *mockUserUsecase) Delete(ctx context.Context, id uuid.UUID) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}
