package dto

import "shop_backend/internal/feature/auth/domain/entity"

// UserRes はユーザーの公開表現です。パスワードハッシュは含みません。
type UserRes struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	IsActive    bool   `json:"is_active"`
	IsStaff     bool   `json:"is_staff"`
	IsSuperuser bool   `json:"is_superuser"`
}

// LoginRes はログイン成功時のレスポンスです。
type LoginRes struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

func NewUserRes(u *entity.User) UserRes {
	return UserRes{
		ID:          u.ID.String(),
		Email:       u.Email,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		IsActive:    u.IsActive,
		IsStaff:     u.IsStaff,
		IsSuperuser: u.IsSuperuser,
	}
}

func NewUserResList(users []entity.User) []UserRes {
	out := make([]UserRes, len(users))
	for i := range users {
		out[i] = NewUserRes(&users[i])
	}
	return out
}
