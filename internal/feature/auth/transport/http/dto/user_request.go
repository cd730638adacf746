// Package dto はauthフィーチャーのHTTPトランスポート層のデータ転送オブジェクトを定義します。
package dto

import openapi_types "github.com/oapi-codegen/runtime/types"

// CreateUserReq は POST /api/v1/users/ のリクエストボディです。
// emailはデコード時に形式が検証されます。
type CreateUserReq struct {
	Email       openapi_types.Email `json:"email" binding:"required,max=254"`
	FirstName   string              `json:"first_name" binding:"max=30"`
	LastName    string              `json:"last_name" binding:"max=150"`
	Password    string              `json:"password" binding:"required,min=6"`
	IsActive    *bool               `json:"is_active"`
	IsStaff     bool                `json:"is_staff"`
	IsSuperuser bool                `json:"is_superuser"`
}

// LoginReq は/api/v1/login/エンドポイントのリクエストボディを表します。
type LoginReq struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// AlterPasswordReq はパスワード変更のリクエストボディです。
type AlterPasswordReq struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=6"`
}

// UpdateUserReq は管理者によるユーザー更新（PATCH）のリクエストボディです。
type UpdateUserReq struct {
	FirstName *string `json:"first_name" binding:"omitempty,max=30"`
	LastName  *string `json:"last_name" binding:"omitempty,max=150"`
	IsActive  *bool   `json:"is_active"`
	IsStaff   *bool   `json:"is_staff"`
}
