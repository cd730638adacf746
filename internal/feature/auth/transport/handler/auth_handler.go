// Package handler はauthフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"shop_backend/internal/api"
	"shop_backend/internal/feature/auth/domain/entity"
	"shop_backend/internal/feature/auth/transport/http/dto"
	"shop_backend/internal/feature/auth/usecase"
	"shop_backend/internal/platform/validate"
	"shop_backend/internal/shared/authctx"
)

// AuthUsecase は認証操作のユースケースを定義します。
// Goの慣例に従い、インターフェースはプロバイダー（usecase）ではなくコンシューマー（handler）が定義します。
type AuthUsecase interface {
	// Signup は新規ユーザーを登録します。callerIsStaffがfalseの場合、権限フラグは無視されます。
	Signup(ctx context.Context, in usecase.SignupInput, callerIsStaff bool) (*entity.User, error)
	// Login はユーザーを認証し、成功時にトークンペアを返します。
	Login(ctx context.Context, email, password string, meta usecase.ClientMeta) (*usecase.LoginResult, error)
	// ChangePassword は現在のパスワードを確認して新しいパスワードを設定します。
	ChangePassword(ctx context.Context, id uuid.UUID, oldPassword, newPassword string) error
}

// AuthHandler は認証操作のHTTPリクエストを処理します。
type AuthHandler struct {
	auth AuthUsecase
}

// NewAuthHandler はAuthHandlerの新しいインスタンスを生成します。
func NewAuthHandler(auth AuthUsecase) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// Signup はユーザー登録APIエンドポイントを処理します。
// - バリデーションエラー・メール重複時は400を返却
// - 成功時は作成したユーザーと201を返却
func (h *AuthHandler) Signup(c *gin.Context) {
	var req dto.CreateUserReq
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("signup validation failed", "error", err, "remote_addr", c.ClientIP())
		_ = c.Error(validate.BindError(err))
		return
	}

	user, err := h.auth.Signup(c.Request.Context(), usecase.SignupInput{
		Email:       string(req.Email),
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Password:    req.Password,
		IsActive:    req.IsActive,
		IsStaff:     req.IsStaff,
		IsSuperuser: req.IsSuperuser,
	}, authctx.IsStaff(c))
	if err != nil {
		slog.Warn("signup failed", "error", err, "remote_addr", c.ClientIP())
		_ = c.Error(err)
		return
	}
	slog.Info("user signup successful", "user_id", user.ID, "remote_addr", c.ClientIP())
	c.JSON(http.StatusCreated, dto.NewUserRes(user))
}

// Login はユーザーログインAPIエンドポイントを処理します。
// ユーザー列挙攻撃を防止するため、失敗理由にかかわらず同じエラーを返します。
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("login validation failed", "error", err, "remote_addr", c.ClientIP())
		_ = c.Error(validate.BindError(err))
		return
	}

	res, err := h.auth.Login(c.Request.Context(), req.Email, req.Password, usecase.ClientMeta{
		UserAgent: c.Request.UserAgent(),
		IPAddress: c.ClientIP(),
	})
	if err != nil {
		slog.Warn("login failed", "error", err, "remote_addr", c.ClientIP())
		_ = c.Error(err)
		return
	}
	slog.Info("user login successful", "user_id", res.User.ID, "remote_addr", c.ClientIP())
	c.JSON(http.StatusOK, dto.LoginRes{
		ID:           res.User.ID.String(),
		Email:        res.User.Email,
		AccessToken:  res.Tokens.AccessToken,
		RefreshToken: res.Tokens.RefreshToken,
	})
}

// ChangePassword は /api/v1/users/alter_password/:id/ を処理します。
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	id, ok := userIDParam(c)
	if !ok {
		return
	}

	var req dto.AlterPasswordReq
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(validate.BindError(err))
		return
	}

	if err := h.auth.ChangePassword(c.Request.Context(), id, req.OldPassword, req.NewPassword); err != nil {
		slog.Warn("password change failed", "user_id", id, "error", err, "remote_addr", c.ClientIP())
		_ = c.Error(err)
		return
	}
	slog.Info("password changed", "user_id", id, "remote_addr", c.ClientIP())
	c.JSON(http.StatusOK, api.SuccessResponse{Success: true})
}

// userIDParam はパスの:idをUUIDとして解釈します。不正な値は404として扱います。
func userIDParam(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		_ = c.Error(usecase.ErrUserNotFound)
		return uuid.Nil, false
	}
	return id, true
}
