package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/oapi-codegen/runtime"

	"shop_backend/internal/api"
	"shop_backend/internal/feature/auth/domain/entity"
	"shop_backend/internal/feature/auth/transport/http/dto"
	"shop_backend/internal/feature/auth/usecase"
	"shop_backend/internal/platform/validate"
	"shop_backend/internal/shared/apperr"
)

// UserUsecase は管理者向けユーザー操作のユースケースを定義します。
type UserUsecase interface {
	List(ctx context.Context, filter usecase.ListFilter) ([]entity.User, int64, error)
	GetByID(ctx context.Context, id uuid.UUID) (*entity.User, error)
	Update(ctx context.Context, id uuid.UUID, in usecase.UpdateInput) (*entity.User, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// UserHandler は /api/v1/users/ 配下の管理者APIを処理します。
type UserHandler struct {
	users UserUsecase
}

// NewUserHandler はUserHandlerの新しいインスタンスを生成します。
func NewUserHandler(users UserUsecase) *UserHandler {
	return &UserHandler{users: users}
}

// List はユーザー一覧をページング付きで返します。
// クエリ: offset (>=0, 既定0), limit (>=1, 既定10), search_query
func (h *UserHandler) List(c *gin.Context) {
	filter, err := parseListFilter(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	users, total, err := h.users.List(c.Request.Context(), filter)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, api.Page[dto.UserRes]{
		Items:      dto.NewUserResList(users),
		TotalItems: total,
		Offset:     filter.Offset,
		Limit:      filter.Limit,
	})
}

// parseListFilter はクエリパラメータをoapi-codegenのform形式バインダで読み取ります。
func parseListFilter(c *gin.Context) (usecase.ListFilter, error) {
	query := c.Request.URL.Query()
	filter := usecase.ListFilter{Limit: usecase.DefaultListLimit}
	fields := map[string][]string{}

	var offset, limit *int
	var search *string
	if err := runtime.BindQueryParameter("form", true, false, "offset", query, &offset); err != nil {
		fields["offset"] = []string{"A valid integer is required."}
	}
	if err := runtime.BindQueryParameter("form", true, false, "limit", query, &limit); err != nil {
		fields["limit"] = []string{"A valid integer is required."}
	}
	if err := runtime.BindQueryParameter("form", true, false, "search_query", query, &search); err != nil {
		fields["search_query"] = []string{"Not a valid string."}
	}

	if offset != nil {
		if *offset < 0 {
			fields["offset"] = []string{"Ensure this value is greater than or equal to 0."}
		}
		filter.Offset = *offset
	}
	if limit != nil {
		if *limit < 1 {
			fields["limit"] = []string{"Ensure this value is greater than or equal to 1."}
		}
		filter.Limit = *limit
	}
	if search != nil {
		filter.Search = *search
	}

	if len(fields) > 0 {
		return usecase.ListFilter{}, apperr.InvalidFields(fields, nil)
	}
	return filter, nil
}

func (h *UserHandler) Get(c *gin.Context) {
	id, ok := userIDParam(c)
	if !ok {
		return
	}
	user, err := h.users.GetByID(c.Request.Context(), id)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, dto.NewUserRes(user))
}

// Update は PATCH /api/v1/users/:id/ を処理します。
func (h *UserHandler) Update(c *gin.Context) {
	id, ok := userIDParam(c)
	if !ok {
		return
	}

	var req dto.UpdateUserReq
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(validate.BindError(err))
		return
	}

	user, err := h.users.Update(c.Request.Context(), id, usecase.UpdateInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		IsActive:  req.IsActive,
		IsStaff:   req.IsStaff,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}
	slog.Info("user updated", "user_id", id, "remote_addr", c.ClientIP())
	c.JSON(http.StatusOK, dto.NewUserRes(user))
}

func (h *UserHandler) Delete(c *gin.Context) {
	id, ok := userIDParam(c)
	if !ok {
		return
	}
	if err := h.users.Delete(c.Request.Context(), id); err != nil {
		_ = c.Error(err)
		return
	}
	slog.Info("user deleted", "user_id", id, "remote_addr", c.ClientIP())
	c.Status(http.StatusNoContent)
}
