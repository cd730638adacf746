// Package adapters はauthフィーチャーのリポジトリ実装を提供します。
package adapters

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"shop_backend/internal/feature/auth/domain/entity"
	"shop_backend/internal/feature/auth/usecase"
	"shop_backend/internal/platform/db"
)

// userGorm はUserRepositoryインターフェースのGORM実装です。
// sqlite / postgres / mysql のいずれでも動作します。
type userGorm struct {
	db *gorm.DB
}

// userGormがUserRepositoryを実装していることをコンパイル時に検証します。
var _ usecase.UserRepository = (*userGorm)(nil)

// NewUserGorm は指定されたgorm.DB接続でuserGormの新しいインスタンスを生成します。
func NewUserGorm(gdb *gorm.DB) *userGorm {
	return &userGorm{db: gdb}
}

// Create はユーザーをデータベースに追加します。
// 同じメールアドレスのユーザーが既に存在する場合、usecase.ErrEmailAlreadyExistsを返します。
func (r *userGorm) Create(ctx context.Context, u *entity.User) error {
	if u == nil {
		return errors.New("user is nil")
	}
	model := UserModelFromEntity(u)
	if err := db.Conn(ctx, r.db).Create(model).Error; err != nil {
		if db.IsUniqueViolation(err) {
			return usecase.ErrEmailAlreadyExists
		}
		return err
	}
	u.UpdatedAt = model.UpdatedAt
	return nil
}

// FindByEmail はメールアドレスでユーザーを取得します。
// ユーザーが存在しない場合、usecase.ErrUserNotFoundを返します。
func (r *userGorm) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	return r.first(ctx, "email = ?", email)
}

// FindByID はIDでユーザーを取得します。
// ユーザーが存在しない場合、usecase.ErrUserNotFoundを返します。
func (r *userGorm) FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *userGorm) first(ctx context.Context, query string, arg any) (*entity.User, error) {
	var m UserModel
	if err := db.Conn(ctx, r.db).Where(query, arg).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, usecase.ErrUserNotFound
		}
		return nil, err
	}
	return m.ToEntity(), nil
}

// Update はプロフィール・権限フラグ・パスワードハッシュを保存します。
// falseのboolも保存されるよう、更新対象カラムを明示します。
func (r *userGorm) Update(ctx context.Context, u *entity.User) error {
	model := UserModelFromEntity(u)
	result := db.Conn(ctx, r.db).
		Model(&UserModel{ID: u.ID}).
		Select("first_name", "last_name", "password", "is_active", "is_staff", "is_superuser", "updated_at").
		Updates(model)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return usecase.ErrUserNotFound
	}
	u.UpdatedAt = model.UpdatedAt
	return nil
}

// UpdateLastLogin は最終ログイン日時を記録します。updated_atは変更しません。
func (r *userGorm) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	return db.Conn(ctx, r.db).
		Model(&UserModel{}).
		Where("id = ?", id).
		UpdateColumn("last_login", at).Error
}

// Delete はIDでユーザーを削除します。
func (r *userGorm) Delete(ctx context.Context, id uuid.UUID) error {
	result := db.Conn(ctx, r.db).Delete(&UserModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return usecase.ErrUserNotFound
	}
	return nil
}

// List はスーパーユーザー以外のユーザーを登録日時順に取得します。
// Searchはemail / first_name / last_name に対する大文字小文字を区別しない部分一致です。
// likeEscaper はLIKEのワイルドカードをエスケープします。エスケープ文字は "!" です。
var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

func (r *userGorm) List(ctx context.Context, filter usecase.ListFilter) ([]entity.User, int64, error) {
	conn := db.Conn(ctx, r.db)
	q := conn.Model(&UserModel{}).Where("is_superuser = ?", false)
	if filter.Search != "" {
		like := "%" + likeEscaper.Replace(strings.ToLower(filter.Search)) + "%"
		q = q.Where(
			conn.Where("LOWER(email) LIKE ? ESCAPE '!'", like).
				Or("LOWER(first_name) LIKE ? ESCAPE '!'", like).
				Or("LOWER(last_name) LIKE ? ESCAPE '!'", like),
		)
	}

	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var models []UserModel
	if err := q.Session(&gorm.Session{}).
		Order("date_joined ASC").
		Order("email ASC").
		Offset(filter.Offset).
		Limit(filter.Limit).
		Find(&models).Error; err != nil {
		return nil, 0, err
	}

	users := make([]entity.User, len(models))
	for i := range models {
		users[i] = *models[i].ToEntity()
	}
	return users, total, nil
}
