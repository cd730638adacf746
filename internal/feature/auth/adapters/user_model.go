package adapters

import (
	"time"

	"github.com/google/uuid"

	"shop_backend/internal/feature/auth/domain/entity"
)

// UserModel is the GORM model for the users table.
type UserModel struct {
	ID          uuid.UUID  `gorm:"primaryKey;type:char(36)"`
	Email       string     `gorm:"uniqueIndex;size:254;not null"`
	FirstName   string     `gorm:"size:30;not null"`
	LastName    string     `gorm:"size:150;not null"`
	Password    string     `gorm:"size:128;not null"`
	IsActive    bool       `gorm:"not null"`
	IsStaff     bool       `gorm:"not null"`
	IsSuperuser bool       `gorm:"not null"`
	LastLogin   *time.Time
	DateJoined  time.Time `gorm:"index;not null"`
	UpdatedAt   time.Time
}

// TableName returns the table name for GORM.
func (UserModel) TableName() string {
	return "users"
}

// ToEntity converts the GORM model to a domain entity.
func (m *UserModel) ToEntity() *entity.User {
	return &entity.User{
		ID:          m.ID,
		Email:       m.Email,
		FirstName:   m.FirstName,
		LastName:    m.LastName,
		Password:    m.Password,
		IsActive:    m.IsActive,
		IsStaff:     m.IsStaff,
		IsSuperuser: m.IsSuperuser,
		LastLogin:   m.LastLogin,
		DateJoined:  m.DateJoined,
		UpdatedAt:   m.UpdatedAt,
	}
}

// UserModelFromEntity converts a domain entity to a GORM model.
func UserModelFromEntity(u *entity.User) *UserModel {
	return &UserModel{
		ID:          u.ID,
		Email:       u.Email,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		Password:    u.Password,
		IsActive:    u.IsActive,
		IsStaff:     u.IsStaff,
		IsSuperuser: u.IsSuperuser,
		LastLogin:   u.LastLogin,
		DateJoined:  u.DateJoined,
		UpdatedAt:   u.UpdatedAt,
	}
}
