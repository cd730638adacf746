package adapters

import (
	"time"

	"github.com/google/uuid"

	"shop_backend/internal/feature/oauth2/domain/entity"
)

// RefreshTokenModel is the GORM model for the oauth2_refresh_tokens table.
type RefreshTokenModel struct {
	ID             string     `gorm:"primaryKey;size:64"`
	UserID         uuid.UUID  `gorm:"type:char(36);index;not null"`
	ApplicationID  uint       `gorm:"index;not null"`
	AccessTokenJTI string     `gorm:"size:36"`
	Scope          string     `gorm:"size:255"`
	UserAgent      string     `gorm:"size:512"`
	IPAddress      string     `gorm:"size:45"` // IPv6 max length
	CreatedAt      time.Time  `gorm:"not null"`
	ExpiresAt      time.Time  `gorm:"index;not null"`
	RevokedAt      *time.Time `gorm:"index"`
}

// TableName returns the table name for GORM.
func (RefreshTokenModel) TableName() string {
	return "oauth2_refresh_tokens"
}

// ToEntity converts the GORM model to a domain entity.
func (m *RefreshTokenModel) ToEntity() *entity.RefreshToken {
	return &entity.RefreshToken{
		ID:             m.ID,
		UserID:         m.UserID,
		ApplicationID:  m.ApplicationID,
		AccessTokenJTI: m.AccessTokenJTI,
		Scope:          m.Scope,
		UserAgent:      m.UserAgent,
		IPAddress:      m.IPAddress,
		CreatedAt:      m.CreatedAt,
		ExpiresAt:      m.ExpiresAt,
		RevokedAt:      m.RevokedAt,
	}
}

// RefreshTokenModelFromEntity converts a domain entity to a GORM model.
func RefreshTokenModelFromEntity(t *entity.RefreshToken) *RefreshTokenModel {
	return &RefreshTokenModel{
		ID:             t.ID,
		UserID:         t.UserID,
		ApplicationID:  t.ApplicationID,
		AccessTokenJTI: t.AccessTokenJTI,
		Scope:          t.Scope,
		UserAgent:      t.UserAgent,
		IPAddress:      t.IPAddress,
		CreatedAt:      t.CreatedAt,
		ExpiresAt:      t.ExpiresAt,
		RevokedAt:      t.RevokedAt,
	}
}

// AccessTokenModel is the GORM model for the oauth2_access_tokens table.
type AccessTokenModel struct {
	ID            uint       `gorm:"primaryKey"`
	JTI           string     `gorm:"column:jti;uniqueIndex;size:36;not null"`
	UserID        *uuid.UUID `gorm:"type:char(36);index"`
	ApplicationID uint       `gorm:"index;not null"`
	Scope         string     `gorm:"size:255"`
	ExpiresAt     time.Time  `gorm:"index;not null"`
	RevokedAt     *time.Time
	CreatedAt     time.Time
}

// TableName returns the table name for GORM.
func (AccessTokenModel) TableName() string {
	return "oauth2_access_tokens"
}

func (m *AccessTokenModel) ToEntity() *entity.AccessToken {
	return &entity.AccessToken{
		ID:            m.ID,
		JTI:           m.JTI,
		UserID:        m.UserID,
		ApplicationID: m.ApplicationID,
		Scope:         m.Scope,
		ExpiresAt:     m.ExpiresAt,
		RevokedAt:     m.RevokedAt,
		CreatedAt:     m.CreatedAt,
	}
}

func AccessTokenModelFromEntity(t *entity.AccessToken) *AccessTokenModel {
	return &AccessTokenModel{
		ID:            t.ID,
		JTI:           t.JTI,
		UserID:        t.UserID,
		ApplicationID: t.ApplicationID,
		Scope:         t.Scope,
		ExpiresAt:     t.ExpiresAt,
		RevokedAt:     t.RevokedAt,
		CreatedAt:     t.CreatedAt,
	}
}

// ApplicationModel is the GORM model for the oauth2_applications table.
type ApplicationModel struct {
	ID               uint       `gorm:"primaryKey"`
	Name             string     `gorm:"size:255;not null"`
	ClientID         string     `gorm:"uniqueIndex;size:100;not null"`
	ClientSecretHash string     `gorm:"size:255"`
	ClientType       string     `gorm:"size:32;not null"`
	GrantType        string     `gorm:"column:authorization_grant_type;size:32;not null"`
	UserID           *uuid.UUID `gorm:"type:char(36)"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// TableName returns the table name for GORM.
func (ApplicationModel) TableName() string {
	return "oauth2_applications"
}

func (m *ApplicationModel) ToEntity() *entity.Application {
	return &entity.Application{
		ID:               m.ID,
		Name:             m.Name,
		ClientID:         m.ClientID,
		ClientSecretHash: m.ClientSecretHash,
		ClientType:       entity.ClientType(m.ClientType),
		GrantType:        entity.GrantType(m.GrantType),
		UserID:           m.UserID,
		CreatedAt:        m.CreatedAt,
		UpdatedAt:        m.UpdatedAt,
	}
}

func ApplicationModelFromEntity(a *entity.Application) *ApplicationModel {
	return &ApplicationModel{
		ID:               a.ID,
		Name:             a.Name,
		ClientID:         a.ClientID,
		ClientSecretHash: a.ClientSecretHash,
		ClientType:       string(a.ClientType),
		GrantType:        string(a.GrantType),
		UserID:           a.UserID,
		CreatedAt:        a.CreatedAt,
		UpdatedAt:        a.UpdatedAt,
	}
}

// Models returns every table owned by the oauth2 feature, for AutoMigrate.
func Models() []any {
	return []any{&ApplicationModel{}, &AccessTokenModel{}, &RefreshTokenModel{}}
}
