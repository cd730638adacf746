package main

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"shop_backend/internal/app/di"
	oauth2adapters "shop_backend/internal/feature/oauth2/adapters"
	"shop_backend/internal/platform/config"
)

func newContainer(t *testing.T) (*di.Container, *gorm.DB) {
	t.Helper()

	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent), TranslateError: true})
	require.NoError(t, err)
	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, gdb.AutoMigrate(di.Models()...))

	var cfg config.Config
	cfg.SecretKey = "test"
	cfg.Oauth = config.Oauth{ClientID: "shop-test", AccessTokenTTL: time.Hour, RefreshTokenTTL: time.Hour}
	return di.New(cfg, gdb, nil), gdb
}

func TestClearExpired(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	c, gdb := newContainer(t)

	now := time.Now()
	past, future := now.Add(-time.Hour), now.Add(time.Hour)
	user := uuid.New()

	access := []oauth2adapters.AccessTokenModel{
		{JTI: uuid.NewString(), ApplicationID: 1, ExpiresAt: past},
		{JTI: uuid.NewString(), ApplicationID: 1, ExpiresAt: future, RevokedAt: &past},
		{JTI: uuid.NewString(), ApplicationID: 1, ExpiresAt: future},
	}
	require.NoError(t, gdb.Create(&access).Error)

	refresh := []oauth2adapters.RefreshTokenModel{
		{ID: "expired", UserID: user, ApplicationID: 1, CreatedAt: past, ExpiresAt: past},
		{ID: "live", UserID: user, ApplicationID: 1, CreatedAt: now, ExpiresAt: future},
	}
	require.NoError(t, gdb.Create(&refresh).Error)

	gotAccess, gotRefresh, err := clearExpired(ctx, c)
	require.NoError(t, err)
	assert.EqualValues(t, 2, gotAccess)
	assert.EqualValues(t, 1, gotRefresh)

	var remaining int64
	require.NoError(t, gdb.Model(&oauth2adapters.AccessTokenModel{}).Count(&remaining).Error)
	assert.EqualValues(t, 1, remaining)
	require.NoError(t, gdb.Model(&oauth2adapters.RefreshTokenModel{}).Where("id = ?", "live").Count(&remaining).Error)
	assert.EqualValues(t, 1, remaining)

	// 2回目は何も削除しない
	gotAccess, gotRefresh, err = clearExpired(ctx, c)
	require.NoError(t, err)
	assert.Zero(t, gotAccess)
	assert.Zero(t, gotRefresh)
}
