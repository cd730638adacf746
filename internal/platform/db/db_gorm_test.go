package db

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// TestBuildDSN はエンジンごとのDSN文字列が正しく生成されることを検証します。
func TestBuildDSN(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		cfg  Config
		want string
	}{
		{
			name: "sqlite uses name as path",
			cfg:  Config{Engine: EngineSQLite, Name: "shop.db"},
			want: "shop.db",
		},
		{
			name: "url takes precedence",
			cfg:  Config{Engine: EnginePostgres, URL: "postgres://u:p@db:5432/shop", Host: "ignored"},
			want: "postgres://u:p@db:5432/shop",
		},
		{
			name: "postgres tcp with default port",
			cfg:  Config{Engine: EnginePostgres, User: "u", Password: "p", Name: "shop", Host: "db", SSLMode: "disable"},
			want: "host=db user=u password=p dbname=shop port=5432 sslmode=disable",
		},
		{
			name: "postgres cloud sql socket",
			cfg:  Config{Engine: EnginePostgres, User: "u", Password: "p", Name: "shop", Host: "db", InstanceName: "proj:region:inst", SSLMode: "disable"},
			want: "host=/cloudsql/proj:region:inst user=u password=p dbname=shop port=5432 sslmode=disable",
		},
		{
			name: "mysql tcp",
			cfg:  Config{Engine: EngineMySQL, User: "testuser", Password: "testpass", Name: "testdb", Host: "localhost", Port: "3306"},
			want: "testuser:testpass@tcp(localhost:3306)/testdb?charset=utf8mb4&parseTime=true&loc=Local",
		},
		{
			name: "mysql cloud sql takes precedence over host",
			cfg:  Config{Engine: EngineMySQL, User: "testuser", Password: "testpass", Name: "testdb", Host: "localhost", Port: "3306", InstanceName: "project:region:instance"},
			want: "testuser:testpass@unix(/cloudsql/project:region:instance)/testdb?charset=utf8mb4&parseTime=true&loc=Local",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, BuildDSN(tt.cfg))
		})
	}
}

func TestDialector_UnsupportedEngine(t *testing.T) {
	t.Parallel()

	_, err := Dialector(Config{Engine: "oracle"})
	assert.Error(t, err)

	d, err := Dialector(Config{Engine: EngineSQLite, Name: ":memory:"})
	require.NoError(t, err)
	assert.Equal(t, "sqlite", d.Name())
}

// TestConnectWithRetry_SuccessOnFirstTry は初回接続成功時にリトライせずDBを返すことを検証します。
func TestConnectWithRetry_SuccessOnFirstTry(t *testing.T) {
	t.Parallel()

	mockDB := &gorm.DB{}
	calls := 0
	db, err := ConnectWithRetry(time.Second, time.Millisecond, func() (*gorm.DB, error) {
		calls++
		return mockDB, nil
	})

	require.NoError(t, err)
	assert.Same(t, mockDB, db)
	assert.Equal(t, 1, calls)
}

// TestConnectWithRetry_SuccessAfterFailures は数回失敗した後に接続できることを検証します。
func TestConnectWithRetry_SuccessAfterFailures(t *testing.T) {
	t.Parallel()

	mockDB := &gorm.DB{}
	calls := 0
	db, err := ConnectWithRetry(time.Second, time.Millisecond, func() (*gorm.DB, error) {
		calls++
		if calls < 3 {
			return nil, errors.New("connection refused")
		}
		return mockDB, nil
	})

	require.NoError(t, err)
	assert.Same(t, mockDB, db)
	assert.Equal(t, 3, calls)
}

// TestConnectWithRetry_Timeout はタイムアウト後に最後のエラーを返すことを検証します。
func TestConnectWithRetry_Timeout(t *testing.T) {
	t.Parallel()

	wantErr := errors.New("connection refused")
	db, err := ConnectWithRetry(10*time.Millisecond, 2*time.Millisecond, func() (*gorm.DB, error) {
		return nil, wantErr
	})

	assert.Nil(t, db)
	assert.ErrorIs(t, err, wantErr)
}

func TestOpen_SQLiteMemory(t *testing.T) {
	t.Parallel()

	db, err := Open(Config{Engine: EngineSQLite, Name: ":memory:", MaxOpenConns: 1, ConnectTimeout: time.Second})
	require.NoError(t, err)

	type widget struct {
		ID   uint
		Name string
	}
	require.NoError(t, Migrate(db, Config{RunMigrations: true}, &widget{}))
	assert.True(t, db.Migrator().HasTable(&widget{}))
	assert.NoError(t, Ping(t.Context(), db))
}
