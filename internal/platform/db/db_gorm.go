// Package db はGORMによるデータベース接続とトランザクション管理を提供します。
package db

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	gmysql "gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	EngineSQLite   = "sqlite"
	EnginePostgres = "postgres"
	EngineMySQL    = "mysql"

	// defaultRetryInterval は接続リトライの間隔です。
	defaultRetryInterval = 3 * time.Second
)

// Config はデータベース接続設定です。
// URLが指定されている場合は他の接続項目より優先されます。
type Config struct {
	Engine         string        `conf:"default:sqlite"`
	URL            string        `conf:"mask"`
	Name           string        `conf:"default:shop.db"`
	User           string        `conf:"default:shop"`
	Password       string        `conf:"mask"`
	Host           string        `conf:"default:localhost"`
	Port           string
	InstanceName   string
	SSLMode        string        `conf:"default:disable"`
	RunMigrations  bool          `conf:"default:true"`
	ConnectTimeout time.Duration `conf:"default:60s"`
	MaxOpenConns   int           `conf:"default:25"`
	MaxIdleConns   int           `conf:"default:5"`
	LogQueries     bool          `conf:"default:false"`
}

// BuildDSN はエンジンごとの接続文字列を生成します。
func BuildDSN(cfg Config) string {
	if cfg.URL != "" {
		return cfg.URL
	}

	switch strings.ToLower(cfg.Engine) {
	case EnginePostgres:
		host, port := cfg.Host, cfg.Port
		if cfg.InstanceName != "" {
			host = "/cloudsql/" + cfg.InstanceName
		}
		if port == "" {
			port = "5432"
		}
		return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
			host, cfg.User, cfg.Password, cfg.Name, port, cfg.SSLMode)
	case EngineMySQL:
		if cfg.InstanceName != "" {
			return fmt.Sprintf("%s:%s@unix(/cloudsql/%s)/%s?charset=utf8mb4&parseTime=true&loc=Local",
				cfg.User, cfg.Password, cfg.InstanceName, cfg.Name)
		}
		port := cfg.Port
		if port == "" {
			port = "3306"
		}
		return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=true&loc=Local",
			cfg.User, cfg.Password, cfg.Host, port, cfg.Name)
	default:
		return cfg.Name
	}
}

// Dialector は設定に対応するGORMダイアレクタを返します。
func Dialector(cfg Config) (gorm.Dialector, error) {
	dsn := BuildDSN(cfg)
	switch strings.ToLower(cfg.Engine) {
	case EngineSQLite, "":
		return sqlite.Open(dsn), nil
	case EnginePostgres:
		return postgres.Open(dsn), nil
	case EngineMySQL:
		return gmysql.Open(dsn), nil
	default:
		return nil, fmt.Errorf("unsupported database engine %q", cfg.Engine)
	}
}

// ConnectWithRetry はopenが成功するかtimeoutを超えるまで接続を繰り返します。
func ConnectWithRetry(timeout, interval time.Duration, open func() (*gorm.DB, error)) (*gorm.DB, error) {
	deadline := time.Now().Add(timeout)
	for {
		db, err := open()
		if err == nil {
			return db, nil
		}
		if time.Now().After(deadline) {
			return nil, fmt.Errorf("db connect failed after %s: %w", timeout, err)
		}
		slog.Warn("db connect failed, retrying", "error", err, "interval", interval)
		time.Sleep(interval)
	}
}

// Open はデータベースに接続し、コネクションプールを設定します。
func Open(cfg Config) (*gorm.DB, error) {
	dialector, err := Dialector(cfg)
	if err != nil {
		return nil, err
	}

	gcfg := &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Warn),
	}
	if cfg.LogQueries {
		gcfg.Logger = logger.Default.LogMode(logger.Info)
	}

	timeout := cfg.ConnectTimeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	db, err := ConnectWithRetry(timeout, defaultRetryInterval, func() (*gorm.DB, error) {
		return gorm.Open(dialector, gcfg)
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}

	slog.Info("database connected", "engine", cfg.Engine)
	return db, nil
}

// Migrate はRunMigrationsが有効な場合にモデルをAutoMigrateします。
func Migrate(db *gorm.DB, cfg Config, models ...any) error {
	if !cfg.RunMigrations {
		return nil
	}
	if err := db.AutoMigrate(models...); err != nil {
		return fmt.Errorf("failed to migrate: %w", err)
	}
	return nil
}

// Ping はデータベースへの疎通を確認します。
func Ping(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
