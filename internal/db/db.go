package db

import (
	"fmt"
	"time"

	"inkwell/internal/config"
	"inkwell/internal/logger"
	"inkwell/internal/models"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

var DB *gorm.DB

// Init 打开数据库、迁移表结构并安装计数触发器，结果保存在全局 DB 中
func Init(cfg config.DatabaseConfig) error {
	conn, err := Open(cfg)
	if err != nil {
		return err
	}
	if err := Migrate(conn); err != nil {
		return err
	}
	DB = conn
	return nil
}

// Open 按 driver 选择方言。TranslateError 打开后唯一约束冲突会变成
// gorm.ErrDuplicatedKey，外键冲突会变成 gorm.ErrForeignKeyViolated。
func Open(cfg config.DatabaseConfig) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case "postgres", "":
		dialector = postgres.Open(cfg.DSN)
	case "sqlite":
		dialector = sqlite.Open(cfg.DSN)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	conn, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger: &zapLogger{
			Logger: logger.L(),
			Config: gormLogger.Config{
				LogLevel:                  parseLevel(cfg.LogLevel),
				IgnoreRecordNotFoundError: true,
				SlowThreshold:             500 * time.Millisecond,
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	pool, err := conn.DB()
	if err != nil {
		return nil, err
	}
	if cfg.Driver == "sqlite" {
		// SQLite 单写者，避免并发写时 database is locked
		pool.SetMaxOpenConns(1)
	} else {
		pool.SetMaxOpenConns(30)
		pool.SetMaxIdleConns(15)
	}

	logger.Info("Database connection established", zap.String("driver", conn.Dialector.Name()))
	return conn, nil
}

// Migrate 自动迁移并安装触发器，可重复执行
func Migrate(conn *gorm.DB) error {
	err := conn.AutoMigrate(
		&models.User{},
		&models.Article{},
		&models.Comment{},
		&models.Like{},
		&models.Bookmark{},
		&models.Notification{},
	)
	if err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}
	if err := installTriggers(conn); err != nil {
		return fmt.Errorf("install triggers: %w", err)
	}
	logger.Info("Database migration completed")
	return nil
}

func parseLevel(level string) gormLogger.LogLevel {
	switch level {
	case "silent":
		return gormLogger.Silent
	case "error", "fatal", "panic":
		return gormLogger.Error
	case "debug", "info":
		return gormLogger.Info
	default:
		return gormLogger.Warn
	}
}
