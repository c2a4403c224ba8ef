package database

import (
	"fmt"
	"learning_points_backend/internal/config"
	"learning_points_backend/internal/model"
	"log"
	"os"
	"path/filepath"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	DriverMySQL  = "mysql"
	DriverSQLite = "sqlite"
)

func InitDB(cfg *config.DatabaseConfig, debug bool) (*gorm.DB, error) {
	dialector, err := dialectorFor(cfg)
	if err != nil {
		return nil, err
	}

	logLevel := logger.Warn
	if debug {
		logLevel = logger.Info
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:                                   logger.Default.LogMode(logLevel),
		DisableForeignKeyConstraintWhenMigrating: true,
		NowFunc:                                  func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, err
	}

	log.Println("Database connection established")

	if err := AutoMigrate(db); err != nil {
		return nil, err
	}

	log.Println("Database migration completed")
	return db, nil
}

func dialectorFor(cfg *config.DatabaseConfig) (gorm.Dialector, error) {
	switch cfg.Driver {
	case "", DriverMySQL:
		dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=%t&loc=UTC",
			cfg.User,
			cfg.Password,
			cfg.Host,
			cfg.Port,
			cfg.DBName,
			cfg.Charset,
			cfg.ParseTime,
		)
		return mysql.Open(dsn), nil
	case DriverSQLite:
		path := cfg.Path
		if path == "" {
			path = "data/learning_points.db"
		}
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, err
			}
		}
		return sqlite.Open(SQLiteDSN(path)), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

// SQLiteDSN 写事务以 BEGIN IMMEDIATE 开始，并发写入在 busy_timeout 内排队
func SQLiteDSN(path string) string {
	return path + "?_busy_timeout=5000&_txlock=immediate"
}

// AutoMigrate 同步所有积分/等级相关表结构
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.User{},
		&model.PointsGainRecord{},
		&model.UserScore{},
		&model.AttemptLedger{},
		&model.AttemptRecord{},
		&model.LevelThreshold{},
		&model.PointsConfig{},
		&model.ReadingState{},
	)
}
