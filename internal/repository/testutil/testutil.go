package testutil

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"learning_points_backend/internal/model"
	"learning_points_backend/pkg/database"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

// DB 为每个测试创建独立的 SQLite 数据库文件
func DB(tb testing.TB) *gorm.DB {
	tb.Helper()

	path := filepath.Join(tb.TempDir(), "test.db")
	db, err := gorm.Open(sqlite.Open(database.SQLiteDSN(path)), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
		Logger:                                   gormLogger.Default.LogMode(gormLogger.Silent),
		NowFunc:                                  func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		tb.Fatalf("open test db: %v", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		tb.Fatalf("migrate test db: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		tb.Fatalf("sql db: %v", err)
	}
	tb.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

func SeedUser(tb testing.TB, db *gorm.DB, username string) *model.User {
	tb.Helper()
	u := &model.User{
		Name:     username,
		Username: username,
		Email:    fmt.Sprintf("%s@example.com", username),
		Password: "pw",
		Role:     model.Student,
	}
	if err := db.WithContext(context.Background()).Create(u).Error; err != nil {
		tb.Fatalf("seed user: %v", err)
	}
	return u
}

func SeedScore(tb testing.TB, db *gorm.DB, userID uint, score int, createdAt time.Time) *model.UserScore {
	tb.Helper()
	s := &model.UserScore{UserID: userID, Score: score, CreatedAt: createdAt, UpdatedAt: createdAt}
	if err := db.Create(s).Error; err != nil {
		tb.Fatalf("seed score: %v", err)
	}
	return s
}

func SeedLevels(tb testing.TB, db *gorm.DB, levels ...model.LevelThreshold) {
	tb.Helper()
	for i := range levels {
		if err := db.Create(&levels[i]).Error; err != nil {
			tb.Fatalf("seed level %d: %v", levels[i].Level, err)
		}
	}
}

func PtrTime(v time.Time) *time.Time { return &v }
