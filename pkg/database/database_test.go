package database

import (
	"path/filepath"
	"strings"
	"testing"

	"learning_points_backend/internal/config"
	"learning_points_backend/internal/model"
)

func TestSQLiteDSN(t *testing.T) {
	dsn := SQLiteDSN("data/app.db")
	if !strings.HasPrefix(dsn, "data/app.db?") || !strings.Contains(dsn, "_txlock=immediate") || !strings.Contains(dsn, "_busy_timeout=") {
		t.Fatalf("dsn = %q", dsn)
	}
}

func TestInitDB_SQLiteStoresPointsTablesAsText(t *testing.T) {
	cfg := &config.DatabaseConfig{Driver: DriverSQLite, Path: filepath.Join(t.TempDir(), "nested", "points.db")}
	db, err := InitDB(cfg, false)
	if err != nil {
		t.Fatalf("InitDB: %v", err)
	}
	sqlDB, _ := db.DB()
	defer sqlDB.Close()

	legacy := model.NewPointsConfig(model.DefaultPointsRates())
	legacy.FinalQuizPoints = model.PointsTable("3")
	if err := db.Create(legacy).Error; err != nil {
		t.Fatalf("create: %v", err)
	}

	var storage string
	if err := db.Raw("SELECT typeof(final_quiz_points) FROM points_configs WHERE id = ?", legacy.ID).Scan(&storage).Error; err != nil {
		t.Fatalf("typeof: %v", err)
	}
	if storage != "text" {
		t.Fatalf("storage class = %q, want text", storage)
	}

	var got model.PointsConfig
	if err := db.First(&got, "id = ?", legacy.ID).Error; err != nil {
		t.Fatalf("read back: %v", err)
	}
	rates, err := got.Rates()
	if err != nil {
		t.Fatalf("Rates: %v", err)
	}
	if rates.FinalQuizPoints != (model.DifficultyPoints{Easy: 3, Intermediate: 4, Advanced: 5}) {
		t.Fatalf("final quiz points = %+v", rates.FinalQuizPoints)
	}
}

func TestDialectorFor_UnknownDriver(t *testing.T) {
	if _, err := dialectorFor(&config.DatabaseConfig{Driver: "postgres"}); err == nil {
		t.Fatal("expected error for unsupported driver")
	}
}
