package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return dir
}

func TestLoadConfig_AppliesDefaults(t *testing.T) {
	dir := writeConfig(t, `
server:
  mode: debug
database:
  driver: sqlite
  path: test.db
jwt:
  secret: short
`)

	cfg, err := LoadConfig(dir)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Server.Port != "8080" {
		t.Errorf("Server.Port = %q, want 8080", cfg.Server.Port)
	}
	if cfg.Database.Driver != "sqlite" {
		t.Errorf("Database.Driver = %q, want sqlite", cfg.Database.Driver)
	}
	if cfg.JWT.ExpireTime != 24*time.Hour {
		t.Errorf("JWT.ExpireTime = %v, want 24h", cfg.JWT.ExpireTime)
	}
	if cfg.Progression.LeaderboardDefaultLimit != 10 || cfg.Progression.LeaderboardMaxLimit != 100 {
		t.Errorf("leaderboard limits = %d/%d, want 10/100",
			cfg.Progression.LeaderboardDefaultLimit, cfg.Progression.LeaderboardMaxLimit)
	}
	if cfg.Progression.ApplyStreakBonus {
		t.Error("ApplyStreakBonus should default to false")
	}
}

func TestLoadConfig_ReleaseModeRequiresLongSecret(t *testing.T) {
	dir := writeConfig(t, `
server:
  mode: release
jwt:
  secret: short
`)

	if _, err := LoadConfig(dir); err == nil {
		t.Fatal("expected error for short JWT secret in release mode")
	}
}

func TestLoadConfig_ClampsLeaderboardMax(t *testing.T) {
	dir := writeConfig(t, `
progression:
  leaderboard_default_limit: 25
  leaderboard_max_limit: 5
`)

	cfg, err := LoadConfig(dir)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Progression.LeaderboardMaxLimit != 25 {
		t.Errorf("LeaderboardMaxLimit = %d, want 25", cfg.Progression.LeaderboardMaxLimit)
	}
}
