package configwatcher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"learning_points_backend/internal/config"
)

const baseConfig = `
server:
  port: "8080"
  mode: debug
jwt:
  secret: test-secret
progression:
  apply_streak_bonus: %s
`

func writeConfig(t *testing.T, path, bonus string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(fmt.Sprintf(baseConfig, bonus)), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func TestWatchConfig_ReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	writeConfig(t, path, "false")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reloaded := make(chan *config.Config, 1)
	done := make(chan error, 1)
	go func() {
		done <- WatchConfig(ctx, path, func(cfg *config.Config) {
			select {
			case reloaded <- cfg:
			default:
			}
		})
	}()

	// 等待监听建立
	time.Sleep(200 * time.Millisecond)
	writeConfig(t, path, "true")

	select {
	case cfg := <-reloaded:
		if !cfg.Progression.ApplyStreakBonus {
			t.Fatal("expected reloaded config to enable the streak bonus")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("config was not reloaded")
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("WatchConfig returned %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not stop after cancel")
	}
}
