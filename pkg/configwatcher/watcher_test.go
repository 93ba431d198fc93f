package configwatcher

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"lecturelab_backend/internal/config"
)

func writeConfig(t *testing.T, dir, model string) {
	t.Helper()
	content := "database:\n  driver: sqlite\n" +
		"storage:\n  local_path: " + filepath.Join(dir, "uploads") + "\n" +
		"ai:\n  model: " + model + "\n"
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func TestWatchConfigReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "first")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reloaded := make(chan *config.Config, 1)
	done := make(chan error, 1)
	go func() {
		done <- WatchConfig(ctx, dir, func(cfg *config.Config) {
			select {
			case reloaded <- cfg:
			default:
			}
		})
	}()

	// 等待 watcher 注册完成
	time.Sleep(200 * time.Millisecond)
	writeConfig(t, dir, "second")

	select {
	case cfg := <-reloaded:
		if cfg.AI.Model != "second" {
			t.Fatalf("expected reloaded model, got %q", cfg.AI.Model)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("config was not reloaded")
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("watcher returned %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not stop")
	}
}

func TestWatchConfigMissingDir(t *testing.T) {
	err := WatchConfig(context.Background(), filepath.Join(t.TempDir(), "missing"), func(*config.Config) {})
	if err == nil {
		t.Fatal("expected error for missing directory")
	}
}
