package configwatcher

import (
	"context"
	"os"
	"path/filepath"
	"skillnest_backend/internal/config"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, dir, threshold string) {
	t.Helper()
	body := "jwt:\n  secret: dev\nstorage:\n  type: minio\nscoring:\n  pass_threshold: " + threshold + "\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(body), 0o644))
}

func TestWatchConfigReloads(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "60")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	got := make(chan *config.Config, 4)
	done := make(chan error, 1)
	go func() {
		done <- WatchConfig(ctx, dir, func(cfg *config.Config) { got <- cfg })
	}()

	// 等待监听建立
	time.Sleep(200 * time.Millisecond)
	writeConfig(t, dir, "80")

	select {
	case cfg := <-got:
		require.Equal(t, 80, cfg.Scoring.PassThreshold)
	case <-time.After(5 * time.Second):
		t.Fatal("config was not reloaded")
	}

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not stop")
	}
}

func TestWatchConfigIgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "60")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	got := make(chan *config.Config, 1)
	go WatchConfig(ctx, dir, func(cfg *config.Config) { got <- cfg })

	time.Sleep(200 * time.Millisecond)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))

	select {
	case <-got:
		t.Fatal("unexpected reload")
	case <-time.After(1500 * time.Millisecond):
	}
}

func TestWatchConfigMissingDir(t *testing.T) {
	err := WatchConfig(context.Background(), filepath.Join(t.TempDir(), "missing"), func(*config.Config) {})
	require.Error(t, err)
}
