package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/framecheck/framecheck/internal/domain/model"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	r := NewConfigRepository()

	cfg, err := r.Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	defaults := model.NewConfig()
	if cfg.Server != defaults.Server {
		t.Errorf("Server = %+v, want %+v", cfg.Server, defaults.Server)
	}
	if cfg.Probe != defaults.Probe {
		t.Errorf("Probe = %+v, want %+v", cfg.Probe, defaults.Probe)
	}
}

func TestLoadPartialFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "log_level: debug\nserver:\n  base_dir: /srv/files\nprobe:\n  timeout: 750ms\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := NewConfigRepository().Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.LogLevel != model.LogLevelDebug {
		t.Errorf("LogLevel = %s", cfg.LogLevel)
	}
	if cfg.Server.BaseDir != "/srv/files" {
		t.Errorf("BaseDir = %s", cfg.Server.BaseDir)
	}
	if cfg.Server.ListenAddress != ":9090" {
		t.Errorf("ListenAddress = %s, want default", cfg.Server.ListenAddress)
	}
	if cfg.Probe.Timeout != 750*time.Millisecond {
		t.Errorf("Probe.Timeout = %s", cfg.Probe.Timeout)
	}
	if cfg.Server.BufferSize != model.DefaultBufferSize {
		t.Errorf("BufferSize = %d", cfg.Server.BufferSize)
	}
}

func TestLoadEnvironmentOverride(t *testing.T) {
	t.Setenv("FRAMECHECK_SERVER_LISTEN_ADDRESS", "127.0.0.1:18080")

	cfg, err := NewConfigRepository().Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.ListenAddress != "127.0.0.1:18080" {
		t.Errorf("ListenAddress = %s", cfg.Server.ListenAddress)
	}
}

func TestLoadRejectsBadBufferSize(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("server:\n  buffer_size: 0\n"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := NewConfigRepository().Load(path); err == nil {
		t.Error("Load() error = nil, want buffer size error")
	}
}

func TestSaveThenLoad(t *testing.T) {
	r := NewConfigRepository()
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := model.NewConfig()
	cfg.Server.BaseDir = "/var/www"
	cfg.Server.MaxConnections = 32
	cfg.Probe.Timeout = 2 * time.Second
	cfg.Feed.Address = ":9191"

	if err := r.Save(cfg, path); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, err := r.Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded.Server != cfg.Server || loaded.Probe != cfg.Probe || loaded.Feed != cfg.Feed {
		t.Errorf("loaded = %+v, want %+v", loaded, cfg)
	}
}
