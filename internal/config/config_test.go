package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestLoadSeedsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !reflect.DeepEqual(cfg, Default()) {
		t.Fatalf("expected defaults, got %+v", cfg)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected defaults to be saved: %v", err)
	}

	again, err := Load(path)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if !reflect.DeepEqual(cfg, again) {
		t.Fatalf("reloaded config differs: %+v", again)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := `endpoint: 127.0.0.1:5000
storage:
  backend: badger
  path: /tmp/settings.db
nativeMessaging:
  allowedOrigins:
    - chrome-extension://abc/
`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Endpoint != "127.0.0.1:5000" || cfg.Storage.Backend != "badger" || cfg.Storage.Path != "/tmp/settings.db" {
		t.Fatalf("unexpected config %+v", cfg)
	}
	if cfg.Log.Level != "info" {
		t.Fatalf("expected default log level to survive, got %q", cfg.Log.Level)
	}
	if len(cfg.NativeMessaging.AllowedOrigins) != 1 || cfg.NativeMessaging.HostName != "com.example.vaultdesk" {
		t.Fatalf("unexpected native messaging config %+v", cfg.NativeMessaging)
	}
}

func TestLoadRejectsUnknownFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("endpoint: 127.0.0.1:1\nbogus: true\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Load(path); err == nil || !strings.Contains(err.Error(), "bogus") {
		t.Fatalf("expected unknown field error, got %v", err)
	}
}

func TestLoadRejectsInvalidBackend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("storage:\n  backend: sqlite\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("expected invalid backend error")
	}
}

func TestPathHonoursEnv(t *testing.T) {
	custom := filepath.Join(t.TempDir(), "custom.yaml")
	t.Setenv("VAULTDESK_CONFIG_PATH", custom)
	got, err := Path()
	if err != nil || got != custom {
		t.Fatalf("expected %s, got %s (%v)", custom, got, err)
	}

	if _, err := Load(""); err != nil {
		t.Fatalf("Load via env path: %v", err)
	}
	if _, err := os.Stat(custom); err != nil {
		t.Fatalf("expected config at env path: %v", err)
	}
}
