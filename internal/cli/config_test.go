package cli

import (
	"os"
	"path/filepath"
	"testing"
)

func TestConfigRoundtrip(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg, err := loadConfig()
	if err != nil {
		t.Fatalf("load missing config: %v", err)
	}
	if cfg.ServerURL != "" || cfg.Token != "" {
		t.Errorf("expected zero config, got %+v", cfg)
	}

	cfg.ServerURL = "https://rt.example.com"
	cfg.Token = "tok123"
	if err := saveConfig(cfg); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := loadConfig()
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if got.ServerURL != "https://rt.example.com" || got.Token != "tok123" {
		t.Errorf("reloaded = %+v", got)
	}

	path, err := configPath()
	if err != nil {
		t.Fatalf("config path: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Errorf("config mode = %v, want 0600", info.Mode().Perm())
	}
	if filepath.Base(path) != "config.yaml" {
		t.Errorf("path = %s", path)
	}
}

func TestGetServerURLPrecedence(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("RT_SERVER_URL", "")

	if got := getServerURL(); got != "http://localhost:8080" {
		t.Errorf("default = %q", got)
	}

	if err := saveConfig(CLIConfig{ServerURL: "https://cfg.example.com"}); err != nil {
		t.Fatalf("save: %v", err)
	}
	if got := getServerURL(); got != "https://cfg.example.com" {
		t.Errorf("from config = %q", got)
	}

	t.Setenv("RT_SERVER_URL", "https://env.example.com")
	if got := getServerURL(); got != "https://env.example.com" {
		t.Errorf("from env = %q", got)
	}
}

func TestGetTokenFromEnv(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("RT_TOKEN", "env-token")

	if got := getToken(); got != "env-token" {
		t.Errorf("token = %q", got)
	}
}
