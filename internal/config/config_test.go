package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadDefaultsWhenMissing(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.PollInterval != 2*time.Second {
		t.Fatalf("PollInterval = %v", cfg.PollInterval)
	}
	if cfg.LogLimit != 1000 {
		t.Fatalf("LogLimit = %d", cfg.LogLimit)
	}
	if cfg.Scope != "system" || cfg.Category != "service" {
		t.Fatalf("scope/category = %q/%q", cfg.Scope, cfg.Category)
	}
	if cfg.DebugLog != "" {
		t.Fatalf("DebugLog = %q, want empty", cfg.DebugLog)
	}
}

func TestLoadOverrides(t *testing.T) {
	path := writeConfig(t, `
poll_ms = 500
log_limit = 250
scope = "user"
category = "timer"
debug_log = "/tmp/unitctl.log"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.PollInterval != 500*time.Millisecond {
		t.Fatalf("PollInterval = %v", cfg.PollInterval)
	}
	if cfg.LogLimit != 250 {
		t.Fatalf("LogLimit = %d", cfg.LogLimit)
	}
	if cfg.Scope != "user" || cfg.Category != "timer" {
		t.Fatalf("scope/category = %q/%q", cfg.Scope, cfg.Category)
	}
	if cfg.DebugLog != "/tmp/unitctl.log" {
		t.Fatalf("DebugLog = %q", cfg.DebugLog)
	}
}

func TestLoadPartialKeepsDefaults(t *testing.T) {
	path := writeConfig(t, `poll_ms = 100`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.PollInterval != 100*time.Millisecond {
		t.Fatalf("PollInterval = %v", cfg.PollInterval)
	}
	if cfg.LogLimit != 1000 || cfg.Scope != "system" {
		t.Fatalf("defaults lost: %+v", cfg)
	}
}

func TestLoadRejectsMalformedToml(t *testing.T) {
	path := writeConfig(t, `poll_ms = [broken`)
	if _, err := Load(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home dir")
	}
	got, err := expandPath("~/.config/unitctl/config.toml")
	if err != nil {
		t.Fatal(err)
	}
	want := filepath.Join(home, ".config", "unitctl", "config.toml")
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}
