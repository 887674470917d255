// Package config loads unitctl's optional TOML configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Config captures the tunable settings. A missing file yields the defaults.
type Config struct {
	// PollInterval is the live-tail cadence.
	PollInterval time.Duration
	// LogLimit bounds the initial journal fetch per unit.
	LogLimit int
	// Scope is "system" or "user".
	Scope string
	// Category is the starting unit category ("service", "timer", ...).
	Category string
	// DebugLog is a file path for diagnostic logging; empty disables it.
	DebugLog string
}

const (
	defaultConfigPath = "~/.config/unitctl/config.toml"
	defaultPollMS     = 2000
	defaultLogLimit   = 1000
)

// Load locates and parses the config file, falling back to defaults when it
// does not exist.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		PollInterval: defaultPollMS * time.Millisecond,
		LogLimit:     defaultLogLimit,
		Scope:        "system",
		Category:     "service",
	}

	bytes, err := os.ReadFile(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var raw struct {
		PollMS   int    `toml:"poll_ms"`
		LogLimit int    `toml:"log_limit"`
		Scope    string `toml:"scope"`
		Category string `toml:"category"`
		DebugLog string `toml:"debug_log"`
	}
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	if raw.PollMS > 0 {
		cfg.PollInterval = time.Duration(raw.PollMS) * time.Millisecond
	}
	if raw.LogLimit > 0 {
		cfg.LogLimit = raw.LogLimit
	}
	if scope := strings.TrimSpace(raw.Scope); scope != "" {
		cfg.Scope = scope
	}
	if category := strings.TrimSpace(raw.Category); category != "" {
		cfg.Category = category
	}
	cfg.DebugLog = mustExpand(strings.TrimSpace(raw.DebugLog))

	return cfg, nil
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	if path == "" {
		return ""
	}
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
