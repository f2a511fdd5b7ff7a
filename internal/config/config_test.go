package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pelletier/go-toml/v2"

	"mewai/internal/config"
)

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv("XDG_STATE_HOME", "")
	t.Setenv("MEWAI_BASE_URL", "")
	t.Setenv("MEWAI_API_TOKEN", "")
	t.Chdir(tempHome)

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantState := filepath.Join(tempHome, ".local", "state", "mewai")
	if cfg.Paths.StateDir != wantState {
		t.Fatalf("unexpected state dir: got %q want %q", cfg.Paths.StateDir, wantState)
	}
	if cfg.Service.BaseURL != "http://127.0.0.1:8000" {
		t.Fatalf("unexpected base url: %q", cfg.Service.BaseURL)
	}
	if cfg.PollInterval() != 2*time.Second {
		t.Fatalf("unexpected poll interval: %s", cfg.PollInterval())
	}
	if cfg.RequestTimeout() != 15*time.Second {
		t.Fatalf("unexpected request timeout: %s", cfg.RequestTimeout())
	}
	if cfg.Polling.StageCount != 4 {
		t.Fatalf("unexpected stage count: %d", cfg.Polling.StageCount)
	}
	if got := strings.Join(cfg.Defaults.Platforms, ","); got != "blog,instagram,twitter,linkedin" {
		t.Fatalf("unexpected default platforms: %q", got)
	}
	if !cfg.Defaults.GenerateImages {
		t.Fatal("expected image generation enabled by default")
	}
	if !cfg.History.Enabled {
		t.Fatal("expected history enabled by default")
	}
	if cfg.HistoryPath() != filepath.Join(wantState, "history.db") {
		t.Fatalf("unexpected history path: %q", cfg.HistoryPath())
	}
}

func TestLoadCustomConfigFile(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv("MEWAI_BASE_URL", "")
	t.Setenv("MEWAI_API_TOKEN", "")

	cfg := config.Default()
	cfg.Service.BaseURL = "https://mewai.example.com/ "
	cfg.Service.RequestTimeoutSeconds = 30
	cfg.Polling.IntervalSeconds = 3
	cfg.Defaults.Tone = " Formal "
	cfg.Defaults.Platforms = []string{"Twitter", "twitter", " linkedin "}
	cfg.Defaults.GenerateImages = false
	cfg.Paths.StateDir = "~/mewai-state"
	cfg.Logging.Format = "JSON"

	configPath := filepath.Join(tempHome, "config.toml")
	file, err := os.Create(configPath)
	if err != nil {
		t.Fatalf("create config: %v", err)
	}
	if err := toml.NewEncoder(file).Encode(cfg); err != nil {
		t.Fatalf("encode config: %v", err)
	}
	if err := file.Close(); err != nil {
		t.Fatalf("close config: %v", err)
	}

	loaded, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != configPath {
		t.Fatalf("expected existing config at %q, got %q exists=%v", configPath, resolved, exists)
	}
	if loaded.Service.BaseURL != "https://mewai.example.com" {
		t.Fatalf("expected trimmed base url, got %q", loaded.Service.BaseURL)
	}
	if loaded.RequestTimeout() != 30*time.Second {
		t.Fatalf("unexpected request timeout: %s", loaded.RequestTimeout())
	}
	if loaded.PollInterval() != 3*time.Second {
		t.Fatalf("unexpected poll interval: %s", loaded.PollInterval())
	}
	if loaded.Defaults.Tone != "formal" {
		t.Fatalf("expected normalized tone, got %q", loaded.Defaults.Tone)
	}
	if got := strings.Join(loaded.Defaults.Platforms, ","); got != "twitter,linkedin" {
		t.Fatalf("expected deduplicated platforms, got %q", got)
	}
	if loaded.Defaults.GenerateImages {
		t.Fatal("expected image generation disabled")
	}
	if loaded.Paths.StateDir != filepath.Join(tempHome, "mewai-state") {
		t.Fatalf("unexpected state dir: %q", loaded.Paths.StateDir)
	}
	if loaded.Logging.Format != "json" {
		t.Fatalf("expected json log format, got %q", loaded.Logging.Format)
	}
}

func TestEnvironmentOverrides(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("MEWAI_BASE_URL", "https://env.example.com/")
	t.Setenv("MEWAI_API_TOKEN", "secret")

	cfg, _, _, err := config.Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Service.BaseURL != "https://env.example.com" {
		t.Fatalf("expected env base url, got %q", cfg.Service.BaseURL)
	}
	if cfg.Service.APIToken != "secret" {
		t.Fatalf("expected env token, got %q", cfg.Service.APIToken)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*config.Config)
		message string
	}{
		{
			name:    "poll interval too long",
			mutate:  func(c *config.Config) { c.Polling.IntervalSeconds = 60 },
			message: "polling.interval_seconds",
		},
		{
			name:    "zero stages",
			mutate:  func(c *config.Config) { c.Polling.StageCount = -1 },
			message: "polling.stage_count",
		},
		{
			name:    "unknown tone",
			mutate:  func(c *config.Config) { c.Defaults.Tone = "snarky" },
			message: "defaults.tone",
		},
		{
			name:    "unknown platform",
			mutate:  func(c *config.Config) { c.Defaults.Platforms = []string{"myspace"} },
			message: "defaults.platforms",
		},
		{
			name:    "non-http base url",
			mutate:  func(c *config.Config) { c.Service.BaseURL = "ftp://example.com" },
			message: "service.base_url",
		},
		{
			name:    "relative ntfy topic",
			mutate:  func(c *config.Config) { c.Notifications.NtfyTopic = "my-topic" },
			message: "notifications.ntfy_topic",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.message) {
				t.Fatalf("expected %q in error, got %v", tt.message, err)
			}
		})
	}
}

func TestCreateSampleProducesLoadableConfig(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("MEWAI_BASE_URL", "")
	target := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(target); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	cfg, _, exists, err := config.Load(target)
	if err != nil {
		t.Fatalf("Load sample: %v", err)
	}
	if !exists {
		t.Fatal("expected sample config to exist")
	}
	if cfg.Polling.IntervalSeconds != 2 {
		t.Fatalf("unexpected sample interval: %d", cfg.Polling.IntervalSeconds)
	}
}

func TestEnsureDirectoriesCreatesLockDir(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.StateDir = filepath.Join(t.TempDir(), "state")
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}
	if info, err := os.Stat(cfg.LockDir()); err != nil || !info.IsDir() {
		t.Fatalf("expected lock dir, err=%v", err)
	}
}
