package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestConfigInitAndValidate(t *testing.T) {
	env := setupCLITestEnv(t, time.Hour)

	out, _, err := runCLI(t, []string{"config", "validate"}, env.configPath)
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	requireContains(t, out, "Configuration valid")
	requireContains(t, out, env.serviceURL)

	target := filepath.Join(t.TempDir(), "config.toml")
	out, _, err = runCLI(t, []string{"config", "init", "--path", target}, env.configPath)
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config file at %s: %v", target, err)
	}

	if _, _, err := runCLI(t, []string{"config", "init", "--path", target}, env.configPath); err == nil {
		t.Fatal("expected error when config already exists")
	}
	if _, _, err := runCLI(t, []string{"config", "init", "--path", target, "--overwrite"}, env.configPath); err != nil {
		t.Fatalf("config init --overwrite: %v", err)
	}
}

func TestConfigShowRedactsToken(t *testing.T) {
	env := setupCLITestEnv(t, time.Hour)
	t.Setenv("MEWAI_API_TOKEN", "secret-token")

	out, _, err := runCLI(t, []string{"--base-url", "http://127.0.0.1:9/", "config", "show"}, env.configPath)
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	requireContains(t, out, "[service]")
	requireContains(t, out, "http://127.0.0.1:9")
	requireContains(t, out, redacted)
	if strings.Contains(out, "secret-token") {
		t.Fatalf("expected token to be redacted:\n%s", out)
	}
}

func TestConfigValidateReportsErrors(t *testing.T) {
	env := setupCLITestEnv(t, time.Hour)
	bad := filepath.Join(t.TempDir(), "bad.toml")
	if err := os.WriteFile(bad, []byte("[polling]\ninterval_seconds = 99\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	_, _, err := runCLI(t, []string{"config", "validate"}, bad)
	if err == nil {
		t.Fatal("expected validation error")
	}
	requireContains(t, err.Error(), "polling.interval_seconds")
	_ = env
}

func TestDoctorReportsChecks(t *testing.T) {
	env := setupCLITestEnv(t, time.Hour)

	out, _, err := runCLI(t, []string{"doctor"}, env.configPath)
	if err != nil {
		t.Fatalf("doctor: %v\n%s", err, out)
	}
	requireContains(t, out, "State directory")
	requireContains(t, out, "Generation service")
	requireContains(t, out, "History database")

	out, _, err = runCLI(t, []string{"--base-url", "http://127.0.0.1:1", "doctor"}, env.configPath)
	if err == nil {
		t.Fatalf("expected doctor failure for unreachable service:\n%s", out)
	}
	requireContains(t, out, "[ERROR]")
}

func TestTestNotifyRequiresTopic(t *testing.T) {
	env := setupCLITestEnv(t, time.Hour)
	_, _, err := runCLI(t, []string{"test-notify"}, env.configPath)
	if err == nil {
		t.Fatal("expected error without ntfy topic")
	}
	requireContains(t, err.Error(), "ntfy topic not configured")
}
