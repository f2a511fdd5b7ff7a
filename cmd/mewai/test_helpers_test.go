package main

import (
	"bytes"
	"context"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"mewai/internal/config"
	"mewai/internal/devserver"
	"mewai/internal/genclient"
	"mewai/internal/generation"
	"mewai/internal/testsupport"
)

type cliTestEnv struct {
	cfg        *config.Config
	server     *devserver.Server
	serviceURL string
	configPath string
	baseDir    string
}

func setupCLITestEnv(t *testing.T, step time.Duration, opts ...testsupport.ConfigOption) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	homeDir := filepath.Join(base, "home")
	if err := os.MkdirAll(homeDir, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	t.Setenv("HOME", homeDir)
	t.Setenv("XDG_STATE_HOME", "")
	t.Setenv("MEWAI_BASE_URL", "")
	t.Setenv("MEWAI_API_TOKEN", "")

	server := devserver.New(devserver.WithStep(step))
	srv := httptest.NewServer(server.Handler())
	t.Cleanup(srv.Close)

	cfg := testsupport.NewConfig(t, append([]testsupport.ConfigOption{testsupport.WithBaseURL(srv.URL)}, opts...)...)
	configPath := testsupport.WriteConfig(t, cfg)

	return &cliTestEnv{
		cfg:        cfg,
		server:     server,
		serviceURL: srv.URL,
		configPath: configPath,
		baseDir:    base,
	}
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

// startRemoteJob submits a job straight to the service, bypassing the CLI.
func (e *cliTestEnv) startRemoteJob(t *testing.T, topic string) string {
	t.Helper()
	client, err := genclient.New(e.serviceURL)
	if err != nil {
		t.Fatalf("genclient.New: %v", err)
	}
	handle, err := client.Start(context.Background(), generation.NewSettings(topic, []string{"blog", "instagram"}, "casual", "short", true))
	if err != nil {
		t.Fatalf("start job: %v", err)
	}
	return handle.ID
}

func (e *cliTestEnv) waitForRemoteStatus(t *testing.T, id string, want generation.Status) {
	t.Helper()
	client, err := genclient.New(e.serviceURL)
	if err != nil {
		t.Fatalf("genclient.New: %v", err)
	}
	waitFor(t, 5*time.Second, func() bool {
		snapshot, err := client.Status(context.Background(), id)
		return err == nil && snapshot.Status == want
	})
}

func waitFor(t *testing.T, duration time.Duration, fn func() bool) {
	t.Helper()
	deadline := time.Now().Add(duration)
	for time.Now().Before(deadline) {
		if fn() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("condition not met within %s", duration)
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
