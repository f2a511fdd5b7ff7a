package testsupport

import (
	"testing"

	"mewai/internal/config"
	"mewai/internal/history"
)

// MustOpenHistory opens the job archive for cfg and registers cleanup.
func MustOpenHistory(t testing.TB, cfg *config.Config) *history.Store {
	t.Helper()

	store, err := history.Open(cfg)
	if err != nil {
		t.Fatalf("history.Open: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}
