package testsupport

import (
	"testing"

	"dubber/internal/config"
	"dubber/internal/jobs"
	"dubber/internal/prefs"
)

// MustOpenStore opens a jobs.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *jobs.Store {
	t.Helper()

	store, err := jobs.Open(cfg)
	if err != nil {
		t.Fatalf("jobs.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// MustOpenPrefs wires a preferences store onto the job store's database.
func MustOpenPrefs(t testing.TB, store *jobs.Store, cfg *config.Config) *prefs.Store {
	t.Helper()

	prefStore, err := prefs.New(store.DB(), cfg)
	if err != nil {
		t.Fatalf("prefs.New: %v", err)
	}
	return prefStore
}
