package testsupport

import (
	"testing"

	"silencescan/internal/config"
	"silencescan/internal/scanstore"
)

// MustOpenStore opens the scan store under cfg's state directory and
// registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *scanstore.Store {
	t.Helper()

	store, err := scanstore.Open(cfg.StateDBPath())
	if err != nil {
		t.Fatalf("scanstore.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}
