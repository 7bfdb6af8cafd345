package cache

import (
	"path/filepath"
	"testing"
	"time"
)

func openTestStore(t *testing.T, ttl time.Duration) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "cache.db"), ttl)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStoreRoundTrip(t *testing.T) {
	store := openTestStore(t, time.Hour)

	payload := []byte(`{"company":"stripe","endpoints":[]}`)
	if err := store.Put("stripe", payload); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	data, savedAt, ok, err := store.Get("stripe")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !ok {
		t.Fatal("Get returned ok=false for stored key")
	}
	if string(data) != string(payload) {
		t.Errorf("got %q, want %q", data, payload)
	}
	if savedAt.IsZero() {
		t.Error("savedAt is zero")
	}
}

func TestStoreGetMissing(t *testing.T) {
	store := openTestStore(t, time.Hour)

	_, _, ok, err := store.Get("absent")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if ok {
		t.Error("Get returned ok=true for missing key")
	}
}

func TestStoreTTLExpiry(t *testing.T) {
	store := openTestStore(t, time.Nanosecond)

	if err := store.Put("stale", []byte("data")); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	time.Sleep(time.Millisecond)

	_, _, ok, err := store.Get("stale")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if ok {
		t.Error("Get returned ok=true for expired entry")
	}
}

func TestStoreZeroTTLNeverExpires(t *testing.T) {
	store := openTestStore(t, 0)

	if err := store.Put("keep", []byte("data")); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	_, _, ok, err := store.Get("keep")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !ok {
		t.Error("entry expired despite zero TTL")
	}
}

func TestStoreOverwrite(t *testing.T) {
	store := openTestStore(t, time.Hour)

	store.Put("key", []byte("old"))
	store.Put("key", []byte("new"))

	data, _, ok, _ := store.Get("key")
	if !ok || string(data) != "new" {
		t.Errorf("got %q, want %q", data, "new")
	}
}

func TestStoreDelete(t *testing.T) {
	store := openTestStore(t, time.Hour)

	store.Put("key", []byte("data"))
	if err := store.Delete("key"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	_, _, ok, _ := store.Get("key")
	if ok {
		t.Error("key still present after Delete")
	}
}

func TestStoreKeys(t *testing.T) {
	store := openTestStore(t, time.Hour)

	for _, k := range []string{"acme", "globex", "initech"} {
		store.Put(k, []byte("data"))
	}

	keys, err := store.Keys()
	if err != nil {
		t.Fatalf("Keys failed: %v", err)
	}
	if len(keys) != 3 {
		t.Errorf("got %d keys, want 3", len(keys))
	}
}

func TestStorePrune(t *testing.T) {
	store := openTestStore(t, 50*time.Millisecond)

	store.Put("old", []byte("data"))
	time.Sleep(100 * time.Millisecond)
	store.Put("fresh", []byte("data"))

	pruned, err := store.Prune()
	if err != nil {
		t.Fatalf("Prune failed: %v", err)
	}
	if pruned != 1 {
		t.Errorf("pruned %d entries, want 1", pruned)
	}

	keys, _ := store.Keys()
	if len(keys) != 1 || keys[0] != "fresh" {
		t.Errorf("got keys %v, want [fresh]", keys)
	}
}

func TestStorePersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.db")

	store, err := Open(path, time.Hour)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	store.Put("durable", []byte("data"))
	store.Close()

	reopened, err := Open(path, time.Hour)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer reopened.Close()

	_, _, ok, _ := reopened.Get("durable")
	if !ok {
		t.Error("entry lost after reopen")
	}
}
