package storage

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func setupJSONStore(t *testing.T) *JSONStore {
	t.Helper()
	store := NewJSONStore(filepath.Join(t.TempDir(), "nested", "habitquest.json"))
	if err := store.Init(); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	return store
}

func TestJSONStoreRoundTrip(t *testing.T) {
	store := setupJSONStore(t)

	if err := store.Put("habits", []byte(`[{"id":"a"}]`)); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	reopened := NewJSONStore(store.GetConfigPath())
	if err := reopened.Load(); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	got, err := reopened.Get("habits")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if string(got) != `[{"id":"a"}]` {
		t.Errorf("Get() = %s", got)
	}
}

func TestJSONStoreMissingKey(t *testing.T) {
	store := setupJSONStore(t)

	if _, err := store.Get("nope"); !errors.Is(err, ErrKeyNotFound) {
		t.Errorf("Get() error = %v, want ErrKeyNotFound", err)
	}
}

func TestJSONStoreDelete(t *testing.T) {
	store := setupJSONStore(t)

	if err := store.Put("k", []byte("v")); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if err := store.Delete("k"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := store.Get("k"); !errors.Is(err, ErrKeyNotFound) {
		t.Errorf("Get() after Delete error = %v, want ErrKeyNotFound", err)
	}
	if err := store.Delete("k"); err != nil {
		t.Errorf("Delete() of an absent key = %v, want nil", err)
	}
}

func TestJSONStoreLoadUninitialized(t *testing.T) {
	store := NewJSONStore(filepath.Join(t.TempDir(), "missing.json"))
	err := store.Load()
	if err == nil || !strings.Contains(err.Error(), "not initialized") {
		t.Errorf("Load() error = %v, want not initialized", err)
	}
}

func TestJSONStoreInitKeepsExistingData(t *testing.T) {
	store := setupJSONStore(t)
	if err := store.Put("k", []byte("v")); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	again := NewJSONStore(store.GetConfigPath())
	if err := again.Init(); err != nil {
		t.Fatalf("second Init() error = %v", err)
	}
	if got, err := again.Get("k"); err != nil || string(got) != "v" {
		t.Errorf("Get() after re-init = %q, %v", got, err)
	}
}

func TestJSONStoreCorruptFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "corrupt.json")
	if err := os.WriteFile(path, []byte("{not json"), 0600); err != nil {
		t.Fatalf("write: %v", err)
	}

	store := NewJSONStore(path)
	if err := store.Load(); err != nil {
		t.Fatalf("Load() of a corrupt file error = %v, want fallback", err)
	}

	habits, profile := NewSnapshot(store, "ada").Load()
	if len(habits) != 0 || profile.Level != 1 || profile.Experience != 0 {
		t.Errorf("Load() = %d habits, level %d xp %d, want defaults", len(habits), profile.Level, profile.Experience)
	}
	if err := store.Put("k", []byte("v")); err != nil {
		t.Errorf("Put() after recovery error = %v", err)
	}

	matches, err := filepath.Glob(filepath.Join(dir, "corrupt.json.corrupt-*"))
	if err != nil || len(matches) != 1 {
		t.Fatalf("corrupt copies = %v, %v, want one", matches, err)
	}
	if kept, _ := os.ReadFile(matches[0]); string(kept) != "{not json" {
		t.Errorf("moved aside content = %q", kept)
	}

	reopened := NewJSONStore(path)
	if err := reopened.Load(); err != nil {
		t.Fatalf("Load() after recovery error = %v", err)
	}
	if got, err := reopened.Get("k"); err != nil || string(got) != "v" {
		t.Errorf("Get() after recovery = %q, %v", got, err)
	}
}

func TestJSONStoreNotLoaded(t *testing.T) {
	store := NewJSONStore(filepath.Join(t.TempDir(), "x.json"))
	if _, err := store.Get("k"); err == nil {
		t.Error("Get() before Load should fail")
	}
	if err := store.Put("k", nil); err == nil {
		t.Error("Put() before Load should fail")
	}
}

func TestJSONStoreFilePermissions(t *testing.T) {
	store := setupJSONStore(t)
	info, err := os.Stat(store.GetConfigPath())
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("file mode = %o, want 600", perm)
	}
}
