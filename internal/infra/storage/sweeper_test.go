package storage_test

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"calmmate/internal/infra/storage"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func putWithAge(t *testing.T, store *storage.Store, age time.Duration) string {
	t.Helper()
	id, err := store.Put([]byte("audio"), "webm")
	if err != nil {
		t.Fatalf("Put error: %v", err)
	}
	mtime := time.Now().Add(-age)
	if err := os.Chtimes(store.PathFor(id), mtime, mtime); err != nil {
		t.Fatal(err)
	}
	return id
}

func TestSweeper_DeletesOnlyExpired(t *testing.T) {
	store, err := storage.NewStore(t.TempDir(), "webm")
	if err != nil {
		t.Fatalf("NewStore error: %v", err)
	}

	fresh := putWithAge(t, store, 10*time.Hour)
	expired1 := putWithAge(t, store, 30*time.Hour)
	almost := putWithAge(t, store, 23*time.Hour+54*time.Minute)
	expired2 := putWithAge(t, store, 25*time.Hour)

	sweeper := storage.NewSweeper(24*time.Hour, testLogger())
	deleted, failed := sweeper.Sweep(store)

	if deleted != 2 {
		t.Errorf("deleted: got %d, want 2", deleted)
	}
	if failed != 0 {
		t.Errorf("failed: got %d, want 0", failed)
	}

	for _, id := range []string{fresh, almost} {
		if !store.Exists(id) {
			t.Errorf("artifact %s should survive the sweep", id)
		}
	}
	for _, id := range []string{expired1, expired2} {
		if store.Exists(id) {
			t.Errorf("artifact %s should be swept", id)
		}
	}
}

func TestSweeper_SkipsDirectories(t *testing.T) {
	dir := t.TempDir()
	store, err := storage.NewStore(dir, "webm")
	if err != nil {
		t.Fatalf("NewStore error: %v", err)
	}

	if err := os.Mkdir(filepath.Join(dir, "nested"), 0755); err != nil {
		t.Fatal(err)
	}
	putWithAge(t, store, 48*time.Hour)

	sweeper := storage.NewSweeper(24*time.Hour, testLogger())
	deleted, failed := sweeper.Sweep(store)

	if deleted != 1 {
		t.Errorf("deleted: got %d, want 1", deleted)
	}
	if failed != 0 {
		t.Errorf("failed: got %d, want 0", failed)
	}

	if _, err := os.Stat(filepath.Join(dir, "nested")); err != nil {
		t.Error("directory entry should be left alone")
	}
}

func TestSweeper_EmptyStore(t *testing.T) {
	store, err := storage.NewStore(t.TempDir(), "webm")
	if err != nil {
		t.Fatalf("NewStore error: %v", err)
	}

	sweeper := storage.NewSweeper(24*time.Hour, testLogger())
	if deleted, failed := sweeper.Sweep(store); deleted != 0 || failed != 0 {
		t.Errorf("got (%d, %d), want (0, 0)", deleted, failed)
	}
}
