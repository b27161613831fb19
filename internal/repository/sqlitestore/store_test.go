package sqlitestore

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/infinai/infinai/internal/repository/storetest"
)

func TestStore_Memory(t *testing.T) {
	store, err := Open(context.Background(), MemoryPath)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	storetest.Run(t, store)
}

func TestStore_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "infinai.db")

	store, err := Open(context.Background(), path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	storetest.Run(t, store)
	if err := store.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	// Reopening keeps the data and reapplies the schema without error.
	reopened, err := Open(context.Background(), path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	t.Cleanup(func() { _ = reopened.Close() })

	n, err := reopened.CountSubscribers(context.Background())
	if err != nil {
		t.Fatalf("CountSubscribers: %v", err)
	}
	if n == 0 {
		t.Error("expected subscribers to persist across reopen")
	}
}

func TestOpen_EmptyPath(t *testing.T) {
	if _, err := Open(context.Background(), "  "); err == nil {
		t.Fatal("expected error for empty path")
	}
}

func TestPathFromURL(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"sqlite://data/infinai.db", "data/infinai.db"},
		{"sqlite://:memory:", MemoryPath},
		{"file:infinai.db", "infinai.db"},
		{"/abs/path.db", "/abs/path.db"},
	}
	for _, tt := range tests {
		if got := PathFromURL(tt.in); got != tt.want {
			t.Errorf("PathFromURL(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
