package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/infinai/infinai/internal/config"
)

func TestOpen_SQLiteMemory(t *testing.T) {
	store, err := Open(context.Background(), "sqlite://:memory:", "infinai")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer store.Close()

	if err := store.Ping(context.Background()); err != nil {
		t.Errorf("Ping: %v", err)
	}
}

func TestOpen_UnknownScheme(t *testing.T) {
	_, err := Open(context.Background(), "redis://localhost:6379", "infinai")
	if !errors.Is(err, config.ErrUnknownDriver) {
		t.Fatalf("expected ErrUnknownDriver, got %v", err)
	}
}

func TestLazy_DefersConnection(t *testing.T) {
	lazy := Lazy("sqlite://:memory:", "infinai")
	if lazy.Connected() {
		t.Fatal("lazy store connected before first use")
	}

	n, err := lazy.CountUsers(context.Background())
	if err != nil {
		t.Fatalf("CountUsers: %v", err)
	}
	if n != 0 {
		t.Errorf("expected empty store, got %d users", n)
	}
	if !lazy.Connected() {
		t.Error("expected connection after first use")
	}
	_ = lazy.Close()
}
