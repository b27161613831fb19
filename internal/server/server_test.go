package server

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"testing"
	"time"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRun_ServesAndShutsDownInReverseOrder(t *testing.T) {
	t.Parallel()

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "ok")
	})
	srv := New(handler, Options{ShutdownTimeout: 5 * time.Second}, discardLogger())

	var mu sync.Mutex
	var order []string
	record := func(name string) ShutdownFunc {
		return func(context.Context) error {
			mu.Lock()
			defer mu.Unlock()
			order = append(order, name)
			return nil
		}
	}
	srv.OnShutdown("store", record("store"))
	srv.OnShutdown("scheduler", record("scheduler"))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx) }()

	select {
	case <-srv.Ready():
	case <-time.After(5 * time.Second):
		t.Fatal("server did not start")
	}

	_, port, err := net.SplitHostPort(srv.Addr())
	if err != nil {
		t.Fatalf("SplitHostPort(%q): %v", srv.Addr(), err)
	}
	resp, err := http.Get("http://127.0.0.1:" + port + "/")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if string(body) != "ok" {
		t.Errorf("body = %q, want ok", body)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run() error = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}

	mu.Lock()
	defer mu.Unlock()
	if len(order) != 2 || order[0] != "scheduler" || order[1] != "store" {
		t.Errorf("shutdown order = %v, want [scheduler store]", order)
	}
}

func TestRun_ReportsComponentErrors(t *testing.T) {
	t.Parallel()

	srv := New(http.NotFoundHandler(), Options{ShutdownTimeout: time.Second}, discardLogger())
	errBoom := errors.New("boom")
	srv.OnShutdown("cache", func(context.Context) error { return errBoom })

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := srv.Run(ctx); !errors.Is(err, errBoom) {
		t.Errorf("Run() error = %v, want %v", err, errBoom)
	}
}

func TestRun_ListenError(t *testing.T) {
	t.Parallel()

	srv := New(http.NotFoundHandler(), Options{Port: -1}, discardLogger())
	if err := srv.Run(context.Background()); err == nil {
		t.Error("Run() should fail for an invalid port")
	}
}
