package repository

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/infinai/infinai/internal/model"
)

type stubStore struct {
	closed atomic.Bool
	pings  atomic.Int32
}

func (s *stubStore) GetSubscriberByEmail(ctx context.Context, email string) (*model.Subscriber, error) {
	return nil, ErrSubscriberNotFound
}
func (s *stubStore) CreateSubscriber(ctx context.Context, sub *model.Subscriber) error { return nil }
func (s *stubStore) CountSubscribers(ctx context.Context) (int64, error)               { return 3, nil }
func (s *stubStore) UpsertUser(ctx context.Context, user *model.SyncedUser) error     { return nil }
func (s *stubStore) GetUserByExternalID(ctx context.Context, id string) (*model.SyncedUser, error) {
	return nil, ErrUserNotFound
}
func (s *stubStore) CountUsers(ctx context.Context) (int64, error) { return 0, nil }
func (s *stubStore) Ping(ctx context.Context) error {
	s.pings.Add(1)
	return nil
}
func (s *stubStore) Close() error {
	s.closed.Store(true)
	return nil
}

func TestLazy_OpensOnceUnderConcurrency(t *testing.T) {
	t.Parallel()

	var opens atomic.Int32
	release := make(chan struct{})
	store := &stubStore{}

	lazy := NewLazy(func(ctx context.Context) (Store, error) {
		opens.Add(1)
		<-release
		return store, nil
	}, time.Second)

	if lazy.Connected() {
		t.Fatal("should not connect before first use")
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := lazy.CountSubscribers(context.Background()); err != nil {
				t.Errorf("CountSubscribers: %v", err)
			}
		}()
	}

	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	if got := opens.Load(); got != 1 {
		t.Errorf("expected 1 open, got %d", got)
	}
	if !lazy.Connected() {
		t.Error("expected connection to be cached")
	}
}

func TestLazy_FailureNotCached(t *testing.T) {
	t.Parallel()

	var attempts atomic.Int32
	boom := errors.New("dial tcp: connection refused")

	lazy := NewLazy(func(ctx context.Context) (Store, error) {
		if attempts.Add(1) == 1 {
			return nil, boom
		}
		return &stubStore{}, nil
	}, time.Second)

	if err := lazy.Ping(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("expected first attempt to fail with %v, got %v", boom, err)
	}
	if err := lazy.Ping(context.Background()); err != nil {
		t.Fatalf("expected retry to succeed, got %v", err)
	}
	if attempts.Load() != 2 {
		t.Errorf("expected 2 attempts, got %d", attempts.Load())
	}
}

func TestLazy_CallerCancellationDoesNotAbortOpen(t *testing.T) {
	t.Parallel()

	lazy := NewLazy(func(ctx context.Context) (Store, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return &stubStore{}, nil
	}, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := lazy.Get(ctx); err != nil {
		t.Fatalf("open should not inherit caller cancellation: %v", err)
	}
}

func TestLazy_Close(t *testing.T) {
	t.Parallel()

	store := &stubStore{}
	lazy := NewLazy(func(ctx context.Context) (Store, error) { return store, nil }, 0)

	if err := lazy.Close(); err != nil {
		t.Fatalf("closing an unopened store should succeed: %v", err)
	}
	if store.closed.Load() {
		t.Error("unopened store must not be closed")
	}
	if _, err := lazy.CountUsers(context.Background()); !errors.Is(err, ErrStoreClosed) {
		t.Errorf("expected ErrStoreClosed after Close, got %v", err)
	}

	lazy = NewLazy(func(ctx context.Context) (Store, error) { return store, nil }, 0)
	if err := lazy.Ping(context.Background()); err != nil {
		t.Fatalf("Ping: %v", err)
	}
	if err := lazy.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if !store.closed.Load() {
		t.Error("expected underlying store to be closed")
	}
}
