package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/infinai/infinai/internal/metrics"
	"github.com/infinai/infinai/internal/repository"
)

func TestValidEmail(t *testing.T) {
	t.Parallel()

	tests := []struct {
		email string
		want  bool
	}{
		{"student@example.com", true},
		{"a@b", true},
		{"@", true},
		{"", false},
		{"no-at-sign", false},
		{strings.Repeat("a", 250) + "@x.io", false},
	}

	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			t.Parallel()

			if got := ValidEmail(tt.email); got != tt.want {
				t.Errorf("ValidEmail(%q) = %v, want %v", tt.email, got, tt.want)
			}
		})
	}
}

func TestSubscribe_CreatesRecord(t *testing.T) {
	t.Parallel()

	store := newStore(t)
	rec := metrics.NewInMemory()
	svc := NewSubscriptionService(store, rec)
	ctx := context.Background()

	sub, err := svc.Subscribe(ctx, "  Student@Example.COM ")
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	if sub.Email != "student@example.com" {
		t.Errorf("Email = %q, want normalized address", sub.Email)
	}
	if sub.ID == "" || sub.SubscribedAt.IsZero() {
		t.Errorf("expected id and timestamp, got %+v", sub)
	}

	got, err := store.GetSubscriberByEmail(ctx, "student@example.com")
	if err != nil {
		t.Fatalf("GetSubscriberByEmail: %v", err)
	}
	if !got.SubscribedAt.Equal(sub.SubscribedAt.Truncate(time.Millisecond)) {
		t.Errorf("stored SubscribedAt = %v, want %v", got.SubscribedAt, sub.SubscribedAt)
	}
	if rec.Snapshot().Subscriptions[metrics.StatusCreated] != 1 {
		t.Error("expected created metric")
	}
}

func TestSubscribe_Rejects(t *testing.T) {
	t.Parallel()

	store := newStore(t)
	svc := NewSubscriptionService(store, nil)
	ctx := context.Background()

	if _, err := svc.Subscribe(ctx, "taken@example.com"); err != nil {
		t.Fatalf("seed: %v", err)
	}

	tests := []struct {
		name    string
		email   string
		wantErr error
	}{
		{"empty", "", ErrInvalidEmail},
		{"whitespace", "   ", ErrInvalidEmail},
		{"missing at", "student.example.com", ErrInvalidEmail},
		{"duplicate", "taken@example.com", ErrAlreadySubscribed},
		{"duplicate different case", "TAKEN@example.com", ErrAlreadySubscribed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Subscribe(ctx, tt.email)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Subscribe(%q) error = %v, want %v", tt.email, err, tt.wantErr)
			}
		})
	}

	n, err := store.CountSubscribers(ctx)
	if err != nil {
		t.Fatalf("CountSubscribers: %v", err)
	}
	if n != 1 {
		t.Errorf("rejected signups must not write: %d records", n)
	}
}

func TestSubscribe_ConcurrentDuplicates(t *testing.T) {
	t.Parallel()

	svc := NewSubscriptionService(newStore(t), nil)

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		created   int
		conflicts int
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Subscribe(context.Background(), "race@example.com")
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				created++
			case errors.Is(err, ErrAlreadySubscribed):
				conflicts++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if created != 1 || conflicts != 7 {
		t.Errorf("created=%d conflicts=%d, want 1 and 7", created, conflicts)
	}
}

func TestSubscribe_StoreFailures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		store *failingStore
	}{
		{"lookup", &failingStore{failLookup: true}},
		{"create", &failingStore{failCreate: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			tt.store.Store = newStore(t)
			rec := metrics.NewInMemory()
			svc := NewSubscriptionService(tt.store, rec)

			_, err := svc.Subscribe(context.Background(), "student@example.com")
			if !errors.Is(err, errStoreDown) {
				t.Fatalf("expected wrapped store error, got %v", err)
			}
			if errors.Is(err, ErrAlreadySubscribed) || errors.Is(err, repository.ErrSubscriberExists) {
				t.Error("infrastructure failure must not look like a conflict")
			}
			if rec.Snapshot().Subscriptions[metrics.StatusError] != 1 {
				t.Error("expected error metric")
			}
		})
	}
}
