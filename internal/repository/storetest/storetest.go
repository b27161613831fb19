// Package storetest holds the behaviour every repository.Store must share.
package storetest

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/infinai/infinai/internal/model"
	"github.com/infinai/infinai/internal/repository"
)

// Run exercises store. Records use unique keys, so a shared database works.
func Run(t *testing.T, store repository.Store) {
	t.Helper()
	ctx := context.Background()

	t.Run("subscriber lifecycle", func(t *testing.T) {
		email := unique("lifecycle") + "@example.com"

		if _, err := store.GetSubscriberByEmail(ctx, email); !errors.Is(err, repository.ErrSubscriberNotFound) {
			t.Fatalf("expected ErrSubscriberNotFound, got %v", err)
		}

		at := time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC)
		sub := &model.Subscriber{ID: unique("sub"), Email: email, SubscribedAt: at}
		if err := store.CreateSubscriber(ctx, sub); err != nil {
			t.Fatalf("CreateSubscriber: %v", err)
		}

		got, err := store.GetSubscriberByEmail(ctx, email)
		if err != nil {
			t.Fatalf("GetSubscriberByEmail: %v", err)
		}
		if got.Email != email {
			t.Errorf("Email = %s, want %s", got.Email, email)
		}
		if !got.SubscribedAt.Equal(at) {
			t.Errorf("SubscribedAt = %s, want %s", got.SubscribedAt, at)
		}

		dup := &model.Subscriber{ID: unique("dup"), Email: email, SubscribedAt: at}
		if err := store.CreateSubscriber(ctx, dup); !errors.Is(err, repository.ErrSubscriberExists) {
			t.Errorf("expected ErrSubscriberExists, got %v", err)
		}
	})

	t.Run("concurrent duplicate subscribe", func(t *testing.T) {
		email := unique("race") + "@example.com"

		var wg sync.WaitGroup
		var mu sync.Mutex
		created, conflicts := 0, 0
		for i := 0; i < 4; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				err := store.CreateSubscriber(ctx, &model.Subscriber{
					ID:           unique(fmt.Sprintf("race-%d", i)),
					Email:        email,
					SubscribedAt: time.Now().UTC(),
				})
				mu.Lock()
				defer mu.Unlock()
				switch {
				case err == nil:
					created++
				case errors.Is(err, repository.ErrSubscriberExists):
					conflicts++
				default:
					t.Errorf("unexpected error: %v", err)
				}
			}(i)
		}
		wg.Wait()

		if created != 1 || conflicts != 3 {
			t.Errorf("expected 1 created and 3 conflicts, got %d and %d", created, conflicts)
		}
	})

	t.Run("user upsert", func(t *testing.T) {
		id := unique("user_")

		if _, err := store.GetUserByExternalID(ctx, id); !errors.Is(err, repository.ErrUserNotFound) {
			t.Fatalf("expected ErrUserNotFound, got %v", err)
		}

		first := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
		u := &model.SyncedUser{
			ExternalID: id,
			Email:      "riya@example.com",
			FirstName:  "Riya",
			Username:   "riya",
			UpdatedAt:  first,
		}
		if err := store.UpsertUser(ctx, u); err != nil {
			t.Fatalf("UpsertUser: %v", err)
		}

		before, err := store.CountUsers(ctx)
		if err != nil {
			t.Fatalf("CountUsers: %v", err)
		}

		second := first.Add(time.Hour)
		u.LastName = "Sharma"
		u.Email = "riya.sharma@example.com"
		u.UpdatedAt = second
		if err := store.UpsertUser(ctx, u); err != nil {
			t.Fatalf("second UpsertUser: %v", err)
		}

		after, err := store.CountUsers(ctx)
		if err != nil {
			t.Fatalf("CountUsers: %v", err)
		}
		if after != before {
			t.Errorf("upsert of an existing id must not add a record: %d -> %d", before, after)
		}

		got, err := store.GetUserByExternalID(ctx, id)
		if err != nil {
			t.Fatalf("GetUserByExternalID: %v", err)
		}
		if got.LastName != "Sharma" || got.Email != "riya.sharma@example.com" {
			t.Errorf("fields not replaced: %+v", got)
		}
		if !got.UpdatedAt.Equal(second) {
			t.Errorf("UpdatedAt = %s, want %s", got.UpdatedAt, second)
		}
	})

	t.Run("counts", func(t *testing.T) {
		before, err := store.CountSubscribers(ctx)
		if err != nil {
			t.Fatalf("CountSubscribers: %v", err)
		}
		if err := store.CreateSubscriber(ctx, &model.Subscriber{
			ID:           unique("count"),
			Email:        unique("count") + "@example.com",
			SubscribedAt: time.Now().UTC(),
		}); err != nil {
			t.Fatalf("CreateSubscriber: %v", err)
		}
		after, err := store.CountSubscribers(ctx)
		if err != nil {
			t.Fatalf("CountSubscribers: %v", err)
		}
		if after != before+1 {
			t.Errorf("CountSubscribers = %d, want %d", after, before+1)
		}
	})

	t.Run("ping", func(t *testing.T) {
		if err := store.Ping(ctx); err != nil {
			t.Errorf("Ping: %v", err)
		}
	})
}

func unique(prefix string) string {
	return fmt.Sprintf("%s%d", prefix, time.Now().UnixNano())
}
