package service

import (
	"context"
	"errors"
	"testing"

	"github.com/infinai/infinai/internal/model"
	"github.com/infinai/infinai/internal/repository"
	"github.com/infinai/infinai/internal/repository/sqlitestore"
)

var errStoreDown = errors.New("store down")

func newStore(t *testing.T) *sqlitestore.Store {
	t.Helper()

	store, err := sqlitestore.Open(context.Background(), sqlitestore.MemoryPath)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

// failingStore fails the operations named in its fields.
type failingStore struct {
	repository.Store
	failLookup bool
	failCreate bool
	failUpsert bool
	failCount  bool
}

func (f *failingStore) GetSubscriberByEmail(ctx context.Context, email string) (*model.Subscriber, error) {
	if f.failLookup {
		return nil, errStoreDown
	}
	return f.Store.GetSubscriberByEmail(ctx, email)
}

func (f *failingStore) CreateSubscriber(ctx context.Context, sub *model.Subscriber) error {
	if f.failCreate {
		return errStoreDown
	}
	return f.Store.CreateSubscriber(ctx, sub)
}

func (f *failingStore) UpsertUser(ctx context.Context, u *model.SyncedUser) error {
	if f.failUpsert {
		return errStoreDown
	}
	return f.Store.UpsertUser(ctx, u)
}

func (f *failingStore) CountUsers(ctx context.Context) (int64, error) {
	if f.failCount {
		return 0, errStoreDown
	}
	return f.Store.CountUsers(ctx)
}
