package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/infinai/infinai/internal/cache"
	"github.com/infinai/infinai/internal/identity"
	"github.com/infinai/infinai/internal/metrics"
	"github.com/infinai/infinai/internal/model"
	"github.com/infinai/infinai/internal/testutil"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func providerUsers(n int) []model.SyncedUser {
	users := make([]model.SyncedUser, n)
	for i := range users {
		id := fmt.Sprintf("user_%03d", i)
		users[i] = model.SyncedUser{ExternalID: id, Email: id + "@example.com", FirstName: "Member"}
	}
	return users
}

func TestSync_UpsertsAcrossPages(t *testing.T) {
	t.Parallel()

	store := newStore(t)
	rec := metrics.NewInMemory()
	svc := NewUserSyncService(store, identity.NewStatic(providerUsers(7)...), nil,
		SyncOptions{PageSize: 3, MaxPages: 10}, rec, quietLogger())

	res, err := svc.Sync(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 7, res.Synced)
	assert.Equal(t, 3, res.Pages)
	assert.False(t, res.Truncated)
	assert.NotEmpty(t, res.RunID)

	n, err := store.CountUsers(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 7, n)

	u, err := store.GetUserByExternalID(context.Background(), "user_006")
	require.NoError(t, err)
	assert.Equal(t, "user_006@example.com", u.Email)
	assert.False(t, u.UpdatedAt.IsZero())

	snap := rec.Snapshot()
	assert.EqualValues(t, 1, snap.Syncs[metrics.StatusSuccess])
	assert.EqualValues(t, 7, snap.SyncedUsers)
}

func TestSync_IsIdempotent(t *testing.T) {
	t.Parallel()

	store := newStore(t)
	users := providerUsers(2)
	svc := NewUserSyncService(store, identity.NewStatic(users...), nil, SyncOptions{}, nil, quietLogger())

	_, err := svc.Sync(context.Background())
	require.NoError(t, err)
	res, err := svc.Sync(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, res.Synced, "count covers users processed in this run")
	n, err := store.CountUsers(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 2, n, "re-sync must update in place")
}

func TestSync_RefreshesChangedFields(t *testing.T) {
	t.Parallel()

	store := newStore(t)
	ctx := context.Background()

	first := NewUserSyncService(store, identity.NewStatic(model.SyncedUser{ExternalID: "u1", Email: "old@example.com"}),
		nil, SyncOptions{}, nil, quietLogger())
	_, err := first.Sync(ctx)
	require.NoError(t, err)

	second := NewUserSyncService(store, identity.NewStatic(model.SyncedUser{ExternalID: "u1", Email: "new@example.com", Username: "newname"}),
		nil, SyncOptions{}, nil, quietLogger())
	_, err = second.Sync(ctx)
	require.NoError(t, err)

	u, err := store.GetUserByExternalID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "new@example.com", u.Email)
	assert.Equal(t, "newname", u.Username)
}

func TestSync_EmptyProvider(t *testing.T) {
	t.Parallel()

	svc := NewUserSyncService(newStore(t), identity.NewStatic(), nil, SyncOptions{}, nil, quietLogger())
	res, err := svc.Sync(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, res.Synced)
	assert.Equal(t, 1, res.Pages)
}

func TestSync_SkipsUsersWithoutID(t *testing.T) {
	t.Parallel()

	users := append(providerUsers(2), model.SyncedUser{Email: "ghost@example.com"})
	svc := NewUserSyncService(newStore(t), identity.NewStatic(users...), nil, SyncOptions{}, nil, quietLogger())

	res, err := svc.Sync(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, res.Synced)
	assert.Equal(t, 1, res.Skipped)
}

func TestSync_StopsAtPageLimit(t *testing.T) {
	t.Parallel()

	svc := NewUserSyncService(newStore(t), identity.NewStatic(providerUsers(10)...), nil,
		SyncOptions{PageSize: 2, MaxPages: 2}, nil, quietLogger())

	res, err := svc.Sync(context.Background())
	require.NoError(t, err)
	assert.True(t, res.Truncated)
	assert.Equal(t, 4, res.Synced)
}

func TestSync_Failures(t *testing.T) {
	t.Parallel()

	boom := errors.New("provider down")

	t.Run("provider", func(t *testing.T) {
		t.Parallel()

		rec := metrics.NewInMemory()
		svc := NewUserSyncService(newStore(t), identity.NewStatic().FailWith(boom), nil, SyncOptions{}, rec, quietLogger())
		_, err := svc.Sync(context.Background())
		assert.ErrorIs(t, err, boom)
		assert.EqualValues(t, 1, rec.Snapshot().Syncs[metrics.StatusError])
	})

	t.Run("store", func(t *testing.T) {
		t.Parallel()

		store := &failingStore{Store: newStore(t), failUpsert: true}
		svc := NewUserSyncService(store, identity.NewStatic(providerUsers(1)...), nil, SyncOptions{}, nil, quietLogger())
		_, err := svc.Sync(context.Background())
		assert.ErrorIs(t, err, errStoreDown)
	})

	t.Run("lock released after failure", func(t *testing.T) {
		t.Parallel()

		svc := NewUserSyncService(newStore(t), identity.NewStatic().FailWith(boom), nil, SyncOptions{}, nil, quietLogger())
		_, _ = svc.Sync(context.Background())
		_, err := svc.Sync(context.Background())
		assert.ErrorIs(t, err, boom, "second run must not see a stale lock")
	})
}

// blockingProvider holds ListUsers until release is closed.
type blockingProvider struct {
	entered chan struct{}
	release chan struct{}
	once    sync.Once
}

func (b *blockingProvider) Name() string { return "blocking" }

func (b *blockingProvider) ListUsers(ctx context.Context, _ string, _ int) (identity.Page, error) {
	b.once.Do(func() { close(b.entered) })
	select {
	case <-b.release:
		return identity.Page{}, nil
	case <-ctx.Done():
		return identity.Page{}, ctx.Err()
	}
}

func TestSync_ConcurrentRunsConflict(t *testing.T) {
	t.Parallel()

	client, _ := testutil.NewRedis(t)
	locks := cache.NewFromClient(client)

	tests := []struct {
		name   string
		locker SyncLocker
	}{
		{"process lock", nil},
		{"redis lock", locks},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &blockingProvider{entered: make(chan struct{}), release: make(chan struct{})}
			rec := metrics.NewInMemory()
			svc := NewUserSyncService(newStore(t), p, tt.locker, SyncOptions{LockTTL: time.Minute}, rec, quietLogger())

			done := make(chan error, 1)
			go func() {
				_, err := svc.Sync(context.Background())
				done <- err
			}()
			<-p.entered

			_, err := svc.Sync(context.Background())
			assert.ErrorIs(t, err, ErrSyncInProgress)
			assert.EqualValues(t, 1, rec.Snapshot().Syncs[metrics.StatusConflict])

			close(p.release)
			require.NoError(t, <-done)

			// The lock is free again once the first run finishes.
			p2 := identity.NewStatic(providerUsers(1)...)
			svc.provider = p2
			_, err = svc.Sync(context.Background())
			assert.NoError(t, err)
		})
	}
}
