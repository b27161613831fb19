package handler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/infinai/infinai/internal/auth"
	"github.com/infinai/infinai/internal/cache"
	"github.com/infinai/infinai/internal/content"
	"github.com/infinai/infinai/internal/identity"
	"github.com/infinai/infinai/internal/metrics"
	"github.com/infinai/infinai/internal/middleware"
	"github.com/infinai/infinai/internal/model"
	"github.com/infinai/infinai/internal/particles"
	"github.com/infinai/infinai/internal/repository"
	"github.com/infinai/infinai/internal/repository/sqlitestore"
	"github.com/infinai/infinai/internal/service"
	"github.com/infinai/infinai/internal/splash"
	"github.com/infinai/infinai/internal/web"
)

const testSecret = "sync-secret"

type testEnv struct {
	store    repository.Store
	recorder *metrics.InMemoryRecorder
	router   http.Handler
}

type envOptions struct {
	store    repository.Store
	provider identity.Provider
	locker   service.SyncLocker
	basePath string
}

func newTestEnv(t *testing.T, opts envOptions) *testEnv {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	store := opts.store
	if store == nil {
		s, err := sqlitestore.Open(context.Background(), sqlitestore.MemoryPath)
		if err != nil {
			t.Fatalf("open sqlite: %v", err)
		}
		t.Cleanup(func() { _ = s.Close() })
		store = s
	}

	provider := opts.provider
	if provider == nil {
		provider = identity.NewStatic(
			model.SyncedUser{ExternalID: "user_1", Email: "ada@example.com", FirstName: "Ada"},
			model.SyncedUser{ExternalID: "user_2", Email: "linus@example.com", FirstName: "Linus"},
			model.SyncedUser{ExternalID: "user_3", Email: "grace@example.com", FirstName: "Grace"},
		)
	}

	site := content.MustDefault()
	recorder := metrics.NewInMemory()

	renderer, err := web.New(web.Options{BasePath: opts.basePath})
	if err != nil {
		t.Fatalf("web.New() error = %v", err)
	}

	syncSvc := service.NewUserSyncService(store, provider, opts.locker, service.SyncOptions{PageSize: 2}, recorder, logger)

	router := NewRouter(RouterConfig{
		Logger:    logger,
		Pages:     NewPageHandler(renderer, site, PageConfig{Timing: splash.DefaultTiming(), Particles: particles.DefaultConfig()}, recorder, logger),
		Projects:  NewProjectsHandler(site),
		Subscribe: NewSubscribeHandler(service.NewSubscriptionService(store, recorder), logger),
		Admin:     NewAdminHandler(syncSvc, service.NewStatsService(store, site), logger),
		Health:    NewHealthHandler(store, nil),
		Metrics:   NewMetricsHandler(recorder),
		AdminAuth: middleware.AdminAuthConfig{Logger: logger, Verifier: auth.NewSecretVerifier(testSecret, "")},
		RateLimit: middleware.RateLimitConfig{Logger: logger},
		Security:  middleware.SecurityConfig{IsDevelopment: true, MaxRequestBodySize: 1 << 16},
		BasePath:  opts.basePath,
	})

	return &testEnv{store: store, recorder: recorder, router: router}
}

func (e *testEnv) do(t *testing.T, method, target, body string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, rd)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

// failingStore fails every subscriber and user operation.
type failingStore struct {
	repository.Store
}

var errStoreDown = errors.New("store down")

func (failingStore) GetSubscriberByEmail(context.Context, string) (*model.Subscriber, error) {
	return nil, errStoreDown
}

func (failingStore) CreateSubscriber(context.Context, *model.Subscriber) error {
	return errStoreDown
}

func (failingStore) UpsertUser(context.Context, *model.SyncedUser) error { return errStoreDown }

func (failingStore) CountSubscribers(context.Context) (int64, error) { return 0, errStoreDown }

func (failingStore) Ping(context.Context) error { return errStoreDown }

// heldLocker reports the sync lock as taken by another instance.
type heldLocker struct{}

func (heldLocker) AcquireSyncLock(context.Context, string, time.Duration) error {
	return cache.ErrLockHeld
}

func (heldLocker) ReleaseSyncLock(context.Context, string) error { return nil }
