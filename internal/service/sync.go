package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/infinai/infinai/internal/cache"
	"github.com/infinai/infinai/internal/identity"
	"github.com/infinai/infinai/internal/metrics"
	"github.com/infinai/infinai/internal/repository"
)

// ErrSyncInProgress is returned when another sync run holds the lock.
var ErrSyncInProgress = errors.New("sync already in progress")

// SyncLocker coordinates sync runs across instances.
type SyncLocker interface {
	AcquireSyncLock(ctx context.Context, token string, ttl time.Duration) error
	ReleaseSyncLock(ctx context.Context, token string) error
}

// SyncOptions bounds a sync run.
type SyncOptions struct {
	PageSize int
	MaxPages int
	LockTTL  time.Duration
}

// SyncResult summarizes one sync run.
type SyncResult struct {
	RunID     string        `json:"runId"`
	Synced    int           `json:"syncedUsers"`
	Skipped   int           `json:"skippedUsers"`
	Pages     int           `json:"pages"`
	Truncated bool          `json:"truncated"`
	Duration  time.Duration `json:"-"`
}

// UserSyncService mirrors identity provider accounts into the users
// collection.
type UserSyncService struct {
	store    repository.Store
	provider identity.Provider
	locker   SyncLocker
	opts     SyncOptions
	metrics  metrics.Recorder
	logger   *slog.Logger
	now      func() time.Time

	// local guards runs in this process when no shared locker is set.
	local sync.Mutex
}

// NewUserSyncService creates a new UserSyncService. locker may be nil.
func NewUserSyncService(
	store repository.Store,
	provider identity.Provider,
	locker SyncLocker,
	opts SyncOptions,
	recorder metrics.Recorder,
	logger *slog.Logger,
) *UserSyncService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	if logger == nil {
		logger = slog.Default()
	}
	if opts.PageSize <= 0 {
		opts.PageSize = 100
	}
	if opts.MaxPages <= 0 {
		opts.MaxPages = 50
	}
	if opts.LockTTL <= 0 {
		opts.LockTTL = 5 * time.Minute
	}
	return &UserSyncService{
		store:    store,
		provider: provider,
		locker:   locker,
		opts:     opts,
		metrics:  recorder,
		logger:   logger,
		now:      time.Now,
	}
}

// Sync lists every provider user and upserts each one keyed by external id.
func (s *UserSyncService) Sync(ctx context.Context) (*SyncResult, error) {
	runID := newID()
	release, err := s.lock(ctx, runID)
	if err != nil {
		if errors.Is(err, ErrSyncInProgress) {
			s.metrics.IncSync(metrics.StatusConflict)
		} else {
			s.metrics.IncSync(metrics.StatusError)
		}
		return nil, err
	}
	defer release()

	start := s.now()
	result, err := s.run(ctx, runID)
	result.Duration = s.now().Sub(start)
	s.metrics.ObserveSyncDuration(result.Duration)
	s.metrics.AddSyncedUsers(result.Synced)

	logger := s.logger.With(
		"run_id", runID,
		"provider", s.provider.Name(),
		"synced", result.Synced,
		"pages", result.Pages,
		"duration_ms", result.Duration.Milliseconds(),
	)
	if err != nil {
		s.metrics.IncSync(metrics.StatusError)
		logger.Error("user sync failed", "error", err)
		return nil, err
	}
	if result.Truncated {
		logger.Warn("user sync stopped at page limit", "max_pages", s.opts.MaxPages)
	}
	s.metrics.IncSync(metrics.StatusSuccess)
	logger.Info("user sync completed", "skipped", result.Skipped)
	return result, nil
}

func (s *UserSyncService) run(ctx context.Context, runID string) (*SyncResult, error) {
	result := &SyncResult{RunID: runID}
	cursor := ""

	for result.Pages < s.opts.MaxPages {
		page, err := s.provider.ListUsers(ctx, cursor, s.opts.PageSize)
		if err != nil {
			return result, fmt.Errorf("list users: %w", err)
		}
		result.Pages++

		updatedAt := s.now().UTC()
		for i := range page.Users {
			u := page.Users[i]
			if u.ExternalID == "" {
				result.Skipped++
				continue
			}
			u.UpdatedAt = updatedAt
			if err := s.store.UpsertUser(ctx, &u); err != nil {
				return result, fmt.Errorf("upsert user %s: %w", u.ExternalID, err)
			}
			result.Synced++
		}

		if page.Next == "" {
			return result, nil
		}
		cursor = page.Next
	}

	result.Truncated = true
	return result, nil
}

// lock takes the shared lock when configured, else the process lock.
func (s *UserSyncService) lock(ctx context.Context, token string) (func(), error) {
	if s.locker == nil {
		if !s.local.TryLock() {
			return nil, ErrSyncInProgress
		}
		return s.local.Unlock, nil
	}

	if err := s.locker.AcquireSyncLock(ctx, token, s.opts.LockTTL); err != nil {
		if errors.Is(err, cache.ErrLockHeld) {
			return nil, ErrSyncInProgress
		}
		return nil, fmt.Errorf("acquire sync lock: %w", err)
	}
	return func() {
		if err := s.locker.ReleaseSyncLock(context.WithoutCancel(ctx), token); err != nil {
			s.logger.Warn("failed to release sync lock", "run_id", token, "error", err)
		}
	}, nil
}
