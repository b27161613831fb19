package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/infinai/infinai/internal/model"
)

// DefaultConnectTimeout bounds a single connection attempt.
const DefaultConnectTimeout = 30 * time.Second

// Opener establishes a Store.
type Opener func(ctx context.Context) (Store, error)

// Lazy is a Store that connects on first use and then reuses the
// connection for the life of the process. Concurrent first callers share
// one attempt; a failed attempt is not cached, so the next call retries.
type Lazy struct {
	open    Opener
	timeout time.Duration
	group   singleflight.Group

	mu     sync.RWMutex
	store  Store
	closed bool
}

var _ Store = (*Lazy)(nil)

// NewLazy wraps open. A zero timeout uses DefaultConnectTimeout.
func NewLazy(open Opener, timeout time.Duration) *Lazy {
	if timeout <= 0 {
		timeout = DefaultConnectTimeout
	}
	return &Lazy{open: open, timeout: timeout}
}

func (l *Lazy) current() (Store, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.store, l.closed
}

// Get returns the underlying Store, connecting if needed.
func (l *Lazy) Get(ctx context.Context) (Store, error) {
	if s, closed := l.current(); closed {
		return nil, ErrStoreClosed
	} else if s != nil {
		return s, nil
	}

	v, err, _ := l.group.Do("open", func() (any, error) {
		if s, closed := l.current(); closed {
			return nil, ErrStoreClosed
		} else if s != nil {
			return s, nil
		}

		// The attempt outlives the caller that triggered it so that a
		// cancelled request does not fail the others waiting on it.
		openCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), l.timeout)
		defer cancel()

		s, err := l.open(openCtx)
		if err != nil {
			return nil, fmt.Errorf("failed to open store: %w", err)
		}

		l.mu.Lock()
		defer l.mu.Unlock()
		if l.closed {
			_ = s.Close()
			return nil, ErrStoreClosed
		}
		l.store = s
		return s, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(Store), nil
}

// Connected reports whether a connection has been established.
func (l *Lazy) Connected() bool {
	s, _ := l.current()
	return s != nil
}

func (l *Lazy) GetSubscriberByEmail(ctx context.Context, email string) (*model.Subscriber, error) {
	s, err := l.Get(ctx)
	if err != nil {
		return nil, err
	}
	return s.GetSubscriberByEmail(ctx, email)
}

func (l *Lazy) CreateSubscriber(ctx context.Context, sub *model.Subscriber) error {
	s, err := l.Get(ctx)
	if err != nil {
		return err
	}
	return s.CreateSubscriber(ctx, sub)
}

func (l *Lazy) CountSubscribers(ctx context.Context) (int64, error) {
	s, err := l.Get(ctx)
	if err != nil {
		return 0, err
	}
	return s.CountSubscribers(ctx)
}

func (l *Lazy) UpsertUser(ctx context.Context, user *model.SyncedUser) error {
	s, err := l.Get(ctx)
	if err != nil {
		return err
	}
	return s.UpsertUser(ctx, user)
}

func (l *Lazy) GetUserByExternalID(ctx context.Context, externalID string) (*model.SyncedUser, error) {
	s, err := l.Get(ctx)
	if err != nil {
		return nil, err
	}
	return s.GetUserByExternalID(ctx, externalID)
}

func (l *Lazy) CountUsers(ctx context.Context) (int64, error) {
	s, err := l.Get(ctx)
	if err != nil {
		return 0, err
	}
	return s.CountUsers(ctx)
}

// Ping connects if needed and pings the underlying store.
func (l *Lazy) Ping(ctx context.Context) error {
	s, err := l.Get(ctx)
	if err != nil {
		return err
	}
	return s.Ping(ctx)
}

// Close releases the connection if one was made. Later calls fail with
// ErrStoreClosed.
func (l *Lazy) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.closed = true
	if l.store == nil {
		return nil
	}
	err := l.store.Close()
	l.store = nil
	return err
}
