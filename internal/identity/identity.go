// Package identity lists accounts from the hosted identity provider so they
// can be mirrored into the local users collection.
package identity

import (
	"context"
	"errors"
	"fmt"

	"github.com/infinai/infinai/internal/config"
	"github.com/infinai/infinai/internal/model"
)

var (
	// ErrNotConfigured indicates the provider is missing its credentials.
	ErrNotConfigured = errors.New("identity provider not configured")
	// ErrBadCursor indicates a cursor that the provider did not issue.
	ErrBadCursor = errors.New("invalid page cursor")
)

// Page is one page of provider users. Next is empty on the last page.
type Page struct {
	Users []model.SyncedUser
	Next  string
}

// Provider lists users page by page. An empty cursor starts from the
// beginning.
type Provider interface {
	Name() string
	ListUsers(ctx context.Context, cursor string, limit int) (Page, error)
}

// New builds the provider selected by cfg, throttled to the configured
// request rate and retrying transient page failures. Missing credentials do
// not fail start-up; the returned provider reports ErrNotConfigured when
// used.
func New(ctx context.Context, cfg *config.Config) (Provider, error) {
	var p Provider
	switch cfg.IdentityProvider {
	case config.ProviderClerk:
		if cfg.ClerkSecretKey == "" {
			p = unconfigured{name: config.ProviderClerk}
			break
		}
		p = NewClerk(cfg.ClerkSecretKey)
	case config.ProviderFirebase:
		if cfg.FirebaseCredentialsPath == "" {
			p = unconfigured{name: config.ProviderFirebase}
			break
		}
		fb, err := NewFirebase(ctx, cfg.FirebaseCredentialsPath)
		if err != nil {
			return nil, err
		}
		p = fb
	default:
		return nil, fmt.Errorf("%w: %q", config.ErrUnknownProvider, cfg.IdentityProvider)
	}
	return Retry(Throttle(p, cfg.SyncProviderRPS), DefaultMaxAttempts), nil
}

type unconfigured struct {
	name string
}

func (u unconfigured) Name() string { return u.name }

func (u unconfigured) ListUsers(context.Context, string, int) (Page, error) {
	return Page{}, fmt.Errorf("%s: %w", u.name, ErrNotConfigured)
}
