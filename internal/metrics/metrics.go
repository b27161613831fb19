// Package metrics provides lightweight hooks for instrumentation.
package metrics

import "time"

// Label values shared by callers and the exposition handler.
const (
	StatusCreated      = "created"
	StatusDuplicate    = "duplicate"
	StatusInvalid      = "invalid"
	StatusRateLimited  = "rate_limited"
	StatusSuccess      = "success"
	StatusUnauthorized = "unauthorized"
	StatusConflict     = "conflict"
	StatusError        = "error"

	SplashShown   = "shown"
	SplashSkipped = "skipped"
)

// Recorder captures metric events for the application.
// Implementations can expose these to Prometheus, StatsD, etc.
type Recorder interface {
	// Subscription metrics
	IncSubscription(status string) // created, duplicate, invalid, rate_limited, error

	// User sync metrics
	IncSync(status string) // success, unauthorized, conflict, error
	ObserveSyncDuration(duration time.Duration)
	AddSyncedUsers(n int)

	// Page metrics
	IncPageView(page string)
	IncSplash(mode string) // shown, skipped
}

// Snapshotter exposes a snapshot of current metrics.
type Snapshotter interface {
	Snapshot() Snapshot
}
