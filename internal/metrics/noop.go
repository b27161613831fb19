package metrics

import "time"

// NoopRecorder implements Recorder with no-op methods.
type NoopRecorder struct{}

// NewNoop returns a Recorder that discards all metrics.
func NewNoop() Recorder {
	return &NoopRecorder{}
}

// IncSubscription is a no-op.
func (n *NoopRecorder) IncSubscription(status string) {}

// IncSync is a no-op.
func (n *NoopRecorder) IncSync(status string) {}

// ObserveSyncDuration is a no-op.
func (n *NoopRecorder) ObserveSyncDuration(duration time.Duration) {}

// AddSyncedUsers is a no-op.
func (n *NoopRecorder) AddSyncedUsers(count int) {}

// IncPageView is a no-op.
func (n *NoopRecorder) IncPageView(page string) {}

// IncSplash is a no-op.
func (n *NoopRecorder) IncSplash(mode string) {}
