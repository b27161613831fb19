package metrics

import (
	"maps"
	"sync"
	"sync/atomic"
	"time"
)

// Snapshot captures current in-memory counters.
type Snapshot struct {
	Subscriptions       map[string]uint64
	Syncs               map[string]uint64
	SyncDurationCount   uint64
	SyncDurationTotalNs int64
	SyncedUsers         uint64
	PageViews           map[string]uint64
	Splash              map[string]uint64
}

// InMemoryRecorder stores metrics in memory for tests and the /metrics
// endpoint.
type InMemoryRecorder struct {
	mu            sync.Mutex
	subscriptions map[string]uint64
	syncs         map[string]uint64
	pageViews     map[string]uint64
	splash        map[string]uint64

	syncDurationCount   uint64
	syncDurationTotalNs int64
	syncedUsers         uint64
}

// NewInMemory returns a Recorder that stores counters in memory.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{
		subscriptions: make(map[string]uint64),
		syncs:         make(map[string]uint64),
		pageViews:     make(map[string]uint64),
		splash:        make(map[string]uint64),
	}
}

// Snapshot returns a copy of the counters.
func (m *InMemoryRecorder) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	return Snapshot{
		Subscriptions:       maps.Clone(m.subscriptions),
		Syncs:               maps.Clone(m.syncs),
		SyncDurationCount:   atomic.LoadUint64(&m.syncDurationCount),
		SyncDurationTotalNs: atomic.LoadInt64(&m.syncDurationTotalNs),
		SyncedUsers:         atomic.LoadUint64(&m.syncedUsers),
		PageViews:           maps.Clone(m.pageViews),
		Splash:              maps.Clone(m.splash),
	}
}

// IncSubscription increments the subscription counter for status.
func (m *InMemoryRecorder) IncSubscription(status string) {
	m.inc(m.subscriptions, status)
}

// IncSync increments the sync counter for status.
func (m *InMemoryRecorder) IncSync(status string) {
	m.inc(m.syncs, status)
}

// ObserveSyncDuration records sync run duration.
func (m *InMemoryRecorder) ObserveSyncDuration(duration time.Duration) {
	atomic.AddUint64(&m.syncDurationCount, 1)
	atomic.AddInt64(&m.syncDurationTotalNs, duration.Nanoseconds())
}

// AddSyncedUsers adds to the synced user total.
func (m *InMemoryRecorder) AddSyncedUsers(n int) {
	if n <= 0 {
		return
	}
	atomic.AddUint64(&m.syncedUsers, uint64(n))
}

// IncPageView increments the page view counter for page.
func (m *InMemoryRecorder) IncPageView(page string) {
	m.inc(m.pageViews, page)
}

// IncSplash increments the splash counter for mode.
func (m *InMemoryRecorder) IncSplash(mode string) {
	m.inc(m.splash, mode)
}

func (m *InMemoryRecorder) inc(counter map[string]uint64, label string) {
	m.mu.Lock()
	counter[label]++
	m.mu.Unlock()
}
