// Package splash sequences the first-visit intro animation and the
// cross-fade that reveals page content.
package splash

import (
	"sync"
	"time"
)

// Phase is a step of the intro sequence.
type Phase int

const (
	PhaseNotStarted Phase = iota
	PhaseAnimating
	PhaseFadingOut
	PhaseContentVisible
	PhaseDone
)

var phaseNames = [...]string{"not_started", "animating", "fading_out", "content_visible", "done"}

func (p Phase) String() string {
	if p < 0 || int(p) >= len(phaseNames) {
		return "unknown"
	}
	return phaseNames[p]
}

// MarshalText implements encoding.TextMarshaler.
func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// Timing holds the intro delays.
type Timing struct {
	// Duration is the splash animation length.
	Duration time.Duration
	// Buffer is added to Duration for the backup timer.
	Buffer time.Duration
	// FadeLead separates splash fade-out from content fade-in.
	FadeLead time.Duration
	// FadeTail separates content fade-in from splash removal.
	FadeTail time.Duration
	// CompletionDelay is the pause between full progress and the
	// animation's completion signal.
	CompletionDelay time.Duration
}

// DefaultTiming returns the stock intro timing.
func DefaultTiming() Timing {
	return Timing{
		Duration:        3000 * time.Millisecond,
		Buffer:          800 * time.Millisecond,
		FadeLead:        400 * time.Millisecond,
		FadeTail:        800 * time.Millisecond,
		CompletionDelay: 500 * time.Millisecond,
	}
}

// Backup is the delay after which the fade starts without a completion
// signal.
func (t Timing) Backup() time.Duration {
	return t.Duration + t.Buffer
}

// Progress returns the animation progress for elapsed time, in [0, 1].
func (t Timing) Progress(elapsed time.Duration) float64 {
	if t.Duration <= 0 || elapsed >= t.Duration {
		return 1
	}
	if elapsed <= 0 {
		return 0
	}
	return float64(elapsed) / float64(t.Duration)
}

// CompletesAt is when the animation emits its completion signal.
func (t Timing) CompletesAt() time.Duration {
	return t.Duration + t.CompletionDelay
}

// Orchestrator runs the intro state machine. It is safe for use from timer
// goroutines.
type Orchestrator struct {
	clock  Clock
	visits VisitStore
	timing Timing
	always bool

	mu       sync.Mutex
	phase    Phase
	mounted  bool
	stopped  bool
	started  time.Time
	timer    Timer
	onChange func(Phase)
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithAlwaysAnimate replays the intro even for returning visitors.
func WithAlwaysAnimate(always bool) Option {
	return func(o *Orchestrator) { o.always = always }
}

// WithPhaseListener calls f after every phase change. f runs without the
// orchestrator lock held.
func WithPhaseListener(f func(Phase)) Option {
	return func(o *Orchestrator) { o.onChange = f }
}

// New creates an Orchestrator in PhaseNotStarted.
func New(clock Clock, visits VisitStore, timing Timing, opts ...Option) *Orchestrator {
	if clock == nil {
		clock = RealClock()
	}
	o := &Orchestrator{clock: clock, visits: visits, timing: timing}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Start checks the visited flag and either skips straight to PhaseDone or
// mounts the splash and arms the backup timer. Calls after the first are
// no-ops.
func (o *Orchestrator) Start() Phase {
	o.mu.Lock()
	if o.phase != PhaseNotStarted || o.stopped {
		p := o.phase
		o.mu.Unlock()
		return p
	}

	if o.visits != nil && o.visits.Visited() && !o.always {
		o.phase = PhaseDone
		o.mu.Unlock()
		o.notify(PhaseDone)
		return PhaseDone
	}

	if o.visits != nil {
		o.visits.MarkVisited()
	}
	o.mounted = true
	o.phase = PhaseAnimating
	o.started = o.clock.Now()
	o.timer = o.clock.AfterFunc(o.timing.Backup(), o.beginFade)
	o.mu.Unlock()

	o.notify(PhaseAnimating)
	return PhaseAnimating
}

// Complete is the animation's completion signal. Only the first of
// Complete and the backup timer starts the fade.
func (o *Orchestrator) Complete() {
	o.beginFade()
}

// Stop cancels pending timers. The phase is left where it was.
func (o *Orchestrator) Stop() {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.stopped = true
	if o.timer != nil {
		o.timer.Stop()
		o.timer = nil
	}
}

// Phase returns the current phase.
func (o *Orchestrator) Phase() Phase {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.phase
}

// SplashMounted reports whether the splash node is present.
func (o *Orchestrator) SplashMounted() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.mounted
}

// ContentVisible reports whether page content is shown.
func (o *Orchestrator) ContentVisible() bool {
	p := o.Phase()
	return p == PhaseContentVisible || p == PhaseDone
}

// Progress returns the splash progress since Start.
func (o *Orchestrator) Progress() float64 {
	o.mu.Lock()
	defer o.mu.Unlock()

	switch o.phase {
	case PhaseNotStarted:
		return 0
	case PhaseAnimating:
		return o.timing.Progress(o.clock.Now().Sub(o.started))
	default:
		return 1
	}
}

func (o *Orchestrator) beginFade() {
	o.advance(PhaseAnimating, PhaseFadingOut, o.timing.FadeLead, o.showContent)
}

func (o *Orchestrator) showContent() {
	o.advance(PhaseFadingOut, PhaseContentVisible, o.timing.FadeTail, o.unmount)
}

func (o *Orchestrator) unmount() {
	o.mu.Lock()
	if o.phase != PhaseContentVisible || o.stopped {
		o.mu.Unlock()
		return
	}
	o.mounted = false
	o.phase = PhaseDone
	o.timer = nil
	o.mu.Unlock()

	o.notify(PhaseDone)
}

// advance moves from one phase to the next and arms the following step.
func (o *Orchestrator) advance(from, to Phase, after time.Duration, next func()) {
	o.mu.Lock()
	if o.phase != from || o.stopped {
		o.mu.Unlock()
		return
	}
	if o.timer != nil {
		o.timer.Stop()
	}
	o.phase = to
	o.timer = o.clock.AfterFunc(after, next)
	o.mu.Unlock()

	o.notify(to)
}

func (o *Orchestrator) notify(p Phase) {
	if o.onChange != nil {
		o.onChange(p)
	}
}
