package splash

import "time"

// Step is a phase change at an offset from Start.
type Step struct {
	Phase  Phase `json:"phase"`
	Offset int64 `json:"offsetMs"`
}

// Schedule is the precomputed intro handed to the browser script.
type Schedule struct {
	ShowSplash        bool   `json:"showSplash"`
	DurationMs        int64  `json:"durationMs"`
	BackupMs          int64  `json:"backupMs"`
	FadeLeadMs        int64  `json:"fadeLeadMs"`
	FadeTailMs        int64  `json:"fadeTailMs"`
	CompletionDelayMs int64  `json:"completionDelayMs"`
	Steps             []Step `json:"steps"`
}

// Plan runs the orchestrator on a manual clock, delivering the completion
// signal when the animation would emit it, and records each phase change.
func Plan(timing Timing, visits VisitStore, always bool) Schedule {
	clock := NewManualClock(time.Unix(0, 0))
	start := clock.Now()

	var steps []Step
	o := New(clock, visits, timing,
		WithAlwaysAnimate(always),
		WithPhaseListener(func(p Phase) {
			steps = append(steps, Step{Phase: p, Offset: clock.Now().Sub(start).Milliseconds()})
		}),
	)

	sched := Schedule{
		DurationMs:        timing.Duration.Milliseconds(),
		BackupMs:          timing.Backup().Milliseconds(),
		FadeLeadMs:        timing.FadeLead.Milliseconds(),
		FadeTailMs:        timing.FadeTail.Milliseconds(),
		CompletionDelayMs: timing.CompletionDelay.Milliseconds(),
	}

	if o.Start() == PhaseDone {
		sched.Steps = steps
		return sched
	}
	sched.ShowSplash = true

	clock.AfterFunc(timing.CompletesAt(), o.Complete)
	clock.Advance(timing.Backup() + timing.FadeLead + timing.FadeTail)
	sched.Steps = steps
	return sched
}
