package playback

import "time"

// Scheduler is the cancellable one-shot timer the effect engine runs on.
// Schedule returns a handle whose single Cancel operation makes the
// last-trigger-wins and teardown-cancels-all invariants structurally
// enforceable instead of relying on manual cleanup at every call site.
// Tests substitute a manually-advanced fake.
type Scheduler interface {
	Schedule(d time.Duration, fn func()) TimerHandle
}

// TimerHandle cancels a scheduled callback. Cancelling an already-fired or
// already-cancelled timer is a no-op.
type TimerHandle interface {
	Cancel()
}

type wallScheduler struct{}

// NewScheduler returns a Scheduler backed by the runtime timer wheel.
func NewScheduler() Scheduler {
	return wallScheduler{}
}

func (wallScheduler) Schedule(d time.Duration, fn func()) TimerHandle {
	return wallTimer{timer: time.AfterFunc(d, fn)}
}

type wallTimer struct {
	timer *time.Timer
}

func (t wallTimer) Cancel() {
	t.timer.Stop()
}
