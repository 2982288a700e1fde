package playback

import (
	"sync"
	"testing"
	"time"

	"interdeck/core"
)

// fakeScheduler collects scheduled callbacks so tests advance time manually.
type fakeScheduler struct {
	mu     sync.Mutex
	timers []*fakeTimer
}

type fakeTimer struct {
	sched     *fakeScheduler
	fn        func()
	cancelled bool
	fired     bool
}

func (s *fakeScheduler) Schedule(d time.Duration, fn func()) TimerHandle {
	s.mu.Lock()
	defer s.mu.Unlock()
	timer := &fakeTimer{sched: s, fn: fn}
	s.timers = append(s.timers, timer)
	return timer
}

func (t *fakeTimer) Cancel() {
	t.sched.mu.Lock()
	defer t.sched.mu.Unlock()
	t.cancelled = true
}

// fire runs every pending timer that was neither cancelled nor fired.
func (s *fakeScheduler) fire() {
	s.mu.Lock()
	var pending []*fakeTimer
	for _, timer := range s.timers {
		if !timer.cancelled && !timer.fired {
			timer.fired = true
			pending = append(pending, timer)
		}
	}
	s.mu.Unlock()

	for _, timer := range pending {
		timer.fn()
	}
}

func (s *fakeScheduler) scheduled() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}

func spotlightEffect(id string, durationMs int) core.Effect {
	return core.Effect{
		ID:         id,
		Type:       core.EffectSpotlight,
		DurationMs: durationMs,
		Spotlight: &core.SpotlightParams{
			Position:  core.Rect{X: 100, Y: 100, Width: 200, Height: 100},
			Shape:     core.ShapeRectangle,
			Intensity: 70,
		},
	}
}

func panZoomEffect(id string, durationMs int) core.Effect {
	return core.Effect{
		ID:         id,
		Type:       core.EffectPanZoom,
		DurationMs: durationMs,
		PanZoom: &core.PanZoomParams{
			Target:    core.Rect{X: 400, Y: 300, Width: 100, Height: 100},
			ZoomLevel: 2.0,
		},
	}
}

func TestRunner_TriggerAndComplete(t *testing.T) {
	sched := &fakeScheduler{}
	runner := NewRunner(Size{Width: 1000, Height: 600}, sched, nil)

	completions := 0
	if err := runner.Trigger(spotlightEffect("fx1", 3000), func() { completions++ }); err != nil {
		t.Fatalf("Trigger() failed: %v", err)
	}

	state := runner.State()
	if state.ActiveEffectID != "fx1" {
		t.Errorf("ActiveEffectID = %q, want %q", state.ActiveEffectID, "fx1")
	}
	if state.Spotlight == nil {
		t.Fatal("expected spotlight overlay in state")
	}
	if state.Spotlight.Alpha != 0.7 {
		t.Errorf("Alpha = %v, want 0.7", state.Spotlight.Alpha)
	}

	sched.fire()

	if completions != 1 {
		t.Errorf("completions = %d, want 1", completions)
	}
	state = runner.State()
	if state.ActiveEffectID != "" {
		t.Errorf("ActiveEffectID = %q after completion, want empty", state.ActiveEffectID)
	}
	if state.Transform != IdentityTransform() {
		t.Errorf("Transform = %+v after completion, want identity", state.Transform)
	}
}

func TestRunner_PanZoomOwnsTransform(t *testing.T) {
	sched := &fakeScheduler{}
	runner := NewRunner(Size{Width: 1000, Height: 600}, sched, nil)

	if err := runner.Trigger(panZoomEffect("fx1", 1000), nil); err != nil {
		t.Fatalf("Trigger() failed: %v", err)
	}

	state := runner.State()
	if state.Transform.Scale != 2.0 {
		t.Errorf("Scale = %v, want 2.0", state.Transform.Scale)
	}
	if state.Transform.TranslateX != -400 {
		t.Errorf("TranslateX = %v, want -400", state.Transform.TranslateX)
	}

	sched.fire()

	if got := runner.State().Transform; got != IdentityTransform() {
		t.Errorf("Transform = %+v after completion, want identity", got)
	}
}

func TestRunner_LastTriggerWins(t *testing.T) {
	sched := &fakeScheduler{}
	runner := NewRunner(Size{Width: 1000, Height: 600}, sched, nil)

	firstDone := 0
	secondDone := 0
	runner.Trigger(spotlightEffect("fx1", 5000), func() { firstDone++ })
	runner.Trigger(panZoomEffect("fx2", 5000), func() { secondDone++ })

	state := runner.State()
	if state.ActiveEffectID != "fx2" {
		t.Errorf("ActiveEffectID = %q, want fx2", state.ActiveEffectID)
	}

	sched.fire()

	if firstDone != 0 {
		t.Errorf("superseded effect's callback fired %d times, want 0", firstDone)
	}
	if secondDone != 1 {
		t.Errorf("winning effect's callback fired %d times, want 1", secondDone)
	}
}

func TestRunner_StaleTimerDiscarded(t *testing.T) {
	sched := &fakeScheduler{}
	runner := NewRunner(Size{Width: 1000, Height: 600}, sched, nil)

	firstDone := 0
	runner.Trigger(spotlightEffect("fx1", 5000), func() { firstDone++ })

	sched.mu.Lock()
	staleFn := sched.timers[0].fn
	sched.mu.Unlock()

	runner.Trigger(spotlightEffect("fx2", 5000), nil)

	// Even if the superseded timer's callback races past Cancel, the
	// generation check must discard it without touching fx2's state.
	staleFn()

	if firstDone != 0 {
		t.Errorf("stale callback completed the superseded effect %d times, want 0", firstDone)
	}
	if got, _ := runner.Active(); got != "fx2" {
		t.Errorf("active effect = %q, want fx2", got)
	}
}

func TestRunner_DismissCompletesOnce(t *testing.T) {
	sched := &fakeScheduler{}
	runner := NewRunner(Size{Width: 1000, Height: 600}, sched, nil)

	completions := 0
	runner.Trigger(spotlightEffect("fx1", 5000), func() { completions++ })

	runner.Dismiss()
	runner.Dismiss()
	sched.fire()

	if completions != 1 {
		t.Errorf("completions = %d, want 1", completions)
	}
	if _, active := runner.Active(); active {
		t.Error("effect still active after dismissal")
	}
}

func TestRunner_ZeroDurationNeedsDismissal(t *testing.T) {
	sched := &fakeScheduler{}
	runner := NewRunner(Size{Width: 1000, Height: 600}, sched, nil)

	completions := 0
	runner.Trigger(spotlightEffect("fx1", 0), func() { completions++ })

	if sched.scheduled() != 0 {
		t.Errorf("scheduled %d timers for a zero-duration effect, want 0", sched.scheduled())
	}
	if _, active := runner.Active(); !active {
		t.Fatal("zero-duration effect should stay active until dismissed")
	}

	runner.Dismiss()
	if completions != 1 {
		t.Errorf("completions = %d, want 1", completions)
	}
}

func TestRunner_DismissEffectWithoutID(t *testing.T) {
	sched := &fakeScheduler{}
	runner := NewRunner(Size{Width: 1000, Height: 600}, sched, nil)

	// An id-less zero-duration effect is valid input; activity tracking must
	// not mistake the empty id for "nothing running".
	completions := 0
	if err := runner.Trigger(spotlightEffect("", 0), func() { completions++ }); err != nil {
		t.Fatalf("Trigger() failed: %v", err)
	}
	if _, active := runner.Active(); !active {
		t.Fatal("id-less effect not reported as active")
	}

	runner.Dismiss()

	if completions != 1 {
		t.Errorf("completions = %d, want 1", completions)
	}
	if runner.State().Spotlight != nil {
		t.Error("spotlight overlay still rendered after dismissal")
	}
	if _, active := runner.Active(); active {
		t.Error("effect still active after dismissal")
	}
}

func TestRunner_ResetDropsCallback(t *testing.T) {
	sched := &fakeScheduler{}
	runner := NewRunner(Size{Width: 1000, Height: 600}, sched, nil)

	completions := 0
	runner.Trigger(spotlightEffect("fx1", 5000), func() { completions++ })

	runner.Reset()
	sched.fire()

	if completions != 0 {
		t.Errorf("completions = %d after reset, want 0", completions)
	}
	state := runner.State()
	if state.ActiveEffectID != "" || state.Transform != IdentityTransform() {
		t.Errorf("state not restored to baseline after reset: %+v", state)
	}
}

func TestRunner_CloseCancelsEverything(t *testing.T) {
	sched := &fakeScheduler{}
	runner := NewRunner(Size{Width: 1000, Height: 600}, sched, nil)

	completions := 0
	runner.Trigger(spotlightEffect("fx1", 5000), func() { completions++ })

	runner.Close()
	runner.Close() // idempotent
	sched.fire()

	if completions != 0 {
		t.Errorf("completions = %d after close, want 0", completions)
	}
	if err := runner.Trigger(spotlightEffect("fx2", 1000), nil); err == nil {
		t.Error("Trigger() after Close() should fail")
	}
}

func TestRunner_TriggerInvalidEffect(t *testing.T) {
	runner := NewRunner(Size{Width: 1000, Height: 600}, &fakeScheduler{}, nil)

	bad := core.Effect{ID: "fx1", Type: core.EffectSpotlight} // missing payload
	if err := runner.Trigger(bad, nil); err == nil {
		t.Error("expected error for effect without parameters, got nil")
	}
	if _, active := runner.Active(); active {
		t.Error("invalid trigger must not activate an effect")
	}
}

func TestRunner_NotifiesSubscriber(t *testing.T) {
	sched := &fakeScheduler{}
	var states []State
	runner := NewRunner(Size{Width: 1000, Height: 600}, sched, func(s State) {
		states = append(states, s)
	})

	runner.Trigger(spotlightEffect("fx1", 1000), nil)
	sched.fire()

	if len(states) != 2 {
		t.Fatalf("got %d notifications, want 2 (start, finish)", len(states))
	}
	if states[0].ActiveEffectID != "fx1" {
		t.Errorf("first notification active id = %q, want fx1", states[0].ActiveEffectID)
	}
	if states[1].ActiveEffectID != "" {
		t.Errorf("second notification still active: %+v", states[1])
	}
	if states[1].Generation != states[0].Generation {
		t.Errorf("finish generation = %d, want %d", states[1].Generation, states[0].Generation)
	}
}
