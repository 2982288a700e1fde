package playback

import (
	"fmt"
	"sync"
	"time"

	"interdeck/core"
)

// State is the render-facing output of the effect engine: the viewport
// transform plus whichever overlay the active effect produces. The engine is
// a pure function of (trigger, container) into State; the rendering layer is
// a thin subscriber. Generation increases with every trigger so subscribers
// can drop stale notifications.
type State struct {
	Generation     uint64            `json:"generation"`
	ActiveEffectID string            `json:"activeEffectId,omitempty"`
	ActiveType     core.EffectType   `json:"activeType,omitempty"`
	Transform      Transform         `json:"transform"`
	Spotlight      *SpotlightOverlay `json:"spotlight,omitempty"`
	Text           *TextOverlay      `json:"text,omitempty"`
	Video          *core.VideoParams `json:"video,omitempty"`
	Quiz           *core.QuizParams  `json:"quiz,omitempty"`
}

// Runner executes triggered effects against one slide's coordinate space.
//
// Invariants it enforces:
//   - every effect is time-bounded: it runs for its duration or until
//     dismissed, and its completion callback fires exactly once;
//   - last-trigger-wins: a new trigger cancels the in-flight timer of a
//     still-running effect, and a monotonically increasing generation
//     counter discards stale timer callbacks from superseded effects;
//   - the viewport transform is held by at most one effect at a time, and
//     every completion, dismissal, reset, and teardown path restores the
//     identity baseline.
type Runner struct {
	mu        sync.Mutex
	sched     Scheduler
	notify    func(State)
	container Size

	gen    uint64
	timer  TimerHandle
	done   func()
	state  State
	active bool
	closed bool
}

// NewRunner creates an effect runner for a container of the given pixel
// bounds. A nil scheduler falls back to wall-clock timers; notify may be nil
// when no subscriber cares about state changes.
func NewRunner(container Size, sched Scheduler, notify func(State)) *Runner {
	if sched == nil {
		sched = NewScheduler()
	}
	return &Runner{
		sched:     sched,
		notify:    notify,
		container: container,
		state:     State{Transform: IdentityTransform()},
	}
}

// Resize updates the container bounds used for subsequent triggers.
func (r *Runner) Resize(container Size) {
	r.mu.Lock()
	r.container = container
	r.mu.Unlock()
}

// Trigger starts the effect, superseding any still-running one. done, if not
// nil, is called exactly once when the effect completes or is dismissed; it
// is discarded without firing if the effect is superseded, reset, or torn
// down first.
func (r *Runner) Trigger(effect core.Effect, done func()) error {
	if err := effect.Validate(); err != nil {
		return fmt.Errorf("cannot trigger effect: %w", err)
	}

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return fmt.Errorf("effect runner is closed")
	}

	// Cancel the in-flight timer before starting a new one-shot, so two
	// completion callbacks can never fire for one visual instance.
	if r.timer != nil {
		r.timer.Cancel()
		r.timer = nil
	}
	r.done = nil

	r.gen++
	gen := r.gen

	state := State{
		Generation:     gen,
		ActiveEffectID: effect.ID,
		ActiveType:     effect.Type,
		Transform:      IdentityTransform(),
	}
	switch effect.Type {
	case core.EffectSpotlight:
		overlay := BuildSpotlight(*effect.Spotlight)
		state.Spotlight = &overlay
	case core.EffectPanZoom:
		state.Transform = PanZoomTransform(r.container, effect.PanZoom.Target, effect.PanZoom.ZoomLevel)
	case core.EffectText:
		overlay := BuildText(*effect.Text)
		state.Text = &overlay
	case core.EffectVideo:
		video := *effect.Video
		state.Video = &video
	case core.EffectQuiz:
		quiz := *effect.Quiz
		state.Quiz = &quiz
	}

	r.state = state
	r.active = true
	r.done = done
	if effect.DurationMs > 0 {
		r.timer = r.sched.Schedule(time.Duration(effect.DurationMs)*time.Millisecond, func() {
			r.finish(gen)
		})
	}
	notify := r.notify
	r.mu.Unlock()

	if notify != nil {
		notify(state)
	}
	return nil
}

// Dismiss ends the active effect early. Early dismissal is completion, not
// cancellation-with-rollback: the completion callback still fires and the
// baseline is restored.
func (r *Runner) Dismiss() {
	r.mu.Lock()
	if r.closed || !r.active {
		r.mu.Unlock()
		return
	}
	gen := r.gen
	r.mu.Unlock()

	r.finish(gen)
}

// finish restores the baseline and fires the completion callback, unless the
// generation shows the effect was superseded in the meantime.
func (r *Runner) finish(gen uint64) {
	r.mu.Lock()
	if r.closed || gen != r.gen {
		r.mu.Unlock()
		return
	}
	if r.timer != nil {
		r.timer.Cancel()
		r.timer = nil
	}
	done := r.done
	r.done = nil
	r.active = false
	state := State{Generation: gen, Transform: IdentityTransform()}
	r.state = state
	notify := r.notify
	r.mu.Unlock()

	if notify != nil {
		notify(state)
	}
	if done != nil {
		done()
	}
}

// Reset cancels any pending effect without firing its completion callback
// and restores the baseline. Step navigation and slide changes use this: a
// timeline step has no "already played" memory, so leaving a step simply
// discards its in-flight effects.
func (r *Runner) Reset() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	if r.timer != nil {
		r.timer.Cancel()
		r.timer = nil
	}
	r.done = nil
	r.active = false
	r.gen++
	state := State{Generation: r.gen, Transform: IdentityTransform()}
	r.state = state
	notify := r.notify
	r.mu.Unlock()

	if notify != nil {
		notify(state)
	}
}

// Close tears the runner down: all pending timers are cancelled, no further
// completion callbacks or notifications fire, and subsequent triggers fail.
func (r *Runner) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	r.closed = true
	if r.timer != nil {
		r.timer.Cancel()
		r.timer = nil
	}
	r.done = nil
	r.active = false
	r.gen++
	r.state = State{Generation: r.gen, Transform: IdentityTransform()}
}

// State returns a snapshot of the current render state.
func (r *Runner) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Active reports whether an effect is currently running, and its id. The
// flag, not the id, is the source of truth: effects may run without an id.
func (r *Runner) Active() (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state.ActiveEffectID, r.active
}
