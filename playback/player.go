package playback

import (
	"context"
	"fmt"
	"sync"

	"interdeck/core"
)

// Player is one playback session over a deck: it composes the position
// resolver, effect runner, and timeline sequencer, tracks the current slide
// and step, and dispatches interaction triggers. It does not block step
// navigation while an effect or media load is pending; navigating away
// simply discards in-flight work.
type Player struct {
	mu        sync.Mutex
	deck      *core.Deck
	bp        core.Breakpoint
	slide     int
	seq       *Sequencer
	runner    *Runner
	mediaErrs map[string]error
	closed    bool

	ctx    context.Context
	cancel context.CancelFunc
}

// NewPlayer starts a session on the deck's first slide at step 1. The
// scheduler and notify subscriber are handed to the effect runner; both may
// be nil.
func NewPlayer(deck *core.Deck, bp core.Breakpoint, sched Scheduler, notify func(State)) (*Player, error) {
	if !bp.Valid() {
		return nil, fmt.Errorf("unknown breakpoint %q", bp)
	}
	if len(deck.Slides) == 0 {
		return nil, fmt.Errorf("deck %s has no slides", deck.ID)
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Player{
		deck:      deck,
		bp:        bp,
		seq:       NewSequencer(deck.Timeline),
		runner:    NewRunner(containerOf(&deck.Slides[0]), sched, notify),
		mediaErrs: make(map[string]error),
		ctx:       ctx,
		cancel:    cancel,
	}, nil
}

func containerOf(slide *core.Slide) Size {
	return Size{Width: slide.Layout.ContainerWidth, Height: slide.Layout.ContainerHeight}
}

// Context is cancelled on Close; pending media loads hang off it so teardown
// cannot leave fetches updating state after the session is gone.
func (p *Player) Context() context.Context {
	return p.ctx
}

// Slide returns the current slide.
func (p *Player) Slide() *core.Slide {
	p.mu.Lock()
	defer p.mu.Unlock()
	return &p.deck.Slides[p.slide]
}

// SlideIndex returns the zero-based index of the current slide.
func (p *Player) SlideIndex() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.slide
}

// GoToSlide switches the session to another slide, discarding any running
// effect and resizing the effect runner to the new slide's container.
func (p *Player) GoToSlide(index int) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return fmt.Errorf("player is closed")
	}
	if index < 0 || index >= len(p.deck.Slides) {
		return fmt.Errorf("slide index %d out of range", index)
	}
	p.slide = index
	p.runner.Reset()
	p.runner.Resize(containerOf(&p.deck.Slides[index]))
	return nil
}

// Frame resolves the current slide's element placements for the session's
// breakpoint.
func (p *Player) Frame() ([]Placement, error) {
	return SlideFrame(p.Slide(), p.bp)
}

// Step returns the current timeline step.
func (p *Player) Step() int {
	return p.seq.Current()
}

// NextStep advances the timeline. Any effect still running on the previous
// step is cancelled without completing; revisiting the step later replays it.
func (p *Player) NextStep() int {
	p.runner.Reset()
	return p.seq.Next()
}

// PrevStep retreats the timeline, with the same cancellation semantics as
// NextStep.
func (p *Player) PrevStep() int {
	p.runner.Reset()
	return p.seq.Prev()
}

// ActiveEvents returns the timeline events active at the current step.
func (p *Player) ActiveEvents() []core.TimelineEvent {
	return p.seq.ActiveEvents()
}

// Timeline exposes the sequencer for author-mode edits.
func (p *Player) Timeline() *Sequencer {
	return p.seq
}

// State returns the effect runner's current render state.
func (p *Player) State() State {
	return p.runner.State()
}

// Dismiss ends the running effect early (treated as completion).
func (p *Player) Dismiss() {
	p.runner.Dismiss()
}

// TriggerElement fires the interaction an element declares for the given
// trigger kind. Re-triggering supersedes any running effect.
func (p *Player) TriggerElement(elementID string, trigger core.TriggerKind, done func()) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return fmt.Errorf("player is closed")
	}
	slide := &p.deck.Slides[p.slide]
	p.mu.Unlock()

	for i := range slide.Elements {
		el := &slide.Elements[i]
		if el.ID != elementID {
			continue
		}
		for _, in := range el.Interactions {
			if in.Trigger == trigger {
				return p.runner.Trigger(in.Effect, done)
			}
		}
		return fmt.Errorf("element %s has no %s interaction", elementID, trigger)
	}
	return fmt.Errorf("element %s not found on slide", elementID)
}

// TriggerEvent plays a timeline event by id, resolving its target element's
// rectangle at the session breakpoint into an absolute effect.
func (p *Player) TriggerEvent(eventID string, done func()) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return fmt.Errorf("player is closed")
	}
	p.mu.Unlock()

	for _, ev := range p.seq.Events() {
		if ev.ID == eventID {
			effect, err := p.eventEffect(ev)
			if err != nil {
				return err
			}
			return p.runner.Trigger(effect, done)
		}
	}
	return fmt.Errorf("timeline event %s not found", eventID)
}

// eventEffect converts a timeline event into a concrete effect. Explicit
// spotlight geometry on the event wins; otherwise the target element's
// resolved rectangle anchors the effect.
func (p *Player) eventEffect(ev core.TimelineEvent) (core.Effect, error) {
	effect := core.Effect{
		ID:         ev.ID,
		Type:       ev.InteractionType,
		DurationMs: ev.DurationMs,
	}

	target, haveTarget, err := p.targetRect(ev.TargetID)
	if err != nil {
		return core.Effect{}, err
	}

	switch ev.InteractionType {
	case core.EffectSpotlight:
		if ev.Spotlight != nil {
			params := *ev.Spotlight
			if params.Intensity == 0 {
				params.Intensity = ev.DimPercentage
			}
			effect.Spotlight = &params
			return effect, nil
		}
		if !haveTarget {
			return core.Effect{}, fmt.Errorf("spotlight event %s needs a target or explicit geometry", ev.ID)
		}
		cutout := target
		shape := core.ShapeRectangle
		if ev.HighlightRadius > 0 {
			shape = core.ShapeCircle
			cutout = core.Rect{
				X:      target.CenterX() - ev.HighlightRadius,
				Y:      target.CenterY() - ev.HighlightRadius,
				Width:  ev.HighlightRadius * 2,
				Height: ev.HighlightRadius * 2,
			}
		}
		effect.Spotlight = &core.SpotlightParams{
			Position:  cutout,
			Shape:     shape,
			Intensity: ev.DimPercentage,
		}
	case core.EffectPanZoom:
		if !haveTarget {
			return core.Effect{}, fmt.Errorf("pan_zoom event %s needs a target", ev.ID)
		}
		zoom := ev.ZoomFactor
		if zoom == 0 {
			zoom = 1
		}
		effect.PanZoom = &core.PanZoomParams{Target: target, ZoomLevel: zoom, CenterOnTarget: true}
	case core.EffectText:
		position := target
		if ev.Spotlight != nil {
			position = ev.Spotlight.Position
		} else if !haveTarget {
			return core.Effect{}, fmt.Errorf("text event %s needs a target or explicit geometry", ev.ID)
		}
		effect.Text = &core.TextParams{Position: position, Content: ev.Message}
	default:
		return core.Effect{}, fmt.Errorf("timeline event %s has unplayable interaction type %q", ev.ID, ev.InteractionType)
	}
	return effect, nil
}

// targetRect resolves a timeline target's rectangle on the current slide.
func (p *Player) targetRect(targetID string) (core.Rect, bool, error) {
	if targetID == "" {
		return core.Rect{}, false, nil
	}

	p.mu.Lock()
	slide := &p.deck.Slides[p.slide]
	p.mu.Unlock()

	for i := range slide.Elements {
		if slide.Elements[i].ID == targetID {
			rect, err := ResolveRect(slide.Elements[i].Position, p.bp)
			if err != nil {
				return core.Rect{}, false, fmt.Errorf("target %s: %w", targetID, err)
			}
			return rect, true, nil
		}
	}
	return core.Rect{}, false, fmt.Errorf("target %s not found on current slide", targetID)
}

// SetMediaError records a failed media load for an element. Resource errors
// recover locally: the element renders an error affordance while the rest of
// the slide plays on.
func (p *Player) SetMediaError(elementID string, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.mediaErrs[elementID] = err
}

// MediaError reports the recorded load failure for an element, if any.
func (p *Player) MediaError(elementID string) (error, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	err, ok := p.mediaErrs[elementID]
	return err, ok
}

// Close tears the session down: pending effect timers are cancelled, the
// media-load context is cancelled, and no state changes escape afterwards.
// Close is idempotent.
func (p *Player) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	p.mu.Unlock()

	p.cancel()
	p.runner.Close()
}
