package playback

import (
	"fmt"
	"sync"

	"github.com/oklog/ulid/v2"

	"interdeck/core"
)

// Sequencer orders timeline events by step and tracks the current step.
// Activation is a pure function of (events, step): there is no per-event
// lifecycle and no "already played" memory, so revisiting a step replays its
// events. Steps are 1-based, gaps are permitted, and several events may
// share a step.
type Sequencer struct {
	mu      sync.Mutex
	events  []core.TimelineEvent
	current int
}

// NewSequencer copies the given events and starts at step 1.
func NewSequencer(events []core.TimelineEvent) *Sequencer {
	s := &Sequencer{
		events:  make([]core.TimelineEvent, len(events)),
		current: 1,
	}
	copy(s.events, events)
	return s
}

// Current returns the current step.
func (s *Sequencer) Current() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// MaxStep returns the highest step any event declares, or 1 when the
// timeline is empty.
func (s *Sequencer) MaxStep() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.maxStepLocked()
}

func (s *Sequencer) maxStepLocked() int {
	max := 1
	for _, ev := range s.events {
		if ev.Step > max {
			max = ev.Step
		}
	}
	return max
}

// Next advances one step, clamped to the highest declared step.
func (s *Sequencer) Next() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current < s.maxStepLocked() {
		s.current++
	}
	return s.current
}

// Prev retreats one step, clamped to 1.
func (s *Sequencer) Prev() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current > 1 {
		s.current--
	}
	return s.current
}

// GoTo jumps to the given step, clamped to [1, MaxStep].
func (s *Sequencer) GoTo(step int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if step < 1 {
		step = 1
	}
	if max := s.maxStepLocked(); step > max {
		step = max
	}
	s.current = step
	return s.current
}

// EventsAt returns every event whose step equals the given step, preserving
// original relative order. Same-step events have no inherent ordering beyond
// that.
func (s *Sequencer) EventsAt(step int) []core.TimelineEvent {
	s.mu.Lock()
	defer s.mu.Unlock()

	var active []core.TimelineEvent
	for _, ev := range s.events {
		if ev.Step == step {
			active = append(active, ev)
		}
	}
	return active
}

// ActiveEvents returns the events active at the current step.
func (s *Sequencer) ActiveEvents() []core.TimelineEvent {
	return s.EventsAt(s.Current())
}

// Events returns a copy of the full event list for persistence.
func (s *Sequencer) Events() []core.TimelineEvent {
	s.mu.Lock()
	defer s.mu.Unlock()

	events := make([]core.TimelineEvent, len(s.events))
	copy(events, s.events)
	return events
}

// Add appends an event in author mode. A missing id gets a fresh ULID and a
// missing step defaults to the current step. The stored event is returned.
func (s *Sequencer) Add(ev core.TimelineEvent) core.TimelineEvent {
	s.mu.Lock()
	defer s.mu.Unlock()

	if ev.ID == "" {
		ev.ID = ulid.Make().String()
	}
	if ev.Step == 0 {
		ev.Step = s.current
	}
	s.events = append(s.events, ev)
	return ev
}

// Remove drops an event by id. Remaining steps are not renumbered: gaps are
// meaningful only as ordering, never as a dense index.
func (s *Sequencer) Remove(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, ev := range s.events {
		if ev.ID == id {
			s.events = append(s.events[:i], s.events[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("timeline event %s not found", id)
}

// Edit replaces an event's fields in place by id, preserving the id itself.
func (s *Sequencer) Edit(id string, update core.TimelineEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.events {
		if s.events[i].ID == id {
			update.ID = id
			s.events[i] = update
			return nil
		}
	}
	return fmt.Errorf("timeline event %s not found", id)
}
