package playback

import (
	"testing"

	"interdeck/core"
)

func sampleTimeline() []core.TimelineEvent {
	return []core.TimelineEvent{
		{ID: "ev1", Name: "intro", Step: 1, InteractionType: core.EffectText, Message: "welcome"},
		{ID: "ev2", Name: "zoom", Step: 3, InteractionType: core.EffectPanZoom, TargetID: "a", ZoomFactor: 2},
		{ID: "ev3", Name: "dim", Step: 5, InteractionType: core.EffectSpotlight, TargetID: "a", DimPercentage: 70},
	}
}

func TestSequencer_StartsAtStepOne(t *testing.T) {
	seq := NewSequencer(sampleTimeline())
	if got := seq.Current(); got != 1 {
		t.Errorf("Current() = %d, want 1", got)
	}
}

func TestSequencer_MaxStep(t *testing.T) {
	seq := NewSequencer(sampleTimeline())
	if got := seq.MaxStep(); got != 5 {
		t.Errorf("MaxStep() = %d, want 5", got)
	}

	empty := NewSequencer(nil)
	if got := empty.MaxStep(); got != 1 {
		t.Errorf("MaxStep() on empty timeline = %d, want 1", got)
	}
}

func TestSequencer_NextClampsAtMax(t *testing.T) {
	seq := NewSequencer(sampleTimeline())

	want := []int{2, 3, 4, 5, 5, 5}
	for i, w := range want {
		if got := seq.Next(); got != w {
			t.Errorf("Next() call %d = %d, want %d", i+1, got, w)
		}
	}
}

func TestSequencer_PrevClampsAtOne(t *testing.T) {
	seq := NewSequencer(sampleTimeline())
	seq.GoTo(3)

	want := []int{2, 1, 1}
	for i, w := range want {
		if got := seq.Prev(); got != w {
			t.Errorf("Prev() call %d = %d, want %d", i+1, got, w)
		}
	}
}

func TestSequencer_GoToClamps(t *testing.T) {
	seq := NewSequencer(sampleTimeline())

	if got := seq.GoTo(0); got != 1 {
		t.Errorf("GoTo(0) = %d, want 1", got)
	}
	if got := seq.GoTo(99); got != 5 {
		t.Errorf("GoTo(99) = %d, want 5", got)
	}
	if got := seq.GoTo(4); got != 4 {
		t.Errorf("GoTo(4) = %d, want 4", got)
	}
}

func TestSequencer_EventsAtExactStep(t *testing.T) {
	seq := NewSequencer(sampleTimeline())

	// Gap steps activate nothing; activation is exact equality, not <=.
	if got := seq.EventsAt(2); len(got) != 0 {
		t.Errorf("EventsAt(2) returned %d events, want 0", len(got))
	}
	if got := seq.EventsAt(4); len(got) != 0 {
		t.Errorf("EventsAt(4) returned %d events, want 0", len(got))
	}

	got := seq.EventsAt(3)
	if len(got) != 1 || got[0].ID != "ev2" {
		t.Errorf("EventsAt(3) = %+v, want [ev2]", got)
	}
	got = seq.EventsAt(5)
	if len(got) != 1 || got[0].ID != "ev3" {
		t.Errorf("EventsAt(5) = %+v, want [ev3]", got)
	}
}

func TestSequencer_SameStepEventsActivateTogether(t *testing.T) {
	seq := NewSequencer([]core.TimelineEvent{
		{ID: "ev1", Step: 3, InteractionType: core.EffectText},
		{ID: "ev2", Step: 2, InteractionType: core.EffectText},
		{ID: "ev3", Step: 3, InteractionType: core.EffectSpotlight},
	})

	got := seq.EventsAt(3)
	if len(got) != 2 {
		t.Fatalf("EventsAt(3) returned %d events, want 2", len(got))
	}
	// Original relative order is preserved.
	if got[0].ID != "ev1" || got[1].ID != "ev3" {
		t.Errorf("EventsAt(3) order = [%s, %s], want [ev1, ev3]", got[0].ID, got[1].ID)
	}
}

func TestSequencer_ActiveEventsFollowsCurrent(t *testing.T) {
	seq := NewSequencer(sampleTimeline())

	if got := seq.ActiveEvents(); len(got) != 1 || got[0].ID != "ev1" {
		t.Errorf("ActiveEvents() at step 1 = %+v, want [ev1]", got)
	}
	seq.GoTo(3)
	if got := seq.ActiveEvents(); len(got) != 1 || got[0].ID != "ev2" {
		t.Errorf("ActiveEvents() at step 3 = %+v, want [ev2]", got)
	}
}

func TestSequencer_RevisitingStepReplays(t *testing.T) {
	seq := NewSequencer(sampleTimeline())

	seq.GoTo(3)
	first := seq.ActiveEvents()
	seq.GoTo(5)
	seq.GoTo(3)
	second := seq.ActiveEvents()

	if len(first) != len(second) || first[0].ID != second[0].ID {
		t.Errorf("revisiting step 3 changed activation: first %+v, second %+v", first, second)
	}
}

func TestSequencer_AddAssignsIDAndStep(t *testing.T) {
	seq := NewSequencer(nil)
	seq.GoTo(1)

	stored := seq.Add(core.TimelineEvent{Name: "new", InteractionType: core.EffectText})
	if stored.ID == "" {
		t.Error("Add() did not assign an id")
	}
	if stored.Step != 1 {
		t.Errorf("Add() step = %d, want current step 1", stored.Step)
	}

	explicit := seq.Add(core.TimelineEvent{ID: "ev-x", Step: 7, InteractionType: core.EffectText})
	if explicit.ID != "ev-x" || explicit.Step != 7 {
		t.Errorf("Add() overrode explicit fields: %+v", explicit)
	}

	if got := len(seq.Events()); got != 2 {
		t.Errorf("Events() length = %d, want 2", got)
	}
}

func TestSequencer_RemoveKeepsStepNumbers(t *testing.T) {
	seq := NewSequencer(sampleTimeline())

	if err := seq.Remove("ev2"); err != nil {
		t.Fatalf("Remove() failed: %v", err)
	}

	events := seq.Events()
	if len(events) != 2 {
		t.Fatalf("got %d events after remove, want 2", len(events))
	}
	// ev3 keeps step 5; removal never renumbers.
	if events[1].ID != "ev3" || events[1].Step != 5 {
		t.Errorf("remaining event = %+v, want ev3 at step 5", events[1])
	}

	if err := seq.Remove("ev2"); err == nil {
		t.Error("Remove() of missing event should fail")
	}
}

func TestSequencer_EditPreservesID(t *testing.T) {
	seq := NewSequencer(sampleTimeline())

	update := core.TimelineEvent{ID: "ignored", Name: "renamed", Step: 9, InteractionType: core.EffectText}
	if err := seq.Edit("ev1", update); err != nil {
		t.Fatalf("Edit() failed: %v", err)
	}

	events := seq.Events()
	if events[0].ID != "ev1" {
		t.Errorf("Edit() changed the id to %q", events[0].ID)
	}
	if events[0].Name != "renamed" || events[0].Step != 9 {
		t.Errorf("Edit() did not apply fields: %+v", events[0])
	}

	if err := seq.Edit("missing", update); err == nil {
		t.Error("Edit() of missing event should fail")
	}
}

func TestSequencer_EventsReturnsCopy(t *testing.T) {
	seq := NewSequencer(sampleTimeline())

	events := seq.Events()
	events[0].Name = "mutated"

	if got := seq.Events()[0].Name; got != "intro" {
		t.Errorf("mutating the returned slice leaked into the sequencer: %q", got)
	}
}
