package core

import (
	"fmt"
	"strings"
)

// ValidationIssue pinpoints one configuration error inside a deck.
type ValidationIssue struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

// ValidationError aggregates every configuration error found in a deck.
// Configuration errors fail fast and loud: they block save and publish
// instead of being silently defaulted at render time.
type ValidationError struct {
	Issues []ValidationIssue `json:"issues"`
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		msgs = append(msgs, fmt.Sprintf("%s: %s", issue.Path, issue.Message))
	}
	return fmt.Sprintf("deck has %d configuration error(s): %s", len(e.Issues), strings.Join(msgs, "; "))
}

type validator struct {
	issues []ValidationIssue
}

func (v *validator) addf(path, format string, args ...any) {
	v.issues = append(v.issues, ValidationIssue{Path: path, Message: fmt.Sprintf(format, args...)})
}

// ValidateDeck checks a deck for configuration errors: incomplete responsive
// positions, unknown type tags, mismatched effect payloads, and timeline
// events that dangle or sit outside the 1-based step range. It returns a
// *ValidationError listing every issue, or nil for a well-formed deck.
func ValidateDeck(deck *Deck) error {
	v := &validator{}

	elementIDs := make(map[string]bool)
	slideIDs := make(map[string]bool)
	effectIDs := make(map[string]bool)

	for si, slide := range deck.Slides {
		path := fmt.Sprintf("slides[%d]", si)
		if slide.ID == "" {
			v.addf(path, "slide is missing an id")
		} else if slideIDs[slide.ID] {
			v.addf(path, "duplicate slide id %q", slide.ID)
		}
		slideIDs[slide.ID] = true

		if slide.Layout.ContainerWidth <= 0 || slide.Layout.ContainerHeight <= 0 {
			v.addf(path+".layout", "container dimensions must be positive, got %vx%v",
				slide.Layout.ContainerWidth, slide.Layout.ContainerHeight)
		}

		for ei, el := range slide.Elements {
			elPath := fmt.Sprintf("%s.elements[%d]", path, ei)
			if el.ID == "" {
				v.addf(elPath, "element is missing an id")
			} else if elementIDs[el.ID] {
				v.addf(elPath, "duplicate element id %q", el.ID)
			}
			elementIDs[el.ID] = true

			if !el.Kind.Valid() {
				v.addf(elPath, "unknown element kind %q", el.Kind)
			}
			v.checkPosition(elPath+".position", el.Position)

			for ii, in := range el.Interactions {
				inPath := fmt.Sprintf("%s.interactions[%d]", elPath, ii)
				if !in.Trigger.Valid() {
					v.addf(inPath, "unknown trigger %q", in.Trigger)
				}
				if in.Effect.ID == "" {
					v.addf(inPath+".effect", "effect is missing an id")
				} else if effectIDs[in.Effect.ID] {
					v.addf(inPath+".effect", "duplicate effect id %q", in.Effect.ID)
				}
				effectIDs[in.Effect.ID] = true
				if err := in.Effect.Validate(); err != nil {
					v.addf(inPath+".effect", "%v", err)
				}
			}
		}
	}

	eventIDs := make(map[string]bool)
	for ti, ev := range deck.Timeline {
		evPath := fmt.Sprintf("timeline[%d]", ti)
		if ev.ID == "" {
			v.addf(evPath, "timeline event is missing an id")
		} else if eventIDs[ev.ID] {
			v.addf(evPath, "duplicate timeline event id %q", ev.ID)
		}
		eventIDs[ev.ID] = true

		if ev.Step < 1 {
			v.addf(evPath, "step must be 1 or greater, got %d", ev.Step)
		}
		if !ev.InteractionType.Valid() {
			v.addf(evPath, "unknown interaction type %q", ev.InteractionType)
		}
		if ev.TargetID != "" && !elementIDs[ev.TargetID] {
			v.addf(evPath, "target %q does not reference any element", ev.TargetID)
		}
		if ev.DimPercentage < 0 || ev.DimPercentage > 100 {
			v.addf(evPath, "dim percentage must be within 0-100, got %v", ev.DimPercentage)
		}
		if ev.Spotlight != nil && !ev.Spotlight.Shape.Valid() {
			v.addf(evPath+".spotlight", "unknown spotlight shape %q", ev.Spotlight.Shape)
		}
	}

	if len(v.issues) > 0 {
		return &ValidationError{Issues: v.issues}
	}
	return nil
}

// checkPosition enforces the invariant that every breakpoint carries its own
// rectangle. Absence is an authoring-time configuration error, not a runtime
// condition the renderer may synthesize a fallback for.
func (v *validator) checkPosition(path string, pos ResponsivePosition) {
	for _, bp := range Breakpoints {
		rect, ok := pos.Rect(bp)
		if !ok {
			v.addf(path, "missing rectangle for breakpoint %q", bp)
			continue
		}
		if rect.Width <= 0 || rect.Height <= 0 {
			v.addf(path, "rectangle for breakpoint %q must have positive size, got %vx%v",
				bp, rect.Width, rect.Height)
		}
	}
}
