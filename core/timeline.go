package core

// TimelineEvent is one named entry on a deck's step timeline. Steps are
// 1-based and need not be contiguous; gaps order playback without acting as
// a dense index, and several events may share a step (they activate
// together). Events reference elements by id only, never by pointer.
//
// DimPercentage follows the canonical 0-100 intensity convention; the render
// boundary divides by 100 to obtain overlay alpha.
type TimelineEvent struct {
	ID              string           `json:"id"`
	Name            string           `json:"name"`
	Step            int              `json:"step"`
	InteractionType EffectType       `json:"interactionType"`
	TargetID        string           `json:"targetId,omitempty"`
	Message         string           `json:"message,omitempty"`
	DurationMs      int              `json:"duration,omitempty"`
	ZoomFactor      float64          `json:"zoomFactor,omitempty"`
	HighlightRadius float64          `json:"highlightRadius,omitempty"`
	DimPercentage   float64          `json:"dimPercentage,omitempty"`
	Spotlight       *SpotlightParams `json:"spotlight,omitempty"`
}
