package core

import (
	"encoding/json"
	"fmt"
)

// EffectType tags the variant of a triggered visual effect.
type EffectType string

const (
	EffectSpotlight EffectType = "spotlight"
	EffectPanZoom   EffectType = "pan_zoom"
	EffectText      EffectType = "text"
	EffectVideo     EffectType = "video"
	EffectQuiz      EffectType = "quiz"
)

func (t EffectType) Valid() bool {
	switch t {
	case EffectSpotlight, EffectPanZoom, EffectText, EffectVideo, EffectQuiz:
		return true
	}
	return false
}

// SpotlightShape selects the cut-out geometry of a spotlight.
type SpotlightShape string

const (
	ShapeCircle    SpotlightShape = "circle"
	ShapeRectangle SpotlightShape = "rectangle"
)

func (s SpotlightShape) Valid() bool {
	return s == ShapeCircle || s == ShapeRectangle
}

// SpotlightParams dims the whole container except a cut-out at Position.
// The position is the effect's own absolute target, deliberately decoupled
// from the rectangle of whatever element triggered it. Intensity is 0-100;
// the render boundary maps it to overlay alpha as intensity/100.
type SpotlightParams struct {
	Position  Rect           `json:"position"`
	Shape     SpotlightShape `json:"shape"`
	Intensity float64        `json:"intensity"`
	FadeEdges bool           `json:"fadeEdges,omitempty"`
}

// PanZoomParams scales the slide viewport so the target rectangle's midpoint
// lands on the container's midpoint.
type PanZoomParams struct {
	Target         Rect    `json:"target"`
	ZoomLevel      float64 `json:"zoomLevel"`
	CenterOnTarget bool    `json:"centerOnTarget,omitempty"`
}

// TextParams renders a styled text block at an absolute rectangle.
type TextParams struct {
	Position   Rect   `json:"position"`
	Content    string `json:"content"`
	FontSize   int    `json:"fontSize,omitempty"`
	Color      string `json:"color,omitempty"`
	Background string `json:"background,omitempty"`
}

// VideoParams plays a media overlay from an already-resolved URL. Fetching
// and optimization belong to the media delivery collaborator.
type VideoParams struct {
	MediaURL string `json:"mediaUrl"`
	Loop     bool   `json:"loop,omitempty"`
	Muted    bool   `json:"muted,omitempty"`
}

// QuizParams shows an inline question overlay.
type QuizParams struct {
	Question     string   `json:"question"`
	Options      []string `json:"options"`
	CorrectIndex int      `json:"correctIndex"`
}

// Effect is a time-bounded visual behavior. The wire format keeps the
// editor's `{"type": ..., "parameters": {...}}` envelope, but in memory the
// parameters are a tagged union: exactly one variant pointer is set, matching
// Type. Unknown types and mismatched payloads are configuration errors.
type Effect struct {
	ID         string
	Type       EffectType
	DurationMs int
	Easing     string

	Spotlight *SpotlightParams
	PanZoom   *PanZoomParams
	Text      *TextParams
	Video     *VideoParams
	Quiz      *QuizParams
}

type effectEnvelope struct {
	ID         string          `json:"id,omitempty"`
	Type       EffectType      `json:"type"`
	DurationMs int             `json:"duration"`
	Easing     string          `json:"easing,omitempty"`
	Parameters json.RawMessage `json:"parameters,omitempty"`
}

func (e Effect) MarshalJSON() ([]byte, error) {
	env := effectEnvelope{
		ID:         e.ID,
		Type:       e.Type,
		DurationMs: e.DurationMs,
		Easing:     e.Easing,
	}

	var params any
	switch e.Type {
	case EffectSpotlight:
		params = e.Spotlight
	case EffectPanZoom:
		params = e.PanZoom
	case EffectText:
		params = e.Text
	case EffectVideo:
		params = e.Video
	case EffectQuiz:
		params = e.Quiz
	default:
		return nil, fmt.Errorf("unknown effect type %q", e.Type)
	}

	if params != nil {
		raw, err := json.Marshal(params)
		if err != nil {
			return nil, err
		}
		env.Parameters = raw
	}
	return json.Marshal(env)
}

func (e *Effect) UnmarshalJSON(data []byte) error {
	var env effectEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return err
	}

	*e = Effect{
		ID:         env.ID,
		Type:       env.Type,
		DurationMs: env.DurationMs,
		Easing:     env.Easing,
	}

	if !env.Type.Valid() {
		return fmt.Errorf("unknown effect type %q", env.Type)
	}
	if len(env.Parameters) == 0 {
		return fmt.Errorf("effect %q is missing parameters", env.Type)
	}

	switch env.Type {
	case EffectSpotlight:
		e.Spotlight = &SpotlightParams{}
		return json.Unmarshal(env.Parameters, e.Spotlight)
	case EffectPanZoom:
		e.PanZoom = &PanZoomParams{}
		return json.Unmarshal(env.Parameters, e.PanZoom)
	case EffectText:
		e.Text = &TextParams{}
		return json.Unmarshal(env.Parameters, e.Text)
	case EffectVideo:
		e.Video = &VideoParams{}
		return json.Unmarshal(env.Parameters, e.Video)
	case EffectQuiz:
		e.Quiz = &QuizParams{}
		return json.Unmarshal(env.Parameters, e.Quiz)
	}
	return nil
}

// Validate checks that the effect carries exactly the parameter variant its
// type demands, with sane values.
func (e *Effect) Validate() error {
	if !e.Type.Valid() {
		return fmt.Errorf("unknown effect type %q", e.Type)
	}
	if e.DurationMs < 0 {
		return fmt.Errorf("effect duration must not be negative, got %d", e.DurationMs)
	}

	set := 0
	for _, p := range []bool{
		e.Spotlight != nil, e.PanZoom != nil, e.Text != nil, e.Video != nil, e.Quiz != nil,
	} {
		if p {
			set++
		}
	}
	if set != 1 {
		return fmt.Errorf("effect %q must carry exactly one parameter payload, got %d", e.Type, set)
	}

	switch e.Type {
	case EffectSpotlight:
		if e.Spotlight == nil {
			return fmt.Errorf("effect %q carries mismatched parameters", e.Type)
		}
		if !e.Spotlight.Shape.Valid() {
			return fmt.Errorf("unknown spotlight shape %q", e.Spotlight.Shape)
		}
		if e.Spotlight.Intensity < 0 || e.Spotlight.Intensity > 100 {
			return fmt.Errorf("spotlight intensity must be within 0-100, got %v", e.Spotlight.Intensity)
		}
	case EffectPanZoom:
		if e.PanZoom == nil {
			return fmt.Errorf("effect %q carries mismatched parameters", e.Type)
		}
		if e.PanZoom.ZoomLevel <= 0 {
			return fmt.Errorf("pan_zoom zoom level must be positive, got %v", e.PanZoom.ZoomLevel)
		}
	case EffectText:
		if e.Text == nil {
			return fmt.Errorf("effect %q carries mismatched parameters", e.Type)
		}
	case EffectVideo:
		if e.Video == nil {
			return fmt.Errorf("effect %q carries mismatched parameters", e.Type)
		}
		if e.Video.MediaURL == "" {
			return fmt.Errorf("video effect needs a media url")
		}
	case EffectQuiz:
		if e.Quiz == nil {
			return fmt.Errorf("effect %q carries mismatched parameters", e.Type)
		}
		if len(e.Quiz.Options) == 0 {
			return fmt.Errorf("quiz effect needs options")
		}
		if e.Quiz.CorrectIndex < 0 || e.Quiz.CorrectIndex >= len(e.Quiz.Options) {
			return fmt.Errorf("quiz correct index %d out of range", e.Quiz.CorrectIndex)
		}
	}
	return nil
}
