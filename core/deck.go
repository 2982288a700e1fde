package core

import (
	"bytes"
	"context"
	"time"
)

// Breakpoint is the discrete responsive classification of a viewport.
// Classification itself (viewport width thresholds) happens client-side;
// the server only ever sees the resulting tag.
type Breakpoint string

const (
	BreakpointDesktop Breakpoint = "desktop"
	BreakpointTablet  Breakpoint = "tablet"
	BreakpointMobile  Breakpoint = "mobile"
)

// Breakpoints lists every breakpoint a ResponsivePosition must cover.
var Breakpoints = []Breakpoint{BreakpointDesktop, BreakpointTablet, BreakpointMobile}

func (b Breakpoint) Valid() bool {
	switch b {
	case BreakpointDesktop, BreakpointTablet, BreakpointMobile:
		return true
	}
	return false
}

// Rect is a fixed rectangle in container-relative pixel coordinates.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// CenterX returns the horizontal midpoint of the rectangle.
func (r Rect) CenterX() float64 { return r.X + r.Width/2 }

// CenterY returns the vertical midpoint of the rectangle.
func (r Rect) CenterY() float64 { return r.Y + r.Height/2 }

// ResponsivePosition maps each breakpoint to its own fixed pixel rectangle.
// Rectangles are authored independently per breakpoint; there is no derived
// scaling between them. A nil rectangle is a configuration error caught by
// validation, never papered over at render time.
type ResponsivePosition struct {
	Desktop *Rect `json:"desktop"`
	Tablet  *Rect `json:"tablet"`
	Mobile  *Rect `json:"mobile"`
}

// Rect returns the rectangle authored for the given breakpoint.
func (p ResponsivePosition) Rect(b Breakpoint) (*Rect, bool) {
	switch b {
	case BreakpointDesktop:
		return p.Desktop, p.Desktop != nil
	case BreakpointTablet:
		return p.Tablet, p.Tablet != nil
	case BreakpointMobile:
		return p.Mobile, p.Mobile != nil
	}
	return nil, false
}

// ElementKind tags the variant of a slide element.
type ElementKind string

const (
	ElementHotspot ElementKind = "hotspot"
	ElementText    ElementKind = "text"
	ElementMedia   ElementKind = "media"
	ElementShape   ElementKind = "shape"
)

func (k ElementKind) Valid() bool {
	switch k {
	case ElementHotspot, ElementText, ElementMedia, ElementShape:
		return true
	}
	return false
}

// TriggerKind is the user input that fires an interaction.
type TriggerKind string

const (
	TriggerClick TriggerKind = "click"
	TriggerHover TriggerKind = "hover"
)

func (t TriggerKind) Valid() bool {
	return t == TriggerClick || t == TriggerHover
}

// Interaction binds a trigger to exactly one effect.
type Interaction struct {
	Trigger TriggerKind `json:"trigger"`
	Effect  Effect      `json:"effect"`
}

// ElementStyle carries the visual styling of an element.
type ElementStyle struct {
	Color       string `json:"color,omitempty"`
	BorderColor string `json:"borderColor,omitempty"`
	BorderWidth int    `json:"borderWidth,omitempty"`
	Animation   string `json:"animation,omitempty"`
}

// Element is a single interactive item on a slide.
type Element struct {
	ID           string             `json:"id"`
	Kind         ElementKind        `json:"kind"`
	Position     ResponsivePosition `json:"position"`
	Title        string             `json:"title,omitempty"`
	Description  string             `json:"description,omitempty"`
	MediaURL     string             `json:"mediaUrl,omitempty"`
	Interactions []Interaction      `json:"interactions,omitempty"`
	Style        ElementStyle       `json:"style,omitempty"`
	Hidden       bool               `json:"hidden,omitempty"`
}

// Layout declares the coordinate space of a slide. Every element rectangle
// and every effect target is expressed in this container's pixel space.
type Layout struct {
	ContainerWidth  float64 `json:"containerWidth"`
	ContainerHeight float64 `json:"containerHeight"`
	AspectRatio     string  `json:"aspectRatio,omitempty"`
	ScalingMode     string  `json:"scalingMode,omitempty"`
}

// Transition describes how a slide enters or advances.
type Transition struct {
	Type       string `json:"type"`
	DurationMs int    `json:"duration,omitempty"`
}

// Slide owns its elements exclusively; removing a slide destroys them.
type Slide struct {
	ID          string       `json:"id"`
	Title       string       `json:"title,omitempty"`
	Background  string       `json:"background,omitempty"`
	Elements    []Element    `json:"elements"`
	Transitions []Transition `json:"transitions,omitempty"`
	Layout      Layout       `json:"layout"`
}

// PlaybackSettings are deck-global viewer options.
type PlaybackSettings struct {
	AutoAdvance     bool `json:"autoAdvance"`
	AllowNavigation bool `json:"allowNavigation"`
	ShowProgress    bool `json:"showProgress"`
}

// Deck is the top-level authored document: an ordered sequence of slides
// plus the step timeline that drives guided playback.
type Deck struct {
	ID        string           `json:"id"`
	UserID    string           `json:"-"` // Not exposed in JSON responses, used internally.
	Title     string           `json:"title"`
	Slides    []Slide          `json:"slides,omitempty"`
	Timeline  []TimelineEvent  `json:"timeline,omitempty"`
	Playback  PlaybackSettings `json:"playback"`
	CreatedAt time.Time        `json:"createdAt"`
	UpdatedAt time.Time        `json:"updatedAt"`
}

// PublishedDeck is an immutable snapshot created at publish time and served
// to anonymous viewers by share id.
type PublishedDeck struct {
	Data bytes.Buffer
}

type (
	// DeckStore defines the persistence layer for user-owned decks.
	// All operations are scoped to a specific user.
	DeckStore interface {
		// List returns metadata for all decks owned by a user. The returned
		// decks carry no Slides or Timeline to keep the response light.
		List(ctx context.Context, userID string) ([]*Deck, error)

		// Get returns a single deck by its ID, ensuring it belongs to the user.
		Get(ctx context.Context, userID, id string) (*Deck, error)

		// Save creates or updates a deck for a user.
		Save(ctx context.Context, deck *Deck) error

		// Delete removes a deck, ensuring it belongs to the user.
		Delete(ctx context.Context, userID, id string) error
	}

	// PublishedStore persists published deck snapshots for anonymous viewing.
	PublishedStore interface {
		FindID(ctx context.Context, id string) (*PublishedDeck, error)
		Create(ctx context.Context, deck *PublishedDeck) (string, error)
	}
)
