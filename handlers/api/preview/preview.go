package preview

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/render"
	"github.com/sirupsen/logrus"

	"interdeck/core"
	"interdeck/playback"
)

// The preview endpoints expose the playback core statelessly: the editor
// posts a slide or an effect and gets back the exact render instructions the
// viewer would compute, which keeps authoring previews and playback on one
// code path.

type (
	FrameRequest struct {
		Slide      core.Slide      `json:"slide"`
		Breakpoint core.Breakpoint `json:"breakpoint"`
	}

	FrameResponse struct {
		Placements []playback.Placement `json:"placements"`
	}

	EffectRequest struct {
		Effect    core.Effect   `json:"effect"`
		Container playback.Size `json:"container"`
	}

	EffectResponse struct {
		Transform playback.Transform         `json:"transform"`
		Spotlight *playback.SpotlightOverlay `json:"spotlight,omitempty"`
		Text      *playback.TextOverlay      `json:"text,omitempty"`
	}
)

// HandleFrame resolves a slide's element placements for a breakpoint.
func HandleFrame() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req FrameRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logrus.WithField("error", err).Warn("Failed to decode frame request")
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, map[string]string{"error": err.Error()})
			return
		}
		defer r.Body.Close()

		placements, err := playback.SlideFrame(&req.Slide, req.Breakpoint)
		if err != nil {
			render.Status(r, http.StatusUnprocessableEntity)
			render.JSON(w, r, map[string]string{"error": err.Error()})
			return
		}

		render.JSON(w, r, FrameResponse{Placements: placements})
	}
}

// HandleEffect resolves an effect against container bounds into render
// instructions without starting a timer.
func HandleEffect() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req EffectRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logrus.WithField("error", err).Warn("Failed to decode effect request")
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, map[string]string{"error": err.Error()})
			return
		}
		defer r.Body.Close()

		if err := req.Effect.Validate(); err != nil {
			render.Status(r, http.StatusUnprocessableEntity)
			render.JSON(w, r, map[string]string{"error": err.Error()})
			return
		}

		resp := EffectResponse{Transform: playback.IdentityTransform()}
		switch req.Effect.Type {
		case core.EffectSpotlight:
			overlay := playback.BuildSpotlight(*req.Effect.Spotlight)
			resp.Spotlight = &overlay
		case core.EffectPanZoom:
			resp.Transform = playback.PanZoomTransform(req.Container, req.Effect.PanZoom.Target, req.Effect.PanZoom.ZoomLevel)
		case core.EffectText:
			overlay := playback.BuildText(*req.Effect.Text)
			resp.Text = &overlay
		}

		render.JSON(w, r, resp)
	}
}
