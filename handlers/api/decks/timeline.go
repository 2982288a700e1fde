package decks

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/sirupsen/logrus"

	"interdeck/core"
	"interdeck/playback"
	"interdeck/stores"
)

// Timeline event endpoints back the author-mode edit commands: add assigns a
// fresh id (step defaults when omitted), remove drops by id without
// renumbering the remaining steps, edit mutates fields in place. Each
// operation revalidates and persists the whole deck.

func loadDeckForEdit(w http.ResponseWriter, r *http.Request, store stores.Store) (*core.Deck, bool) {
	claims, ok := claimsFrom(r)
	if !ok {
		render.Status(r, http.StatusUnauthorized)
		render.JSON(w, r, map[string]string{"error": "User claims not found"})
		return nil, false
	}

	id := chi.URLParam(r, "id")
	deck, err := store.Get(r.Context(), claims.Subject, id)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"error":  err,
			"userID": claims.Subject,
			"deckID": id,
		}).Warn("Failed to get deck for timeline edit")
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, map[string]string{"error": "Deck not found"})
		return nil, false
	}
	return deck, true
}

func saveEditedDeck(w http.ResponseWriter, r *http.Request, store stores.Store, deck *core.Deck, seq *playback.Sequencer) bool {
	deck.Timeline = seq.Events()

	if err := core.ValidateDeck(deck); err != nil {
		render.Status(r, http.StatusUnprocessableEntity)
		render.JSON(w, r, err)
		return false
	}

	if err := store.Save(r.Context(), deck); err != nil {
		logrus.WithFields(logrus.Fields{
			"error":  err,
			"deckID": deck.ID,
		}).Error("Failed to save deck after timeline edit")
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, map[string]string{"error": "Failed to save deck"})
		return false
	}
	return true
}

func HandleAddEvent(store stores.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		deck, ok := loadDeckForEdit(w, r, store)
		if !ok {
			return
		}

		var ev core.TimelineEvent
		if err := json.NewDecoder(r.Body).Decode(&ev); err != nil {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, map[string]string{"error": err.Error()})
			return
		}
		defer r.Body.Close()

		seq := playback.NewSequencer(deck.Timeline)
		stored := seq.Add(ev)

		if !saveEditedDeck(w, r, store, deck, seq) {
			return
		}
		render.Status(r, http.StatusCreated)
		render.JSON(w, r, stored)
	}
}

func HandleEditEvent(store stores.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		deck, ok := loadDeckForEdit(w, r, store)
		if !ok {
			return
		}

		eventID := chi.URLParam(r, "eventId")
		var ev core.TimelineEvent
		if err := json.NewDecoder(r.Body).Decode(&ev); err != nil {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, map[string]string{"error": err.Error()})
			return
		}
		defer r.Body.Close()

		seq := playback.NewSequencer(deck.Timeline)
		if err := seq.Edit(eventID, ev); err != nil {
			render.Status(r, http.StatusNotFound)
			render.JSON(w, r, map[string]string{"error": err.Error()})
			return
		}

		if !saveEditedDeck(w, r, store, deck, seq) {
			return
		}
		render.Status(r, http.StatusOK)
	}
}

func HandleRemoveEvent(store stores.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		deck, ok := loadDeckForEdit(w, r, store)
		if !ok {
			return
		}

		eventID := chi.URLParam(r, "eventId")
		seq := playback.NewSequencer(deck.Timeline)
		if err := seq.Remove(eventID); err != nil {
			render.Status(r, http.StatusNotFound)
			render.JSON(w, r, map[string]string{"error": err.Error()})
			return
		}

		if !saveEditedDeck(w, r, store, deck, seq) {
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
