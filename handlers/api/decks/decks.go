package decks

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/sirupsen/logrus"

	"interdeck/core"
	"interdeck/handlers/auth"
	"interdeck/middleware"
	"interdeck/stores"
)

type (
	PublishResponse struct {
		ID string `json:"id"`
	}
)

func claimsFrom(r *http.Request) (*auth.AppClaims, bool) {
	claims, ok := r.Context().Value(middleware.ClaimsContextKey).(*auth.AppClaims)
	return claims, ok
}

func HandleList(store stores.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := claimsFrom(r)
		if !ok {
			render.Status(r, http.StatusUnauthorized)
			render.JSON(w, r, map[string]string{"error": "User claims not found"})
			return
		}

		decks, err := store.List(r.Context(), claims.Subject)
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"error":  err,
				"userID": claims.Subject,
			}).Error("Failed to list decks")
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, map[string]string{"error": "Failed to list decks"})
			return
		}

		// If decks is nil (e.g., user has no decks), return an empty slice instead of null.
		if decks == nil {
			decks = []*core.Deck{}
		}

		render.JSON(w, r, decks)
	}
}

func HandleGet(store stores.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := claimsFrom(r)
		if !ok {
			render.Status(r, http.StatusUnauthorized)
			render.JSON(w, r, map[string]string{"error": "User claims not found"})
			return
		}

		id := chi.URLParam(r, "id")
		if id == "" {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, map[string]string{"error": "Deck id is required"})
			return
		}

		deck, err := store.Get(r.Context(), claims.Subject, id)
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"error":  err,
				"userID": claims.Subject,
				"deckID": id,
			}).Warn("Failed to get deck")
			render.Status(r, http.StatusNotFound)
			render.JSON(w, r, map[string]string{"error": "Deck not found"})
			return
		}

		render.JSON(w, r, deck)
	}
}

// HandleSave validates and persists a deck. Configuration errors (missing
// breakpoint rectangles, unknown effect types, dangling timeline targets)
// block the save with a structured 422 report instead of being defaulted.
func HandleSave(store stores.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := claimsFrom(r)
		if !ok {
			render.Status(r, http.StatusUnauthorized)
			render.JSON(w, r, map[string]string{"error": "User claims not found"})
			return
		}

		id := chi.URLParam(r, "id")
		if id == "" {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, map[string]string{"error": "Deck id is required"})
			return
		}

		var deck core.Deck
		if err := json.NewDecoder(r.Body).Decode(&deck); err != nil {
			logrus.WithFields(logrus.Fields{
				"error":  err,
				"deckID": id,
			}).Warn("Failed to decode deck body")
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, map[string]string{"error": err.Error()})
			return
		}
		defer r.Body.Close()

		deck.ID = id
		deck.UserID = claims.Subject

		if err := core.ValidateDeck(&deck); err != nil {
			var verr *core.ValidationError
			if errors.As(err, &verr) {
				render.Status(r, http.StatusUnprocessableEntity)
				render.JSON(w, r, verr)
				return
			}
			render.Status(r, http.StatusUnprocessableEntity)
			render.JSON(w, r, map[string]string{"error": err.Error()})
			return
		}

		if err := store.Save(r.Context(), &deck); err != nil {
			logrus.WithFields(logrus.Fields{
				"error":  err,
				"userID": claims.Subject,
				"deckID": id,
			}).Error("Failed to save deck")
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, map[string]string{"error": "Failed to save deck"})
			return
		}

		render.Status(r, http.StatusOK)
		render.JSON(w, r, deck)
	}
}

func HandleDelete(store stores.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := claimsFrom(r)
		if !ok {
			render.Status(r, http.StatusUnauthorized)
			render.JSON(w, r, map[string]string{"error": "User claims not found"})
			return
		}

		id := chi.URLParam(r, "id")
		if id == "" {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, map[string]string{"error": "Deck id is required"})
			return
		}

		if err := store.Delete(r.Context(), claims.Subject, id); err != nil {
			logrus.WithFields(logrus.Fields{
				"error":  err,
				"userID": claims.Subject,
				"deckID": id,
			}).Error("Failed to delete deck")
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, map[string]string{"error": "Failed to delete deck"})
			return
		}

		render.Status(r, http.StatusOK)
	}
}

// HandlePublish snapshots a deck into the published store and returns its
// share id. Publishing revalidates: a deck with configuration errors never
// reaches viewers.
func HandlePublish(store stores.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := claimsFrom(r)
		if !ok {
			render.Status(r, http.StatusUnauthorized)
			render.JSON(w, r, map[string]string{"error": "User claims not found"})
			return
		}

		id := chi.URLParam(r, "id")
		deck, err := store.Get(r.Context(), claims.Subject, id)
		if err != nil {
			render.Status(r, http.StatusNotFound)
			render.JSON(w, r, map[string]string{"error": "Deck not found"})
			return
		}

		if err := core.ValidateDeck(deck); err != nil {
			var verr *core.ValidationError
			if errors.As(err, &verr) {
				render.Status(r, http.StatusUnprocessableEntity)
				render.JSON(w, r, verr)
				return
			}
			render.Status(r, http.StatusUnprocessableEntity)
			render.JSON(w, r, map[string]string{"error": err.Error()})
			return
		}

		data, err := json.Marshal(deck)
		if err != nil {
			logrus.WithError(err).Error("Failed to marshal deck for publishing")
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, map[string]string{"error": "Failed to publish deck"})
			return
		}

		shareID, err := store.Create(r.Context(), &core.PublishedDeck{Data: *bytes.NewBuffer(data)})
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"error":  err,
				"userID": claims.Subject,
				"deckID": id,
			}).Error("Failed to store published deck")
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, map[string]string{"error": "Failed to publish deck"})
			return
		}

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, PublishResponse{ID: shareID})
	}
}

// HandleGetPublished serves a published snapshot to anonymous viewers.
func HandleGetPublished(store stores.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if id == "" {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, map[string]string{"error": "Share id is required"})
			return
		}

		published, err := store.FindID(r.Context(), id)
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"error":   err,
				"shareID": id,
			}).Warn("Failed to get published deck")
			render.Status(r, http.StatusNotFound)
			render.JSON(w, r, map[string]string{"error": "Published deck not found"})
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write(published.Data.Bytes())
	}
}
