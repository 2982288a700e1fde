package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/sirupsen/logrus"

	"interdeck/core"
)

// memStore implements both DeckStore and PublishedStore for in-memory storage.
type memStore struct {
	mu sync.RWMutex
	// decks is keyed by userID, then by deckID.
	decks     map[string]map[string]*core.Deck
	published map[string]core.PublishedDeck
}

// NewStore creates a new in-memory store.
func NewStore() *memStore {
	return &memStore{
		decks:     make(map[string]map[string]*core.Deck),
		published: make(map[string]core.PublishedDeck),
	}
}

// FindID retrieves a published deck by its share id. Part of the PublishedStore interface.
func (s *memStore) FindID(ctx context.Context, id string) (*core.PublishedDeck, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	log := logrus.WithField("published_id", id)
	if val, ok := s.published[id]; ok {
		log.Info("Published deck retrieved successfully")
		return &val, nil
	}
	log.WithField("error", "published deck not found").Warn("Published deck with specified ID not found")
	return nil, fmt.Errorf("published deck with id %s not found", id)
}

// Create stores a new published snapshot. Part of the PublishedStore interface.
func (s *memStore) Create(ctx context.Context, deck *core.PublishedDeck) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := ulid.Make().String()
	s.published[id] = *deck
	logrus.WithFields(logrus.Fields{
		"published_id": id,
		"data_length":  len(deck.Data.Bytes()),
	}).Info("Published deck created successfully")

	return id, nil
}

// List returns metadata for all decks owned by a user. Part of the DeckStore interface.
func (s *memStore) List(ctx context.Context, userID string) ([]*core.Deck, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	userDecks, ok := s.decks[userID]
	if !ok {
		return []*core.Deck{}, nil // No decks for this user, return empty slice
	}

	decks := make([]*core.Deck, 0, len(userDecks))
	for _, deck := range userDecks {
		// Create a copy without the heavy Slides/Timeline payload for the list view.
		decks = append(decks, &core.Deck{
			ID:        deck.ID,
			UserID:    deck.UserID,
			Title:     deck.Title,
			Playback:  deck.Playback,
			CreatedAt: deck.CreatedAt,
			UpdatedAt: deck.UpdatedAt,
		})
	}

	logrus.WithField("user_id", userID).Infof("Listed %d decks", len(decks))
	return decks, nil
}

// Get returns a single deck by its ID, ensuring it belongs to the user. Part of the DeckStore interface.
func (s *memStore) Get(ctx context.Context, userID, id string) (*core.Deck, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	log := logrus.WithFields(logrus.Fields{"user_id": userID, "deck_id": id})

	userDecks, ok := s.decks[userID]
	if !ok {
		log.Warn("User has no decks")
		return nil, fmt.Errorf("deck with id %s not found for user %s", id, userID)
	}

	deck, ok := userDecks[id]
	if !ok {
		log.Warn("Deck not found for user")
		return nil, fmt.Errorf("deck with id %s not found for user %s", id, userID)
	}

	log.Info("Deck retrieved successfully")
	return deck, nil
}

// Save creates or updates a deck for a user. Part of the DeckStore interface.
func (s *memStore) Save(ctx context.Context, deck *core.Deck) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	log := logrus.WithFields(logrus.Fields{"user_id": deck.UserID, "deck_id": deck.ID})

	if deck.UserID == "" {
		return fmt.Errorf("UserID cannot be empty")
	}
	if deck.ID == "" {
		return fmt.Errorf("Deck ID cannot be empty for save operation")
	}

	userDecks, ok := s.decks[deck.UserID]
	if !ok {
		userDecks = make(map[string]*core.Deck)
		s.decks[deck.UserID] = userDecks
	}

	now := time.Now()
	if existing, exists := userDecks[deck.ID]; exists {
		deck.CreatedAt = existing.CreatedAt
		deck.UpdatedAt = now
	} else {
		deck.CreatedAt = now
		deck.UpdatedAt = now
	}

	userDecks[deck.ID] = deck
	log.Info("Deck saved successfully")
	return nil
}

// Delete removes a deck, ensuring it belongs to the user. Part of the DeckStore interface.
func (s *memStore) Delete(ctx context.Context, userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	log := logrus.WithFields(logrus.Fields{"user_id": userID, "deck_id": id})

	userDecks, ok := s.decks[userID]
	if !ok {
		log.Warn("User has no decks to delete from")
		return fmt.Errorf("user %s has no decks", userID)
	}

	if _, ok := userDecks[id]; !ok {
		log.Warn("Deck not found for deletion")
		return fmt.Errorf("deck with id %s not found for user %s", id, userID)
	}

	delete(userDecks, id)
	log.Info("Deck deleted successfully")
	return nil
}
