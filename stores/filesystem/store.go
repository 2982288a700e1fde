package filesystem

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/sirupsen/logrus"

	"interdeck/core"
)

// publishedDir keeps published snapshots apart from per-user deck files.
const publishedDir = "published"

type fsStore struct {
	basePath string
}

// NewStore creates a new filesystem-based store.
func NewStore(basePath string) *fsStore {
	if err := os.MkdirAll(filepath.Join(basePath, publishedDir), 0755); err != nil {
		log.Fatalf("failed to create base directory: %v", err)
	}
	return &fsStore{basePath: basePath}
}

// PublishedStore implementation for anonymous viewing
func (s *fsStore) FindID(ctx context.Context, id string) (*core.PublishedDeck, error) {
	filePath := filepath.Join(s.basePath, publishedDir, id)
	log := logrus.WithField("published_id", id)

	log.WithField("file_path", filePath).Info("Retrieving published deck by ID")
	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			log.WithField("error", "published deck not found").Warn("Published deck with specified ID not found")
			return nil, fmt.Errorf("published deck with id %s not found", id)
		}
		log.WithError(err).Error("Failed to retrieve published deck")
		return nil, err
	}

	published := core.PublishedDeck{
		Data: *bytes.NewBuffer(data),
	}

	log.Info("Published deck retrieved successfully")
	return &published, nil
}

func (s *fsStore) Create(ctx context.Context, deck *core.PublishedDeck) (string, error) {
	id := ulid.Make().String()
	filePath := filepath.Join(s.basePath, publishedDir, id)
	log := logrus.WithFields(logrus.Fields{
		"published_id": id,
		"file_path":    filePath,
	})
	log.Info("Creating published deck")

	if err := os.WriteFile(filePath, deck.Data.Bytes(), 0644); err != nil {
		log.WithError(err).Error("Failed to create published deck")
		return "", err
	}

	log.Info("Published deck created successfully")
	return id, nil
}

// DeckStore implementation for user-owned decks
func (s *fsStore) getUserDeckPath(userID string) string {
	return filepath.Join(s.basePath, userID)
}

func (s *fsStore) List(ctx context.Context, userID string) ([]*core.Deck, error) {
	userPath := s.getUserDeckPath(userID)
	log := logrus.WithField("user_id", userID).WithField("path", userPath)

	files, err := os.ReadDir(userPath)
	if err != nil {
		if os.IsNotExist(err) {
			log.Info("User directory does not exist, returning empty list.")
			return []*core.Deck{}, nil
		}
		log.WithError(err).Error("Failed to read user directory")
		return nil, err
	}

	decks := make([]*core.Deck, 0, len(files))
	for _, file := range files {
		if file.IsDir() {
			continue
		}
		filePath := filepath.Join(userPath, file.Name())
		fileInfo, err := file.Info()
		if err != nil {
			log.WithError(err).Warnf("Failed to get file info for %s, skipping", file.Name())
			continue
		}

		data, err := os.ReadFile(filePath)
		if err != nil {
			log.WithError(err).Warnf("Failed to read deck file %s, skipping", file.Name())
			continue
		}

		var deck core.Deck
		if err := json.Unmarshal(data, &deck); err != nil {
			log.WithError(err).Warnf("Failed to unmarshal deck file %s, skipping", file.Name())
			continue
		}

		// For list view, we don't need the slide payload.
		// Also ensure we populate metadata from the filesystem.
		deck.UserID = userID
		deck.Slides = nil
		deck.Timeline = nil
		deck.UpdatedAt = fileInfo.ModTime()
		decks = append(decks, &deck)
	}

	log.Infof("Listed %d decks", len(decks))
	return decks, nil
}

func (s *fsStore) Get(ctx context.Context, userID, id string) (*core.Deck, error) {
	userPath := s.getUserDeckPath(userID)
	filePath := filepath.Join(userPath, id)
	log := logrus.WithFields(logrus.Fields{"user_id": userID, "deck_id": id, "path": filePath})

	// Reject ids that would escape the user's directory.
	absUserPath, err := filepath.Abs(userPath)
	if err != nil {
		return nil, err
	}
	absFilePath, err := filepath.Abs(filePath)
	if err != nil {
		return nil, err
	}
	if !strings.HasPrefix(absFilePath, absUserPath) {
		return nil, fmt.Errorf("invalid path: access denied")
	}

	data, err := os.ReadFile(absFilePath)
	if err != nil {
		if os.IsNotExist(err) {
			log.Warn("Deck file not found")
			return nil, fmt.Errorf("deck %s not found", id)
		}
		log.WithError(err).Error("Failed to read deck file")
		return nil, err
	}

	info, err := os.Stat(filePath)
	if err != nil {
		log.WithError(err).Error("Failed to get file stats")
		return nil, err
	}

	var deck core.Deck
	if err := json.Unmarshal(data, &deck); err != nil {
		log.WithError(err).Error("Failed to unmarshal deck data")
		return nil, err
	}
	deck.UserID = userID
	deck.UpdatedAt = info.ModTime()

	log.Info("Deck retrieved successfully")
	return &deck, nil
}

func (s *fsStore) Save(ctx context.Context, deck *core.Deck) error {
	userPath := s.getUserDeckPath(deck.UserID)
	filePath := filepath.Join(userPath, deck.ID)
	log := logrus.WithFields(logrus.Fields{"user_id": deck.UserID, "deck_id": deck.ID, "path": filePath})

	if err := os.MkdirAll(userPath, 0755); err != nil {
		log.WithError(err).Error("Failed to create user directory")
		return err
	}

	// Set creation/update time before saving
	info, err := os.Stat(filePath)
	if os.IsNotExist(err) {
		deck.CreatedAt = time.Now()
	} else if err == nil {
		deck.CreatedAt = info.ModTime() // This is not ideal, but filesystem doesn't store creation time easily.
	}
	deck.UpdatedAt = time.Now()

	log.Info("Saving deck")
	data, err := json.Marshal(deck)
	if err != nil {
		log.WithError(err).Error("Failed to marshal deck for saving")
		return err
	}

	if err := os.WriteFile(filePath, data, 0644); err != nil {
		log.WithError(err).Error("Failed to write deck file")
		return err
	}

	return nil
}

func (s *fsStore) Delete(ctx context.Context, userID, id string) error {
	userPath := s.getUserDeckPath(userID)
	filePath := filepath.Join(userPath, id)
	log := logrus.WithFields(logrus.Fields{"user_id": userID, "deck_id": id, "path": filePath})

	err := os.Remove(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			log.Warn("Deck file not found for deletion, considered successful.")
			return nil // If it doesn't exist, the goal is achieved.
		}
		log.WithError(err).Error("Failed to delete deck file")
		return err
	}

	log.Info("Deck deleted successfully")
	return nil
}
