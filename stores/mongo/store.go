package mongo

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	mongodrv "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"interdeck/core"
)

type mongoStore struct {
	decks     *mongodrv.Collection
	published *mongodrv.Collection
}

// deckDoc is the stored shape of a deck: list-view columns lifted out, the
// full document kept as a JSON blob so the interchange schema stays the
// single source of truth.
type deckDoc struct {
	ID        string    `bson:"_id"`
	UserID    string    `bson:"user_id"`
	Title     string    `bson:"title"`
	Data      []byte    `bson:"data,omitempty"`
	CreatedAt time.Time `bson:"created_at"`
	UpdatedAt time.Time `bson:"updated_at"`
}

type publishedDoc struct {
	ID        string    `bson:"_id"`
	Data      []byte    `bson:"data"`
	CreatedAt time.Time `bson:"created_at"`
}

// NewStore connects to the MongoDB document store and prepares collections.
func NewStore(uri, database string) *mongoStore {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongodrv.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		log.Fatalf("failed to connect to mongodb: %v", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		log.Fatalf("failed to ping mongodb: %v", err)
	}

	db := client.Database(database)
	return &mongoStore{
		decks:     db.Collection("decks"),
		published: db.Collection("published"),
	}
}

// PublishedStore implementation
func (s *mongoStore) FindID(ctx context.Context, id string) (*core.PublishedDeck, error) {
	log := logrus.WithField("published_id", id)

	var doc publishedDoc
	err := s.published.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongodrv.ErrNoDocuments) {
			log.WithField("error", "published deck not found").Warn("Published deck with specified ID not found")
			return nil, fmt.Errorf("published deck with id %s not found", id)
		}
		log.WithError(err).Error("Failed to retrieve published deck")
		return nil, err
	}

	published := core.PublishedDeck{
		Data: *bytes.NewBuffer(doc.Data),
	}
	log.Info("Published deck retrieved successfully")
	return &published, nil
}

func (s *mongoStore) Create(ctx context.Context, deck *core.PublishedDeck) (string, error) {
	id := ulid.Make().String()
	log := logrus.WithFields(logrus.Fields{
		"published_id": id,
		"data_length":  len(deck.Data.Bytes()),
	})

	_, err := s.published.InsertOne(ctx, publishedDoc{
		ID:        id,
		Data:      deck.Data.Bytes(),
		CreatedAt: time.Now(),
	})
	if err != nil {
		log.WithError(err).Error("Failed to create published deck")
		return "", err
	}
	log.Info("Published deck created successfully")
	return id, nil
}

// DeckStore implementation
func (s *mongoStore) List(ctx context.Context, userID string) ([]*core.Deck, error) {
	log := logrus.WithField("user_id", userID)

	opts := options.Find().SetProjection(bson.M{"data": 0})
	cursor, err := s.decks.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		log.WithError(err).Error("Failed to list decks")
		return nil, err
	}
	defer cursor.Close(ctx)

	var decks []*core.Deck
	for cursor.Next(ctx) {
		var doc deckDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		decks = append(decks, &core.Deck{
			ID:        doc.ID,
			UserID:    doc.UserID,
			Title:     doc.Title,
			CreatedAt: doc.CreatedAt,
			UpdatedAt: doc.UpdatedAt,
		})
	}
	if err := cursor.Err(); err != nil {
		return nil, err
	}

	log.Infof("Listed %d decks", len(decks))
	return decks, nil
}

func (s *mongoStore) Get(ctx context.Context, userID, id string) (*core.Deck, error) {
	log := logrus.WithFields(logrus.Fields{"user_id": userID, "deck_id": id})

	var doc deckDoc
	err := s.decks.FindOne(ctx, bson.M{"_id": id, "user_id": userID}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongodrv.ErrNoDocuments) {
			log.Warn("Deck not found for user")
			return nil, fmt.Errorf("deck with id %s not found for user %s", id, userID)
		}
		log.WithError(err).Error("Failed to retrieve deck")
		return nil, err
	}

	var deck core.Deck
	if err := json.Unmarshal(doc.Data, &deck); err != nil {
		log.WithError(err).Error("Failed to unmarshal deck data")
		return nil, err
	}
	deck.ID = doc.ID
	deck.UserID = doc.UserID
	deck.CreatedAt = doc.CreatedAt
	deck.UpdatedAt = doc.UpdatedAt

	log.Info("Deck retrieved successfully")
	return &deck, nil
}

func (s *mongoStore) Save(ctx context.Context, deck *core.Deck) error {
	log := logrus.WithFields(logrus.Fields{"user_id": deck.UserID, "deck_id": deck.ID})

	if deck.UserID == "" {
		return fmt.Errorf("UserID cannot be empty")
	}
	if deck.ID == "" {
		return fmt.Errorf("Deck ID cannot be empty for save operation")
	}

	now := time.Now()
	createdAt := now
	var existing deckDoc
	err := s.decks.FindOne(ctx, bson.M{"_id": deck.ID, "user_id": deck.UserID},
		options.FindOne().SetProjection(bson.M{"created_at": 1})).Decode(&existing)
	if err == nil {
		createdAt = existing.CreatedAt
	} else if !errors.Is(err, mongodrv.ErrNoDocuments) {
		return err
	}
	deck.CreatedAt = createdAt
	deck.UpdatedAt = now

	data, err := json.Marshal(deck)
	if err != nil {
		return fmt.Errorf("failed to marshal deck: %v", err)
	}

	doc := deckDoc{
		ID:        deck.ID,
		UserID:    deck.UserID,
		Title:     deck.Title,
		Data:      data,
		CreatedAt: createdAt,
		UpdatedAt: now,
	}

	_, err = s.decks.ReplaceOne(ctx,
		bson.M{"_id": deck.ID, "user_id": deck.UserID},
		doc,
		options.Replace().SetUpsert(true))
	if err != nil {
		log.WithError(err).Error("Failed to save deck")
		return err
	}

	log.Info("Deck saved successfully")
	return nil
}

func (s *mongoStore) Delete(ctx context.Context, userID, id string) error {
	log := logrus.WithFields(logrus.Fields{"user_id": userID, "deck_id": id})

	result, err := s.decks.DeleteOne(ctx, bson.M{"_id": id, "user_id": userID})
	if err != nil {
		log.WithError(err).Error("Failed to delete deck")
		return err
	}
	if result.DeletedCount == 0 {
		log.Warn("Deck not found for deletion")
		return fmt.Errorf("deck with id %s not found for user %s", id, userID)
	}

	log.Info("Deck deleted successfully")
	return nil
}
