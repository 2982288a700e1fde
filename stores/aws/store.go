package aws

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"path"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/oklog/ulid/v2"

	"interdeck/core"
)

// publishedPrefix keeps published snapshots apart from per-user deck objects.
const publishedPrefix = "published/"

type s3Store struct {
	s3Client *s3.Client
	bucket   string
}

// NewStore creates a new S3-based store.
func NewStore(bucketName string) *s3Store {
	cfg, err := config.LoadDefaultConfig(context.TODO())
	if err != nil {
		log.Fatalf("unable to load SDK config, %v", err)
	}

	s3Client := s3.NewFromConfig(cfg)

	return &s3Store{
		s3Client: s3Client,
		bucket:   bucketName,
	}
}

// PublishedStore implementation for anonymous viewing
func (s *s3Store) FindID(ctx context.Context, id string) (*core.PublishedDeck, error) {
	resp, err := s.s3Client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(publishedPrefix + id),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get published deck with id %s: %v", id, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read published deck data: %v", err)
	}

	published := core.PublishedDeck{
		Data: *bytes.NewBuffer(data),
	}

	return &published, nil
}

func (s *s3Store) Create(ctx context.Context, deck *core.PublishedDeck) (string, error) {
	id := ulid.Make().String()

	_, err := s.s3Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(publishedPrefix + id),
		Body:   bytes.NewReader(deck.Data.Bytes()),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload published deck: %v", err)
	}

	return id, nil
}

// DeckStore implementation for user-owned decks
func (s *s3Store) getDeckKey(userID, deckID string) (string, error) {
	// Sanitize deckID to prevent path traversal attacks.
	// It should be a simple name, not a path.
	if path.Base(deckID) != deckID {
		return "", fmt.Errorf("invalid deck id: must not be a path")
	}
	if deckID == "" || deckID == "." || deckID == ".." {
		return "", fmt.Errorf("invalid deck id: must not be empty or a dot directory")
	}
	return path.Join(userID, deckID), nil
}

func (s *s3Store) List(ctx context.Context, userID string) ([]*core.Deck, error) {
	prefix := userID + "/"
	output, err := s.s3Client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(prefix),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list decks for user %s: %v", userID, err)
	}

	decks := make([]*core.Deck, 0, len(output.Contents))
	for _, object := range output.Contents {
		resp, err := s.s3Client.GetObject(ctx, &s3.GetObjectInput{
			Bucket: aws.String(s.bucket),
			Key:    object.Key,
		})
		if err != nil {
			log.Printf("warn: failed to get object %s: %v", *object.Key, err)
			continue
		}
		data, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			log.Printf("warn: failed to read object body %s: %v", *object.Key, err)
			continue
		}

		var deck core.Deck
		if err := json.Unmarshal(data, &deck); err != nil {
			log.Printf("warn: failed to unmarshal deck %s: %v", *object.Key, err)
			continue
		}

		// For list view, we don't need the slide payload.
		deck.UserID = userID
		deck.Slides = nil
		deck.Timeline = nil
		decks = append(decks, &deck)
	}

	return decks, nil
}

func (s *s3Store) Get(ctx context.Context, userID, id string) (*core.Deck, error) {
	key, err := s.getDeckKey(userID, id)
	if err != nil {
		return nil, err
	}
	resp, err := s.s3Client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		// A specific check for NoSuchKey can be useful here.
		var nsk *s3types.NoSuchKey
		if errors.As(err, &nsk) {
			return nil, fmt.Errorf("deck not found")
		}
		return nil, fmt.Errorf("failed to get deck %s: %v", id, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read deck data: %v", err)
	}

	var deck core.Deck
	if err := json.Unmarshal(data, &deck); err != nil {
		return nil, fmt.Errorf("failed to unmarshal deck data: %v", err)
	}
	deck.UserID = userID

	return &deck, nil
}

func (s *s3Store) Save(ctx context.Context, deck *core.Deck) error {
	key, err := s.getDeckKey(deck.UserID, deck.ID)
	if err != nil {
		return err
	}

	// Preserve CreatedAt on update
	if deck.CreatedAt.IsZero() {
		existing, err := s.Get(ctx, deck.UserID, deck.ID)
		if err == nil && existing != nil {
			deck.CreatedAt = existing.CreatedAt
		} else {
			deck.CreatedAt = time.Now()
		}
	}
	deck.UpdatedAt = time.Now()

	data, err := json.Marshal(deck)
	if err != nil {
		return fmt.Errorf("failed to marshal deck: %v", err)
	}

	_, err = s.s3Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(data),
	})
	if err != nil {
		return fmt.Errorf("failed to save deck %s: %v", deck.ID, err)
	}
	return nil
}

func (s *s3Store) Delete(ctx context.Context, userID, id string) error {
	key, err := s.getDeckKey(userID, id)
	if err != nil {
		return err
	}
	_, err = s.s3Client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete deck %s: %v", id, err)
	}
	return nil
}
