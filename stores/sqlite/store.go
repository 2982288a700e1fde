package sqlite

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"

	"interdeck/core"
)

type sqliteStore struct {
	db *sql.DB
}

// NewStore creates a new SQLite-based store.
func NewStore(dataSourceName string) *sqliteStore {
	db, err := sql.Open("sqlite", dataSourceName)
	if err != nil {
		log.Fatalf("failed to open sqlite database: %v", err)
	}

	// Published snapshots served to anonymous viewers
	publishedTableStmt := `CREATE TABLE IF NOT EXISTS published (id TEXT PRIMARY KEY, data BLOB);`
	if _, err = db.Exec(publishedTableStmt); err != nil {
		log.Fatalf("failed to create published table: %v", err)
	}

	// User-owned decks; the full document is stored as a JSON blob with the
	// list-view columns lifted out.
	deckTableStmt := `
	CREATE TABLE IF NOT EXISTS decks (
		id TEXT NOT NULL,
		user_id TEXT NOT NULL,
		title TEXT,
		data BLOB,
		created_at DATETIME,
		updated_at DATETIME,
		PRIMARY KEY (user_id, id)
	);`
	if _, err = db.Exec(deckTableStmt); err != nil {
		log.Fatalf("failed to create decks table: %v", err)
	}

	return &sqliteStore{db}
}

// PublishedStore implementation
func (s *sqliteStore) FindID(ctx context.Context, id string) (*core.PublishedDeck, error) {
	log := logrus.WithField("published_id", id)
	log.Debug("Retrieving published deck by ID")
	var data []byte
	err := s.db.QueryRowContext(ctx, "SELECT data FROM published WHERE id = ?", id).Scan(&data)
	if err != nil {
		if err == sql.ErrNoRows {
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

func (s *sqliteStore) Create(ctx context.Context, deck *core.PublishedDeck) (string, error) {
	id := ulid.Make().String()
	data := deck.Data.Bytes()
	log := logrus.WithFields(logrus.Fields{
		"published_id": id,
		"data_length":  len(data),
	})

	_, err := s.db.ExecContext(ctx, "INSERT INTO published (id, data) VALUES (?, ?)", id, data)
	if err != nil {
		log.WithError(err).Error("Failed to create published deck")
		return "", err
	}
	log.Info("Published deck created successfully")
	return id, nil
}

// DeckStore implementation
func (s *sqliteStore) List(ctx context.Context, userID string) ([]*core.Deck, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, title, created_at, updated_at FROM decks WHERE user_id = ?", userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var decks []*core.Deck
	for rows.Next() {
		var deck core.Deck
		deck.UserID = userID
		if err := rows.Scan(&deck.ID, &deck.Title, &deck.CreatedAt, &deck.UpdatedAt); err != nil {
			return nil, err
		}
		decks = append(decks, &deck)
	}
	return decks, rows.Err()
}

func (s *sqliteStore) Get(ctx context.Context, userID, id string) (*core.Deck, error) {
	var data []byte
	var createdAt, updatedAt time.Time
	err := s.db.QueryRowContext(ctx, "SELECT data, created_at, updated_at FROM decks WHERE user_id = ? AND id = ?", userID, id).
		Scan(&data, &createdAt, &updatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("deck not found")
		}
		return nil, err
	}

	var deck core.Deck
	if err := json.Unmarshal(data, &deck); err != nil {
		return nil, fmt.Errorf("failed to unmarshal deck data: %v", err)
	}
	deck.ID = id
	deck.UserID = userID
	deck.CreatedAt = createdAt
	deck.UpdatedAt = updatedAt
	return &deck, nil
}

func (s *sqliteStore) Save(ctx context.Context, deck *core.Deck) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback() // Rollback on any error

	now := time.Now()
	var createdAt time.Time
	err = tx.QueryRowContext(ctx, "SELECT created_at FROM decks WHERE user_id = ? AND id = ?", deck.UserID, deck.ID).Scan(&createdAt)
	exists := err == nil
	if err != nil && err != sql.ErrNoRows {
		return err
	}
	if !exists {
		createdAt = now
	}

	// The struct carries the timestamps the caller echoes back, so set them
	// before marshalling.
	deck.CreatedAt = createdAt
	deck.UpdatedAt = now

	data, err := json.Marshal(deck)
	if err != nil {
		return fmt.Errorf("failed to marshal deck: %v", err)
	}

	if exists {
		// Update
		_, err = tx.ExecContext(ctx, "UPDATE decks SET title = ?, data = ?, updated_at = ? WHERE user_id = ? AND id = ?",
			deck.Title, data, now, deck.UserID, deck.ID)
	} else {
		// Insert
		_, err = tx.ExecContext(ctx, "INSERT INTO decks (id, user_id, title, data, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)",
			deck.ID, deck.UserID, deck.Title, data, createdAt, now)
	}

	if err != nil {
		return err
	}

	return tx.Commit()
}

func (s *sqliteStore) Delete(ctx context.Context, userID, id string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM decks WHERE user_id = ? AND id = ?", userID, id)
	return err
}
