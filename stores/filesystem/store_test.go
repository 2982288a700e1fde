package filesystem

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"interdeck/core"
)

func setupTestStore(t *testing.T) *fsStore {
	t.Helper()
	return NewStore(t.TempDir())
}

func sampleDeck(userID, id string) *core.Deck {
	return &core.Deck{
		ID:     id,
		UserID: userID,
		Title:  "Demo " + id,
		Slides: []core.Slide{
			{ID: "s1", Layout: core.Layout{ContainerWidth: 1000, ContainerHeight: 600}},
		},
	}
}

func TestNewStore_CreatesDirectories(t *testing.T) {
	base := t.TempDir()
	NewStore(base)

	if _, err := os.Stat(filepath.Join(base, publishedDir)); err != nil {
		t.Errorf("published directory not created: %v", err)
	}
}

func TestSaveAndGet(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	if err := store.Save(ctx, sampleDeck("user1", "deck1")); err != nil {
		t.Fatalf("Save() failed: %v", err)
	}

	got, err := store.Get(ctx, "user1", "deck1")
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	if got.Title != "Demo deck1" {
		t.Errorf("Title = %q, want %q", got.Title, "Demo deck1")
	}
	if got.UserID != "user1" {
		t.Errorf("UserID = %q, want user1", got.UserID)
	}
	if len(got.Slides) != 1 {
		t.Errorf("got %d slides, want 1", len(got.Slides))
	}
}

func TestGet_PathTraversalRejected(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	if _, err := store.Get(ctx, "user1", "../../etc/passwd"); err == nil {
		t.Error("Get() with traversal id should fail")
	}
}

func TestGet_NotFound(t *testing.T) {
	store := setupTestStore(t)

	if _, err := store.Get(context.Background(), "user1", "missing"); err == nil {
		t.Error("Get() of missing deck should fail")
	}
}

func TestList(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	store.Save(ctx, sampleDeck("user1", "deck1"))
	store.Save(ctx, sampleDeck("user1", "deck2"))
	store.Save(ctx, sampleDeck("user2", "deck3"))

	decks, err := store.List(ctx, "user1")
	if err != nil {
		t.Fatalf("List() failed: %v", err)
	}
	if len(decks) != 2 {
		t.Fatalf("List() returned %d decks, want 2", len(decks))
	}
	for _, deck := range decks {
		if deck.Slides != nil {
			t.Errorf("List() carried slide payload for %s", deck.ID)
		}
	}
}

func TestList_NoUserDirectory(t *testing.T) {
	store := setupTestStore(t)

	decks, err := store.List(context.Background(), "nobody")
	if err != nil {
		t.Fatalf("List() failed: %v", err)
	}
	if len(decks) != 0 {
		t.Errorf("List() returned %d decks, want 0", len(decks))
	}
}

func TestDelete(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	store.Save(ctx, sampleDeck("user1", "deck1"))

	if err := store.Delete(ctx, "user1", "deck1"); err != nil {
		t.Fatalf("Delete() failed: %v", err)
	}
	if _, err := store.Get(ctx, "user1", "deck1"); err == nil {
		t.Error("Get() after delete should fail")
	}

	// Deleting a missing deck is treated as success.
	if err := store.Delete(ctx, "user1", "deck1"); err != nil {
		t.Errorf("Delete() of missing deck failed: %v", err)
	}
}

func TestPublishRoundTrip(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	payload := []byte(`{"id":"deck1"}`)
	id, err := store.Create(ctx, &core.PublishedDeck{Data: *bytes.NewBuffer(payload)})
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}

	published, err := store.FindID(ctx, id)
	if err != nil {
		t.Fatalf("FindID() failed: %v", err)
	}
	if !bytes.Equal(published.Data.Bytes(), payload) {
		t.Errorf("published data = %s, want %s", published.Data.Bytes(), payload)
	}

	if _, err := store.FindID(ctx, "missing"); err == nil {
		t.Error("FindID() of missing snapshot should fail")
	}
}
