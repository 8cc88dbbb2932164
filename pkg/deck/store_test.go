package deck

import (
	"context"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
)

// setupTestDeckStore creates a miniredis-backed deck store for testing
func setupTestDeckStore(t *testing.T) *RedisDeckStore {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
	t.Cleanup(func() { client.Close() })

	catalog, err := NewCatalog([]Info{
		{ID: "beginner", Title: "Beginner"},
		{ID: "advanced", Title: "Advanced"},
	})
	if err != nil {
		t.Fatalf("NewCatalog() error = %v", err)
	}

	return NewRedisDeckStore(client, RedisDeckStoreConfig{Catalog: catalog})
}

var testOptions = []string{"first", "second", "third"}

func TestCreateCard_AssignsSequentialIndexes(t *testing.T) {
	store := setupTestDeckStore(t)
	ctx := context.Background()

	c1, err := store.CreateCard(ctx, "user-1", "beginner", "Q1?", testOptions)
	if err != nil {
		t.Fatalf("CreateCard() error = %v", err)
	}
	c2, err := store.CreateCard(ctx, "user-1", "beginner", "Q2?", testOptions)
	if err != nil {
		t.Fatalf("CreateCard() error = %v", err)
	}

	if c1.Index != 1 {
		t.Errorf("first card index = %d, expected 1", c1.Index)
	}
	if c2.Index != 2 {
		t.Errorf("second card index = %d, expected 2", c2.Index)
	}
	if c1.ID == c2.ID {
		t.Error("cards should get distinct ids")
	}
	if c1.CorrectIndex != 0 {
		t.Errorf("CorrectIndex = %d, expected 0", c1.CorrectIndex)
	}
	if !c1.Approved {
		t.Error("created cards should be approved")
	}
}

func TestCreateCard_IncrementsCardCount(t *testing.T) {
	store := setupTestDeckStore(t)
	ctx := context.Background()

	store.CreateCard(ctx, "user-1", "beginner", "Q1?", testOptions)
	store.CreateCard(ctx, "user-1", "beginner", "Q2?", testOptions)

	n, err := store.CardCount(ctx, "beginner")
	if err != nil {
		t.Fatalf("CardCount() error = %v", err)
	}
	if n != 2 {
		t.Errorf("CardCount() = %d, expected 2", n)
	}
}

func TestCreateCard_Validation(t *testing.T) {
	store := setupTestDeckStore(t)
	ctx := context.Background()

	if _, err := store.CreateCard(ctx, "user-1", "legendary", "Q?", testOptions); !errors.Is(err, ErrUnknownDeck) {
		t.Errorf("unknown deck: expected ErrUnknownDeck, got %v", err)
	}
	if _, err := store.CreateCard(ctx, "user-1", "beginner", "  ", testOptions); !errors.Is(err, ErrInvalidCard) {
		t.Errorf("blank question: expected ErrInvalidCard, got %v", err)
	}
	if _, err := store.CreateCard(ctx, "user-1", "beginner", "Q?", []string{"only", "two"}); !errors.Is(err, ErrInvalidCard) {
		t.Errorf("two options: expected ErrInvalidCard, got %v", err)
	}
}

func TestUpdateCard_OwnerOnly(t *testing.T) {
	store := setupTestDeckStore(t)
	ctx := context.Background()

	card, _ := store.CreateCard(ctx, "owner", "beginner", "Q?", testOptions)

	err := store.UpdateCard(ctx, "intruder", "beginner", card.ID, "Hacked?", testOptions)
	if !errors.Is(err, ErrNotOwner) {
		t.Errorf("expected ErrNotOwner, got %v", err)
	}

	if err := store.UpdateCard(ctx, "owner", "beginner", card.ID, "Better question?", testOptions); err != nil {
		t.Fatalf("UpdateCard() by owner error = %v", err)
	}

	got, _ := store.GetCard(ctx, "beginner", card.ID)
	if got.Question != "Better question?" {
		t.Errorf("Question = %q, expected updated text", got.Question)
	}
}

func TestDeleteCard_OwnerOnlyAndDecrementsCount(t *testing.T) {
	store := setupTestDeckStore(t)
	ctx := context.Background()

	card, _ := store.CreateCard(ctx, "owner", "beginner", "Q?", testOptions)

	if err := store.DeleteCard(ctx, "intruder", "beginner", card.ID); !errors.Is(err, ErrNotOwner) {
		t.Errorf("expected ErrNotOwner, got %v", err)
	}

	if err := store.DeleteCard(ctx, "owner", "beginner", card.ID); err != nil {
		t.Fatalf("DeleteCard() error = %v", err)
	}

	if _, err := store.GetCard(ctx, "beginner", card.ID); !errors.Is(err, ErrCardNotFound) {
		t.Errorf("expected ErrCardNotFound after delete, got %v", err)
	}

	n, _ := store.CardCount(ctx, "beginner")
	if n != 0 {
		t.Errorf("CardCount() = %d, expected 0 after delete", n)
	}
}

func TestListCards_IndexOrderAndRoundTrip(t *testing.T) {
	store := setupTestDeckStore(t)
	ctx := context.Background()

	store.CreateCard(ctx, "user-1", "beginner", "Q1?", testOptions)
	store.CreateCard(ctx, "user-1", "beginner", "Q2?", testOptions)
	store.CreateCard(ctx, "user-1", "beginner", "Q3?", testOptions)

	cards, err := store.ListCards(ctx, "beginner")
	if err != nil {
		t.Fatalf("ListCards() error = %v", err)
	}

	if len(cards) != 3 {
		t.Fatalf("ListCards() returned %d cards, expected 3", len(cards))
	}
	for i, c := range cards {
		if c.Index != i+1 {
			t.Errorf("card %d has index %d, expected %d", i, c.Index, i+1)
		}
	}
	if cards[0].Question != "Q1?" {
		t.Errorf("first card question = %q, expected Q1?", cards[0].Question)
	}
	if len(cards[0].Options) != OptionCount {
		t.Errorf("options = %v, expected %d entries", cards[0].Options, OptionCount)
	}
}

func TestListCardsByCreator(t *testing.T) {
	store := setupTestDeckStore(t)
	ctx := context.Background()

	store.CreateCard(ctx, "alice", "beginner", "A1?", testOptions)
	store.CreateCard(ctx, "bob", "beginner", "B1?", testOptions)
	store.CreateCard(ctx, "alice", "advanced", "A2?", testOptions)

	mine, err := store.ListCardsByCreator(ctx, "alice")
	if err != nil {
		t.Fatalf("ListCardsByCreator() error = %v", err)
	}

	if len(mine["beginner"]) != 1 || len(mine["advanced"]) != 1 {
		t.Errorf("ListCardsByCreator() = %v, expected one card per deck", mine)
	}
	if len(mine["beginner"]) > 0 && mine["beginner"][0].Question != "A1?" {
		t.Errorf("beginner card = %q, expected A1?", mine["beginner"][0].Question)
	}
}

func TestCardCount_EmptyDeckIsZero(t *testing.T) {
	store := setupTestDeckStore(t)

	n, err := store.CardCount(context.Background(), "advanced")
	if err != nil {
		t.Fatalf("CardCount() error = %v", err)
	}
	if n != 0 {
		t.Errorf("CardCount() = %d, expected 0", n)
	}
}
