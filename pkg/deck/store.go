package deck

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	cardFieldIndex        = "index"
	cardFieldQuestion     = "question"
	cardFieldOptions      = "options"
	cardFieldCorrectIndex = "correctIndex"
	cardFieldExplanation  = "explanation"
	cardFieldApproved     = "approved"
	cardFieldCreatedBy    = "createdBy"
	cardFieldCreatedAt    = "createdAt"

	deckFieldCardCount = "cardCount"
)

// RedisDeckStore persists deck documents and their cards in Redis. One hash
// per deck document (cardCount), one sorted set per deck ordering card IDs
// by index, one hash per card.
type RedisDeckStore struct {
	client redis.UniversalClient
	cfg    RedisDeckStoreConfig
}

type RedisDeckStoreConfig struct {
	Catalog *Catalog
}

// NewRedisDeckStore creates a new Redis-backed deck store.
func NewRedisDeckStore(client redis.UniversalClient, cfg RedisDeckStoreConfig) *RedisDeckStore {
	return &RedisDeckStore{client: client, cfg: cfg}
}

func deckKey(deckID string) string {
	return fmt.Sprintf("deckquiz:deck:%s", deckID)
}

func cardsKey(deckID string) string {
	return fmt.Sprintf("deckquiz:deck:%s:cards", deckID)
}

func cardKey(deckID, cardID string) string {
	return fmt.Sprintf("deckquiz:deck:%s:card:%s", deckID, cardID)
}

func (s *RedisDeckStore) knownDeck(deckID string) bool {
	if s.cfg.Catalog == nil {
		return true
	}
	return s.cfg.Catalog.Has(deckID)
}

func validateCardContent(question string, options []string) error {
	if strings.TrimSpace(question) == "" {
		return fmt.Errorf("%w: empty question", ErrInvalidCard)
	}
	if len(options) != OptionCount {
		return fmt.Errorf("%w: expected %d options, got %d", ErrInvalidCard, OptionCount, len(options))
	}
	for i, o := range options {
		if strings.TrimSpace(o) == "" {
			return fmt.Errorf("%w: option %d is empty", ErrInvalidCard, i)
		}
	}
	return nil
}

// CreateCard appends a new card to a deck and bumps the deck's cardCount.
// The card's index is one past the highest existing index. The first option
// is stored as the correct answer; presentation order is shuffled by the
// quiz runner.
func (s *RedisDeckStore) CreateCard(ctx context.Context, userID, deckID, question string, options []string) (*Card, error) {
	if !s.knownDeck(deckID) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownDeck, deckID)
	}
	if err := validateCardContent(question, options); err != nil {
		return nil, err
	}

	index, err := s.nextIndex(ctx, deckID)
	if err != nil {
		return nil, err
	}

	trimmed := make([]string, len(options))
	for i, o := range options {
		trimmed[i] = strings.TrimSpace(o)
	}

	card := &Card{
		ID:           uuid.NewString(),
		Index:        index,
		Question:     strings.TrimSpace(question),
		Options:      trimmed,
		CorrectIndex: 0,
		Approved:     true,
		CreatedBy:    userID,
		CreatedAt:    time.Now().UTC(),
	}

	fields, err := encodeCard(card)
	if err != nil {
		return nil, err
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, cardKey(deckID, card.ID), fields)
		pipe.ZAdd(ctx, cardsKey(deckID), &redis.Z{Score: float64(index), Member: card.ID})
		pipe.HIncrBy(ctx, deckKey(deckID), deckFieldCardCount, 1)
		return nil
	})
	if err != nil {
		logrus.Errorf("failed to create card in deck %s: %v", deckID, err)
		return nil, fmt.Errorf("failed to create card: %w", err)
	}

	logrus.Infof("created card %s in deck %s at index %d (user %s)", card.ID, deckID, index, userID)
	return card, nil
}

// UpdateCard rewrites a card's content. Only the creator may edit.
func (s *RedisDeckStore) UpdateCard(ctx context.Context, userID, deckID, cardID, question string, options []string) error {
	card, err := s.GetCard(ctx, deckID, cardID)
	if err != nil {
		return err
	}
	if card.CreatedBy != userID {
		return fmt.Errorf("%w: card %s", ErrNotOwner, cardID)
	}
	if err := validateCardContent(question, options); err != nil {
		return err
	}

	opts, err := json.Marshal(options)
	if err != nil {
		return fmt.Errorf("failed to encode options: %w", err)
	}

	err = s.client.HSet(ctx, cardKey(deckID, cardID),
		cardFieldQuestion, strings.TrimSpace(question),
		cardFieldOptions, string(opts),
		cardFieldCorrectIndex, 0,
	).Err()
	if err != nil {
		logrus.Errorf("failed to update card %s in deck %s: %v", cardID, deckID, err)
		return fmt.Errorf("failed to update card: %w", err)
	}

	logrus.Infof("updated card %s in deck %s (user %s)", cardID, deckID, userID)
	return nil
}

// DeleteCard removes a card and decrements the deck's cardCount. Only the
// creator may delete.
func (s *RedisDeckStore) DeleteCard(ctx context.Context, userID, deckID, cardID string) error {
	card, err := s.GetCard(ctx, deckID, cardID)
	if err != nil {
		return err
	}
	if card.CreatedBy != userID {
		return fmt.Errorf("%w: card %s", ErrNotOwner, cardID)
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, cardKey(deckID, cardID))
		pipe.ZRem(ctx, cardsKey(deckID), cardID)
		pipe.HIncrBy(ctx, deckKey(deckID), deckFieldCardCount, -1)
		return nil
	})
	if err != nil {
		logrus.Errorf("failed to delete card %s from deck %s: %v", cardID, deckID, err)
		return fmt.Errorf("failed to delete card: %w", err)
	}

	logrus.Infof("deleted card %s from deck %s (user %s)", cardID, deckID, userID)
	return nil
}

// GetCard retrieves one card.
func (s *RedisDeckStore) GetCard(ctx context.Context, deckID, cardID string) (*Card, error) {
	if !s.knownDeck(deckID) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownDeck, deckID)
	}

	fields, err := s.client.HGetAll(ctx, cardKey(deckID, cardID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read card: %w", err)
	}
	if len(fields) == 0 {
		return nil, fmt.Errorf("%w: %s in deck %s", ErrCardNotFound, cardID, deckID)
	}
	return decodeCard(cardID, fields)
}

// ListCards returns a deck's approved cards in index order.
func (s *RedisDeckStore) ListCards(ctx context.Context, deckID string) ([]*Card, error) {
	if !s.knownDeck(deckID) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownDeck, deckID)
	}

	ids, err := s.client.ZRange(ctx, cardsKey(deckID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list cards: %w", err)
	}

	cards := make([]*Card, 0, len(ids))
	for _, id := range ids {
		card, err := s.GetCard(ctx, deckID, id)
		if err != nil {
			return nil, err
		}
		if !card.Approved {
			continue
		}
		cards = append(cards, card)
	}
	return cards, nil
}

// ListCardsByCreator returns every card a user created, across all catalog
// decks, ordered by deck then index.
func (s *RedisDeckStore) ListCardsByCreator(ctx context.Context, userID string) (map[string][]*Card, error) {
	if s.cfg.Catalog == nil {
		return nil, fmt.Errorf("deck store has no catalog")
	}

	out := make(map[string][]*Card)
	for _, deckID := range s.cfg.Catalog.IDs() {
		ids, err := s.client.ZRange(ctx, cardsKey(deckID), 0, -1).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to list cards for deck %s: %w", deckID, err)
		}
		for _, id := range ids {
			card, err := s.GetCard(ctx, deckID, id)
			if err != nil {
				return nil, err
			}
			if card.CreatedBy == userID {
				out[deckID] = append(out[deckID], card)
			}
		}
	}
	return out, nil
}

// CardCount reads the deck document's card counter. Consumers size progress
// bars with it; a deck that was never written counts as empty.
func (s *RedisDeckStore) CardCount(ctx context.Context, deckID string) (int, error) {
	if !s.knownDeck(deckID) {
		return 0, fmt.Errorf("%w: %s", ErrUnknownDeck, deckID)
	}

	raw, err := s.client.HGet(ctx, deckKey(deckID), deckFieldCardCount).Result()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read card count: %w", err)
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("malformed card count %q for deck %s", raw, deckID)
	}
	if n < 0 {
		n = 0
	}
	return n, nil
}

// nextIndex returns one past the highest card index in the deck, starting
// at 1 for an empty deck.
func (s *RedisDeckStore) nextIndex(ctx context.Context, deckID string) (int, error) {
	top, err := s.client.ZRevRangeWithScores(ctx, cardsKey(deckID), 0, 0).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to read top card index: %w", err)
	}
	if len(top) == 0 {
		return 1, nil
	}
	return int(top[0].Score) + 1, nil
}

func encodeCard(c *Card) (map[string]interface{}, error) {
	opts, err := json.Marshal(c.Options)
	if err != nil {
		return nil, fmt.Errorf("failed to encode options: %w", err)
	}
	approved := "0"
	if c.Approved {
		approved = "1"
	}
	return map[string]interface{}{
		cardFieldIndex:        c.Index,
		cardFieldQuestion:     c.Question,
		cardFieldOptions:      string(opts),
		cardFieldCorrectIndex: c.CorrectIndex,
		cardFieldExplanation:  c.Explanation,
		cardFieldApproved:     approved,
		cardFieldCreatedBy:    c.CreatedBy,
		cardFieldCreatedAt:    c.CreatedAt.Format(time.RFC3339Nano),
	}, nil
}

func decodeCard(cardID string, fields map[string]string) (*Card, error) {
	card := &Card{
		ID:          cardID,
		Question:    fields[cardFieldQuestion],
		Explanation: fields[cardFieldExplanation],
		CreatedBy:   fields[cardFieldCreatedBy],
		// absent approved flag means the card predates moderation: keep it
		Approved: fields[cardFieldApproved] != "0",
	}

	if raw := fields[cardFieldIndex]; raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: malformed index %q", ErrInvalidCard, raw)
		}
		card.Index = n
	}
	if raw := fields[cardFieldCorrectIndex]; raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: malformed correctIndex %q", ErrInvalidCard, raw)
		}
		card.CorrectIndex = n
	}
	if raw := fields[cardFieldOptions]; raw != "" {
		if err := json.Unmarshal([]byte(raw), &card.Options); err != nil {
			return nil, fmt.Errorf("%w: malformed options: %v", ErrInvalidCard, err)
		}
	}
	if raw := fields[cardFieldCreatedAt]; raw != "" {
		t, err := time.Parse(time.RFC3339Nano, raw)
		if err != nil {
			return nil, fmt.Errorf("%w: malformed createdAt %q", ErrInvalidCard, raw)
		}
		card.CreatedAt = t
	}

	return card, nil
}
