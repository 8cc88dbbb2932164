package progress

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"

	"github.com/deckquiz/progress-service/pkg/metrics"
)

const (
	// keyPrefix is the prefix for all progress-related keys.
	keyPrefix = "deckquiz:user:"

	eventProgress = "progress"
	eventCorrect  = "correct"
)

// changeEvent is published on a user's event channel after every successful
// write so live subscriptions know to re-read.
type changeEvent struct {
	Kind   string `json:"kind"`
	DeckID string `json:"deckId,omitempty"`
}

// RedisProgressStore persists DeckProgress records and the correct-card set
// in Redis. One hash per (user, deck) record, one set per user for deck
// membership, one set per user for correct cards. The store publishes a
// change event per write; it keeps no durable state of its own.
type RedisProgressStore struct {
	client redis.UniversalClient
	cfg    RedisProgressStoreConfig
	decks  map[string]struct{}
}

type RedisProgressStoreConfig struct {
	// Decks is the closed set of valid deck IDs. Writes against any other
	// deck ID are rejected. An empty list disables the check.
	Decks []string
}

// NewRedisProgressStore creates a new Redis-backed progress store.
func NewRedisProgressStore(client redis.UniversalClient, cfg RedisProgressStoreConfig) *RedisProgressStore {
	decks := make(map[string]struct{}, len(cfg.Decks))
	for _, d := range cfg.Decks {
		decks[d] = struct{}{}
	}
	return &RedisProgressStore{
		client: client,
		cfg:    cfg,
		decks:  decks,
	}
}

func progressKey(userID, deckID string) string {
	return fmt.Sprintf("%s%s:progress:%s", keyPrefix, userID, deckID)
}

func progressIndexKey(userID string) string {
	return fmt.Sprintf("%s%s:progress", keyPrefix, userID)
}

func correctKey(userID string) string {
	return fmt.Sprintf("%s%s:correct", keyPrefix, userID)
}

func eventsChannel(userID string) string {
	return fmt.Sprintf("deckquiz:events:user:%s", userID)
}

func (r *RedisProgressStore) knownDeck(deckID string) bool {
	if len(r.decks) == 0 {
		return true
	}
	_, ok := r.decks[deckID]
	return ok
}

// RecordAttempt applies one quiz attempt to the user's record for a deck.
//
// First attempt creates the record with every counter initialized from the
// attempt. Later attempts replace the best fields only on a strict
// percentage improvement, always overwrite the last fields, and use HINCRBY
// for attempts/totalCorrect/totalAnswered so the lifetime counters stay
// correct under concurrent attempts from multiple devices. The best-field
// compare still reads a snapshot, so two truly concurrent writers can race
// on best; the counters cannot.
func (r *RedisProgressStore) RecordAttempt(ctx context.Context, userID, deckID string, score, total int) error {
	if err := ValidateAttempt(score, total); err != nil {
		return fmt.Errorf("%w: score=%d total=%d", err, score, total)
	}
	if !r.knownDeck(deckID) {
		return fmt.Errorf("%w: %s", ErrUnknownDeck, deckID)
	}

	key := progressKey(userID, deckID)
	now := time.Now().UTC()

	fields, err := r.client.HGetAll(ctx, key).Result()
	if err != nil {
		logrus.Errorf("failed to read progress for user %s deck %s: %v", userID, deckID, err)
		return fmt.Errorf("failed to read progress: %w", err)
	}

	if len(fields) == 0 {
		rec := NewDeckProgress(deckID, score, total, now)
		_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, key, encodeDeckProgress(rec))
			pipe.SAdd(ctx, progressIndexKey(userID), deckID)
			return nil
		})
		if err != nil {
			logrus.Errorf("failed to create progress for user %s deck %s: %v", userID, deckID, err)
			return fmt.Errorf("failed to create progress: %w", err)
		}
		logrus.Infof("created progress record for user %s deck %s (%d/%d)", userID, deckID, score, total)
		metrics.AttemptsRecorded.WithLabelValues(deckID).Inc()
		metrics.BestImproved.WithLabelValues(deckID).Inc()
		r.publish(ctx, userID, changeEvent{Kind: eventProgress, DeckID: deckID})
		return nil
	}

	cur, err := decodeDeckProgress(fields)
	if err != nil {
		logrus.Errorf("failed to decode progress for user %s deck %s: %v", userID, deckID, err)
		return fmt.Errorf("failed to decode progress: %w", err)
	}

	improved := ImprovesBest(cur, score, total)

	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		if improved {
			pipe.HSet(ctx, key, fieldBestScore, score, fieldBestTotal, total)
		}
		pipe.HSet(ctx, key,
			fieldLastScore, score,
			fieldLastTotal, total,
			fieldLastUpdated, now.Format(time.RFC3339Nano),
		)
		pipe.HIncrBy(ctx, key, fieldAttempts, 1)
		pipe.HIncrBy(ctx, key, fieldTotalCorrect, int64(score))
		pipe.HIncrBy(ctx, key, fieldTotalAnswered, int64(total))
		return nil
	})
	if err != nil {
		logrus.Errorf("failed to update progress for user %s deck %s: %v", userID, deckID, err)
		return fmt.Errorf("failed to update progress: %w", err)
	}

	logrus.Infof("recorded attempt for user %s deck %s (%d/%d, best improved: %v)",
		userID, deckID, score, total, improved)
	metrics.AttemptsRecorded.WithLabelValues(deckID).Inc()
	if improved {
		metrics.BestImproved.WithLabelValues(deckID).Inc()
	}
	r.publish(ctx, userID, changeEvent{Kind: eventProgress, DeckID: deckID})
	return nil
}

// RecordCorrectCard marks one card as ever-answered-correctly. Membership is
// monotone: the same card marked twice is a no-op and no removal exists.
func (r *RedisProgressStore) RecordCorrectCard(ctx context.Context, userID, deckID, cardID string) error {
	if !r.knownDeck(deckID) {
		return fmt.Errorf("%w: %s", ErrUnknownDeck, deckID)
	}
	if cardID == "" {
		return fmt.Errorf("%w: empty card id", ErrInvalidCard)
	}

	member := deckID + ":" + cardID
	added, err := r.client.SAdd(ctx, correctKey(userID), member).Result()
	if err != nil {
		logrus.Errorf("failed to record correct card %s for user %s: %v", member, userID, err)
		return fmt.Errorf("failed to record correct card: %w", err)
	}

	if added == 0 {
		logrus.Debugf("correct card %s already recorded for user %s", member, userID)
		return nil
	}

	logrus.Infof("recorded correct card %s for user %s", member, userID)
	metrics.CorrectCardsMarked.Inc()
	r.publish(ctx, userID, changeEvent{Kind: eventCorrect})
	return nil
}

// GetProgress retrieves one deck's record, or nil if the user has never
// attempted that deck. Absence is a valid zero state, not an error.
func (r *RedisProgressStore) GetProgress(ctx context.Context, userID, deckID string) (*DeckProgress, error) {
	fields, err := r.client.HGetAll(ctx, progressKey(userID, deckID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read progress: %w", err)
	}
	if len(fields) == 0 {
		return nil, nil
	}
	return decodeDeckProgress(fields)
}

// ListProgress retrieves every DeckProgress record the user has, keyed by
// deck ID.
func (r *RedisProgressStore) ListProgress(ctx context.Context, userID string) (map[string]DeckProgress, error) {
	deckIDs, err := r.client.SMembers(ctx, progressIndexKey(userID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list progress decks: %w", err)
	}

	out := make(map[string]DeckProgress, len(deckIDs))
	for _, deckID := range deckIDs {
		fields, err := r.client.HGetAll(ctx, progressKey(userID, deckID)).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to read progress for deck %s: %w", deckID, err)
		}
		if len(fields) == 0 {
			continue
		}
		rec, err := decodeDeckProgress(fields)
		if err != nil {
			return nil, err
		}
		out[deckID] = *rec
	}
	return out, nil
}

// CorrectCount reports the size of the user's correct-card set. When the set
// has never been written, fromSet is false and the count falls back to the
// sum of totalCorrect across the user's DeckProgress records.
func (r *RedisProgressStore) CorrectCount(ctx context.Context, userID string) (count int, fromSet bool, err error) {
	count, fromSet, err = r.readCorrectSet(ctx, userID)
	if err != nil || fromSet {
		return count, fromSet, err
	}
	sum, err := r.sumTotalCorrect(ctx, userID)
	if err != nil {
		return 0, false, err
	}
	return sum, false, nil
}

// readCorrectSet reads the correct-card set size and whether the set exists
// at all. A missing set is the valid zero state of a user who has never
// answered a card correctly.
func (r *RedisProgressStore) readCorrectSet(ctx context.Context, userID string) (int, bool, error) {
	exists, err := r.client.Exists(ctx, correctKey(userID)).Result()
	if err != nil {
		return 0, false, fmt.Errorf("failed to check correct set: %w", err)
	}
	if exists == 0 {
		return 0, false, nil
	}
	n, err := r.client.SCard(ctx, correctKey(userID)).Result()
	if err != nil {
		return 0, false, fmt.Errorf("failed to size correct set: %w", err)
	}
	return int(n), true, nil
}

// sumTotalCorrect is the fallback count source: lifetime totalCorrect summed
// over every DeckProgress record the user has.
func (r *RedisProgressStore) sumTotalCorrect(ctx context.Context, userID string) (int, error) {
	all, err := r.ListProgress(ctx, userID)
	if err != nil {
		return 0, err
	}
	sum := 0
	for _, rec := range all {
		sum += rec.TotalCorrect
	}
	return sum, nil
}

// publish notifies the user's live subscriptions. The write has already
// succeeded; a failed notification is logged and dropped, the next write
// will trigger a fresh re-read anyway.
func (r *RedisProgressStore) publish(ctx context.Context, userID string, ev changeEvent) {
	payload, err := json.Marshal(ev)
	if err != nil {
		logrus.Warnf("failed to marshal change event for user %s: %v", userID, err)
		return
	}
	if err := r.client.Publish(ctx, eventsChannel(userID), payload).Err(); err != nil {
		logrus.Warnf("failed to publish change event for user %s: %v", userID, err)
	}
}
