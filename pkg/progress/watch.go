package progress

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"

	"github.com/deckquiz/progress-service/pkg/metrics"
)

// ProgressSubscription is a live view of one user's full deck->progress map.
// Every change to any of the user's records triggers a re-read and a fresh
// emission of the complete map. Close disposes the subscription; after it
// returns no further emissions happen and Updates is closed.
type ProgressSubscription struct {
	updates chan map[string]DeckProgress
	pubsub  *redis.PubSub
	cancel  context.CancelFunc
	once    sync.Once
}

// Updates delivers full snapshots, newest last. A slow consumer never blocks
// the subscription: stale snapshots are replaced by newer ones.
func (s *ProgressSubscription) Updates() <-chan map[string]DeckProgress {
	return s.updates
}

// Close disposes the subscription. Safe to call more than once.
func (s *ProgressSubscription) Close() {
	s.once.Do(func() {
		s.cancel()
		if err := s.pubsub.Close(); err != nil {
			logrus.Debugf("progress subscription close: %v", err)
		}
	})
}

// WatchProgress opens a live subscription to every DeckProgress record of a
// user. The first emission is the current snapshot; each later emission
// follows a recorded attempt. The caller owns the returned subscription and
// must Close it exactly once.
func (r *RedisProgressStore) WatchProgress(ctx context.Context, userID string) (*ProgressSubscription, error) {
	ctx, cancel := context.WithCancel(ctx)

	pubsub := r.client.Subscribe(ctx, eventsChannel(userID))
	// ensures the subscription actually started before the first snapshot
	if _, err := pubsub.Receive(ctx); err != nil {
		cancel()
		_ = pubsub.Close()
		return nil, err
	}

	sub := &ProgressSubscription{
		updates: make(chan map[string]DeckProgress, 1),
		pubsub:  pubsub,
		cancel:  cancel,
	}

	metrics.ActiveWatchers.Inc()
	go func() {
		defer metrics.ActiveWatchers.Dec()
		defer close(sub.updates)

		emit := func() {
			snapshot, err := r.ListProgress(ctx, userID)
			if err != nil {
				// degrade to the empty state rather than tearing the stream down
				logrus.Warnf("progress watch read failed for user %s: %v", userID, err)
				snapshot = map[string]DeckProgress{}
			}
			offerMap(sub.updates, snapshot)
		}

		emit()

		msgs := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case m, ok := <-msgs:
				if !ok {
					return
				}
				var ev changeEvent
				if err := json.Unmarshal([]byte(m.Payload), &ev); err != nil {
					logrus.Warnf("bad change event payload for user %s: %v", userID, err)
					continue
				}
				if ev.Kind != eventProgress {
					continue
				}
				emit()
			}
		}
	}()

	return sub, nil
}

// CountSubscription is a live view of the user's correct-card count, the
// input to the eligibility gate.
type CountSubscription struct {
	updates chan int
	pubsub  *redis.PubSub
	cancel  context.CancelFunc
	once    sync.Once
}

// Updates delivers the combined count, newest last.
func (s *CountSubscription) Updates() <-chan int {
	return s.updates
}

// Close disposes the subscription. Safe to call more than once.
func (s *CountSubscription) Close() {
	s.once.Do(func() {
		s.cancel()
		if err := s.pubsub.Close(); err != nil {
			logrus.Debugf("count subscription close: %v", err)
		}
	})
}

// WatchCorrectCount opens a live subscription to the user's correct-card
// count. Two independent inputs feed it: the correct-card set and the
// DeckProgress collection (whose totalCorrect sum is the fallback while the
// set does not exist yet). Either input changing recomputes the output from
// the last-known value of both; before any observation the count is 0.
func (r *RedisProgressStore) WatchCorrectCount(ctx context.Context, userID string) (*CountSubscription, error) {
	ctx, cancel := context.WithCancel(ctx)

	pubsub := r.client.Subscribe(ctx, eventsChannel(userID))
	if _, err := pubsub.Receive(ctx); err != nil {
		cancel()
		_ = pubsub.Close()
		return nil, err
	}

	sub := &CountSubscription{
		updates: make(chan int, 1),
		pubsub:  pubsub,
		cancel:  cancel,
	}

	metrics.ActiveWatchers.Inc()
	go func() {
		defer metrics.ActiveWatchers.Dec()
		defer close(sub.updates)

		join := &countJoin{}

		refreshSet := func() int {
			count, present, err := r.readCorrectSet(ctx, userID)
			if err != nil {
				// unreadable set degrades to the fallback sum
				logrus.Warnf("correct set read failed for user %s: %v", userID, err)
				return join.observeSet(0, false)
			}
			return join.observeSet(count, present)
		}
		refreshFallback := func() int {
			sum, err := r.sumTotalCorrect(ctx, userID)
			if err != nil {
				logrus.Warnf("totalCorrect sum failed for user %s: %v", userID, err)
				return join.value()
			}
			return join.observeFallback(sum)
		}

		refreshSet()
		offerInt(sub.updates, refreshFallback())

		msgs := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case m, ok := <-msgs:
				if !ok {
					return
				}
				var ev changeEvent
				if err := json.Unmarshal([]byte(m.Payload), &ev); err != nil {
					logrus.Warnf("bad change event payload for user %s: %v", userID, err)
					continue
				}
				switch ev.Kind {
				case eventCorrect:
					offerInt(sub.updates, refreshSet())
				case eventProgress:
					offerInt(sub.updates, refreshFallback())
				}
			}
		}
	}()

	return sub, nil
}

// offerMap delivers v without ever blocking the watch loop, replacing an
// unconsumed older snapshot if the consumer is behind.
func offerMap(ch chan map[string]DeckProgress, v map[string]DeckProgress) {
	select {
	case ch <- v:
		return
	default:
	}
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- v:
	default:
	}
}

func offerInt(ch chan int, v int) {
	select {
	case ch <- v:
		return
	default:
	}
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- v:
	default:
	}
}
