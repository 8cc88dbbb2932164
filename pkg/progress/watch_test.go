package progress

import (
	"context"
	"testing"
	"time"
)

const watchTimeout = 3 * time.Second

func awaitSnapshot(t *testing.T, ch <-chan map[string]DeckProgress, match func(map[string]DeckProgress) bool) map[string]DeckProgress {
	t.Helper()
	deadline := time.After(watchTimeout)
	for {
		select {
		case snap, ok := <-ch:
			if !ok {
				t.Fatal("subscription closed while waiting for snapshot")
			}
			if match(snap) {
				return snap
			}
		case <-deadline:
			t.Fatal("timed out waiting for snapshot")
		}
	}
}

func awaitCount(t *testing.T, ch <-chan int, want int) {
	t.Helper()
	deadline := time.After(watchTimeout)
	for {
		select {
		case v, ok := <-ch:
			if !ok {
				t.Fatalf("subscription closed while waiting for count %d", want)
			}
			if v == want {
				return
			}
		case <-deadline:
			t.Fatalf("timed out waiting for count %d", want)
		}
	}
}

func TestWatchProgress_EmitsInitialSnapshotThenUpdates(t *testing.T) {
	store, _ := setupTestStore(t)
	ctx := context.Background()

	store.RecordAttempt(ctx, "user-w1", "beginner", 8, 10)

	sub, err := store.WatchProgress(ctx, "user-w1")
	if err != nil {
		t.Fatalf("WatchProgress() error = %v", err)
	}
	defer sub.Close()

	snap := awaitSnapshot(t, sub.Updates(), func(m map[string]DeckProgress) bool {
		return len(m) == 1
	})
	if snap["beginner"].BestScore != 8 {
		t.Errorf("initial snapshot BestScore = %d, expected 8", snap["beginner"].BestScore)
	}

	store.RecordAttempt(ctx, "user-w1", "advanced", 5, 12)

	snap = awaitSnapshot(t, sub.Updates(), func(m map[string]DeckProgress) bool {
		return len(m) == 2
	})
	if snap["advanced"].LastScore != 5 {
		t.Errorf("updated snapshot advanced LastScore = %d, expected 5", snap["advanced"].LastScore)
	}
}

func TestWatchProgress_SingleDeckUpdatesArriveInWriteOrder(t *testing.T) {
	store, _ := setupTestStore(t)
	ctx := context.Background()

	sub, err := store.WatchProgress(ctx, "user-w2")
	if err != nil {
		t.Fatalf("WatchProgress() error = %v", err)
	}
	defer sub.Close()

	awaitSnapshot(t, sub.Updates(), func(m map[string]DeckProgress) bool { return len(m) == 0 })

	store.RecordAttempt(ctx, "user-w2", "beginner", 3, 10)
	awaitSnapshot(t, sub.Updates(), func(m map[string]DeckProgress) bool {
		return m["beginner"].Attempts == 1
	})

	store.RecordAttempt(ctx, "user-w2", "beginner", 6, 10)
	snap := awaitSnapshot(t, sub.Updates(), func(m map[string]DeckProgress) bool {
		return m["beginner"].Attempts == 2
	})
	if snap["beginner"].BestScore != 6 {
		t.Errorf("BestScore = %d, expected 6", snap["beginner"].BestScore)
	}
}

func TestWatchProgress_CloseStopsEmissions(t *testing.T) {
	store, _ := setupTestStore(t)
	ctx := context.Background()

	sub, err := store.WatchProgress(ctx, "user-w3")
	if err != nil {
		t.Fatalf("WatchProgress() error = %v", err)
	}

	awaitSnapshot(t, sub.Updates(), func(m map[string]DeckProgress) bool { return true })

	sub.Close()
	sub.Close() // disposing twice must be safe

	// the record keeps changing after disposal
	store.RecordAttempt(ctx, "user-w3", "beginner", 5, 10)

	deadline := time.After(watchTimeout)
	for {
		select {
		case _, ok := <-sub.Updates():
			if !ok {
				return // channel drained and closed, no further emissions
			}
		case <-deadline:
			t.Fatal("subscription channel not closed after Close()")
		}
	}
}

func TestWatchCorrectCount_FallbackThenSwitchesToSet(t *testing.T) {
	store, _ := setupTestStore(t)
	ctx := context.Background()

	sub, err := store.WatchCorrectCount(ctx, "user-w4")
	if err != nil {
		t.Fatalf("WatchCorrectCount() error = %v", err)
	}
	defer sub.Close()

	// nothing recorded yet: zero state
	awaitCount(t, sub.Updates(), 0)

	// progress only: count is the totalCorrect fallback sum
	store.RecordAttempt(ctx, "user-w4", "beginner", 8, 10)
	awaitCount(t, sub.Updates(), 8)

	// the set appears: set size wins over the larger fallback sum
	store.RecordCorrectCard(ctx, "user-w4", "beginner", "c1")
	awaitCount(t, sub.Updates(), 1)

	store.RecordCorrectCard(ctx, "user-w4", "beginner", "c2")
	awaitCount(t, sub.Updates(), 2)
}

func TestWatchCorrectCount_CloseStopsEmissions(t *testing.T) {
	store, _ := setupTestStore(t)
	ctx := context.Background()

	sub, err := store.WatchCorrectCount(ctx, "user-w5")
	if err != nil {
		t.Fatalf("WatchCorrectCount() error = %v", err)
	}

	awaitCount(t, sub.Updates(), 0)
	sub.Close()

	store.RecordCorrectCard(ctx, "user-w5", "beginner", "c1")

	deadline := time.After(watchTimeout)
	for {
		select {
		case _, ok := <-sub.Updates():
			if !ok {
				return
			}
		case <-deadline:
			t.Fatal("subscription channel not closed after Close()")
		}
	}
}

func TestCountJoin_LastValueWins(t *testing.T) {
	j := &countJoin{}

	if j.value() != 0 {
		t.Errorf("value before any observation = %d, expected 0", j.value())
	}

	if got := j.observeFallback(13); got != 13 {
		t.Errorf("after fallback observation = %d, expected 13", got)
	}

	// set appears: it wins regardless of the fallback value
	if got := j.observeSet(2, true); got != 2 {
		t.Errorf("after set observation = %d, expected 2", got)
	}

	// fallback moving while the set is present does not change the output
	if got := j.observeFallback(40); got != 2 {
		t.Errorf("after fallback refresh = %d, expected 2", got)
	}

	// set becoming unreadable degrades to the last-known fallback
	if got := j.observeSet(0, false); got != 40 {
		t.Errorf("after set disappears = %d, expected 40", got)
	}
}
