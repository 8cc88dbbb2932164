package progress

import (
	"time"

	"github.com/sirupsen/logrus"
)

// Percentage returns score/total, or 0 for an empty attempt.
func Percentage(score, total int) float64 {
	if total <= 0 {
		return 0
	}
	return float64(score) / float64(total)
}

// ImprovesBest reports whether a new attempt strictly beats the stored best.
// The comparison is by percentage, not raw score, so attempts against decks
// of different sizes stay comparable (9/10 beats 8/8 never; 17/20 beats 8/10).
func ImprovesBest(cur *DeckProgress, score, total int) bool {
	curPct := Percentage(cur.BestScore, cur.BestTotal)
	newPct := Percentage(score, total)

	if newPct > curPct {
		logrus.Debugf("best improved for deck %s: %.3f -> %.3f", cur.DeckID, curPct, newPct)
		return true
	}
	return false
}

// NewDeckProgress builds the record written on a user's first attempt at a
// deck. Every counter is initialized from that single attempt.
func NewDeckProgress(deckID string, score, total int, now time.Time) *DeckProgress {
	return &DeckProgress{
		DeckID:        deckID,
		BestScore:     score,
		BestTotal:     total,
		LastScore:     score,
		LastTotal:     total,
		Attempts:      1,
		TotalCorrect:  score,
		TotalAnswered: total,
		LastUpdated:   now,
	}
}

// ValidateAttempt rejects attempts that could not have come from a real quiz
// run. The stored record only ever sees percentages in [0, 1].
func ValidateAttempt(score, total int) error {
	if score < 0 || total < 0 || score > total {
		return ErrInvalidAttempt
	}
	return nil
}
