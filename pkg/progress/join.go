package progress

import "sync"

// countJoin combines the two live inputs behind the correct-card count:
// the size of the correct-card set and the fallback sum of totalCorrect
// across DeckProgress records. The two inputs change independently and
// share no clock, so the join holds the last-known value of each and
// recomputes the output from both whenever either one moves.
type countJoin struct {
	mu         sync.Mutex
	setCount   int
	setPresent bool
	fallback   int
}

// observeSet records a fresh read of the correct-card set and returns the
// recomputed count.
func (j *countJoin) observeSet(count int, present bool) int {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.setCount = count
	j.setPresent = present
	return j.valueLocked()
}

// observeFallback records a fresh read of the totalCorrect sum and returns
// the recomputed count.
func (j *countJoin) observeFallback(sum int) int {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.fallback = sum
	return j.valueLocked()
}

// value returns the current combined count: the set size while the set
// exists, the fallback sum otherwise, zero before any observation.
func (j *countJoin) value() int {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.valueLocked()
}

func (j *countJoin) valueLocked() int {
	if j.setPresent {
		return j.setCount
	}
	return j.fallback
}
