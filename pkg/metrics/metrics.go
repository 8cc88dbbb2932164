package metrics

import "github.com/prometheus/client_golang/prometheus"

// Application metrics. These are registered onto the metrics server's
// registry in internal/server and incremented at the store/watch layer.
var (
	AttemptsRecorded = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "deckquiz_attempts_recorded_total",
			Help: "Total number of quiz attempts recorded",
		},
		[]string{"deck_id"},
	)

	BestImproved = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "deckquiz_best_improved_total",
			Help: "Total number of attempts that established or replaced a deck's best score (the first attempt for a deck always counts)",
		},
		[]string{"deck_id"},
	)

	CorrectCardsMarked = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "deckquiz_correct_cards_marked_total",
			Help: "Total number of new cards marked correct (idempotent re-marks excluded)",
		},
	)

	ActiveWatchers = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "deckquiz_active_watchers",
			Help: "Number of live progress/count subscriptions currently open",
		},
	)
)

// Collectors returns every application collector for registration.
func Collectors() []prometheus.Collector {
	return []prometheus.Collector{
		AttemptsRecorded,
		BestImproved,
		CorrectCardsMarked,
		ActiveWatchers,
	}
}
