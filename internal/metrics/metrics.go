package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	EventsProcessed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "guardian_events_processed_total",
		Help: "Message events run through the pipeline.",
	})

	FlagsRecorded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "guardian_flags_recorded_total",
		Help: "Flag records appended to the ledger.",
	})

	HeartsAwarded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "guardian_hearts_awarded_total",
		Help: "Hearts added across all subjects.",
	})

	HeartsDeducted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "guardian_hearts_deducted_total",
		Help: "Hearts removed across all subjects (pre-clamp).",
	})

	ClassifierFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "guardian_classifier_failures_total",
		Help: "Classifier calls degraded to the neutral result.",
	})

	RemovalsExecuted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "guardian_removals_executed_total",
		Help: "Members removed after a zero-hearts decision.",
	})

	IntentFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "guardian_intent_failures_total",
		Help: "Side-effect intents that failed to execute.",
	}, []string{"kind"})
)

// Handler serves the prometheus scrape endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
