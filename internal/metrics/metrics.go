// Package metrics holds the Prometheus collectors for the matchmaking service.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "matchmaking"

// Formation outcomes.
const (
	OutcomeCreated      = "created"
	OutcomeExisting     = "existing"
	OutcomeRaceResolved = "race_resolved"
)

var (
	// Swipes counts recorded swipes.
	// Labels: type (like, pass)
	Swipes = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "swipes_total",
		Help:      "Total swipes recorded",
	}, []string{"type"})

	// MatchesFormed counts FormMatch calls by how they ended.
	// Labels: outcome (created, existing, race_resolved)
	MatchesFormed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "matches_formed_total",
		Help:      "Match formation calls by outcome",
	}, []string{"outcome"})

	// ConversationRepairs counts conversations created lazily for a match
	// that was left without one.
	ConversationRepairs = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "conversation_repairs_total",
		Help:      "Conversations created after the fact for existing matches",
	})

	// NotificationsFailed counts dispatches that returned an error.
	// Labels: event
	NotificationsFailed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notifications_failed_total",
		Help:      "Notification dispatch failures by event type",
	}, []string{"event"})

	// RequestResponses counts accepted state transitions of match requests.
	// Labels: decision (accept, reject)
	RequestResponses = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "request_responses_total",
		Help:      "Match request responses by decision",
	}, []string{"decision"})

	// CompatibilityDuration measures how long scoring a pair takes, cache
	// lookups included.
	CompatibilityDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "compatibility_duration_seconds",
		Help:      "Time to produce a compatibility result",
		Buckets:   []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25},
	})
)

// ObserveSince records the time elapsed since start on h.
func ObserveSince(h prometheus.Observer, start time.Time) {
	h.Observe(time.Since(start).Seconds())
}

// Handler serves the default registry in the Prometheus text format.
func Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}
