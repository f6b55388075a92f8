package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// StoreRequests counts remote store calls by backend, operation and result.
	StoreRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tiw_store_requests_total",
			Help: "Total number of recommendation store calls",
		},
		[]string{"backend", "operation", "result"},
	)

	Submissions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tiw_submissions_total",
			Help: "Recommendation submissions by outcome (created, invalid, failed, busy)",
		},
		[]string{"result"},
	)

	Votes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tiw_votes_total",
			Help: "Vote actions by counter and outcome",
		},
		[]string{"counter", "result"},
	)

	PosterLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tiw_poster_lookups_total",
			Help: "Poster lookups by outcome (found, not_found, error)",
		},
		[]string{"result"},
	)

	// StaleLoads counts feed fetches whose result was dropped because a newer fetch was issued.
	StaleLoads = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tiw_feed_stale_loads_total",
			Help: "Feed loads discarded because a newer load superseded them",
		},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tiw_circuit_breaker_transitions_total",
			Help: "Circuit breaker state transitions",
		},
		[]string{"name", "from", "to"},
	)
)

// Result maps an error to a metric label.
func Result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
