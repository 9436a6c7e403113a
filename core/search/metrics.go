package search

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Tier outcomes.
const (
	outcomeHit      = "hit"
	outcomeEmpty    = "empty"
	outcomeSkipped  = "skipped"
	outcomeDegraded = "degraded"
	outcomeFailed   = "failed"
)

var (
	TierTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "catalog",
			Name:      "search_tier_total",
			Help:      "Search tier executions by tier and outcome",
		},
		[]string{"tier", "outcome"},
	)

	ResultCount = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "catalog",
			Name:      "search_results",
			Help:      "Number of results returned per search",
			Buckets:   []float64{0, 1, 5, 10, 25, 50, 100, 200},
		},
		[]string{"mode"},
	)
)

var registerOnce sync.Once

// RegisterMetrics registers the search metrics with the default registry.
// It is safe to call more than once.
func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(TierTotal)
		prometheus.MustRegister(ResultCount)
	})
}

func observeTier(tier string, outcome string) {
	TierTotal.WithLabelValues(tier, outcome).Inc()
}
