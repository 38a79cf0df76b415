package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	searchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "quill",
			Name:      "search_duration_seconds",
			Help:      "Query execution time in seconds",
			Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		},
		[]string{"query_type"},
	)

	searchHits = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "quill",
			Name:      "search_hits",
			Help:      "Number of hits returned per query",
			Buckets:   []float64{0, 1, 5, 10, 20, 50, 100, 500, 1000},
		},
		[]string{"query_type"},
	)

	searchErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "quill",
			Name:      "search_errors_total",
			Help:      "Total number of failed queries",
		},
		[]string{"query_type"},
	)
)

func init() {
	prometheus.MustRegister(searchDuration)
	prometheus.MustRegister(searchHits)
	prometheus.MustRegister(searchErrors)
}

// ObserveSearch records one executed query.
func ObserveSearch(queryType string, took time.Duration, hits int) {
	searchDuration.WithLabelValues(queryType).Observe(took.Seconds())
	searchHits.WithLabelValues(queryType).Observe(float64(hits))
}

// ObserveSearchError records one failed query.
func ObserveSearchError(queryType string) {
	searchErrors.WithLabelValues(queryType).Inc()
}
