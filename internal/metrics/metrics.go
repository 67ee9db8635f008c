// Package metrics exposes Prometheus collectors for the blog search service.
package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	searchesTotal          *prometheus.CounterVec
	searchDurationSeconds  *prometheus.HistogramVec
	candidatePages         prometheus.Histogram
	httpRequestsTotal      *prometheus.CounterVec
	httpRequestDurationSec *prometheus.HistogramVec

	once sync.Once
)

// Init initializes the Prometheus metrics collectors.
// It is safe to call this function multiple times.
func Init() {
	once.Do(func() {
		searchesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "blogsearch_searches_total",
				Help: "Total number of searches, labeled by outcome.",
			},
			[]string{"outcome"},
		)

		searchDurationSeconds = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "blogsearch_search_duration_seconds",
				Help:    "Histogram of end-to-end search latencies, labeled by outcome.",
				Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
			},
			[]string{"outcome"},
		)

		candidatePages = promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "blogsearch_candidate_pages",
				Help:    "Histogram of candidate page counts per search.",
				Buckets: []float64{1, 5, 10, 25, 50, 100, 250},
			},
		)

		httpRequestsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests, labeled by method and code.",
			},
			[]string{"method", "code"},
		)

		httpRequestDurationSec = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Histogram of HTTP request latencies, labeled by method and route.",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 15, 60},
			},
			[]string{"method", "route"},
		)
	})
}

// Handler returns an http.Handler for exposing Prometheus metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveSearch records one completed search with its outcome and duration.
func ObserveSearch(outcome string, seconds float64) {
	if searchesTotal == nil {
		return
	}
	searchesTotal.WithLabelValues(outcome).Inc()
	searchDurationSeconds.WithLabelValues(outcome).Observe(seconds)
}

// ObserveCandidates records the candidate set size of one search.
func ObserveCandidates(count int) {
	if candidatePages == nil {
		return
	}
	candidatePages.Observe(float64(count))
}

// ObserveHTTPRequest records one served HTTP request.
func ObserveHTTPRequest(method, code, route string, duration time.Duration) {
	if httpRequestsTotal == nil {
		return
	}
	httpRequestsTotal.WithLabelValues(method, code).Inc()
	httpRequestDurationSec.WithLabelValues(method, route).Observe(duration.Seconds())
}
