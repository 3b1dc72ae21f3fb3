package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "moviefinder_api_requests_total",
			Help: "Total number of API requests served",
		},
		[]string{"path", "method", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "moviefinder_api_request_duration_seconds",
			Help:    "Duration of API requests in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		},
		[]string{"path"},
	)

	MovieFetchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "moviefinder_tmdb_fetches_total",
			Help: "Metadata provider fetches by mode and outcome",
		},
		[]string{"mode", "outcome"},
	)

	MovieFetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "moviefinder_tmdb_fetch_duration_seconds",
			Help:    "Duration of metadata provider fetches in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
		},
		[]string{"mode"},
	)

	TrendingWrites = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "moviefinder_trending_writes_total",
			Help: "Trending counter writes by result (create, update, error, dropped)",
		},
		[]string{"result"},
	)

	ActiveSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "moviefinder_active_sessions",
			Help: "Number of open browsing sessions",
		},
	)
)

// RecordAPICall updates the request metrics for one served request
func RecordAPICall(path, method string, status int, latency time.Duration) {
	APIRequestsTotal.WithLabelValues(path, method, strconv.Itoa(status)).Inc()
	APIRequestDuration.WithLabelValues(path).Observe(latency.Seconds())
}

// RecordFetch updates the provider metrics. mode is "discover" or "search".
func RecordFetch(mode, outcome string, latency time.Duration) {
	MovieFetchesTotal.WithLabelValues(mode, outcome).Inc()
	MovieFetchDuration.WithLabelValues(mode).Observe(latency.Seconds())
}

// Handler exposes the default registry
func Handler() http.Handler {
	return promhttp.Handler()
}
