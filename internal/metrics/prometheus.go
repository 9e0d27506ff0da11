// Package metrics exposes Prometheus metrics for the HTTP surface and the
// searches run through it.
package metrics

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Search outcomes.
const (
	OutcomeOK        = "ok"
	OutcomeNoResults = "no_results"
	OutcomeInvalid   = "invalid"
	OutcomeFailed    = "failed"
	OutcomeBusy      = "busy"
)

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "endpoint", "status"},
	)
	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Histogram of HTTP request durations.",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10},
		},
		[]string{"method", "endpoint", "status"},
	)
	searchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dashboard_searches_total",
			Help: "Total number of dashboard searches by outcome.",
		},
		[]string{"outcome"},
	)
	searchDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "dashboard_search_duration_seconds",
			Help:    "Histogram of search durations, including upstream calls.",
			Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 30},
		},
	)
	searchResults = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "dashboard_search_results",
			Help:    "Number of listings kept per successful search.",
			Buckets: []float64{1, 10, 50, 100, 200, 400},
		},
	)
)

func init() {
	prometheus.MustRegister(httpRequestsTotal)
	prometheus.MustRegister(httpRequestDuration)
	prometheus.MustRegister(searchesTotal)
	prometheus.MustRegister(searchDuration)
	prometheus.MustRegister(searchResults)
}

// RecordRequest records one served HTTP request.
func RecordRequest(method, endpoint string, statusCode int, duration time.Duration) {
	status := classifyStatus(statusCode)
	httpRequestsTotal.WithLabelValues(method, endpoint, status).Inc()
	httpRequestDuration.WithLabelValues(method, endpoint, status).Observe(duration.Seconds())
}

// RecordSearch records one search attempt. results is only observed for
// successful searches.
func RecordSearch(outcome string, results int, duration time.Duration) {
	searchesTotal.WithLabelValues(outcome).Inc()
	if outcome == OutcomeInvalid || outcome == OutcomeBusy {
		return
	}
	searchDuration.Observe(duration.Seconds())
	if outcome == OutcomeOK {
		searchResults.Observe(float64(results))
	}
}

func classifyStatus(statusCode int) string {
	switch {
	case statusCode >= 200 && statusCode < 300:
		return "2xx"
	case statusCode >= 300 && statusCode < 400:
		return "3xx"
	case statusCode >= 400 && statusCode < 500:
		return "4xx"
	case statusCode >= 500 && statusCode < 600:
		return "5xx"
	}
	return "unknown"
}

// Middleware records every request handled by a gin engine. Requests that
// match no route are recorded under the "unmatched" endpoint.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unmatched"
		}
		RecordRequest(c.Request.Method, endpoint, c.Writer.Status(), time.Since(start))
	}
}

// Handler serves the Prometheus exposition.
func Handler() http.Handler {
	return promhttp.Handler()
}
