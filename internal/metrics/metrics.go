// Package metrics exposes Prometheus collectors for the corpus crawler.
package metrics

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	documentsTotal                *prometheus.CounterVec
	fetchesTotal                  *prometheus.CounterVec
	fetchBytesTotal               *prometheus.CounterVec
	rejectionsTotal               *prometheus.CounterVec
	listingAttemptsTotal          *prometheus.CounterVec
	frontierSize                  *prometheus.GaugeVec
	activeWorkers                 *prometheus.GaugeVec
	httpRequestsTotal             *prometheus.CounterVec
	httpRequestDurationSeconds    *prometheus.HistogramVec
	crawlerRateLimitDelaysSeconds *prometheus.HistogramVec

	once sync.Once
)

// Init initializes the Prometheus metrics collectors.
// It is safe to call this function multiple times.
func Init() {
	once.Do(func() {
		documentsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "corpus_documents_total",
				Help: "Total number of documents written, labeled by adapter.",
			},
			[]string{"adapter"},
		)

		fetchesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "corpus_fetches_total",
				Help: "Total number of page fetches, labeled by adapter and status.",
			},
			[]string{"adapter", "status"},
		)

		fetchBytesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "corpus_fetch_bytes_total",
				Help: "Total number of bytes fetched, labeled by adapter.",
			},
			[]string{"adapter"},
		)

		rejectionsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "corpus_rejections_total",
				Help: "Documents discarded after fetch, labeled by adapter and reason.",
			},
			[]string{"adapter", "reason"},
		)

		listingAttemptsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "corpus_listing_attempts_total",
				Help: "Catalog listing page fetch attempts, labeled by outcome.",
			},
			[]string{"outcome"},
		)

		frontierSize = promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "corpus_frontier_size",
				Help: "Number of tasks waiting in the frontier.",
			},
			[]string{"adapter"},
		)

		activeWorkers = promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "corpus_active_workers",
				Help: "Number of workers currently holding a fetch slot.",
			},
			[]string{"adapter"},
		)

		httpRequestsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests, labeled by method and code.",
			},
			[]string{"method", "code"},
		)

		httpRequestDurationSeconds = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Histogram of HTTP request latencies, labeled by method and route.",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5},
			},
			[]string{"method", "route"},
		)

		crawlerRateLimitDelaysSeconds = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "crawler_rate_limit_delays_seconds",
				Help:    "Histogram of rate limit wait durations.",
				Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30},
			},
			[]string{"domain"},
		)
	})
}

// SanitizeSite sanitizes a URL to extract a lowercase hostname.
// It returns "unknown" if the URL is invalid.
func SanitizeSite(rawURL string) string {
	if !strings.HasPrefix(rawURL, "http") {
		rawURL = "http://" + rawURL
	}
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		return "unknown"
	}
	return strings.ToLower(u.Hostname())
}

// Handler returns an http.Handler for exposing Prometheus metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveDocument counts one written document.
func ObserveDocument(adapter string) {
	documentsTotal.WithLabelValues(adapter).Inc()
}

// ObserveFetch records one fetch outcome and its payload size.
func ObserveFetch(adapter, status string, bytesFetched int) {
	fetchesTotal.WithLabelValues(adapter, status).Inc()
	if bytesFetched > 0 {
		fetchBytesTotal.WithLabelValues(adapter).Add(float64(bytesFetched))
	}
}

// ObserveRejection counts a fetched page that produced no document.
func ObserveRejection(adapter, reason string) {
	rejectionsTotal.WithLabelValues(adapter, reason).Inc()
}

// ObserveListingAttempt counts one listing page attempt ("ok", "retry", "exhausted").
func ObserveListingAttempt(outcome string) {
	listingAttemptsTotal.WithLabelValues(outcome).Inc()
}

// SetFrontierSize publishes the current frontier length.
func SetFrontierSize(adapter string, n int) {
	frontierSize.WithLabelValues(adapter).Set(float64(n))
}

// IncActiveWorkers increments the active workers gauge.
func IncActiveWorkers(adapter string) {
	activeWorkers.WithLabelValues(adapter).Inc()
}

// DecActiveWorkers decrements the active workers gauge.
func DecActiveWorkers(adapter string) {
	activeWorkers.WithLabelValues(adapter).Dec()
}

// ObserveHTTPRequest increments the HTTP request metrics.
func ObserveHTTPRequest(method, route string, code int, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, strconv.Itoa(code)).Inc()
	httpRequestDurationSeconds.WithLabelValues(method, route).Observe(duration.Seconds())
}

// ObserveRateLimitDelay records the duration of a rate limit wait.
func ObserveRateLimitDelay(domain string, duration time.Duration) {
	crawlerRateLimitDelaysSeconds.WithLabelValues(domain).Observe(duration.Seconds())
}
