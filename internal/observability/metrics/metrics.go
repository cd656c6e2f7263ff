package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "quotevault_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "quotevault_http_request_duration_seconds",
		Help:    "Duration of HTTP requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	quoteMutations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "quotevault_quote_mutations_total",
		Help: "Count of catalog mutations by operation and result",
	}, []string{"op", "result"})

	randomSelections = promauto.NewCounter(prometheus.CounterOpts{
		Name: "quotevault_random_selections_total",
		Help: "Count of uniform random quote selections served",
	})

	searchesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "quotevault_searches_total",
		Help: "Count of list/search requests by whether a filter was applied",
	}, []string{"filtered"})

	searchResultSize = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "quotevault_search_result_size",
		Help:    "Number of quotes returned per list/search request",
		Buckets: []float64{0, 1, 5, 10, 25, 50, 100, 250, 500},
	})

	tokensIssued = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "quotevault_tokens_issued_total",
		Help: "Count of token issuance attempts by result",
	}, []string{"result"})

	catalogSize = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "quotevault_catalog_size",
		Help: "Number of quotes currently in the catalog (sampled)",
	})
)

// ObserveHTTPRequest records an HTTP request metric
func ObserveHTTPRequest(method, path, status string, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, path, status).Inc()
	httpRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

// ObserveMutation increments the mutation counter for the given operation and result.
func ObserveMutation(op, result string) {
	quoteMutations.WithLabelValues(op, result).Inc()
}

// ObserveRandomSelection counts a served random selection.
func ObserveRandomSelection() {
	randomSelections.Inc()
}

// ObserveSearch records a list/search request and its result size.
func ObserveSearch(resultSize int, filtered bool) {
	label := "false"
	if filtered {
		label = "true"
	}
	searchesTotal.WithLabelValues(label).Inc()
	searchResultSize.Observe(float64(resultSize))
}

// ObserveTokenIssued records a token issuance attempt with a result label.
func ObserveTokenIssued(result string) {
	tokensIssued.WithLabelValues(result).Inc()
}

// SetCatalogSize sets the sampled catalog size gauge.
func SetCatalogSize(n int64) {
	catalogSize.Set(float64(n))
}
