package scraper

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics bundles Prometheus collectors for fetching and orchestration.
type Metrics struct {
	Registry         *prometheus.Registry
	FetchAttempts    *prometheus.CounterVec
	FetchDuration    prometheus.Histogram
	RetriesTotal     prometheus.Counter
	ErrorsTotal      *prometheus.CounterVec
	RecordsExtracted *prometheus.CounterVec
	ScrapeResults    *prometheus.CounterVec
	ProductsReturned prometheus.Histogram
}

// NewMetrics constructs and registers all metrics on a dedicated registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	attempts := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scraper_fetch_attempts_total",
			Help: "Fetch attempts issued, by outcome.",
		},
		[]string{"outcome"},
	)
	duration := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "scraper_fetch_duration_seconds",
			Help:    "Latency of individual fetch attempts.",
			Buckets: prometheus.DefBuckets,
		},
	)
	retries := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "scraper_retries_total",
			Help: "Total number of fetch retries.",
		},
	)
	errorsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scraper_errors_total",
			Help: "Total number of scraper errors by type.",
		},
		[]string{"error_type"},
	)
	records := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scraper_records_extracted_total",
			Help: "Raw records returned by adapters, by source.",
		},
		[]string{"source"},
	)
	results := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scraper_results_total",
			Help: "Scrape results joined by the orchestrator, by source and status.",
		},
		[]string{"source", "status"},
	)
	returned := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "scraper_products_returned",
			Help:    "Products returned per search after filtering.",
			Buckets: []float64{0, 1, 5, 10, 20, 40},
		},
	)

	registry.MustRegister(attempts, duration, retries, errorsTotal, records, results, returned)

	return &Metrics{
		Registry:         registry,
		FetchAttempts:    attempts,
		FetchDuration:    duration,
		RetriesTotal:     retries,
		ErrorsTotal:      errorsTotal,
		RecordsExtracted: records,
		ScrapeResults:    results,
		ProductsReturned: returned,
	}
}

// IncAttempt counts one fetch attempt with its outcome label.
func (m *Metrics) IncAttempt(outcome string) {
	if m == nil {
		return
	}
	m.FetchAttempts.WithLabelValues(outcome).Inc()
}

// ObserveDuration records a fetch attempt duration.
func (m *Metrics) ObserveDuration(d time.Duration) {
	if m == nil {
		return
	}
	m.FetchDuration.Observe(d.Seconds())
}

// IncRetries increments the retries counter.
func (m *Metrics) IncRetries() {
	if m == nil {
		return
	}
	m.RetriesTotal.Inc()
}

// IncError increments the errors counter for a type label.
func (m *Metrics) IncError(errorType string) {
	if m == nil {
		return
	}
	m.ErrorsTotal.WithLabelValues(errorType).Inc()
}

// ObserveResult records one joined scrape result.
func (m *Metrics) ObserveResult(source, status string, records int) {
	if m == nil {
		return
	}
	m.ScrapeResults.WithLabelValues(source, status).Inc()
	m.RecordsExtracted.WithLabelValues(source).Add(float64(records))
}

// ObserveReturned records how many products a search returned.
func (m *Metrics) ObserveReturned(n int) {
	if m == nil {
		return
	}
	m.ProductsReturned.Observe(float64(n))
}
